// Package notify delivers sale notifications.
//
// Hub is the server side: it upgrades HTTP requests to WebSocket and fans
// every sale out to connected clients. Slow clients lose messages rather
// than stall the sale. Subscriber is the matching client used by
// auctionctl watch.
package notify
