// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Auction transactions by operation and result, with latency
//   - Snapshot writer flush outcomes
//   - Sale notifications sent and dropped, connected display clients
//   - HTTP requests by route, method and status
package metrics
