// Package cli implements auctionctl, the operator command line for the
// auction server.
//
// Settings resolve from flags, then AUCTIONCTL_* environment variables,
// then an optional YAML config file:
//
//	AUCTIONCTL_SERVER=http://localhost:8000
//	AUCTIONCTL_SECRET=...
package cli
