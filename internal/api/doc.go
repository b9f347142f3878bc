// Package api provides a REST client for the auction server.
//
// Reads are retried with jittered exponential backoff on 5xx and 429.
// Mutations are sent once: a retried sale could sell a player twice.
//
// Admin endpoints require the shared secret, sent in the X-Admin-Secret
// header.
package api
