// Package server exposes the auction over HTTP.
//
// Reads are public. Mutations require the admin secret in X-Admin-Secret
// or an "Authorization: Bearer" header. Errors are returned as
//
//	{"error": {"code": "INSUFFICIENT_BUDGET", "message": "..."}}
//
// with a status code chosen from the error kind.
package server
