// Package database provides the PostgreSQL connection pool used by the
// postgres snapshot store.
package database
