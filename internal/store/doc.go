// Package store persists auction snapshots.
//
// A Store saves and loads a whole model.Snapshot at a time: the teams
// table and the players table are always replaced together. Three drivers
// are provided:
//   - memory: in-process copy, for tests and throwaway runs
//   - csv: teams.csv and players.csv in a directory, the same sheet
//     layout operators edit by hand
//   - postgres: teams and players tables via pgx
package store
