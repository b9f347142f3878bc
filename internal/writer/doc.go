// Package writer persists engine snapshots in the background.
//
// The engine hands every committed snapshot to SnapshotWriter.Persist,
// which never blocks. Only the newest pending snapshot is kept: a snapshot
// replaces the whole stored state, so older pending ones are dropped
// (coalesced). Failed saves are retried until a newer snapshot or Stop
// arrives.
package writer
