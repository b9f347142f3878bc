// Package auction implements the auction ledger.
//
// The ledger keeps three views consistent:
//   - Registry: teams and their remaining budgets
//   - Ledger: every player record, keyed by ID
//   - SquadIndex: per-team copies of sold players
//
// All mutations go through the Engine, which validates an operation into a
// plan, checks every budget movement the plan would make, and only then
// applies it. A rejected operation leaves all three views untouched.
//
// Persistence and sale notifications are dispatched after commit and never
// gate it. If the store is unreachable the in-memory state stays
// authoritative for the session and the store catches up on the next
// successful flush; a crash before that flush loses the unflushed commits.
package auction
