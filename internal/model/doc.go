// Package model defines shared data types used across the mock auction service.
//
// Conventions:
//   - Money: integer lakhs. Crore values are display-only (lakhs / 100).
//   - Player IDs: positive int, assigned by the ledger, not reused until
//     all data is deleted.
//   - Team names: unique; "Unsold" is reserved for players nobody bought.
package model
