// Package store provides SQLite-backed history for uncalc sessions.
//
// Every line evaluated in a recorded session becomes one row of the
// evaluations table. Compiled programs are stored once per content hash
// in the programs table and shared by all evaluations that produced them.
//
// # Ordering
//
// Evaluations are keyed by (session_id, seq). seq comes from the session's
// logical clock, never from wall time, so reads are ordered by seq and a
// session can be replayed in the order it was typed.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads while a REPL is writing
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: evaluations reference programs
//
// Program hashes are computed by ir.ProgramHash over the canonical encoding
// from ir.MarshalCanonical.
package store
