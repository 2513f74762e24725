// Package store provides SQLite-backed durable storage for translation runs.
//
// The store is an append-only log with:
//   - Runs: one row per engine translation of a program
//   - Members: the translated methods and functions of a run, stored as
//     canonical JSON, printed IR text and content hash
//
// # Critical Patterns
//
// Logical time
//   - All ordering uses seq INTEGER (logical clock), never timestamps
//   - Queries order by seq ASC, then name or id COLLATE BINARY ASC
//
// Content addressing
//   - ir_hash is ir.MethodHash or ir.FunctionHash of the member
//   - ir_json is the canonical JSON the hash was computed over, so a
//     stored run can be re-verified without the source program
//
// Idempotency
//   - WriteRun inserts a run and its members in one transaction
//   - Rewriting an existing run ID is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
