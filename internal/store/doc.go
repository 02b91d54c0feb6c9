// Package store provides SQLite-backed durable storage for besselx
// evaluation logs.
//
// The store is an append-only log with:
//   - Runs: one per CLI invocation or harness run
//   - Evaluations: a request, its values or fatal error code
//   - Warnings: the sink calls each evaluation produced, in order
//
// # Identity and Ordering
//
// An evaluation's id is the content hash of its request (see
// ir.EvaluationID), so recording the same request twice in a run is a
// no-op. All ordering uses seq INTEGER (logical clock), never
// timestamps, and every list query ends in ORDER BY seq ASC, id COLLATE
// BINARY ASC.
//
// Orders, arguments and values are stored as IEEE-754 bit patterns.
// Replay compares them bit for bit.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
