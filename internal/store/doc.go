// Package store provides SQLite-backed persistence for learner snapshots.
//
// One row per curriculum holds the engine's encoded state. The store treats
// payloads as opaque bytes: versioning and checksums live in the engine's
// envelope, so a corrupt row is the engine's problem to recover from, not
// the store's to reject.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// schema.sql is version 1; later changes are applied incrementally based on
// PRAGMA user_version.
package store
