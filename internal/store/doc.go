// Package store provides SQLite-backed durable storage for ingested
// releases.
//
// The store is an append-only log:
//   - Releases: one row per ingested release, carrying the fact stream,
//     the era request and a content fingerprint
//   - Diagnostics: reference failures found while compiling a release
//
// # Critical Patterns
//
// Logical time: releases are ordered by version, the ecosystem's logical
// clock, NEVER by wall time. Replaying the log in version order rebuilds
// an identical ecosystem.
//
// Idempotency: UNIQUE(package, tag) with ON CONFLICT DO NOTHING. Writing
// a release twice is a no-op reported through the inserted flag.
//
// Atomicity: a release and its diagnostics are written in one
// transaction, so a crash never leaves diagnostics without a release.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// PRAGMA user_version records the schema version. Open applies pending
// migrations and refuses logs written by a newer schema.
package store
