// Package ir provides the raw fact-stream types consumed by ingestion and
// the canonical JSON used for content hashes and published artifacts.
//
// This package contains type definitions and pure encoders only. All other
// internal packages may import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Fact streams are plain data keyed by names and USRs, never by ids.
//     Identities are allocated by the registry during ingestion.
//   - NO float types in canonical JSON, so artifacts hash identically
//     across platforms.
//   - All JSON tags use snake_case.
package ir
