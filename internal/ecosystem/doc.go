// Package ecosystem ingests package releases and serves documentation
// queries over the result.
//
// # Writers and readers
//
// Service is the single writer. UpdateRelease serializes on a mutex,
// clones the current registry, applies one release to a private copy of
// the package being released, and publishes the result with one atomic
// pointer swap. A cancelled or failed ingestion publishes nothing.
//
// Readers call Snapshot and work on an immutable *Ecosystem without
// locking. Every query is an in-memory, non-blocking computation.
//
// # Ingestion phases
//
//	AllocateIdentity
//	  -> RegisterModulesAndDependencies
//	  -> ResolveUpstreamPins
//	  -> RegisterSymbolsAndArticles
//	  -> DetectInheritedDocumentationHints
//	  -> CompileDocumentationBodies
//	  -> Commit
//
// Cancellation is checked between phases, never inside one. Commit
// persists the release (when a store is configured), rebuilds every
// derived artifact from scratch, and swaps the snapshot.
package ecosystem
