// Package registry keeps per-package version bookkeeping and the
// keyframed facts of every module, symbol, feature and article.
//
// A Registry is a copy-on-write value. Ingestion clones it, takes a
// writable copy of the one package being released, and publishes the
// result; readers only ever see committed registries and never mutate
// them.
//
// Pinning: every release records which version of each direct upstream
// package it was built against (its Pins). Isotropic expands those pins
// transitively into a Lens, one version per reachable package, which is
// the consistent snapshot a page is rendered and a link is resolved
// through.
package registry
