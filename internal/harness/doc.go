// Package harness provides conformance testing for docket ecosystems.
//
// A scenario ingests a sequence of CUE release documents into a fresh
// service backed by an in-memory store, answers a list of queries, and
// validates the results as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	releases:
//	  - releases/01-base.cue
//	  - releases/02-kit.cue
//	queries:
//	  - path: /reference/base/1/Base/Shape
//	    expect:
//	      kind: temporary_redirect
//	      exact: /reference/base/1.0.0/Base/Shape
//	  - path: /reference/kit/Kit/Square
//	    query: { lens: "kit@1" }
//	    expect:
//	      kind: page
//	      contains: ["A square"]
//	assertions:
//	  - type: pin
//	    package: kit
//	    tag: 1.0.0
//	    dependency: base
//	    pinned: 1.0.0
//	  - type: replay_identical
//
// Release paths are relative to the scenario file.
//
// # Assertion Types
//
//   - pin: a release pinned a dependency to the given tag
//   - hint: a symbol's documentation is inherited from origin
//   - diagnostic_count: a release reported exactly N unlinked references
//   - stored: the release was written to the store
//   - replay_identical: replaying the store answers every query identically
//
// # Deterministic Testing
//
// Release ids come from testutil.SequentialIDs seeded with the scenario
// name, and versions from the service's logical clock, so traces are
// identical across runs and can be compared against golden files.
package harness
