// Package server exposes the query API over HTTP.
//
// Every GET request outside /metrics and /healthz is answered by the
// current ecosystem snapshot: pages and generated artifacts with 200,
// masked or misspelled paths with 302 to the exact URI, outed legacy
// spellings with 301 to the canonical URI, anything else with 404.
package server
