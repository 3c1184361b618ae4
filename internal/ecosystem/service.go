package ecosystem

import (
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/store"
)

// UUIDv7Generator generates time-sortable UUIDv7 release ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Service owns the current ecosystem snapshot and is its only writer.
//
// Thread-safety model:
//   - UpdateRelease, Ingest, Replay: serialized by mu
//   - Snapshot, Resolve: safe from any goroutine, never block
type Service struct {
	mu      sync.Mutex
	current atomic.Pointer[Ecosystem]

	clock    *history.Clock
	store    *store.Store
	ids      IDGenerator
	logger   *slog.Logger
	prefixes Prefixes
}

// NewService creates a service over an empty ecosystem.
func NewService(opts ...Option) *Service {
	s := &Service{
		clock:    history.NewClock(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
		prefixes: DefaultPrefixes(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.current.Store(&Ecosystem{
		registry:  registry.New(address.NewStems()),
		prefixes:  s.prefixes,
		artifacts: map[address.PackageIndex]Artifacts{},
		reports:   map[history.Version]*Report{},
	})
	return s
}

// Snapshot returns the most recently committed ecosystem. The result is
// immutable and may be shared freely.
func (s *Service) Snapshot() *Ecosystem {
	return s.current.Load()
}

// Resolve answers a query against the current snapshot.
func (s *Service) Resolve(path string, query url.Values) (Response, bool) {
	return s.Snapshot().Resolve(path, query)
}

// Ecosystem is an immutable, committed view of every package.
type Ecosystem struct {
	registry  *registry.Registry
	prefixes  Prefixes
	artifacts map[address.PackageIndex]Artifacts
	reports   map[history.Version]*Report
}

// Registry returns the snapshot's registry. Callers must not mutate it.
func (e *Ecosystem) Registry() *registry.Registry {
	return e.registry
}

// Prefixes returns the query surface's root prefixes.
func (e *Ecosystem) Prefixes() Prefixes {
	return e.prefixes
}

// Artifacts returns the derived sitemap and search index of a package.
func (e *Ecosystem) Artifacts(pkg string) (Artifacts, bool) {
	p, ok := e.registry.PackageNamed(pkg)
	if !ok {
		return Artifacts{}, false
	}
	a, ok := e.artifacts[p.Index]
	return a, ok
}

// Report returns the ingestion report of a package release.
func (e *Ecosystem) Report(pkg, tag string) (*Report, bool) {
	p, ok := e.registry.PackageNamed(pkg)
	if !ok {
		return nil, false
	}
	t, err := registry.ParseTag(tag)
	if err != nil {
		return nil, false
	}
	r, ok := p.Releases.Tagged(t)
	if !ok {
		return nil, false
	}
	report, ok := e.reports[r.Version]
	return report, ok
}
