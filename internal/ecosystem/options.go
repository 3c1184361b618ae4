package ecosystem

import (
	"log/slog"

	"github.com/roach88/docket/internal/store"
)

// IDGenerator generates release ids.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDs
// (tests).
type IDGenerator interface {
	Generate() string
}

// Prefixes are the root path segments of the query surface.
type Prefixes struct {
	Symbols  string
	Articles string
	Sitemaps string
	Search   string
}

// DefaultPrefixes returns the stock root prefixes.
func DefaultPrefixes() Prefixes {
	return Prefixes{
		Symbols:  "reference",
		Articles: "learn",
		Sitemaps: "sitemaps",
		Search:   "lunr",
	}
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStore persists every committed release to st and enables Replay.
func WithStore(st *store.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithIDGenerator sets the release id generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) {
		s.ids = gen
	}
}

// WithPrefixes sets the query surface's root prefixes.
func WithPrefixes(p Prefixes) Option {
	return func(s *Service) {
		s.prefixes = p
	}
}
