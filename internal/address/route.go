package address

import (
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
)

// Stem is an interned path-component sequence. The zero Stem is the empty
// path.
type Stem uint32

// Route is the name-resolution key: a namespace module, the interned stem
// of every path component but the last, and a hash of the last component
// together with its disambiguation suffix.
type Route struct {
	Namespace ModuleID
	Stem      Stem
	Leaf      uint64
}

// separator cannot appear in a path component.
const separator = "\x1f"

// Stems is the interning table shared by every package in an ecosystem.
//
// The table grows only during ingestion. It is the one structure in the
// ecosystem that readers and the writer touch concurrently, so it carries
// its own lock.
type Stems struct {
	mu    sync.RWMutex
	table map[string]Stem
	keys  []string
}

// NewStems creates an empty table. Stem 0 is reserved for the empty path.
func NewStems() *Stems {
	return &Stems{
		table: map[string]Stem{"": 0},
		keys:  []string{""},
	}
}

// Len returns the number of interned stems, including the empty one.
func (s *Stems) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Intern returns the stem for components, allocating one on first sight.
func (s *Stems) Intern(components []string) Stem {
	key := strings.Join(components, separator)

	s.mu.RLock()
	stem, ok := s.table[key]
	s.mu.RUnlock()
	if ok {
		return stem
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stem, ok := s.table[key]; ok {
		return stem
	}
	stem = Stem(len(s.keys))
	s.keys = append(s.keys, key)
	s.table[key] = stem
	return stem
}

// Lookup returns the stem for components without allocating.
func (s *Stems) Lookup(components []string) (Stem, bool) {
	key := strings.Join(components, separator)
	s.mu.RLock()
	defer s.mu.RUnlock()
	stem, ok := s.table[key]
	return stem, ok
}

// Components returns the path a stem was interned from.
func (s *Stems) Components(stem Stem) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(stem) >= len(s.keys) || stem == 0 {
		return nil
	}
	return strings.Split(s.keys[stem], separator)
}

// Route interns the route for prefix+components with the given suffix.
// It returns false when the combined path is empty.
func (s *Stems) Route(namespace ModuleID, prefix, components []string, suffix string) (Route, bool) {
	path := joinPath(prefix, components)
	if len(path) == 0 {
		return Route{}, false
	}
	stem := s.Intern(path[:len(path)-1])
	return Route{Namespace: namespace, Stem: stem, Leaf: leafHash(path[len(path)-1], suffix)}, true
}

// Find computes the route for a lookup. A path whose stem was never interned
// cannot have anything filed under it, so Find reports false without
// growing the table.
func (s *Stems) Find(namespace ModuleID, prefix, components []string, suffix string) (Route, bool) {
	path := joinPath(prefix, components)
	if len(path) == 0 {
		return Route{}, false
	}
	stem, ok := s.Lookup(path[:len(path)-1])
	if !ok {
		return Route{}, false
	}
	return Route{Namespace: namespace, Stem: stem, Leaf: leafHash(path[len(path)-1], suffix)}, true
}

// Outed interns the legacy spelling of a route: every component case-folded
// and the disambiguation suffix dropped.
func (s *Stems) Outed(namespace ModuleID, prefix, components []string) (Route, bool) {
	return s.Route(namespace, Fold(prefix), Fold(components), "")
}

// FindOuted is the read-only counterpart of Outed.
func (s *Stems) FindOuted(namespace ModuleID, prefix, components []string) (Route, bool) {
	return s.Find(namespace, Fold(prefix), Fold(components), "")
}

// Fold case-folds each component.
func Fold(components []string) []string {
	if len(components) == 0 {
		return nil
	}
	folded := make([]string, len(components))
	for i, c := range components {
		// A Caser is stateful; never share one across goroutines.
		folded[i] = cases.Fold().String(c)
	}
	return folded
}

func joinPath(prefix, components []string) []string {
	path := make([]string, 0, len(prefix)+len(components))
	path = append(path, prefix...)
	return append(path, components...)
}

func leafHash(leaf, suffix string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(leaf)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(suffix)
	return d.Sum64()
}
