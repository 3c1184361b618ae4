package resolver

import (
	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
	"github.com/roach88/docket/internal/registry"
)

// Target is a sealed interface over the things a reference can name.
type Target interface {
	target()
}

// PackageTarget names a whole package.
type PackageTarget struct {
	Package address.PackageIndex
}

// ModuleTarget names a module.
type ModuleTarget struct {
	Module address.ModuleID
}

// ArticleTarget names a free-form article.
type ArticleTarget struct {
	Article address.ArticleID
}

// SymbolTarget names a declaration through a particular diacritic.
type SymbolTarget struct {
	Composite address.Composite
}

func (PackageTarget) target() {}
func (ModuleTarget) target()  {}
func (ArticleTarget) target() {}
func (SymbolTarget) target()  {}

// Kind classifies a Selection.
type Kind uint8

const (
	Unresolved Kind = iota
	One
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case One:
		return "one"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// Selection is the outcome of resolving a reference.
//
// One carries Target. Ambiguous carries every surviving candidate in
// composite order; callers render a disambiguation listing from it.
type Selection struct {
	Kind       Kind
	Target     Target
	Candidates []address.Composite
}

// Resolution is a Selection plus the context it was found in.
type Resolution struct {
	Selection

	// Redirected is set when only the legacy outed spelling matched.
	Redirected bool

	// Package and Version identify the destination package and the
	// version of it the target was found at.
	Package address.PackageIndex
	Version history.Version

	// Lens is the lens the target was resolved through. It differs from
	// the caller's when the expression named a package or version.
	Lens registry.Lens
}

// Disambiguator narrows route candidates. Zero fields match anything.
type Disambiguator struct {
	Base *address.SymbolID
	Host *address.SymbolID
	Kind string
}

// IsZero reports whether d filters nothing.
func (d Disambiguator) IsZero() bool {
	return d.Base == nil && d.Host == nil && d.Kind == ""
}

func (d Disambiguator) matches(reg *registry.Registry, c address.Composite) bool {
	if d.Base != nil && c.Base != *d.Base {
		return false
	}
	if d.Host != nil && c.Diacritic.Host != *d.Host {
		return false
	}
	if d.Kind != "" && reg.Symbol(c.Base).Kind != d.Kind {
		return false
	}
	return true
}

func reduce(candidates []address.Composite) Selection {
	switch len(candidates) {
	case 0:
		return Selection{Kind: Unresolved}
	case 1:
		return Selection{Kind: One, Target: SymbolTarget{Composite: candidates[0]}}
	default:
		return Selection{Kind: Ambiguous, Candidates: candidates}
	}
}
