package ecosystem

import (
	"fmt"

	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/resolver"
)

// Link is a documentation reference resolved outside of ingestion.
type Link struct {
	Kind       resolver.Kind
	Redirected bool

	// Exact and Canonical are set when Kind is resolver.One.
	Exact     string
	Canonical string

	// Candidates describes every match of an ambiguous reference.
	Candidates []string
}

// Link resolves text as if it were written in the documentation of module
// in the release of pkg matching pattern. An empty pattern selects the
// latest release. Unresolvable references are results, not errors; errors
// report an unknown context or a malformed expression.
func (e *Ecosystem) Link(pkg, pattern, module, text string) (Link, error) {
	p, ok := e.registry.PackageNamed(pkg)
	if !ok {
		return Link{}, fmt.Errorf("%w: %q", ErrUnknownPackage, pkg)
	}

	var release registry.Release
	if pattern == "" {
		release, ok = p.Releases.Latest()
	} else {
		mask, err := registry.ParseMask(pattern)
		if err != nil {
			return Link{}, err
		}
		release, ok = p.Releases.Snap(mask)
	}
	if !ok {
		return Link{}, fmt.Errorf("%w: %s@%s", ErrUnknownRelease, pkg, pattern)
	}

	id, ok := p.ModuleNamed(module)
	if !ok || !p.ModuleExtant(id, release.Version) {
		return Link{}, fmt.Errorf("%w: %s in %s@%s", ErrUnknownModule, module, pkg, release.Tag)
	}

	lens := e.registry.LensAt(p, release.Version)
	r := resolver.New(e.registry, p.Index, lens, resolver.Scope{Namespace: id})
	res, err := r.ResolveText(text, resolver.Disambiguator{})
	if err != nil {
		return Link{}, err
	}

	link := Link{Kind: res.Kind, Redirected: res.Redirected}
	switch res.Kind {
	case resolver.One:
		m := minter{reg: e.registry, prefixes: e.prefixes}
		loc, ok := m.locate(res.Target, res.Lens)
		if !ok {
			link.Kind = resolver.Unresolved
			break
		}
		link.Exact, link.Canonical = loc.Exact, loc.Canonical
	case resolver.Ambiguous:
		for _, c := range res.Candidates {
			link.Candidates = append(link.Candidates, e.registry.Describe(c))
		}
	}
	return link, nil
}
