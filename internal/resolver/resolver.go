package resolver

import (
	"slices"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
	"github.com/roach88/docket/internal/registry"
)

// Nest is the lexical host of a doc comment: the type its owner is
// declared in.
type Nest struct {
	Namespace address.ModuleID
	Path      []string
}

// Scope is where a reference is written.
type Scope struct {
	// Namespace is the module the reference is written in.
	Namespace address.ModuleID

	// Imports overrides the module's recorded imports when non-nil.
	Imports []address.ModuleID

	Nest *Nest
}

// Resolver resolves references from one scope through one lens.
type Resolver struct {
	reg   *registry.Registry
	home  address.PackageIndex
	lens  registry.Lens
	scope Scope
}

// New creates a resolver for references written in package home.
func New(reg *registry.Registry, home address.PackageIndex, lens registry.Lens, scope Scope) *Resolver {
	return &Resolver{reg: reg, home: home, lens: lens, scope: scope}
}

// ResolveText parses and resolves text. A malformed expression resolves
// to Unresolved and returns the parse error for diagnostics.
func (r *Resolver) ResolveText(text string, d Disambiguator) (Resolution, error) {
	e, err := Parse(text)
	if err != nil {
		return Resolution{Package: r.home, Lens: r.lens}, err
	}
	return r.Resolve(e, d), nil
}

// Resolve resolves a parsed expression.
func (r *Resolver) Resolve(e Expression, d Disambiguator) Resolution {
	if d.Kind == "" {
		d.Kind = e.Kind
	}
	unresolved := Resolution{Package: r.home, Version: r.lens[r.home], Lens: r.lens}

	if e.Absolute {
		return r.resolveAbsolute(e, d, unresolved)
	}

	q := query{reg: r.reg, lens: r.lens, suffix: e.Suffix, disambiguator: d}
	home := r.home
	path := e.Path

	module, qualified := r.reachable(path[0])
	if e.Version != "" {
		target := home
		if qualified {
			target = module.Package
		}
		lens, v, ok := r.snap(target, e.Version)
		if !ok {
			return unresolved
		}
		q.lens = lens
		home = target
		unresolved = Resolution{Package: target, Version: v, Lens: lens}
	}

	if qualified {
		if len(path) == 1 {
			return r.resolution(home, q.lens, Selection{Kind: One, Target: ModuleTarget{Module: module}}, false)
		}
		sel, redirected := q.search(func(outed bool) Selection {
			return q.lookup(module, path[1:], outed)
		})
		return r.resolution(home, q.lens, sel, redirected)
	}

	sel, redirected := q.search(func(outed bool) Selection {
		return r.scoped(q, path, outed)
	})
	return r.resolution(home, q.lens, sel, redirected)
}

func (r *Resolver) resolveAbsolute(e Expression, d Disambiguator, unresolved Resolution) Resolution {
	pkg, ok := r.reg.PackageNamed(e.Package)
	if !ok {
		return unresolved
	}
	var lens registry.Lens
	if e.Version != "" {
		if lens, _, ok = r.snap(pkg.Index, e.Version); !ok {
			return unresolved
		}
	} else {
		latest, ok := pkg.Releases.Latest()
		if !ok {
			return unresolved
		}
		lens = r.reg.LensAt(pkg, latest.Version)
	}
	return Locate(r.reg, lens, pkg, e.Path, e.Suffix, d)
}

// Locate resolves a module-qualified path inside pkg as seen through
// lens, which must pin pkg. An empty path names the package itself and a
// single component names a module.
func Locate(reg *registry.Registry, lens registry.Lens, pkg *registry.Package, path []string, suffix string, d Disambiguator) Resolution {
	v, ok := lens[pkg.Index]
	res := Resolution{Package: pkg.Index, Version: v, Lens: lens}
	if !ok {
		return res
	}
	if len(path) == 0 {
		res.Selection = Selection{Kind: One, Target: PackageTarget{Package: pkg.Index}}
		return res
	}
	module, ok := locateModule(reg, lens, pkg, path[0])
	if !ok {
		return res
	}
	if len(path) == 1 && suffix == "" {
		res.Selection = Selection{Kind: One, Target: ModuleTarget{Module: module}}
		return res
	}
	q := query{reg: reg, lens: lens, suffix: suffix, disambiguator: d}
	res.Selection, res.Redirected = q.search(func(outed bool) Selection {
		return q.lookup(module, path[1:], outed)
	})
	return res
}

// locateModule finds a module of pkg, or failing that a module of any
// package in the lens: pages for extensions live under the extending
// package but are rooted in the extended module.
func locateModule(reg *registry.Registry, lens registry.Lens, pkg *registry.Package, name string) (address.ModuleID, bool) {
	if m, ok := pkg.ModuleNamed(name); ok {
		return m, pkg.ModuleExtant(m, lens[pkg.Index])
	}
	for _, index := range lens.Packages() {
		other := reg.Package(index)
		if m, ok := other.ModuleNamed(name); ok && other.ModuleExtant(m, lens[index]) {
			return m, true
		}
	}
	return address.ModuleID{}, false
}

func (r *Resolver) resolution(pkg address.PackageIndex, lens registry.Lens, sel Selection, redirected bool) Resolution {
	return Resolution{Selection: sel, Redirected: redirected && sel.Kind != Unresolved, Package: pkg, Version: lens[pkg], Lens: lens}
}

// snap re-targets package index to the release matching pattern.
func (r *Resolver) snap(index address.PackageIndex, pattern string) (registry.Lens, history.Version, bool) {
	mask, err := registry.ParseMask(pattern)
	if err != nil {
		return nil, 0, false
	}
	pkg := r.reg.Package(index)
	release, ok := pkg.Releases.Snap(mask)
	if !ok {
		return nil, 0, false
	}
	return r.reg.LensAt(pkg, release.Version), release.Version, true
}

// imports returns the modules visible from the scope's namespace.
func (r *Resolver) imports() []address.ModuleID {
	if r.scope.Imports != nil {
		return r.scope.Imports
	}
	ns := r.scope.Namespace
	v, ok := r.lens[ns.Package]
	if !ok || int(ns.Package) >= r.reg.Len() {
		return nil
	}
	return r.reg.Package(ns.Package).Imports(ns, v)
}

// reachable reports whether name is the scope's own module or one of its
// imports.
func (r *Resolver) reachable(name string) (address.ModuleID, bool) {
	candidates := append([]address.ModuleID{r.scope.Namespace}, r.imports()...)
	for _, m := range candidates {
		if int(m.Package) >= r.reg.Len() {
			continue
		}
		if r.reg.Module(m).Name == name {
			return m, true
		}
	}
	return address.ModuleID{}, false
}

// scoped tries the nest (innermost first), then the scope's own module,
// then every import. Matches in more than one import are a naming
// collision and resolve to nothing.
func (r *Resolver) scoped(q query, path []string, outed bool) Selection {
	if nest := r.scope.Nest; nest != nil {
		for i := len(nest.Path); i > 0; i-- {
			prefixed := append(slices.Clone(nest.Path[:i]), path...)
			if sel := q.lookup(nest.Namespace, prefixed, outed); sel.Kind != Unresolved {
				return sel
			}
		}
	}
	if sel := q.lookup(r.scope.Namespace, path, outed); sel.Kind != Unresolved {
		return sel
	}

	var found []Selection
	for _, m := range r.imports() {
		if m == r.scope.Namespace {
			continue
		}
		if sel := q.lookup(m, path, outed); sel.Kind != Unresolved {
			found = append(found, sel)
		}
	}
	if len(found) == 1 {
		return found[0]
	}
	return Selection{Kind: Unresolved}
}

// query is one route lookup configuration.
type query struct {
	reg           *registry.Registry
	lens          registry.Lens
	suffix        string
	disambiguator Disambiguator
}

// search runs find against the primary spelling, then once against the
// outed spelling.
func (q query) search(find func(outed bool) Selection) (Selection, bool) {
	if sel := find(false); sel.Kind != Unresolved {
		return sel, false
	}
	if sel := find(true); sel.Kind != Unresolved {
		return sel, true
	}
	return Selection{Kind: Unresolved}, false
}

// lookup finds path under namespace in every package of the lens,
// keeping candidates that are visible and pass the disambiguator.
func (q query) lookup(namespace address.ModuleID, path []string, outed bool) Selection {
	var (
		route address.Route
		ok    bool
	)
	if outed {
		route, ok = q.reg.Stems.FindOuted(namespace, nil, path)
	} else {
		route, ok = q.reg.Stems.Find(namespace, nil, path, q.suffix)
	}
	if !ok {
		return Selection{Kind: Unresolved}
	}

	var candidates []address.Composite
	for _, index := range q.lens.Packages() {
		pkg := q.reg.Package(index)
		var filed []address.Composite
		if outed {
			filed = pkg.OutedCandidates(route)
		} else {
			filed = pkg.Candidates(route)
		}
		for _, c := range filed {
			if q.reg.Visible(c, q.lens) && q.disambiguator.matches(q.reg, c) {
				candidates = append(candidates, c)
			}
		}
	}
	slices.SortFunc(candidates, address.CompareComposites)
	candidates = slices.Compact(candidates)
	if len(candidates) > 0 || outed {
		return reduce(candidates)
	}

	if len(path) == 1 && q.suffix == "" && q.disambiguator.IsZero() {
		if v, ok := q.lens[namespace.Package]; ok {
			pkg := q.reg.Package(namespace.Package)
			if id, ok := pkg.ArticleAt(route); ok && pkg.ArticleExtant(id, v) {
				return Selection{Kind: One, Target: ArticleTarget{Article: id}}
			}
		}
	}
	return Selection{Kind: Unresolved}
}
