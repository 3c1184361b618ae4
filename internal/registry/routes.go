package registry

import (
	"slices"

	"github.com/roach88/docket/internal/address"
)

// RebuildRoutes recomputes p's route tables from scratch. Routes are
// derived data: every symbol files its natural composite under its
// current path, and every feature files under its host's path extended by
// the member's name. Visibility at a given version is decided at lookup
// time from keyframes, so retired entries stay in the table.
func (r *Registry) RebuildRoutes(p *Package) {
	routes := make(map[address.Route][]address.Composite)
	outed := make(map[address.Route][]address.Composite)
	articles := make(map[address.Route]address.ArticleID)

	file := func(c address.Composite, namespace address.ModuleID, path []string, suffix string) {
		if route, ok := r.Stems.Route(namespace, nil, path, suffix); ok {
			routes[route] = append(routes[route], c)
		}
		if route, ok := r.Stems.Outed(namespace, nil, path); ok {
			outed[route] = append(outed[route], c)
		}
	}

	for i := range p.symbols {
		s := &p.symbols[i]
		file(address.Natural(s.ID, s.Culture), s.Namespace, s.Path, s.Suffix)
	}
	for _, f := range p.features {
		base := r.lookupSymbol(p, f.Composite.Base)
		host := r.lookupSymbol(p, f.Composite.Diacritic.Host)
		if base == nil || host == nil || len(base.Path) == 0 {
			continue
		}
		path := append(slices.Clone(host.Path), base.Path[len(base.Path)-1])
		file(f.Composite, host.Namespace, path, base.Suffix)
	}
	for _, a := range p.articles {
		if route, ok := r.Stems.Route(a.Culture, nil, []string{a.Name}, ""); ok {
			articles[route] = a.ID
		}
	}

	for _, table := range []map[address.Route][]address.Composite{routes, outed} {
		for route, list := range table {
			slices.SortFunc(list, address.CompareComposites)
			table[route] = slices.Compact(list)
		}
	}
	p.routes = routes
	p.outed = outed
	p.articleRoutes = articles
}

// lookupSymbol resolves id against p first, since p may be a writable
// copy not yet installed in r.
func (r *Registry) lookupSymbol(p *Package, id address.SymbolID) *Symbol {
	if id.Package == p.Index {
		if int(id.Offset) >= len(p.symbols) {
			return nil
		}
		return &p.symbols[id.Offset]
	}
	if int(id.Package) >= len(r.packages) {
		return nil
	}
	return r.packages[id.Package].Symbol(id)
}

// Candidates returns every composite filed under route, in any version.
func (p *Package) Candidates(route address.Route) []address.Composite {
	return p.routes[route]
}

// OutedCandidates returns every composite filed under the legacy spelling
// route.
func (p *Package) OutedCandidates(route address.Route) []address.Composite {
	return p.outed[route]
}

// ArticleAt returns the article filed under route.
func (p *Package) ArticleAt(route address.Route) (address.ArticleID, bool) {
	id, ok := p.articleRoutes[route]
	return id, ok
}

// RouteCount returns the number of primary routes.
func (p *Package) RouteCount() int {
	return len(p.routes)
}
