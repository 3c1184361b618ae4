package ecosystem

import (
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/ir"
	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/resolver"
)

// Artifacts are the derived per-package caches: a sitemap of canonical
// URIs and a search index.
type Artifacts struct {
	Sitemap string
	Search  []byte
}

// buildArtifacts recomputes every package's artifacts from reg. The whole
// set is rebuilt on each commit because a release can change the
// canonical URIs of its dependents.
func buildArtifacts(ctx context.Context, reg *registry.Registry, prefixes Prefixes) (map[address.PackageIndex]Artifacts, error) {
	var (
		mu  sync.Mutex
		out = make(map[address.PackageIndex]Artifacts, reg.Len())
	)
	m := minter{reg: reg, prefixes: prefixes}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, pkg := range reg.Packages() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := m.artifacts(pkg)
			if err != nil {
				return err
			}
			mu.Lock()
			out[pkg.Index] = a
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// searchEntry is one symbol of the search index.
type searchEntry struct {
	module     string
	keywords   []string
	descriptor string
	uri        string
}

func (m minter) artifacts(pkg *registry.Package) (Artifacts, error) {
	latest, ok := pkg.Releases.Latest()
	if !ok {
		return Artifacts{}, nil
	}
	lens := m.reg.LensAt(pkg, latest.Version)
	v := latest.Version

	var (
		uris    []string
		entries []searchEntry
	)
	add := func(target resolver.Target) (string, bool) {
		loc, ok := m.locate(target, lens)
		if ok {
			uris = append(uris, loc.Canonical)
		}
		return loc.Canonical, ok
	}

	for _, mod := range pkg.Modules() {
		if pkg.ModuleExtant(mod.ID, v) {
			add(resolver.ModuleTarget{Module: mod.ID})
		}
	}
	for _, sym := range pkg.Symbols() {
		c := address.Natural(sym.ID, sym.Culture)
		if !m.reg.Visible(c, lens) {
			continue
		}
		if uri, ok := add(resolver.SymbolTarget{Composite: c}); ok {
			entries = append(entries, m.searchEntry(c, uri))
		}
	}
	for _, f := range pkg.Features() {
		if !m.reg.Visible(f.Composite, lens) {
			continue
		}
		if uri, ok := add(resolver.SymbolTarget{Composite: f.Composite}); ok {
			entries = append(entries, m.searchEntry(f.Composite, uri))
		}
	}
	for _, a := range pkg.Articles() {
		if pkg.ArticleExtant(a.ID, v) {
			add(resolver.ArticleTarget{Article: a.ID})
		}
	}

	slices.Sort(uris)
	uris = slices.Compact(uris)
	var sitemap strings.Builder
	for _, uri := range uris {
		sitemap.WriteString(uri)
		sitemap.WriteByte('\n')
	}

	search, err := searchIndex(entries)
	if err != nil {
		return Artifacts{}, err
	}
	return Artifacts{Sitemap: sitemap.String(), Search: search}, nil
}

func (m minter) searchEntry(c address.Composite, uri string) searchEntry {
	base := m.reg.Symbol(c.Base)
	path := base.Path
	if !c.IsNatural() {
		host := m.reg.Symbol(c.Diacritic.Host)
		path = append(slices.Clone(host.Path), base.Path[len(base.Path)-1])
	}
	keywords := make([]string, 0, len(path))
	for _, component := range path {
		keywords = append(keywords, strings.ToLower(component))
	}
	slices.Sort(keywords)
	return searchEntry{
		module:     m.reg.Module(c.Diacritic.Culture).Name,
		keywords:   slices.Compact(keywords),
		descriptor: m.reg.Describe(c),
		uri:        uri,
	}
}

// searchIndex groups entries by culture module and serializes them as
// canonical JSON, modules and symbols in name order.
func searchIndex(entries []searchEntry) ([]byte, error) {
	slices.SortFunc(entries, func(a, b searchEntry) int {
		if c := strings.Compare(a.module, b.module); c != 0 {
			return c
		}
		if c := strings.Compare(a.descriptor, b.descriptor); c != 0 {
			return c
		}
		return strings.Compare(a.uri, b.uri)
	})

	modules := ir.Array{}
	var (
		current string
		symbols ir.Array
	)
	flush := func() {
		if symbols != nil {
			modules = append(modules, ir.Object{"module": ir.String(current), "symbols": symbols})
		}
	}
	for _, e := range entries {
		if symbols == nil || e.module != current {
			flush()
			current, symbols = e.module, ir.Array{}
		}
		symbols = append(symbols, ir.Object{
			"keywords":   ir.Strings(e.keywords),
			"descriptor": ir.String(e.descriptor),
			"uri":        ir.String(e.uri),
		})
	}
	flush()
	return ir.MarshalCanonical(modules)
}
