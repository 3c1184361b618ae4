package ecosystem

import (
	"net/url"
	"strings"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/resolver"
)

// Location is the address of a page: the exact URI pins the owning
// package's release, the canonical URI omits it whenever the target still
// exists in the package's latest release.
type Location struct {
	Exact     string
	Canonical string
}

// minter turns resolved targets into page URIs.
type minter struct {
	reg      *registry.Registry
	prefixes Prefixes
}

// page is a target's place in the URI space before a version is chosen.
type page struct {
	prefix string
	owner  *registry.Package
	path   []string
	suffix string

	// composite is set for symbol pages, which may need disambiguating.
	composite *address.Composite
}

func (m minter) page(target resolver.Target) (page, bool) {
	switch t := target.(type) {
	case resolver.PackageTarget:
		return page{prefix: m.prefixes.Symbols, owner: m.reg.Package(t.Package)}, true
	case resolver.ModuleTarget:
		return page{
			prefix: m.prefixes.Symbols,
			owner:  m.reg.Package(t.Module.Package),
			path:   []string{m.reg.Module(t.Module).Name},
		}, true
	case resolver.ArticleTarget:
		owner := m.reg.Package(t.Article.Package)
		a := owner.Article(t.Article)
		return page{
			prefix: m.prefixes.Articles,
			owner:  owner,
			path:   []string{m.reg.Module(a.Culture).Name, a.Name},
		}, true
	case resolver.SymbolTarget:
		c := t.Composite
		base := m.reg.Symbol(c.Base)
		p := page{prefix: m.prefixes.Symbols, owner: m.reg.Package(c.Owner()), suffix: base.Suffix, composite: &c}
		if c.IsNatural() {
			p.path = append([]string{m.reg.Module(base.Namespace).Name}, base.Path...)
		} else {
			host := m.reg.Symbol(c.Diacritic.Host)
			p.path = append([]string{m.reg.Module(host.Namespace).Name}, host.Path...)
			p.path = append(p.path, base.Path[len(base.Path)-1])
		}
		return p, true
	default:
		return page{}, false
	}
}

// locate mints the location of target as seen through lens. It fails when
// lens does not pin the target's owning package.
func (m minter) locate(target resolver.Target, lens registry.Lens) (Location, bool) {
	p, ok := m.page(target)
	if !ok {
		return Location{}, false
	}
	v, ok := lens[p.owner.Index]
	if !ok {
		return Location{}, false
	}
	release, ok := p.owner.Releases.At(v)
	if !ok {
		return Location{}, false
	}

	exact := m.render(p, release.Tag.String(), lens)
	loc := Location{Exact: exact, Canonical: exact}
	if latest, ok := p.owner.Releases.Latest(); ok {
		latestLens := m.reg.LensAt(p.owner, latest.Version)
		if m.extant(target, latestLens) {
			loc.Canonical = m.render(p, "", latestLens)
		}
	}
	return loc, true
}

func (m minter) extant(target resolver.Target, lens registry.Lens) bool {
	switch t := target.(type) {
	case resolver.PackageTarget:
		return true
	case resolver.ModuleTarget:
		v, ok := lens[t.Module.Package]
		return ok && m.reg.Package(t.Module.Package).ModuleExtant(t.Module, v)
	case resolver.ArticleTarget:
		v, ok := lens[t.Article.Package]
		return ok && m.reg.Package(t.Article.Package).ArticleExtant(t.Article, v)
	case resolver.SymbolTarget:
		return m.reg.Visible(t.Composite, lens)
	default:
		return false
	}
}

// render writes p's URI with the given version segment (empty for the
// version-less form). Symbol pages whose route is shared by several
// candidates in lens carry id and host parameters.
func (m minter) render(p page, tag string, lens registry.Lens) string {
	segments := []string{"", p.prefix, p.owner.Name}
	if tag != "" {
		segments = append(segments, tag)
	}
	for i, c := range p.path {
		if i == len(p.path)-1 {
			c += p.suffix
		}
		segments = append(segments, escapeSegment(c))
	}
	uri := strings.Join(segments, "/")

	if p.composite != nil {
		res := resolver.Locate(m.reg, lens, p.owner, p.path, p.suffix, resolver.Disambiguator{})
		if res.Kind == resolver.Ambiguous {
			q := url.Values{}
			q.Set("id", m.reg.Symbol(p.composite.Base).USR)
			if !p.composite.IsNatural() {
				q.Set("host", m.reg.Symbol(p.composite.Diacritic.Host).USR)
			}
			uri += "?" + q.Encode()
		}
	}
	return uri
}

var segmentEscaper = strings.NewReplacer(
	"%", "%25",
	"/", "%2F",
	"?", "%3F",
	"#", "%23",
	" ", "%20",
)

// escapeSegment escapes the characters that would change how a path
// segment parses. Everything else, including operator characters and
// parentheses, is left readable.
func escapeSegment(s string) string {
	return segmentEscaper.Replace(s)
}

// splitPath decodes a request path into its segments.
func splitPath(path string) ([]string, bool) {
	raw := strings.Split(strings.Trim(path, "/"), "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		decoded, err := url.PathUnescape(s)
		if err != nil || decoded == "" {
			return nil, false
		}
		segments = append(segments, decoded)
	}
	return segments, true
}
