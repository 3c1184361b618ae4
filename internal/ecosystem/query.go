package ecosystem

import (
	"net/url"
	"strings"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/resolver"
)

// ResponseKind classifies a query answer.
type ResponseKind uint8

const (
	Page ResponseKind = iota
	TemporaryRedirect
	PermanentRedirect
	Sitemap
	Search
)

func (k ResponseKind) String() string {
	switch k {
	case Page:
		return "page"
	case TemporaryRedirect:
		return "temporary_redirect"
	case PermanentRedirect:
		return "permanent_redirect"
	case Sitemap:
		return "sitemap"
	case Search:
		return "search"
	default:
		return "unknown"
	}
}

// Response answers a query. Pages and redirects carry both the exact
// and the canonical URI of the target.
type Response struct {
	Kind        ResponseKind
	Exact       string
	Canonical   string
	Body        string
	ContentType string
}

// Location returns the redirect target: the canonical URI for permanent
// redirects, the exact URI for temporary ones.
func (r Response) Location() string {
	switch r.Kind {
	case PermanentRedirect:
		return r.Canonical
	case TemporaryRedirect:
		return r.Exact
	default:
		return ""
	}
}

const (
	contentHTML = "text/html; charset=utf-8"
	contentText = "text/plain; charset=utf-8"
	contentJSON = "application/json"
)

// Resolve answers a request path. Query parameters: id and host select a
// candidate of a shared route by USR, lens=pkg@pattern shows the page as
// seen by a consumer package's release. Anything that does not resolve,
// including an unknown version pattern, is reported as not found.
func (e *Ecosystem) Resolve(path string, query url.Values) (Response, bool) {
	resp, ok := e.resolve(path, query)
	if !ok {
		queriesTotal.WithLabelValues("not_found").Inc()
		return Response{}, false
	}
	queriesTotal.WithLabelValues(resp.Kind.String()).Inc()
	return resp, true
}

func (e *Ecosystem) resolve(path string, query url.Values) (Response, bool) {
	segments, ok := splitPath(path)
	if !ok || len(segments) < 2 {
		return Response{}, false
	}
	switch segments[0] {
	case e.prefixes.Sitemaps:
		name, ok := strings.CutSuffix(segments[1], ".txt")
		if !ok || len(segments) != 2 {
			return Response{}, false
		}
		a, ok := e.Artifacts(name)
		if !ok {
			return Response{}, false
		}
		return Response{Kind: Sitemap, Body: a.Sitemap, ContentType: contentText}, true
	case e.prefixes.Search:
		if len(segments) != 3 || segments[2] != "search.json" {
			return Response{}, false
		}
		a, ok := e.Artifacts(segments[1])
		if !ok {
			return Response{}, false
		}
		return Response{Kind: Search, Body: string(a.Search), ContentType: contentJSON}, true
	case e.prefixes.Symbols:
		return e.resolvePage(segments, query, false)
	case e.prefixes.Articles:
		return e.resolvePage(segments, query, true)
	default:
		return Response{}, false
	}
}

// request is a parsed page path.
type request struct {
	pkg     *registry.Package
	release registry.Release
	lens    registry.Lens

	// masked is set when the path named an imprecise version pattern.
	masked bool

	// consumer is set when a lens override chose the lens.
	consumer bool

	path []string
}

func (e *Ecosystem) resolvePage(segments []string, query url.Values, article bool) (Response, bool) {
	req, ok := e.parseRequest(segments[1:], query)
	if !ok {
		return Response{}, false
	}

	var res resolver.Resolution
	if article {
		res, ok = e.locateArticle(req)
		if !ok {
			return Response{}, false
		}
	} else {
		d, ok := e.disambiguator(query)
		if !ok {
			return Response{}, false
		}
		path, suffix := req.path, ""
		if n := len(path); n > 1 {
			path = append([]string(nil), path...)
			path[n-1], suffix = cutSuffix(path[n-1])
		}
		res = resolver.Locate(e.registry, req.lens, req.pkg, path, suffix, d)
	}

	m := minter{reg: e.registry, prefixes: e.prefixes}
	requested := joinSegments(segments)
	switch res.Kind {
	case resolver.One:
	case resolver.Ambiguous:
		return Response{
			Kind:        Page,
			Exact:       requested,
			Canonical:   requested,
			Body:        e.renderAmbiguous(m, res),
			ContentType: contentHTML,
		}, true
	default:
		return Response{}, false
	}

	loc, ok := m.locate(res.Target, res.Lens)
	if !ok {
		return Response{}, false
	}
	resp := Response{Exact: loc.Exact, Canonical: loc.Canonical}
	switch {
	case res.Redirected:
		resp.Kind = PermanentRedirect
	case req.consumer:
		resp.Kind = Page
	case req.masked, requested != pathOf(loc.Exact) && requested != pathOf(loc.Canonical):
		resp.Kind = TemporaryRedirect
	default:
		resp.Kind = Page
	}
	if resp.Kind == Page {
		resp.Body = e.renderPage(m, res)
		resp.ContentType = contentHTML
	}
	return resp, true
}

// parseRequest reads "<pkg>[/<pattern>]/<path...>" and picks the lens.
func (e *Ecosystem) parseRequest(segments []string, query url.Values) (request, bool) {
	pkg, ok := e.registry.PackageNamed(segments[0])
	if !ok {
		return request{}, false
	}
	req := request{pkg: pkg, path: segments[1:]}

	if len(req.path) > 0 && isPattern(req.path[0]) {
		mask, err := registry.ParseMask(req.path[0])
		if err != nil {
			return request{}, false
		}
		release, ok := pkg.Releases.Snap(mask)
		if !ok {
			return request{}, false
		}
		req.release = release
		req.masked = !mask.Precise(release.Tag)
		req.path = req.path[1:]
	} else {
		release, ok := pkg.Releases.Latest()
		if !ok {
			return request{}, false
		}
		req.release = release
	}
	req.lens = e.registry.LensAt(pkg, req.release.Version)

	if override := query.Get("lens"); override != "" {
		lens, ok := e.consumerLens(pkg, override)
		if !ok {
			return request{}, false
		}
		req.lens = lens
		req.consumer = true
	}
	return req, true
}

// consumerLens is the lens of the consumer release named by
// "pkg@pattern", provided it pins viewed.
func (e *Ecosystem) consumerLens(viewed *registry.Package, override string) (registry.Lens, bool) {
	name, pattern, _ := strings.Cut(override, "@")
	consumer, ok := e.registry.PackageNamed(name)
	if !ok {
		return nil, false
	}
	var release registry.Release
	if pattern == "" {
		release, ok = consumer.Releases.Latest()
	} else {
		mask, err := registry.ParseMask(pattern)
		if err != nil {
			return nil, false
		}
		release, ok = consumer.Releases.Snap(mask)
	}
	if !ok {
		return nil, false
	}
	lens := e.registry.LensAt(consumer, release.Version)
	if _, ok := lens[viewed.Index]; !ok {
		return nil, false
	}
	return lens, true
}

func (e *Ecosystem) locateArticle(req request) (resolver.Resolution, bool) {
	if len(req.path) != 2 {
		return resolver.Resolution{}, false
	}
	v := req.lens[req.pkg.Index]
	module, ok := req.pkg.ModuleNamed(req.path[0])
	if !ok || !req.pkg.ModuleExtant(module, v) {
		return resolver.Resolution{}, false
	}
	id, ok := req.pkg.ArticleNamed(module, req.path[1])
	if !ok || !req.pkg.ArticleExtant(id, v) {
		return resolver.Resolution{}, false
	}
	return resolver.Resolution{
		Selection: resolver.Selection{Kind: resolver.One, Target: resolver.ArticleTarget{Article: id}},
		Package:   req.pkg.Index,
		Version:   v,
		Lens:      req.lens,
	}, true
}

// disambiguator reads the id and host parameters. An unknown USR matches
// nothing.
func (e *Ecosystem) disambiguator(query url.Values) (resolver.Disambiguator, bool) {
	var d resolver.Disambiguator
	for key, field := range map[string]**address.SymbolID{"id": &d.Base, "host": &d.Host} {
		usr := query.Get(key)
		if usr == "" {
			continue
		}
		id, ok := e.registry.SymbolByUSR(usr)
		if !ok {
			return d, false
		}
		*field = &id
	}
	return d, true
}

func isPattern(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// cutSuffix separates "name(suffix)" into its parts.
func cutSuffix(leaf string) (string, string) {
	if open := strings.IndexByte(leaf, '('); open > 0 {
		return leaf[:open], leaf[open:]
	}
	return leaf, ""
}

func joinSegments(segments []string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(escapeSegment(s))
	}
	return b.String()
}

// pathOf strips the query from a minted URI.
func pathOf(uri string) string {
	path, _, _ := strings.Cut(uri, "?")
	return path
}
