package ecosystem

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/resolver"
)

// renderPage renders the page of a resolved target as an HTML fragment.
func (e *Ecosystem) renderPage(m minter, res resolver.Resolution) string {
	var b strings.Builder
	switch t := res.Target.(type) {
	case resolver.PackageTarget:
		e.renderPackage(&b, m, t.Package, res.Lens)
	case resolver.ModuleTarget:
		e.renderModule(&b, m, t.Module, res.Lens)
	case resolver.ArticleTarget:
		e.renderArticle(&b, t.Article, res.Lens)
	case resolver.SymbolTarget:
		e.renderSymbol(&b, t.Composite, res.Lens)
	}
	return b.String()
}

func (e *Ecosystem) renderPackage(b *strings.Builder, m minter, index address.PackageIndex, lens registry.Lens) {
	pkg := e.registry.Package(index)
	v := lens[index]
	release, _ := pkg.Releases.At(v)
	fmt.Fprintf(b, "<h1>%s %s</h1>\n", html.EscapeString(pkg.Name), html.EscapeString(release.Tag.String()))

	var items []listItem
	for _, mod := range pkg.Modules() {
		if pkg.ModuleExtant(mod.ID, v) {
			items = append(items, m.item(resolver.ModuleTarget{Module: mod.ID}, mod.Name, lens))
		}
	}
	writeList(b, items)
}

func (e *Ecosystem) renderModule(b *strings.Builder, m minter, id address.ModuleID, lens registry.Lens) {
	pkg := e.registry.Package(id.Package)
	v := lens[id.Package]
	fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(pkg.Module(id).Name))
	if body, ok := pkg.ModuleBody(id, v); ok {
		b.WriteString(body)
	}

	// Top-level declarations rooted in the module, from every package in
	// the lens.
	var items []listItem
	for _, index := range lens.Packages() {
		other := e.registry.Package(index)
		for _, sym := range other.Symbols() {
			if sym.Namespace != id || len(sym.Path) != 1 {
				continue
			}
			c := address.Natural(sym.ID, sym.Culture)
			if e.registry.Visible(c, lens) {
				items = append(items, m.item(resolver.SymbolTarget{Composite: c}, sym.Name()+sym.Suffix, lens))
			}
		}
	}
	for _, a := range pkg.Articles() {
		if a.Culture == id && pkg.ArticleExtant(a.ID, v) {
			items = append(items, m.item(resolver.ArticleTarget{Article: a.ID}, a.Title, lens))
		}
	}
	writeList(b, items)
}

func (e *Ecosystem) renderArticle(b *strings.Builder, id address.ArticleID, lens registry.Lens) {
	pkg := e.registry.Package(id.Package)
	a := pkg.Article(id)
	title := a.Title
	if title == "" {
		title = a.Name
	}
	fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(title))
	if body, ok := pkg.ArticleBody(id, lens[id.Package]); ok {
		b.WriteString(body)
	}
}

func (e *Ecosystem) renderSymbol(b *strings.Builder, c address.Composite, lens registry.Lens) {
	pkg := e.registry.Package(c.Base.Package)
	v := lens[c.Base.Package]

	fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(e.registry.Describe(c)))
	if decl, ok := pkg.Declaration(c.Base, v); ok {
		fmt.Fprintf(b, "<pre><code>%s</code></pre>\n", html.EscapeString(decl))
	}
	if avail, ok := pkg.Availability(c.Base, v); ok && avail != "" {
		fmt.Fprintf(b, "<p class=\"availability\">%s</p>\n", html.EscapeString(avail))
	}
	if body, ok := e.registry.Body(c.Base, lens); ok {
		b.WriteString(body)
	}
	if !c.IsNatural() {
		host := e.registry.Symbol(c.Diacritic.Host)
		fmt.Fprintf(b, "<p class=\"host\">Available on %s through %s.</p>\n",
			html.EscapeString(host.Name()), html.EscapeString(e.registry.Module(c.Diacritic.Culture).Name))
	}
}

// renderAmbiguous lists every candidate of a shared route.
func (e *Ecosystem) renderAmbiguous(m minter, res resolver.Resolution) string {
	var b strings.Builder
	b.WriteString("<h1>Multiple declarations</h1>\n")
	items := make([]listItem, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		items = append(items, m.item(resolver.SymbolTarget{Composite: c}, e.registry.Describe(c), res.Lens))
	}
	writeList(&b, items)
	return b.String()
}

type listItem struct {
	href  string
	label string
}

func (m minter) item(target resolver.Target, label string, lens registry.Lens) listItem {
	loc, _ := m.locate(target, lens)
	return listItem{href: loc.Exact, label: label}
}

func writeList(b *strings.Builder, items []listItem) {
	if len(items) == 0 {
		return
	}
	slices.SortStableFunc(items, func(x, y listItem) int {
		return strings.Compare(x.label, y.label)
	})
	b.WriteString("<ul>\n")
	for _, it := range items {
		fmt.Fprintf(b, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(it.href), html.EscapeString(it.label))
	}
	b.WriteString("</ul>\n")
}
