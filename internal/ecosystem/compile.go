package ecosystem

import (
	"context"
	"html"
	"strings"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/resolver"
)

// DiagnosticKind classifies a reference that could not be linked.
type DiagnosticKind string

const (
	DiagnosticNoMatch   DiagnosticKind = "no_match"
	DiagnosticAmbiguous DiagnosticKind = "ambiguous"
)

// Diagnostic records one unlinkable reference in compiled documentation.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`

	// Subject names the symbol, module or article whose text holds the
	// reference.
	Subject string `json:"subject"`

	// Text is the reference as written.
	Text string `json:"text"`

	// Candidates describes every match of an ambiguous reference.
	Candidates []string `json:"candidates,omitempty"`
}

func (in *ingestion) compile(context.Context) error {
	g := &in.req.graph
	c := &compiler{in: in, mint: minter{reg: in.working, prefixes: in.base.prefixes}}

	for _, m := range g.Modules {
		id := in.modules[m.Name]
		if m.Doc == "" {
			// Retire a body compiled for an earlier release.
			if _, ok := in.pkg.ModuleBody(id, in.v); ok {
				in.pkg.SetModuleBody(id, "")
			}
			continue
		}
		body := c.render(m.Doc, resolver.Scope{Namespace: id}, m.Name)
		in.pkg.SetModuleBody(id, body)
	}

	for _, id := range in.symbols {
		doc, ok := in.pkg.Documentation(id, in.v)
		if !ok || doc.Inherited || doc.Text == "" {
			continue
		}
		sym := in.pkg.Symbol(id)
		scope := resolver.Scope{
			Namespace: sym.Culture,
			Nest:      &resolver.Nest{Namespace: sym.Namespace, Path: sym.Path},
		}
		subject := in.working.Describe(address.Natural(id, sym.Culture))
		in.pkg.SetSymbolBody(id, c.render(doc.Text, scope, subject))
	}

	for _, id := range in.articles {
		a := in.pkg.Article(id)
		source, _ := in.pkg.ArticleSource(id, in.v)
		subject := in.working.Module(a.Culture).Name + "/" + a.Name
		in.pkg.SetArticleBody(id, c.render(source, resolver.Scope{Namespace: a.Culture}, subject))
	}
	return nil
}

// compiler renders doc comments to HTML, linking ``references``.
type compiler struct {
	in   *ingestion
	mint minter
}

// render emits one <p> per blank-line separated paragraph.
func (c *compiler) render(text string, scope resolver.Scope, subject string) string {
	r := resolver.New(c.in.working, c.in.pkg.Index, c.in.lens, scope)
	var b strings.Builder
	for _, para := range paragraphs(text) {
		b.WriteString("<p>")
		c.inline(&b, para, r, subject)
		b.WriteString("</p>\n")
	}
	return b.String()
}

func (c *compiler) inline(b *strings.Builder, s string, r *resolver.Resolver, subject string) {
	for {
		open := strings.Index(s, "``")
		if open < 0 {
			break
		}
		length := strings.Index(s[open+2:], "``")
		if length < 0 {
			break
		}
		b.WriteString(html.EscapeString(s[:open]))
		c.link(b, s[open+2:open+2+length], r, subject)
		s = s[open+2+length+2:]
	}
	b.WriteString(html.EscapeString(s))
}

func (c *compiler) link(b *strings.Builder, ref string, r *resolver.Resolver, subject string) {
	code := "<code>" + html.EscapeString(ref) + "</code>"

	res, err := r.ResolveText(ref, resolver.Disambiguator{})
	if err == nil && res.Kind == resolver.One {
		if loc, ok := c.mint.locate(res.Target, res.Lens); ok {
			b.WriteString(`<a href="` + html.EscapeString(loc.Exact) + `">` + code + "</a>")
			return
		}
	}

	d := Diagnostic{Kind: DiagnosticNoMatch, Subject: subject, Text: ref}
	if err == nil && res.Kind == resolver.Ambiguous {
		d.Kind = DiagnosticAmbiguous
		for _, candidate := range res.Candidates {
			d.Candidates = append(d.Candidates, c.in.working.Describe(candidate))
		}
	}
	c.in.report.Diagnostics = append(c.in.report.Diagnostics, d)
	c.in.s.logger.Debug("unlinked reference", "subject", subject, "reference", ref, "kind", d.Kind)
	b.WriteString(code)
}

// paragraphs splits text on blank lines, trimming each paragraph.
func paragraphs(text string) []string {
	var (
		out     []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return out
}
