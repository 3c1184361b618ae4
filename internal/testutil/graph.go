package testutil

import (
	"strings"

	"github.com/roach88/docket/internal/ir"
)

// GraphBuilder assembles package graphs for tests.
//
// Example:
//
//	g := testutil.NewGraph("kit").
//		Depends("base").
//		Module("Kit", "Base").
//		Symbol("Kit", "s:Widget", "struct", "Widget", testutil.Doc("A widget.")).
//		Build()
type GraphBuilder struct {
	g ir.PackageGraph
}

// NewGraph starts a graph for package pkg.
func NewGraph(pkg string) *GraphBuilder {
	return &GraphBuilder{g: ir.PackageGraph{Package: pkg}}
}

// Depends adds dependency packages.
func (b *GraphBuilder) Depends(pkgs ...string) *GraphBuilder {
	for _, p := range pkgs {
		b.g.Dependencies = append(b.g.Dependencies, ir.Dependency{Package: p})
	}
	return b
}

// Module adds a module with its imports.
func (b *GraphBuilder) Module(name string, imports ...string) *GraphBuilder {
	b.g.Modules = append(b.g.Modules, ir.ModuleFacts{Name: name, Imports: imports})
	return b
}

// ModuleDoc sets the doc comment of an already added module.
func (b *GraphBuilder) ModuleDoc(name, doc string) *GraphBuilder {
	for i := range b.g.Modules {
		if b.g.Modules[i].Name == name {
			b.g.Modules[i].Doc = doc
		}
	}
	return b
}

// SymbolOption adjusts a symbol's facts.
type SymbolOption func(*ir.SymbolFacts)

// Doc sets the doc comment.
func Doc(text string) SymbolOption {
	return func(s *ir.SymbolFacts) { s.Doc = text }
}

// Scope roots the symbol's path in another module.
func Scope(module string) SymbolOption {
	return func(s *ir.SymbolFacts) { s.Scope = module }
}

// Declaration overrides the default declaration text.
func Declaration(text string) SymbolOption {
	return func(s *ir.SymbolFacts) { s.Declaration = text }
}

// Availability sets the availability text.
func Availability(text string) SymbolOption {
	return func(s *ir.SymbolFacts) { s.Availability = text }
}

// Rel adds a relationship to the symbol with USR target.
func Rel(kind, target string) SymbolOption {
	return func(s *ir.SymbolFacts) {
		s.Relationships = append(s.Relationships, ir.Relationship{Kind: kind, Target: target})
	}
}

// Symbol adds a declaration. name is a dotted path whose last component
// may carry a suffix, e.g. "Widget.resize(to:)". The declaration defaults
// to "<kind> <name>".
func (b *GraphBuilder) Symbol(module, usr, kind, name string, opts ...SymbolOption) *GraphBuilder {
	path := strings.Split(name, ".")
	last := path[len(path)-1]
	var suffix string
	if open := strings.IndexByte(last, '('); open > 0 {
		path[len(path)-1], suffix = last[:open], last[open:]
	}
	s := ir.SymbolFacts{
		USR:         usr,
		Module:      module,
		Path:        path,
		Suffix:      suffix,
		Kind:        kind,
		Declaration: kind + " " + name,
	}
	for _, opt := range opts {
		opt(&s)
	}
	b.g.Symbols = append(b.g.Symbols, s)
	return b
}

// Feature makes member reachable through host, contributed by module.
func (b *GraphBuilder) Feature(module, host, member string) *GraphBuilder {
	b.g.Features = append(b.g.Features, ir.FeatureFacts{Host: host, Member: member, Module: module})
	return b
}

// Article adds a free-form page.
func (b *GraphBuilder) Article(module, name, title, body string) *GraphBuilder {
	b.g.Articles = append(b.g.Articles, ir.ArticleFacts{Module: module, Name: name, Title: title, Body: body})
	return b
}

// Build returns the assembled graph.
func (b *GraphBuilder) Build() ir.PackageGraph {
	return b.g
}
