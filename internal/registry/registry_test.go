package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
)

// release registers one release of p at v with the given symbol paths.
func release(t *testing.T, r *Registry, p *Package, v history.Version, tag string, pins Pins, paths ...[]string) map[string]address.SymbolID {
	t.Helper()
	require.NoError(t, p.RecordRelease(Release{Version: v, Tag: MustParseTag(tag), Pins: pins}))
	p.Begin(v)
	m := p.RegisterModule("Core")
	ids := make(map[string]address.SymbolID)
	for _, path := range paths {
		usr := "s:" + path[len(path)-1]
		id, _ := r.RegisterSymbol(p, SymbolDecl{
			USR: usr, Culture: m, Namespace: m, Path: path, Kind: "func",
			Declaration: "func " + path[len(path)-1],
		})
		ids[usr] = id
	}
	p.Seal()
	r.RebuildRoutes(p)
	return ids
}

func TestPackage_RegistrationIdempotent(t *testing.T) {
	r := New(address.NewStems())
	p, fresh := r.RegisterPackage("swift-nio")
	require.True(t, fresh)
	again, fresh := r.RegisterPackage("swift-nio")
	assert.False(t, fresh)
	assert.Same(t, p, again)

	p.Begin(1)
	a := p.RegisterModule("NIOCore")
	b := p.RegisterModule("NIOCore")
	assert.Equal(t, a, b)

	d := SymbolDecl{USR: "s:x", Culture: a, Namespace: a, Path: []string{"x"}, Kind: "var"}
	first, isNew := r.RegisterSymbol(p, d)
	assert.True(t, isNew)
	second, isNew := r.RegisterSymbol(p, d)
	assert.False(t, isNew)
	assert.Equal(t, first, second)

	art1 := p.RegisterArticle(a, "intro", "Intro", "hello")
	art2 := p.RegisterArticle(a, "intro", "Intro", "hello")
	assert.Equal(t, art1, art2)
	p.Seal()

	assert.Len(t, p.Modules(), 1)
	assert.Len(t, p.Symbols(), 1)
	assert.Len(t, p.Articles(), 1)
}

func TestPackage_RetiresAbsentEntities(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")

	ids := release(t, r, p, 1, "1.0.0", nil, []string{"bar"}, []string{"baz"})
	release(t, r, p, 3, "1.1.0", nil, []string{"bar"})

	bar, baz := ids["s:bar"], ids["s:baz"]
	assert.True(t, p.SymbolExtant(bar, 3))
	assert.True(t, p.SymbolExtant(baz, 2))
	assert.False(t, p.SymbolExtant(baz, 3))

	l, ok := p.SymbolAt(baz, 4)
	require.True(t, ok)
	assert.Equal(t, history.Extinct, l.State)
	assert.Equal(t, history.Version(3), l.Bound)

	l, ok = p.SymbolAt(bar, 0)
	require.True(t, ok)
	assert.Equal(t, history.Unavailable, l.State)
}

// bar declared at 1, redeclared at 3, removed at 5.
func TestPackage_DeclarationHistory(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")
	m := address.ModuleID{Package: p.Index}

	declare := func(v history.Version, tag, decl string) {
		require.NoError(t, p.RecordRelease(Release{Version: v, Tag: MustParseTag(tag)}))
		p.Begin(v)
		p.RegisterModule("Core")
		if decl != "" {
			r.RegisterSymbol(p, SymbolDecl{USR: "s:bar", Culture: m, Namespace: m, Path: []string{"bar"}, Kind: "func", Declaration: decl})
		}
		p.Seal()
	}
	declare(1, "1.0.0", "func bar()")
	declare(3, "2.0.0", "func bar() async")
	declare(5, "3.0.0", "")

	id, ok := p.SymbolByUSR("s:bar")
	require.True(t, ok)

	l, _ := p.DeclarationHistory(id, 0)
	assert.Equal(t, history.Unavailable, l.State)
	assert.Equal(t, history.Version(1), l.Bound)

	decl, ok := p.Declaration(id, 2)
	assert.True(t, ok)
	assert.Equal(t, "func bar()", decl)

	decl, ok = p.Declaration(id, 4)
	assert.True(t, ok)
	assert.Equal(t, "func bar() async", decl)

	l, _ = p.DeclarationHistory(id, 6)
	assert.Equal(t, history.Extinct, l.State)
	assert.Equal(t, history.Version(5), l.Bound)
}

func TestPackage_RespellingAppliesToEveryVersion(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")
	m := address.ModuleID{Package: p.Index}

	declare := func(v history.Version, tag, name, kind string) {
		require.NoError(t, p.RecordRelease(Release{Version: v, Tag: MustParseTag(tag)}))
		p.Begin(v)
		p.RegisterModule("Core")
		r.RegisterSymbol(p, SymbolDecl{USR: "s:bar", Culture: m, Namespace: m, Path: []string{name}, Kind: kind, Declaration: kind + " " + name})
		p.Seal()
	}
	declare(1, "1.0.0", "bar", "func")
	declare(2, "2.0.0", "renamed", "var")

	id, ok := p.SymbolByUSR("s:bar")
	require.True(t, ok)
	assert.Equal(t, []string{"renamed"}, p.Symbol(id).Path)
	assert.Equal(t, "var", p.Symbol(id).Kind)

	decl, ok := p.Declaration(id, 1)
	require.True(t, ok)
	assert.Equal(t, "func bar", decl, "declarations stay keyframed")
}

func TestPackage_RecordReleaseErrors(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")
	require.NoError(t, p.RecordRelease(Release{Version: 2, Tag: MustParseTag("1.0.0")}))

	err := p.RecordRelease(Release{Version: 3, Tag: MustParseTag("1.0")})
	assert.ErrorIs(t, err, ErrDuplicateRelease)

	err = p.RecordRelease(Release{Version: 2, Tag: MustParseTag("1.1.0")})
	assert.ErrorIs(t, err, ErrStaleVersion)
}

func TestPackage_Imports(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")
	p.Begin(1)
	a := p.RegisterModule("A")
	b := p.RegisterModule("B")
	c := p.RegisterModule("C")
	p.SetImports(a, []address.ModuleID{c, b, c})
	p.Seal()

	assert.Equal(t, []address.ModuleID{b, c}, p.Imports(a, 1))
	assert.Nil(t, p.Imports(b, 1))
	assert.Nil(t, p.Imports(a, 0))
}

func TestRegistry_CloneIsolation(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")
	release(t, r, p, 1, "1.0.0", nil, []string{"bar"})

	working := r.Clone()
	wp := working.Writable(p.Index)
	release(t, working, wp, 2, "1.1.0", nil, []string{"bar"}, []string{"qux"})
	working.RegisterPackage("other")

	assert.Len(t, r.Package(p.Index).Symbols(), 1)
	assert.Len(t, r.Package(p.Index).Releases, 1)
	assert.Equal(t, 1, r.Len())
	_, ok := r.SymbolByUSR("s:qux")
	assert.False(t, ok)

	assert.Len(t, working.Package(p.Index).Symbols(), 2)
	_, ok = working.SymbolByUSR("s:qux")
	assert.True(t, ok)
}

func TestRegistry_Documentation_FollowsOrigin(t *testing.T) {
	r := New(address.NewStems())
	p, _ := r.RegisterPackage("pkg")
	release(t, r, p, 1, "1.0.0", nil)

	p.Begin(2)
	m := p.RegisterModule("Core")
	proto, _ := r.RegisterSymbol(p, SymbolDecl{USR: "s:Proto.run", Culture: m, Namespace: m, Path: []string{"Proto", "run"}, Kind: "func"})
	impl, _ := r.RegisterSymbol(p, SymbolDecl{USR: "s:Impl.run", Culture: m, Namespace: m, Path: []string{"Impl", "run"}, Kind: "func"})
	p.SetDocumentation(proto, Documentation{Text: "Runs the thing."})
	p.SetDocumentation(impl, Documentation{Origin: proto, Inherited: true})
	p.SetSymbolBody(proto, "<p>Runs the thing.</p>")
	p.Seal()
	require.NoError(t, p.RecordRelease(Release{Version: 2, Tag: MustParseTag("1.1.0")}))

	lens := Lens{p.Index: 2}
	text, origin, ok := r.Documentation(impl, lens)
	require.True(t, ok)
	assert.Equal(t, "Runs the thing.", text)
	assert.Equal(t, proto, origin)

	body, ok := r.Body(impl, lens)
	require.True(t, ok)
	assert.Equal(t, "<p>Runs the thing.</p>", body)

	_, _, ok = r.Documentation(impl, Lens{p.Index: 1})
	assert.False(t, ok)
}
