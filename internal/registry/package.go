package registry

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
)

// Documentation is a keyframed doc comment. When Inherited is set the
// symbol has no text of its own and renders Origin's documentation.
type Documentation struct {
	Text      string
	Origin    address.SymbolID
	Inherited bool
}

// Module is one module of a package.
type Module struct {
	ID   address.ModuleID
	Name string

	existence history.Head
	imports   history.Head
	doc       history.Head
	body      history.Head
}

// Symbol is one declaration. Its identity is its USR; path, suffix and kind
// follow the most recent release that declared it.
type Symbol struct {
	ID        address.SymbolID
	USR       string
	Culture   address.ModuleID
	Namespace address.ModuleID
	Path      []string
	Suffix    string
	Kind      string

	existence     history.Head
	declaration   history.Head
	doc           history.Head
	availability  history.Head
	relationships history.Head
	body          history.Head
}

// Name returns the symbol's dotted lexical path.
func (s *Symbol) Name() string {
	return strings.Join(s.Path, ".")
}

// Feature is a member reachable through a host other than its own
// declaring type.
type Feature struct {
	Composite address.Composite

	existence history.Head
}

// Article is a free-form documentation page.
type Article struct {
	ID      address.ArticleID
	Culture address.ModuleID
	Name    string
	Title   string

	existence history.Head
	source    history.Head
	body      history.Head
}

type articleKey struct {
	module uint32
	name   string
}

// Package owns the modules, symbols, features and articles of one
// package together with one keyframe buffer per mutable property.
type Package struct {
	Index    address.PackageIndex
	Name     string
	Releases Releases

	modules  []Module
	symbols  []Symbol
	features []Feature
	articles []Article

	moduleNames  map[string]uint32
	symbolUSRs   map[string]uint32
	featureKeys  map[address.Composite]uint32
	articleNames map[articleKey]uint32

	importSets [][]address.ModuleID
	importKeys map[string]int32

	existence     history.Buffer[bool]
	imports       history.Buffer[int32]
	declarations  history.Buffer[string]
	documentation history.Buffer[Documentation]
	availability  history.Buffer[string]
	relationships history.Buffer[string]
	bodies        history.Buffer[string]

	routes        map[address.Route][]address.Composite
	outed         map[address.Route][]address.Composite
	articleRoutes map[address.Route]address.ArticleID

	staging *staging
}

// staging tracks what the release being ingested has declared, so that
// everything else can be retired when the release is sealed.
type staging struct {
	version  history.Version
	sealed   bool
	modules  map[uint32]bool
	symbols  map[uint32]bool
	features map[uint32]bool
	articles map[uint32]bool
}

func newPackage(index address.PackageIndex, name string) *Package {
	return &Package{
		Index:         index,
		Name:          name,
		moduleNames:   make(map[string]uint32),
		symbolUSRs:    make(map[string]uint32),
		featureKeys:   make(map[address.Composite]uint32),
		articleNames:  make(map[articleKey]uint32),
		importKeys:    make(map[string]int32),
		routes:        make(map[address.Route][]address.Composite),
		outed:         make(map[address.Route][]address.Composite),
		articleRoutes: make(map[address.Route]address.ArticleID),
	}
}

// Clone returns a deep copy suitable for mutation by an ingestion.
func (p *Package) Clone() *Package {
	c := &Package{
		Index:         p.Index,
		Name:          p.Name,
		Releases:      slices.Clone(p.Releases),
		modules:       slices.Clone(p.modules),
		symbols:       slices.Clone(p.symbols),
		features:      slices.Clone(p.features),
		articles:      slices.Clone(p.articles),
		moduleNames:   maps.Clone(p.moduleNames),
		symbolUSRs:    maps.Clone(p.symbolUSRs),
		featureKeys:   maps.Clone(p.featureKeys),
		articleNames:  maps.Clone(p.articleNames),
		importSets:    slices.Clone(p.importSets),
		importKeys:    maps.Clone(p.importKeys),
		existence:     *p.existence.Clone(),
		imports:       *p.imports.Clone(),
		declarations:  *p.declarations.Clone(),
		documentation: *p.documentation.Clone(),
		availability:  *p.availability.Clone(),
		relationships: *p.relationships.Clone(),
		bodies:        *p.bodies.Clone(),
		routes:        maps.Clone(p.routes),
		outed:         maps.Clone(p.outed),
		articleRoutes: maps.Clone(p.articleRoutes),
	}
	return c
}

// Begin opens release v for registration. Everything not registered
// between Begin and Seal is retired at v.
func (p *Package) Begin(v history.Version) {
	p.staging = &staging{
		version:  v,
		modules:  make(map[uint32]bool),
		symbols:  make(map[uint32]bool),
		features: make(map[uint32]bool),
		articles: make(map[uint32]bool),
	}
}

// Seal retires every module, symbol, feature and article the open release
// did not declare. After Seal nothing new can be registered, but
// documentation and bodies of registered entities can still be recorded
// until Close.
func (p *Package) Seal() {
	s := p.staging
	if s == nil || s.sealed {
		return
	}
	for i := range p.modules {
		if !s.modules[uint32(i)] {
			m := &p.modules[i]
			p.existence.Push(m.existence, s.version)
			p.documentation.Push(m.doc, s.version)
		}
	}
	for i := range p.symbols {
		if !s.symbols[uint32(i)] {
			sym := &p.symbols[i]
			p.existence.Push(sym.existence, s.version)
			p.declarations.Push(sym.declaration, s.version)
			p.documentation.Push(sym.doc, s.version)
		}
	}
	for i := range p.features {
		if !s.features[uint32(i)] {
			p.existence.Push(p.features[i].existence, s.version)
		}
	}
	for i := range p.articles {
		if !s.articles[uint32(i)] {
			p.existence.Push(p.articles[i].existence, s.version)
		}
	}
	s.sealed = true
}

// Close ends the open release.
func (p *Package) Close() {
	p.Seal()
	p.staging = nil
}

func (p *Package) version() history.Version {
	if p.staging == nil {
		panic(fmt.Sprintf("registry: package %q mutated outside Begin/Close", p.Name))
	}
	return p.staging.version
}

// registering is version for operations that declare entities, which
// must precede Seal.
func (p *Package) registering() history.Version {
	v := p.version()
	if p.staging.sealed {
		panic(fmt.Sprintf("registry: package %q registered after Seal", p.Name))
	}
	return v
}

// RecordRelease appends a release. Versions must increase and tags must
// be unique within the package.
func (p *Package) RecordRelease(r Release) error {
	if _, dup := p.Releases.Tagged(r.Tag); dup {
		return fmt.Errorf("%w: %s %s", ErrDuplicateRelease, p.Name, r.Tag)
	}
	if last, ok := p.Releases.Newest(); ok && r.Version <= last.Version {
		return fmt.Errorf("%w: %s at %s", ErrStaleVersion, p.Name, r.Version)
	}
	r.Pins = r.Pins.Clone()
	p.Releases = append(p.Releases, r)
	return nil
}

// Pins returns the upstream pins frozen at release v, or nil if v is not
// a release of this package.
func (p *Package) Pins(v history.Version) Pins {
	r, ok := p.Releases.At(v)
	if !ok {
		return nil
	}
	return r.Pins.Clone()
}

// RegisterModule allocates a module on first sight and marks it present
// in the open release. Repeat names return the same identity.
func (p *Package) RegisterModule(name string) address.ModuleID {
	v := p.registering()
	offset, ok := p.moduleNames[name]
	if !ok {
		offset = uint32(len(p.modules))
		p.modules = append(p.modules, Module{
			ID:   address.ModuleID{Package: p.Index, Offset: offset},
			Name: name,
		})
		p.moduleNames[name] = offset
	}
	m := &p.modules[offset]
	p.existence.Update(&m.existence, v, true)
	p.staging.modules[offset] = true
	return m.ID
}

// SetImports records the modules m imports in the open release.
func (p *Package) SetImports(m address.ModuleID, imports []address.ModuleID) {
	v := p.version()
	set := slices.Clone(imports)
	slices.SortFunc(set, address.CompareModules)
	set = slices.Compact(set)

	key := fmt.Sprint(set)
	index, ok := p.importKeys[key]
	if !ok {
		index = int32(len(p.importSets))
		p.importSets = append(p.importSets, set)
		p.importKeys[key] = index
	}
	p.imports.Update(&p.modules[m.Offset].imports, v, index)
}

// SetModuleDocumentation records a module's doc comment.
func (p *Package) SetModuleDocumentation(m address.ModuleID, doc Documentation) {
	p.documentation.Update(&p.modules[m.Offset].doc, p.version(), doc)
}

// SymbolDecl is the registration record for one symbol in one release.
type SymbolDecl struct {
	USR           string
	Culture       address.ModuleID
	Namespace     address.ModuleID
	Path          []string
	Suffix        string
	Kind          string
	Declaration   string
	Availability  string
	Relationships string
}

// RegisterSymbol allocates a symbol on first sight of its USR and records
// its per-release facts. It reports whether the symbol is new.
//
// Culture, namespace, path, suffix and kind are not keyframed: the newest
// release's spelling is used at every version.
func (p *Package) RegisterSymbol(d SymbolDecl) (address.SymbolID, bool) {
	v := p.registering()
	offset, seen := p.symbolUSRs[d.USR]
	if !seen {
		offset = uint32(len(p.symbols))
		p.symbols = append(p.symbols, Symbol{
			ID:  address.SymbolID{Package: p.Index, Offset: offset},
			USR: d.USR,
		})
		p.symbolUSRs[d.USR] = offset
	}
	s := &p.symbols[offset]
	s.Culture = d.Culture
	s.Namespace = d.Namespace
	s.Path = slices.Clone(d.Path)
	s.Suffix = d.Suffix
	s.Kind = d.Kind

	p.existence.Update(&s.existence, v, true)
	p.declarations.Update(&s.declaration, v, d.Declaration)
	p.availability.Update(&s.availability, v, d.Availability)
	p.relationships.Update(&s.relationships, v, d.Relationships)
	p.staging.symbols[offset] = true
	return s.ID, !seen
}

// SetDocumentation records a symbol's documentation in the open release.
func (p *Package) SetDocumentation(id address.SymbolID, doc Documentation) {
	p.documentation.Update(&p.symbols[id.Offset].doc, p.version(), doc)
}

// RegisterFeature records that a composite is reachable in the open
// release. The composite's culture must belong to this package.
func (p *Package) RegisterFeature(c address.Composite) {
	v := p.registering()
	offset, ok := p.featureKeys[c]
	if !ok {
		offset = uint32(len(p.features))
		p.features = append(p.features, Feature{Composite: c})
		p.featureKeys[c] = offset
	}
	p.existence.Update(&p.features[offset].existence, v, true)
	p.staging.features[offset] = true
}

// RegisterArticle allocates an article on first sight of its
// (module, name) pair and records its source text.
func (p *Package) RegisterArticle(culture address.ModuleID, name, title, source string) address.ArticleID {
	v := p.registering()
	key := articleKey{module: culture.Offset, name: name}
	offset, ok := p.articleNames[key]
	if !ok {
		offset = uint32(len(p.articles))
		p.articles = append(p.articles, Article{
			ID:      address.ArticleID{Package: p.Index, Offset: offset},
			Culture: culture,
			Name:    name,
		})
		p.articleNames[key] = offset
	}
	a := &p.articles[offset]
	a.Title = title
	p.existence.Update(&a.existence, v, true)
	p.documentation.Update(&a.source, v, Documentation{Text: source})
	p.staging.articles[offset] = true
	return a.ID
}

// SetSymbolBody stores a symbol's compiled documentation body.
func (p *Package) SetSymbolBody(id address.SymbolID, body string) {
	p.bodies.Update(&p.symbols[id.Offset].body, p.version(), body)
}

// SetModuleBody stores a module's compiled documentation body.
func (p *Package) SetModuleBody(id address.ModuleID, body string) {
	p.bodies.Update(&p.modules[id.Offset].body, p.version(), body)
}

// SetArticleBody stores an article's compiled body.
func (p *Package) SetArticleBody(id address.ArticleID, body string) {
	p.bodies.Update(&p.articles[id.Offset].body, p.version(), body)
}

// Modules returns every module ever registered. Callers must not modify
// the returned slice.
func (p *Package) Modules() []Module { return p.modules }

// Symbols returns every symbol ever registered. Callers must not modify
// the returned slice.
func (p *Package) Symbols() []Symbol { return p.symbols }

// Features returns every feature ever registered.
func (p *Package) Features() []Feature { return p.features }

// Articles returns every article ever registered.
func (p *Package) Articles() []Article { return p.articles }

// Module returns the module at id.
func (p *Package) Module(id address.ModuleID) *Module { return &p.modules[id.Offset] }

// Symbol returns the symbol at id.
func (p *Package) Symbol(id address.SymbolID) *Symbol { return &p.symbols[id.Offset] }

// Article returns the article at id.
func (p *Package) Article(id address.ArticleID) *Article { return &p.articles[id.Offset] }

// ModuleNamed looks a module up by name.
func (p *Package) ModuleNamed(name string) (address.ModuleID, bool) {
	offset, ok := p.moduleNames[name]
	if !ok {
		return address.ModuleID{}, false
	}
	return p.modules[offset].ID, true
}

// SymbolByUSR looks a symbol up by USR.
func (p *Package) SymbolByUSR(usr string) (address.SymbolID, bool) {
	offset, ok := p.symbolUSRs[usr]
	if !ok {
		return address.SymbolID{}, false
	}
	return p.symbols[offset].ID, true
}

// ArticleNamed looks an article up by module and name.
func (p *Package) ArticleNamed(m address.ModuleID, name string) (address.ArticleID, bool) {
	offset, ok := p.articleNames[articleKey{module: m.Offset, name: name}]
	if !ok {
		return address.ArticleID{}, false
	}
	return p.articles[offset].ID, true
}

// ModuleExtant reports whether module id exists at v.
func (p *Package) ModuleExtant(id address.ModuleID, v history.Version) bool {
	_, ok := p.existence.Value(p.modules[id.Offset].existence, v)
	return ok
}

// SymbolAt reports the symbol's existence at v.
func (p *Package) SymbolAt(id address.SymbolID, v history.Version) (history.Lookup[bool], bool) {
	return p.existence.Find(p.symbols[id.Offset].existence, v)
}

// SymbolExtant reports whether symbol id exists at v.
func (p *Package) SymbolExtant(id address.SymbolID, v history.Version) bool {
	_, ok := p.existence.Value(p.symbols[id.Offset].existence, v)
	return ok
}

// FeatureExtant reports whether composite c is registered here and extant
// at v.
func (p *Package) FeatureExtant(c address.Composite, v history.Version) bool {
	offset, ok := p.featureKeys[c]
	if !ok {
		return false
	}
	_, ok = p.existence.Value(p.features[offset].existence, v)
	return ok
}

// ArticleExtant reports whether article id exists at v.
func (p *Package) ArticleExtant(id address.ArticleID, v history.Version) bool {
	_, ok := p.existence.Value(p.articles[id.Offset].existence, v)
	return ok
}

// Imports returns the modules m imports at v.
func (p *Package) Imports(m address.ModuleID, v history.Version) []address.ModuleID {
	index, ok := p.imports.Value(p.modules[m.Offset].imports, v)
	if !ok {
		return nil
	}
	return p.importSets[index]
}

// Declaration returns a symbol's declaration text at v.
func (p *Package) Declaration(id address.SymbolID, v history.Version) (string, bool) {
	return p.declarations.Value(p.symbols[id.Offset].declaration, v)
}

// DeclarationHistory returns the full lookup for a symbol's declaration.
func (p *Package) DeclarationHistory(id address.SymbolID, v history.Version) (history.Lookup[string], bool) {
	return p.declarations.Find(p.symbols[id.Offset].declaration, v)
}

// Availability returns a symbol's availability text at v.
func (p *Package) Availability(id address.SymbolID, v history.Version) (string, bool) {
	return p.availability.Value(p.symbols[id.Offset].availability, v)
}

// Relationships returns a symbol's canonical relationship list at v.
func (p *Package) Relationships(id address.SymbolID, v history.Version) (string, bool) {
	return p.relationships.Value(p.symbols[id.Offset].relationships, v)
}

// Documentation returns a symbol's documentation record at v.
func (p *Package) Documentation(id address.SymbolID, v history.Version) (Documentation, bool) {
	return p.documentation.Value(p.symbols[id.Offset].doc, v)
}

// ModuleDocumentation returns a module's documentation record at v.
func (p *Package) ModuleDocumentation(id address.ModuleID, v history.Version) (Documentation, bool) {
	return p.documentation.Value(p.modules[id.Offset].doc, v)
}

// ArticleSource returns an article's raw text at v.
func (p *Package) ArticleSource(id address.ArticleID, v history.Version) (string, bool) {
	doc, ok := p.documentation.Value(p.articles[id.Offset].source, v)
	return doc.Text, ok
}

// SymbolBody returns a symbol's own compiled body at v.
func (p *Package) SymbolBody(id address.SymbolID, v history.Version) (string, bool) {
	return p.bodies.Value(p.symbols[id.Offset].body, v)
}

// ModuleBody returns a module's compiled body at v.
func (p *Package) ModuleBody(id address.ModuleID, v history.Version) (string, bool) {
	return p.bodies.Value(p.modules[id.Offset].body, v)
}

// ArticleBody returns an article's compiled body at v.
func (p *Package) ArticleBody(id address.ArticleID, v history.Version) (string, bool) {
	return p.bodies.Value(p.articles[id.Offset].body, v)
}

// KeyframeCount returns the number of keyframes across all property
// buffers, for metrics.
func (p *Package) KeyframeCount() int {
	return p.existence.Len() + p.imports.Len() + p.declarations.Len() +
		p.documentation.Len() + p.availability.Len() + p.relationships.Len() +
		p.bodies.Len()
}

// DocumentationChain exposes the chain walk of a symbol's documentation
// slot, newest keyframe first.
func (p *Package) DocumentationChain(id address.SymbolID) []int {
	return p.documentation.Chain(p.symbols[id.Offset].doc)
}
