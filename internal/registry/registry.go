package registry

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/docket/internal/address"
	"github.com/roach88/docket/internal/history"
)

// maxInheritance bounds documentation origin chains. Ingestion never
// records a cycle, but a bound keeps a corrupt store from hanging readers.
const maxInheritance = 16

// Registry is the set of all packages in an ecosystem.
type Registry struct {
	// Stems is shared by every clone of a registry.
	Stems *address.Stems

	packages []*Package
	names    map[string]address.PackageIndex
	usrs     map[string]address.SymbolID
}

// New creates an empty registry over a shared interning table.
func New(stems *address.Stems) *Registry {
	return &Registry{
		Stems: stems,
		names: make(map[string]address.PackageIndex),
		usrs:  make(map[string]address.SymbolID),
	}
}

// Clone returns a shallow copy. Packages are shared until Writable
// replaces one with a private copy.
func (r *Registry) Clone() *Registry {
	return &Registry{
		Stems:    r.Stems,
		packages: slices.Clone(r.packages),
		names:    maps.Clone(r.names),
		usrs:     maps.Clone(r.usrs),
	}
}

// RegisterPackage returns the package named name, allocating it on first
// sight. The boolean reports whether it is new.
func (r *Registry) RegisterPackage(name string) (*Package, bool) {
	if index, ok := r.names[name]; ok {
		return r.packages[index], false
	}
	index := address.PackageIndex(len(r.packages))
	p := newPackage(index, name)
	r.packages = append(r.packages, p)
	r.names[name] = index
	return p, true
}

// Writable replaces the package at index with a private deep copy and
// returns it. Must only be called on a registry obtained from Clone.
func (r *Registry) Writable(index address.PackageIndex) *Package {
	p := r.packages[index].Clone()
	r.packages[index] = p
	return p
}

// Len returns the number of packages.
func (r *Registry) Len() int { return len(r.packages) }

// Packages returns all packages in index order. Callers must not modify
// the returned slice.
func (r *Registry) Packages() []*Package { return r.packages }

// Package returns the package at index.
func (r *Registry) Package(index address.PackageIndex) *Package {
	return r.packages[index]
}

// PackageNamed looks a package up by name.
func (r *Registry) PackageNamed(name string) (*Package, bool) {
	index, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.packages[index], true
}

// RegisterSymbol registers d in p and indexes its USR ecosystem-wide.
// The first package to declare a USR owns it.
func (r *Registry) RegisterSymbol(p *Package, d SymbolDecl) (address.SymbolID, bool) {
	id, fresh := p.RegisterSymbol(d)
	if _, ok := r.usrs[d.USR]; !ok {
		r.usrs[d.USR] = id
	}
	return id, fresh
}

// SymbolByUSR finds a symbol anywhere in the ecosystem.
func (r *Registry) SymbolByUSR(usr string) (address.SymbolID, bool) {
	id, ok := r.usrs[usr]
	return id, ok
}

// Symbol returns the symbol at id.
func (r *Registry) Symbol(id address.SymbolID) *Symbol {
	return r.packages[id.Package].Symbol(id)
}

// Module returns the module at id.
func (r *Registry) Module(id address.ModuleID) *Module {
	return r.packages[id.Package].Module(id)
}

// ModuleNamed finds a module by name, searching packages in the order
// given.
func (r *Registry) ModuleNamed(name string, within []address.PackageIndex) (address.ModuleID, bool) {
	for _, index := range within {
		if m, ok := r.packages[index].ModuleNamed(name); ok {
			return m, true
		}
	}
	return address.ModuleID{}, false
}

// Visible reports whether composite c exists in lens. A natural composite
// needs its base declaration extant; a feature additionally needs its
// host extant and its culture package to record the feature.
func (r *Registry) Visible(c address.Composite, lens Lens) bool {
	if !r.symbolExtant(c.Base, lens) {
		return false
	}
	if c.IsNatural() {
		return true
	}
	if !r.symbolExtant(c.Diacritic.Host, lens) {
		return false
	}
	owner := c.Owner()
	v, ok := lens[owner]
	if !ok || int(owner) >= len(r.packages) {
		return false
	}
	return r.packages[owner].FeatureExtant(c, v)
}

func (r *Registry) symbolExtant(id address.SymbolID, lens Lens) bool {
	v, ok := lens[id.Package]
	if !ok || int(id.Package) >= len(r.packages) {
		return false
	}
	return r.packages[id.Package].SymbolExtant(id, v)
}

// versionFor picks the version of pkg to read: the lens pin if there is
// one, otherwise the package's latest release.
func (r *Registry) versionFor(pkg address.PackageIndex, lens Lens) (history.Version, bool) {
	if v, ok := lens[pkg]; ok {
		return v, true
	}
	latest, ok := r.packages[pkg].Releases.Latest()
	return latest.Version, ok
}

// Documentation returns the doc text a symbol renders in lens, following
// inherited documentation to its origin. The returned id is the symbol
// whose text it is.
func (r *Registry) Documentation(id address.SymbolID, lens Lens) (string, address.SymbolID, bool) {
	for range maxInheritance {
		v, ok := r.versionFor(id.Package, lens)
		if !ok {
			return "", id, false
		}
		doc, ok := r.packages[id.Package].Documentation(id, v)
		if !ok {
			return "", id, false
		}
		if !doc.Inherited {
			return doc.Text, id, doc.Text != ""
		}
		id = doc.Origin
	}
	return "", id, false
}

// Body returns a symbol's compiled body in lens, shared with its origin
// when its documentation is inherited.
func (r *Registry) Body(id address.SymbolID, lens Lens) (string, bool) {
	_, origin, ok := r.Documentation(id, lens)
	if !ok {
		return "", false
	}
	v, ok := r.versionFor(origin.Package, lens)
	if !ok {
		return "", false
	}
	return r.packages[origin.Package].SymbolBody(origin, v)
}

// Describe renders a composite for diagnostics, e.g. "NIOCore.ByteBuffer.read(_:)".
func (r *Registry) Describe(c address.Composite) string {
	base := r.Symbol(c.Base)
	module := r.Module(base.Culture)
	if c.IsNatural() {
		return fmt.Sprintf("%s.%s%s", module.Name, base.Name(), base.Suffix)
	}
	host := r.Symbol(c.Diacritic.Host)
	return fmt.Sprintf("%s.%s.%s%s", r.Module(host.Namespace).Name, host.Name(), base.Path[len(base.Path)-1], base.Suffix)
}
