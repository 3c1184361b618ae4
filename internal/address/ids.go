package address

import "fmt"

// PackageIndex identifies a package within an ecosystem.
type PackageIndex uint32

// ModuleID identifies a module by owning package and local offset.
type ModuleID struct {
	Package PackageIndex
	Offset  uint32
}

func (m ModuleID) String() string {
	return fmt.Sprintf("%d.m%d", m.Package, m.Offset)
}

// SymbolID identifies a symbol by declaring package and local offset.
type SymbolID struct {
	Package PackageIndex
	Offset  uint32
}

func (s SymbolID) String() string {
	return fmt.Sprintf("%d.s%d", s.Package, s.Offset)
}

// ArticleID identifies a free-form article by owning package and local offset.
type ArticleID struct {
	Package PackageIndex
	Offset  uint32
}

func (a ArticleID) String() string {
	return fmt.Sprintf("%d.a%d", a.Package, a.Offset)
}

// Diacritic names the type a declaration is viewed through (Host) and the
// module that contributed the relationship (Culture).
type Diacritic struct {
	Host    SymbolID
	Culture ModuleID
}

// Composite is the addressable unit a link resolves to: a base declaration
// reached through a particular host and culture.
type Composite struct {
	Base      SymbolID
	Diacritic Diacritic
}

// Natural returns the composite of a symbol seen through its own declaring
// context.
func Natural(base SymbolID, culture ModuleID) Composite {
	return Composite{Base: base, Diacritic: Diacritic{Host: base, Culture: culture}}
}

// Feature returns the composite of base inherited into host, contributed by
// culture.
func Feature(base, host SymbolID, culture ModuleID) Composite {
	return Composite{Base: base, Diacritic: Diacritic{Host: host, Culture: culture}}
}

// IsNatural reports whether the composite is the base's own declaration.
func (c Composite) IsNatural() bool {
	return c.Diacritic.Host == c.Base
}

// Owner is the package whose keyframes govern the composite's visibility.
func (c Composite) Owner() PackageIndex {
	return c.Diacritic.Culture.Package
}

func (c Composite) String() string {
	if c.IsNatural() {
		return c.Base.String()
	}
	return fmt.Sprintf("%s@%s/%s", c.Base, c.Diacritic.Host, c.Diacritic.Culture)
}

// CompareComposites orders composites by base, then host, then culture.
func CompareComposites(a, b Composite) int {
	if c := CompareSymbols(a.Base, b.Base); c != 0 {
		return c
	}
	if c := CompareSymbols(a.Diacritic.Host, b.Diacritic.Host); c != 0 {
		return c
	}
	return CompareModules(a.Diacritic.Culture, b.Diacritic.Culture)
}

// CompareSymbols orders symbols by package, then offset.
func CompareSymbols(a, b SymbolID) int {
	switch {
	case a.Package != b.Package:
		return cmpUint(uint32(a.Package), uint32(b.Package))
	default:
		return cmpUint(a.Offset, b.Offset)
	}
}

// CompareModules orders modules by package, then offset.
func CompareModules(a, b ModuleID) int {
	switch {
	case a.Package != b.Package:
		return cmpUint(uint32(a.Package), uint32(b.Package))
	default:
		return cmpUint(a.Offset, b.Offset)
	}
}

func cmpUint(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
