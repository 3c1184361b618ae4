package address

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposite_Natural(t *testing.T) {
	base := SymbolID{Package: 1, Offset: 4}
	c := Natural(base, core)
	assert.True(t, c.IsNatural())
	assert.Equal(t, PackageIndex(1), c.Owner())
	assert.Equal(t, "1.s4", c.String())
}

func TestComposite_Feature(t *testing.T) {
	base := SymbolID{Package: 1, Offset: 4}
	host := SymbolID{Package: 2, Offset: 0}
	culture := ModuleID{Package: 2, Offset: 1}
	c := Feature(base, host, culture)

	assert.False(t, c.IsNatural())
	assert.Equal(t, PackageIndex(2), c.Owner())
	assert.Equal(t, "1.s4@2.s0/2.m1", c.String())
}

func TestCompareComposites_Total(t *testing.T) {
	a := Natural(SymbolID{Package: 1, Offset: 2}, core)
	b := Feature(SymbolID{Package: 1, Offset: 2}, SymbolID{Package: 1, Offset: 9}, core)
	c := Natural(SymbolID{Package: 0, Offset: 7}, ModuleID{})

	list := []Composite{a, b, c}
	slices.SortFunc(list, CompareComposites)
	assert.Equal(t, []Composite{c, a, b}, list)
	assert.Equal(t, 0, CompareComposites(a, a))
}
