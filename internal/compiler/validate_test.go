package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docket/internal/ir"
	"github.com/roach88/docket/internal/testutil"
)

func release(g ir.PackageGraph, era map[string]string) *Release {
	return &Release{Graph: g, Era: era}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	g := testutil.NewGraph("Kit").
		Depends("Base").
		Module("Kit", "Base").
		ModuleDoc("Kit", "Uses ``Base.Shape``.").
		Symbol("Kit", "s:Kit.Widget", "class", "Widget", testutil.Doc("See ``Widget/resize(to:)``.")).
		Article("Kit", "Intro", "Intro", "Start with ``/Base/1/Base``.").
		Build()

	errs := Validate(release(g, map[string]string{"Kit": "1.0.0", "Base": "1"}))
	assert.Empty(t, errs)
}

func TestValidate_GraphErrors(t *testing.T) {
	g := ir.PackageGraph{
		Package:      "Kit",
		Dependencies: []ir.Dependency{{Package: "Kit"}},
		Modules:      []ir.ModuleFacts{{Name: "Kit"}, {Name: "Kit"}},
		Symbols:      []ir.SymbolFacts{{USR: "s:x", Module: "Nope", Path: []string{"X"}, Kind: "struct"}},
		Features:     []ir.FeatureFacts{{Module: "Kit"}},
		Articles:     []ir.ArticleFacts{{Module: "Kit"}},
	}

	errs := Validate(release(g, map[string]string{"Kit": "1.0.0"}))
	assert.Equal(t, []string{ErrModule, ErrDependency, ErrSymbol, ErrFeature, ErrArticle}, codes(errs))
}

func TestValidate_MissingPackage(t *testing.T) {
	g := ir.PackageGraph{Modules: []ir.ModuleFacts{{Name: "A"}}}

	errs := Validate(release(g, map[string]string{"": "1.0.0"}))
	require.Len(t, errs, 1)
	assert.Equal(t, ErrPackageName, errs[0].Code)
	assert.Equal(t, "[E201] package: package name is required", errs[0].Error())
}

func TestValidate_EraErrors(t *testing.T) {
	g := testutil.NewGraph("Kit").Depends("Base").Module("Kit").Build()

	errs := Validate(release(g, map[string]string{
		"Kit":   "one",
		"Base":  "1.x",
		"Other": "2",
	}))
	require.Len(t, errs, 3)
	assert.Equal(t, []string{ErrInvalidTag, ErrInvalidPattern, ErrUnknownEraPkg}, codes(errs))
	assert.Equal(t, "dependencies.Base", errs[1].Field)
	assert.Equal(t, "era.Other", errs[2].Field)
}

func TestValidate_DocLinks(t *testing.T) {
	g := testutil.NewGraph("Kit").
		Module("Kit").
		ModuleDoc("Kit", "Broken ``Widget(`` link.").
		Symbol("Kit", "s:Kit.Widget", "class", "Widget", testutil.Doc("Fine ``Widget`` then ``unterminated")).
		Build()

	errs := Validate(release(g, map[string]string{"Kit": "1.0.0"}))
	require.Len(t, errs, 2)
	assert.Equal(t, ErrInvalidLink, errs[0].Code)
	assert.Equal(t, "modules.Kit.doc", errs[0].Field)
	assert.Equal(t, ErrUnterminatedLink, errs[1].Code)
	assert.Equal(t, "symbols.s:Kit.Widget.doc", errs[1].Field)
}
