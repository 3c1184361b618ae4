package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validGraph() PackageGraph {
	return PackageGraph{
		Package:      "swift-nio",
		Dependencies: []Dependency{{Package: "swift"}},
		Modules:      []ModuleFacts{{Name: "NIOCore", Imports: []string{"Swift"}}},
		Symbols: []SymbolFacts{
			{USR: "s:ByteBuffer", Module: "NIOCore", Path: []string{"ByteBuffer"}, Kind: "struct", Declaration: "struct ByteBuffer"},
			{
				USR: "s:ByteBuffer.read", Module: "NIOCore", Path: []string{"ByteBuffer", "read"}, Suffix: "(_:)",
				Kind: "func", Declaration: "func read(_:)",
				Relationships: []Relationship{{Kind: RelMemberOf, Target: "s:ByteBuffer"}},
			},
		},
		Features: []FeatureFacts{{Host: "s:ByteBuffer", Member: "s:Equatable.ne", Module: "NIOCore"}},
		Articles: []ArticleFacts{{Module: "NIOCore", Name: "getting-started", Body: "hi"}},
	}
}

func TestValidate_Valid(t *testing.T) {
	g := validGraph()
	assert.Empty(t, g.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	g := validGraph()
	g.Dependencies = append(g.Dependencies, Dependency{Package: "swift"}, Dependency{Package: "swift-nio"})
	g.Symbols = append(g.Symbols, SymbolFacts{
		USR: "s:ByteBuffer", Module: "Missing", Path: []string{""},
		Relationships: []Relationship{{Kind: "friend_of", Target: "x"}},
	})
	g.Articles = append(g.Articles, ArticleFacts{Module: "NIOCore", Name: "getting-started"})

	fields := make([]string, 0)
	for _, e := range g.Validate() {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{
		"dependencies[1].package",
		"dependencies[2].package",
		"symbols[2].usr",
		"symbols[2].module",
		"symbols[2].path",
		"symbols[2].kind",
		"symbols[2].relationships[0].kind",
		"articles[1].name",
	}, fields)
}

func TestSymbolFacts_Namespace(t *testing.T) {
	assert.Equal(t, "NIOCore", SymbolFacts{Module: "NIOCore"}.Namespace())
	assert.Equal(t, "Swift", SymbolFacts{Module: "NIOCore", Scope: "Swift"}.Namespace())
}

func TestRelationship_InheritsDocumentation(t *testing.T) {
	assert.True(t, Relationship{Kind: RelImplements}.InheritsDocumentation())
	assert.True(t, Relationship{Kind: RelRestates}.InheritsDocumentation())
	assert.False(t, Relationship{Kind: RelMemberOf}.InheritsDocumentation())
}
