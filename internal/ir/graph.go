package ir

import (
	"fmt"
	"slices"
)

// PackageGraph is the pre-parsed fact stream for one release of a package,
// as produced by an external source-graph reader.
type PackageGraph struct {
	Package      string         `json:"package"`
	Dependencies []Dependency   `json:"dependencies,omitempty"`
	Modules      []ModuleFacts  `json:"modules,omitempty"`
	Symbols      []SymbolFacts  `json:"symbols,omitempty"`
	Features     []FeatureFacts `json:"features,omitempty"`
	Articles     []ArticleFacts `json:"articles,omitempty"`
}

// Dependency names an upstream package this release builds against.
type Dependency struct {
	Package string `json:"package"`
}

// ModuleFacts describes one module of the release.
type ModuleFacts struct {
	Name    string   `json:"name"`
	Imports []string `json:"imports,omitempty"` // module names, own package or dependencies
	Doc     string   `json:"doc,omitempty"`
}

// SymbolFacts is everything the reader knows about one declaration.
type SymbolFacts struct {
	USR    string   `json:"usr"`              // stable unique symbol reference
	Module string   `json:"module"`           // culture: the module that declares it
	Scope  string   `json:"scope,omitempty"`  // namespace module of Path when extending another module's type
	Path   []string `json:"path"`             // lexical path, e.g. ["Foo", "bar"]
	Suffix string   `json:"suffix,omitempty"` // disambiguation suffix, e.g. "(_:)"
	Kind   string   `json:"kind"`

	Declaration   string         `json:"declaration"`
	Availability  string         `json:"availability,omitempty"`
	Doc           string         `json:"doc,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// Namespace returns the module the symbol's path is rooted in.
func (s SymbolFacts) Namespace() string {
	if s.Scope != "" {
		return s.Scope
	}
	return s.Module
}

// Relationship kinds understood by ingestion.
const (
	RelMemberOf     = "member_of"
	RelConformsTo   = "conforms_to"
	RelInheritsFrom = "inherits_from"
	RelImplements   = "implements"
	RelOverrides    = "overrides"
	RelRestates     = "restates"
)

// ValidRelationships lists the accepted relationship kinds.
var ValidRelationships = map[string]bool{
	RelMemberOf:     true,
	RelConformsTo:   true,
	RelInheritsFrom: true,
	RelImplements:   true,
	RelOverrides:    true,
	RelRestates:     true,
}

// Relationship links a symbol to another symbol by USR.
type Relationship struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// InheritsDocumentation reports whether the relationship lets the source
// reuse the target's documentation.
func (r Relationship) InheritsDocumentation() bool {
	switch r.Kind {
	case RelImplements, RelOverrides, RelRestates:
		return true
	default:
		return false
	}
}

// FeatureFacts records that Member is reachable through Host, contributed
// by Module (for example a protocol extension member inherited by a
// conforming type).
type FeatureFacts struct {
	Host   string `json:"host"`
	Member string `json:"member"`
	Module string `json:"module"`
}

// ArticleFacts is a free-form documentation page owned by a module.
type ArticleFacts struct {
	Module string `json:"module"`
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Body   string `json:"body"`
}

// GraphError reports a structurally malformed fact stream.
type GraphError struct {
	Field   string
	Message string
}

func (e GraphError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the fact stream's internal references.
// Returns all errors (not fail-fast) so a reader can fix a graph in one pass.
func (g *PackageGraph) Validate() []GraphError {
	var errs []GraphError

	if g.Package == "" {
		errs = append(errs, GraphError{Field: "package", Message: "package name is required"})
	}
	if len(g.Modules) == 0 {
		errs = append(errs, GraphError{Field: "modules", Message: "at least one module is required"})
	}

	modules := make(map[string]bool, len(g.Modules))
	for i, m := range g.Modules {
		if m.Name == "" {
			errs = append(errs, GraphError{Field: fmt.Sprintf("modules[%d].name", i), Message: "module name is required"})
			continue
		}
		if modules[m.Name] {
			errs = append(errs, GraphError{Field: fmt.Sprintf("modules[%d].name", i), Message: fmt.Sprintf("duplicate module %q", m.Name)})
		}
		modules[m.Name] = true
	}

	deps := make(map[string]bool, len(g.Dependencies))
	for i, d := range g.Dependencies {
		field := fmt.Sprintf("dependencies[%d].package", i)
		if d.Package == "" || d.Package == g.Package {
			errs = append(errs, GraphError{Field: field, Message: "dependency must name another package"})
		} else if deps[d.Package] {
			errs = append(errs, GraphError{Field: field, Message: fmt.Sprintf("duplicate dependency %q", d.Package)})
		}
		deps[d.Package] = true
	}

	usrs := make(map[string]bool, len(g.Symbols))
	for i, s := range g.Symbols {
		field := fmt.Sprintf("symbols[%d]", i)
		if s.USR == "" {
			errs = append(errs, GraphError{Field: field + ".usr", Message: "usr is required"})
		} else if usrs[s.USR] {
			errs = append(errs, GraphError{Field: field + ".usr", Message: fmt.Sprintf("duplicate usr %q", s.USR)})
		}
		usrs[s.USR] = true

		if !modules[s.Module] {
			errs = append(errs, GraphError{Field: field + ".module", Message: fmt.Sprintf("undeclared module %q", s.Module)})
		}
		if len(s.Path) == 0 || slices.Contains(s.Path, "") {
			errs = append(errs, GraphError{Field: field + ".path", Message: "path must be non-empty"})
		}
		if s.Kind == "" {
			errs = append(errs, GraphError{Field: field + ".kind", Message: "kind is required"})
		}
		for j, r := range s.Relationships {
			if !ValidRelationships[r.Kind] {
				errs = append(errs, GraphError{
					Field:   fmt.Sprintf("%s.relationships[%d].kind", field, j),
					Message: fmt.Sprintf("invalid relationship kind %q", r.Kind),
				})
			}
		}
	}

	for i, f := range g.Features {
		field := fmt.Sprintf("features[%d]", i)
		if f.Host == "" || f.Member == "" {
			errs = append(errs, GraphError{Field: field, Message: "host and member are required"})
		}
		if !modules[f.Module] {
			errs = append(errs, GraphError{Field: field + ".module", Message: fmt.Sprintf("undeclared module %q", f.Module)})
		}
	}

	articles := make(map[string]bool, len(g.Articles))
	for i, a := range g.Articles {
		field := fmt.Sprintf("articles[%d]", i)
		if !modules[a.Module] {
			errs = append(errs, GraphError{Field: field + ".module", Message: fmt.Sprintf("undeclared module %q", a.Module)})
		}
		if a.Name == "" {
			errs = append(errs, GraphError{Field: field + ".name", Message: "article name is required"})
		}
		key := a.Module + "/" + a.Name
		if articles[key] {
			errs = append(errs, GraphError{Field: field + ".name", Message: fmt.Sprintf("duplicate article %q", key)})
		}
		articles[key] = true
	}

	return errs
}
