package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/docket/internal/ir"
)

// Release is one compiled release document: the package graph plus the
// era request it is ingested under.
type Release struct {
	Graph ir.PackageGraph
	Era   map[string]string
}

// Tag returns the release's own tag from the era request.
func (r *Release) Tag() string {
	return r.Era[r.Graph.Package]
}

// CompileRelease parses a CUE release document. The document is a struct
// of the form:
//
//	name: "Base"
//	tag:  "1.0.0"
//	dependencies: {Core: "1"}
//	module: Base: {
//		imports: ["Core"]
//		doc:     "The base module."
//		symbol: "s:Base.Circle": {
//			path: ["Circle"]
//			kind: "struct"
//		}
//		article: Overview: {title: "Overview", body: "..."}
//		feature: [{host: "s:Base.Circle", member: "s:Core.Shape.area"}]
//	}
//
// Dependency values are version patterns; an empty pattern pins the
// dependency's latest release.
func CompileRelease(v cue.Value) (*Release, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	name, err := requiredString(v, "name")
	if err != nil {
		return nil, err
	}
	tag, err := requiredString(v, "tag")
	if err != nil {
		return nil, err
	}

	r := &Release{
		Graph: ir.PackageGraph{Package: name},
		Era:   map[string]string{name: tag},
	}

	if deps := v.LookupPath(cue.ParsePath("dependencies")); deps.Exists() {
		iter, err := deps.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			pattern, err := iter.Value().String()
			if err != nil {
				return nil, &CompileError{
					Field:   "dependencies." + iter.Label(),
					Message: "version pattern must be a string",
					Pos:     iter.Value().Pos(),
				}
			}
			r.Graph.Dependencies = append(r.Graph.Dependencies, ir.Dependency{Package: iter.Label()})
			if pattern != "" {
				r.Era[iter.Label()] = pattern
			}
		}
	}

	modules := v.LookupPath(cue.ParsePath("module"))
	if !modules.Exists() {
		return nil, &CompileError{
			Field:   "module",
			Message: "at least one module is required",
			Pos:     v.Pos(),
		}
	}
	iter, err := modules.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		if err := compileModule(&r.Graph, iter.Label(), iter.Value()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func compileModule(g *ir.PackageGraph, name string, v cue.Value) error {
	m := ir.ModuleFacts{Name: name}

	var err error
	if m.Imports, err = optionalStrings(v, "imports"); err != nil {
		return err
	}
	if m.Doc, err = optionalString(v, "doc"); err != nil {
		return err
	}
	g.Modules = append(g.Modules, m)

	if symbols := v.LookupPath(cue.ParsePath("symbol")); symbols.Exists() {
		iter, err := symbols.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			s, err := compileSymbol(name, iter.Label(), iter.Value())
			if err != nil {
				return err
			}
			g.Symbols = append(g.Symbols, s)
		}
	}

	if articles := v.LookupPath(cue.ParsePath("article")); articles.Exists() {
		iter, err := articles.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for iter.Next() {
			a := ir.ArticleFacts{Module: name, Name: iter.Label()}
			if a.Title, err = optionalString(iter.Value(), "title"); err != nil {
				return err
			}
			if a.Body, err = requiredString(iter.Value(), "body"); err != nil {
				return err
			}
			g.Articles = append(g.Articles, a)
		}
	}

	if features := v.LookupPath(cue.ParsePath("feature")); features.Exists() {
		list, err := features.List()
		if err != nil {
			return &CompileError{Field: "feature", Message: "feature must be a list", Pos: features.Pos()}
		}
		for list.Next() {
			f := ir.FeatureFacts{Module: name}
			if f.Host, err = requiredString(list.Value(), "host"); err != nil {
				return err
			}
			if f.Member, err = requiredString(list.Value(), "member"); err != nil {
				return err
			}
			g.Features = append(g.Features, f)
		}
	}
	return nil
}

func compileSymbol(module, usr string, v cue.Value) (ir.SymbolFacts, error) {
	s := ir.SymbolFacts{USR: usr, Module: module}

	var err error
	if s.Path, err = optionalStrings(v, "path"); err != nil {
		return s, err
	}
	if len(s.Path) == 0 {
		return s, &CompileError{
			Field:   "path",
			Message: fmt.Sprintf("symbol %q needs a non-empty path", usr),
			Pos:     v.Pos(),
		}
	}
	if s.Kind, err = requiredString(v, "kind"); err != nil {
		return s, err
	}
	if s.Suffix, err = optionalString(v, "suffix"); err != nil {
		return s, err
	}
	if s.Scope, err = optionalString(v, "scope"); err != nil {
		return s, err
	}
	if s.Declaration, err = optionalString(v, "declaration"); err != nil {
		return s, err
	}
	if s.Declaration == "" {
		s.Declaration = s.Kind + " " + strings.Join(s.Path, ".") + s.Suffix
	}
	if s.Availability, err = optionalString(v, "availability"); err != nil {
		return s, err
	}
	if s.Doc, err = optionalString(v, "doc"); err != nil {
		return s, err
	}

	rels := v.LookupPath(cue.ParsePath("relationships"))
	if !rels.Exists() {
		return s, nil
	}
	list, err := rels.List()
	if err != nil {
		return s, &CompileError{Field: "relationships", Message: "relationships must be a list", Pos: rels.Pos()}
	}
	for list.Next() {
		var r ir.Relationship
		if r.Kind, err = requiredString(list.Value(), "kind"); err != nil {
			return s, err
		}
		if !ir.ValidRelationships[r.Kind] {
			return s, &CompileError{
				Field:   "relationships.kind",
				Message: fmt.Sprintf("invalid relationship kind %q", r.Kind),
				Pos:     list.Value().Pos(),
			}
		}
		if r.Target, err = requiredString(list.Value(), "target"); err != nil {
			return s, err
		}
		s.Relationships = append(s.Relationships, r)
	}
	return s, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalStrings(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	list, err := fv.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: field + " must be a list of strings", Pos: fv.Pos()}
	}
	var out []string
	for list.Next() {
		s, err := list.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
