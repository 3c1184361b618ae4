package compiler

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/docket/internal/registry"
	"github.com/roach88/docket/internal/resolver"
)

// Validation error codes (E200-E299)
const (
	// Graph structure errors (E201-E209)
	ErrPackageName     = "E201" // package name is required
	ErrModule          = "E202" // missing or duplicate module
	ErrDependency      = "E203" // self, empty or duplicate dependency
	ErrSymbol          = "E204" // malformed symbol facts
	ErrFeature         = "E205" // malformed feature facts
	ErrArticle         = "E206" // malformed or duplicate article
	ErrUnknownGraphRef = "E209" // unclassified graph error

	// Era errors (E210-E219)
	ErrInvalidTag     = "E210" // release tag is not a version
	ErrInvalidPattern = "E211" // dependency pattern is not a version mask
	ErrUnknownEraPkg  = "E212" // era names a package that is not a dependency

	// Documentation errors (E220-E229)
	ErrUnterminatedLink = "E220" // `` without a closing ``
	ErrInvalidLink      = "E221" // link text is not a symbol expression
)

// ValidationError represents a release document validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled release without ingesting it.
// Returns all errors found (does not fail-fast).
func Validate(r *Release) []ValidationError {
	var errs []ValidationError

	for _, ge := range r.Graph.Validate() {
		errs = append(errs, ValidationError{Field: ge.Field, Message: ge.Message, Code: graphCode(ge.Field)})
	}

	errs = append(errs, validateEra(r)...)

	for _, m := range r.Graph.Modules {
		errs = append(errs, validateDoc("modules."+m.Name+".doc", m.Doc)...)
	}
	for _, s := range r.Graph.Symbols {
		errs = append(errs, validateDoc("symbols."+s.USR+".doc", s.Doc)...)
	}
	for _, a := range r.Graph.Articles {
		errs = append(errs, validateDoc("articles."+a.Module+"/"+a.Name+".body", a.Body)...)
	}
	return errs
}

func graphCode(field string) string {
	switch {
	case field == "package":
		return ErrPackageName
	case strings.HasPrefix(field, "modules"):
		return ErrModule
	case strings.HasPrefix(field, "dependencies"):
		return ErrDependency
	case strings.HasPrefix(field, "symbols"):
		return ErrSymbol
	case strings.HasPrefix(field, "features"):
		return ErrFeature
	case strings.HasPrefix(field, "articles"):
		return ErrArticle
	default:
		return ErrUnknownGraphRef
	}
}

func validateEra(r *Release) []ValidationError {
	var errs []ValidationError
	pkg := r.Graph.Package

	if _, err := registry.ParseTag(r.Era[pkg]); err != nil {
		errs = append(errs, ValidationError{
			Field:   "tag",
			Message: fmt.Sprintf("%q is not a release tag: %v", r.Era[pkg], err),
			Code:    ErrInvalidTag,
		})
	}

	deps := make(map[string]bool, len(r.Graph.Dependencies))
	for _, d := range r.Graph.Dependencies {
		deps[d.Package] = true
	}
	for _, name := range slices.Sorted(maps.Keys(r.Era)) {
		pattern := r.Era[name]
		if name == pkg {
			continue
		}
		if !deps[name] {
			errs = append(errs, ValidationError{
				Field:   "era." + name,
				Message: fmt.Sprintf("%q is not a dependency of %q", name, pkg),
				Code:    ErrUnknownEraPkg,
			})
			continue
		}
		if _, err := registry.ParseMask(pattern); err != nil {
			errs = append(errs, ValidationError{
				Field:   "dependencies." + name,
				Message: fmt.Sprintf("%q is not a version pattern: %v", pattern, err),
				Code:    ErrInvalidPattern,
			})
		}
	}
	return errs
}

// validateDoc checks the ``symbol`` links of a doc comment. Whether a link
// resolves depends on the ecosystem and is reported at ingestion.
func validateDoc(field, text string) []ValidationError {
	var errs []ValidationError
	for {
		open := strings.Index(text, "``")
		if open < 0 {
			return errs
		}
		length := strings.Index(text[open+2:], "``")
		if length < 0 {
			return append(errs, ValidationError{
				Field:   field,
				Message: "unterminated symbol link",
				Code:    ErrUnterminatedLink,
			})
		}
		ref := text[open+2 : open+2+length]
		if _, err := resolver.Parse(ref); err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("link %q: %v", ref, err),
				Code:    ErrInvalidLink,
			})
		}
		text = text[open+2+length+2:]
	}
}
