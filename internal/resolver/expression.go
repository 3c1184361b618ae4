package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned by Parse for expressions that cannot name
// anything.
var ErrMalformed = errors.New("malformed reference")

// Expression is a parsed reference.
type Expression struct {
	Absolute bool
	Package  string
	Version  string
	Path     []string
	Suffix   string
	Kind     string
}

// Parse splits a reference expression into its parts.
func Parse(text string) (Expression, error) {
	var e Expression
	text = strings.TrimSpace(text)
	if text == "" {
		return e, fmt.Errorf("%w: empty", ErrMalformed)
	}
	if depth := parenDepth(text); depth != 0 {
		return e, fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformed, text)
	}

	slashed := splitOutside(text, "/")
	if strings.HasPrefix(text, "/") {
		e.Absolute = true
		slashed = slashed[1:]
		if len(slashed) == 0 || slashed[0] == "" {
			return e, fmt.Errorf("%w: missing package in %q", ErrMalformed, text)
		}
		e.Package, slashed = slashed[0], slashed[1:]
	}
	if len(slashed) > 0 && isVersionToken(slashed[0]) {
		e.Version, slashed = slashed[0], slashed[1:]
	}

	if n := len(slashed); n > 0 {
		slashed[n-1], e.Kind = cutKind(slashed[n-1])
	}
	for _, s := range slashed {
		for _, c := range splitOutside(s, ".") {
			if c == "" {
				return e, fmt.Errorf("%w: empty component in %q", ErrMalformed, text)
			}
			e.Path = append(e.Path, c)
		}
	}
	if len(e.Path) == 0 && !e.Absolute {
		return e, fmt.Errorf("%w: no path in %q", ErrMalformed, text)
	}
	if len(e.Path) > 0 {
		last := len(e.Path) - 1
		name, suffix := splitLeaf(e.Path[last])
		if name == "" {
			return e, fmt.Errorf("%w: empty name in %q", ErrMalformed, text)
		}
		e.Path[last], e.Suffix = name, suffix
	}
	return e, nil
}

func (e Expression) String() string {
	var b strings.Builder
	if e.Absolute {
		b.WriteString("/" + e.Package)
		if e.Version != "" {
			b.WriteString("/" + e.Version)
		}
		if len(e.Path) > 0 {
			b.WriteString("/")
		}
	} else if e.Version != "" {
		b.WriteString(e.Version + "/")
	}
	b.WriteString(strings.Join(e.Path, "/"))
	b.WriteString(e.Suffix)
	if e.Kind != "" {
		b.WriteString("-" + e.Kind)
	}
	return b.String()
}

func isVersionToken(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// cutKind removes a trailing "-kind" hint outside parentheses.
func cutKind(s string) (string, string) {
	depth := 0
	for i := len(s) - 1; i > 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
		case '-':
			if depth == 0 && isKind(s[i+1:]) {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

// splitLeaf separates "name(suffix)" into its parts.
func splitLeaf(s string) (name, suffix string) {
	if open := strings.IndexByte(s, '('); open >= 0 {
		return s[:open], s[open:]
	}
	return s, ""
}

func isKind(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && r != '.' {
			return false
		}
	}
	return true
}

// splitOutside splits s on sep, ignoring separators inside parentheses.
func splitOutside(s, sep string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && strings.HasPrefix(s[i:], sep) {
				parts = append(parts, s[start:i])
				start = i + len(sep)
			}
		}
	}
	return append(parts, s[start:])
}

func parenDepth(s string) int {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return depth
			}
		}
	}
	return depth
}
