package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Expression
	}{
		{"Widget", Expression{Path: []string{"Widget"}}},
		{"Foo.bar", Expression{Path: []string{"Foo", "bar"}}},
		{"Foo.bar(_:)", Expression{Path: []string{"Foo", "bar"}, Suffix: "(_:)"}},
		{"Foo.bar(_:)-func", Expression{Path: []string{"Foo", "bar"}, Suffix: "(_:)", Kind: "func"}},
		{"Widget-struct", Expression{Path: []string{"Widget"}, Kind: "struct"}},
		{"B/Widget", Expression{Path: []string{"B", "Widget"}}},
		{"1.0/B/Widget", Expression{Version: "1.0", Path: []string{"B", "Widget"}}},
		{"Foo.index(of:in:)", Expression{Path: []string{"Foo", "index"}, Suffix: "(of:in:)"}},
		{"Foo.map(_:)-swift.method", Expression{Path: []string{"Foo", "map"}, Suffix: "(_:)", Kind: "swift.method"}},
		{"/kit", Expression{Absolute: true, Package: "kit"}},
		{"/kit/2.0/A/Foo.bar()", Expression{Absolute: true, Package: "kit", Version: "2.0", Path: []string{"A", "Foo", "bar"}, Suffix: "()"}},
		{"/kit/A/Foo/bar", Expression{Absolute: true, Package: "kit", Path: []string{"A", "Foo", "bar"}}},
		{"f(a.b:)", Expression{Path: []string{"f"}, Suffix: "(a.b:)"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{"", "  ", "/", "Foo..bar", "Foo.bar(", "Foo)", "1.0", "(x)"} {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestExpression_String(t *testing.T) {
	for _, in := range []string{"/kit/2.0/A/Foo/bar(_:)-func", "1.0/B/Widget", "Foo/bar", "/kit"} {
		e, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, e.String())
	}
}
