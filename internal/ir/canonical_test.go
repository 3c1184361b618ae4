package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", String("hello"), `"hello"`},
		{"int", Int(-42), `-42`},
		{"bool", Bool(true), `true`},
		{"empty array", Array{}, `[]`},
		{"empty object", Object{}, `{}`},
		{"sorted keys", Object{"b": Int(2), "a": Int(1)}, `{"a":1,"b":2}`},
		{"nested", Object{"tags": Strings([]string{"x", "y"})}, `{"tags":["x","y"]}`},
		{"no html escaping", String("<a>&"), `"<a>&"`},
		{"control escaped", String("a\nb\x01"), `"a\nb\u0001"`},
		{"quote and backslash", String(`"\`), `"\"\\"`},
		{"plain map", map[string]any{"z": "1", "a": int64(2)}, `{"a":2,"z":"1"}`},
		{"nfc", String("é"), "\"é\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.ErrorContains(t, err, "floats are forbidden")

	_, err = MarshalCanonical(nil)
	assert.ErrorContains(t, err, "null is forbidden")

	_, err = MarshalCanonical(map[string]any{"k": 2.0})
	assert.ErrorContains(t, err, `object["k"]`)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes as a surrogate pair (0xD83D...) which sorts before
	// U+FF21 in UTF-16 but after it in UTF-8.
	obj := Object{"Ａ": Int(1), "\U0001F600": Int(2)}
	assert.Equal(t, []string{"\U0001F600", "Ａ"}, obj.SortedKeys())
}
