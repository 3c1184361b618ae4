package ecosystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docket/internal/resolver"
)

func TestLink(t *testing.T) {
	s := newTestService(t)
	ingestFixture(t, s)
	e := s.Snapshot()

	tests := []struct {
		name       string
		text       string
		kind       resolver.Kind
		redirected bool
		exact      string
		canonical  string
	}{
		{"own symbol", "Square", resolver.One, false, "/reference/kit/1.0.0/Kit/Square", "/reference/kit/Kit/Square"},
		{"imported symbol", "Shape", resolver.One, false, "/reference/base/1.0.0/Base/Shape", "/reference/base/Base/Shape"},
		{"outed spelling", "square", resolver.One, true, "/reference/kit/1.0.0/Kit/Square", "/reference/kit/Kit/Square"},
		{"no match", "Missing", resolver.Unresolved, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := e.Link("kit", "1", "Kit", tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, link.Kind)
			assert.Equal(t, tt.redirected, link.Redirected)
			assert.Equal(t, tt.exact, link.Exact)
			assert.Equal(t, tt.canonical, link.Canonical)
		})
	}
}

func TestLink_Ambiguous(t *testing.T) {
	s := newTestService(t)
	ingestFixture(t, s)

	link, err := s.Snapshot().Link("kit", "", "Kit", "Square.scale(by:)")
	require.NoError(t, err)
	assert.Equal(t, resolver.Ambiguous, link.Kind)
	assert.Len(t, link.Candidates, 2)
	assert.Empty(t, link.Exact)
}

func TestLink_Errors(t *testing.T) {
	s := newTestService(t)
	ingestFixture(t, s)
	e := s.Snapshot()

	_, err := e.Link("nope", "", "Kit", "Square")
	assert.ErrorIs(t, err, ErrUnknownPackage)

	_, err = e.Link("kit", "9", "Kit", "Square")
	assert.ErrorIs(t, err, ErrUnknownRelease)

	_, err = e.Link("kit", "", "Nope", "Square")
	assert.ErrorIs(t, err, ErrUnknownModule)

	_, err = e.Link("kit", "", "Kit", "Foo..bar")
	assert.ErrorIs(t, err, resolver.ErrMalformed)
}
