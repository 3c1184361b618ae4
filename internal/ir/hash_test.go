package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReleaseFingerprint_Deterministic(t *testing.T) {
	g := PackageGraph{Package: "swift-nio", Modules: []ModuleFacts{{Name: "NIOCore"}}}
	era := map[string]string{"swift": "5.9.0", "swift-atomics": "1.2.0"}

	a, err := ReleaseFingerprint(g, era)
	require.NoError(t, err)
	b, err := ReleaseFingerprint(g, map[string]string{"swift-atomics": "1.2.0", "swift": "5.9.0"})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	g.Modules[0].Doc = "changed"
	c, err := ReleaseFingerprint(g, era)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDocHash(t *testing.T) {
	assert.Equal(t, DocHash("café"), DocHash("café"))
	assert.NotEqual(t, DocHash("a"), DocHash("b"))
	assert.NotEqual(t, hashWithDomain(DomainDoc, []byte("x")), hashWithDomain(DomainRelease, []byte("x")))
}
