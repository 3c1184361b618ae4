package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type declaration struct {
	Text string
}

func TestFind_EmptyHead(t *testing.T) {
	var b Buffer[string]
	_, ok := b.Find(Head{}, 3)
	assert.False(t, ok)

	_, ok = b.Value(Head{}, 3)
	assert.False(t, ok)
}

func TestFind_TwoRevisions(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 2, "v0")
	b.Update(&head, 5, "v1")

	tests := []struct {
		name  string
		at    Version
		state State
		value string
		bound Version
	}{
		{"before first appearance", 1, Unavailable, "", 2},
		{"at first appearance", 2, Extant, "v0", 0},
		{"between revisions", 4, Extant, "v0", 0},
		{"at second revision", 5, Extant, "v1", 0},
		{"far future", 100, Extant, "v1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, ok := b.Find(head, tt.at)
			require.True(t, ok)
			assert.Equal(t, tt.state, l.State)
			assert.Equal(t, tt.bound, l.Bound)
			if tt.state == Extant {
				assert.Equal(t, tt.value, l.Value)
			}
		})
	}
}

func TestFind_DeclaredRedeclaredRemoved(t *testing.T) {
	var b Buffer[declaration]
	var head Head
	b.Update(&head, 1, declaration{"func bar()"})
	b.Update(&head, 3, declaration{"func bar() async"})
	b.Push(head, 5)

	l, ok := b.Find(head, 0)
	require.True(t, ok)
	assert.Equal(t, Unavailable, l.State)
	assert.Equal(t, Version(1), l.Bound)

	l, _ = b.Find(head, 2)
	assert.Equal(t, Extant, l.State)
	assert.Equal(t, "func bar()", l.Value.Text)

	l, _ = b.Find(head, 4)
	assert.Equal(t, Extant, l.State)
	assert.Equal(t, "func bar() async", l.Value.Text)

	l, _ = b.Find(head, 6)
	assert.Equal(t, Extinct, l.State)
	assert.Equal(t, Version(5), l.Bound)
}

func TestUpdate_IdempotentForSameValue(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 1, "same")
	for v := Version(2); v < 10; v++ {
		b.Update(&head, v, "same")
	}
	assert.Equal(t, 1, b.Len())
	assert.Len(t, b.Chain(head), 1)
}

func TestUpdate_ReaffirmsRetiredKeyframe(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 1, "x")
	b.Push(head, 2)
	b.Update(&head, 3, "x")

	k, ok := b.Latest(head)
	require.True(t, ok)
	assert.Equal(t, Forever, k.Disappeared)
	assert.Equal(t, 1, b.Len())
}

func TestUpdate_KeepsGapAfterPush(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 1, "old")
	b.Push(head, 3)
	b.Update(&head, 6, "new")

	l, _ := b.Find(head, 4)
	assert.Equal(t, Extinct, l.State)
	assert.Equal(t, Version(3), l.Bound)

	l, _ = b.Find(head, 6)
	assert.Equal(t, Extant, l.State)
	assert.Equal(t, "new", l.Value)
}

func TestUpdate_ChainsPredecessorToSuccessor(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 1, "a")
	b.Update(&head, 4, "b")
	b.Update(&head, 9, "c")

	chain := b.Chain(head)
	require.Len(t, chain, 3)
	for n := 0; n < len(chain)-1; n++ {
		successor := b.At(chain[n])
		predecessor := b.At(chain[n+1])
		assert.Equal(t, successor.Appeared, predecessor.Disappeared)
	}
}

func TestPush_OnlyShrinks(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 1, "v")

	b.Push(head, 4)
	b.Push(head, 7)
	k, _ := b.Latest(head)
	assert.Equal(t, Version(4), k.Disappeared)

	b.Push(head, 2)
	k, _ = b.Latest(head)
	assert.Equal(t, Version(2), k.Disappeared)
}

func TestPush_EmptyHeadIsNoop(t *testing.T) {
	var b Buffer[string]
	b.Push(Head{}, 3)
	assert.Equal(t, 0, b.Len())
}

func TestChain_MonotonicAcrossInterleavedSlots(t *testing.T) {
	var b Buffer[int]
	heads := make([]Head, 4)
	for v := Version(1); v <= 20; v++ {
		for s := range heads {
			if int(v)%(s+2) == 0 {
				b.Update(&heads[s], v, int(v)*10+s)
			} else if int(v)%(s+3) == 0 {
				b.Push(heads[s], v)
			}
		}
	}

	for s, head := range heads {
		chain := b.Chain(head)
		require.NotEmpty(t, chain, "slot %d", s)
		seen := make(map[int]bool)
		for n, idx := range chain {
			assert.False(t, seen[idx], "slot %d revisits index %d", s, idx)
			seen[idx] = true
			if n > 0 {
				assert.Less(t, idx, chain[n-1], "slot %d chain not decreasing", s)
			}
		}
	}
}

func TestClone_IsolatesMutation(t *testing.T) {
	var b Buffer[string]
	var head Head
	b.Update(&head, 1, "a")

	working := b.Clone()
	workingHead := head
	working.Update(&workingHead, 2, "b")
	working.Push(head, 2)

	assert.Equal(t, 1, b.Len())
	k, _ := b.Latest(head)
	assert.Equal(t, Forever, k.Disappeared)
	assert.Equal(t, 2, working.Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "extant", Extant.String())
	assert.Equal(t, "extinct", Extinct.String())
	assert.Equal(t, "unavailable", Unavailable.String())
	assert.Equal(t, "unknown", State(0).String())
}
