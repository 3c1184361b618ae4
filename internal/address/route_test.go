package address

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var core = ModuleID{Package: 1, Offset: 0}

func TestIntern_Deterministic(t *testing.T) {
	s := NewStems()
	a := s.Intern([]string{"Foo", "Bar"})
	b := s.Intern([]string{"Foo", "Bar"})
	c := s.Intern([]string{"Foo"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, Stem(0), s.Intern(nil))
	assert.Equal(t, []string{"Foo", "Bar"}, s.Components(a))
}

func TestIntern_ComponentBoundariesMatter(t *testing.T) {
	s := NewStems()
	assert.NotEqual(t, s.Intern([]string{"ab", "c"}), s.Intern([]string{"a", "bc"}))
}

func TestRoute_SplitBetweenPrefixAndComponentsIsIrrelevant(t *testing.T) {
	s := NewStems()
	r1, ok := s.Route(core, []string{"Foo"}, []string{"Bar", "baz"}, "")
	require.True(t, ok)
	r2, ok := s.Route(core, []string{"Foo", "Bar"}, []string{"baz"}, "")
	require.True(t, ok)
	r3, ok := s.Route(core, nil, []string{"Foo", "Bar", "baz"}, "")
	require.True(t, ok)

	assert.Equal(t, r1, r2)
	assert.Equal(t, r1, r3)
}

func TestRoute_SuffixAndNamespaceDistinguish(t *testing.T) {
	s := NewStems()
	plain, _ := s.Route(core, nil, []string{"Foo", "bar"}, "")
	labelled, _ := s.Route(core, nil, []string{"Foo", "bar"}, "(_:)")
	other, _ := s.Route(ModuleID{Package: 2}, nil, []string{"Foo", "bar"}, "")

	assert.NotEqual(t, plain, labelled)
	assert.NotEqual(t, plain, other)
	assert.Equal(t, plain.Stem, labelled.Stem)
}

func TestRoute_EmptyPath(t *testing.T) {
	s := NewStems()
	_, ok := s.Route(core, nil, nil, "")
	assert.False(t, ok)
	_, ok = s.Find(core, nil, nil, "")
	assert.False(t, ok)
}

func TestFind_DoesNotGrowTable(t *testing.T) {
	s := NewStems()
	registered, _ := s.Route(core, nil, []string{"Foo", "bar"}, "")
	before := s.Len()

	found, ok := s.Find(core, nil, []string{"Foo", "bar"}, "")
	require.True(t, ok)
	assert.Equal(t, registered, found)

	_, ok = s.Find(core, nil, []string{"Missing", "bar"}, "")
	assert.False(t, ok)
	assert.Equal(t, before, s.Len())
}

func TestOuted_FoldsCaseAndDropsSuffix(t *testing.T) {
	s := NewStems()
	outed, ok := s.Outed(core, nil, []string{"Foo", "Bar"})
	require.True(t, ok)

	found, ok := s.FindOuted(core, []string{"foo"}, []string{"BAR"})
	require.True(t, ok)
	assert.Equal(t, outed, found)

	primary, _ := s.Route(core, nil, []string{"Foo", "Bar"}, "")
	assert.NotEqual(t, primary, outed)
}

func TestFold(t *testing.T) {
	assert.Nil(t, Fold(nil))
	assert.Equal(t, []string{"foobar", "abc"}, Fold([]string{"FooBar", "AbC"}))
}

func TestIntern_ConcurrentReadersAndWriter(t *testing.T) {
	s := NewStems()
	var wg sync.WaitGroup
	results := make([][]Stem, 4)
	for w := range results {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				results[w] = append(results[w], s.Intern([]string{"T", string(rune('a' + i%26))}))
			}
		}(w)
	}
	wg.Wait()

	for w := 1; w < len(results); w++ {
		assert.Equal(t, results[0], results[w])
	}
	assert.Equal(t, 27, s.Len())
}
