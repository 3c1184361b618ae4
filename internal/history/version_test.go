package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_Monotonic(t *testing.T) {
	c := NewClock()
	assert.Equal(t, Version(0), c.Current())
	assert.Equal(t, Version(1), c.Next())
	assert.Equal(t, Version(2), c.Next())
	assert.Equal(t, Version(2), c.Current())
}

func TestClock_ResumesAt(t *testing.T) {
	c := NewClockAt(41)
	assert.Equal(t, Version(42), c.Next())
}

func TestClock_Observe(t *testing.T) {
	c := NewClock()
	c.Observe(10)
	assert.Equal(t, Version(11), c.Next())

	c.Observe(3)
	assert.Equal(t, Version(12), c.Next())
}

func TestClock_ConcurrentNextIsUnique(t *testing.T) {
	c := NewClock()
	const workers, each = 8, 100

	var mu sync.Mutex
	seen := make(map[Version]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				v := c.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*each)
	assert.Equal(t, Version(workers*each), c.Current())
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "v7", Version(7).String())
	assert.Equal(t, "forever", Forever.String())
}
