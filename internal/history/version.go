package history

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Version is an opaque, totally ordered release ordinal.
type Version int32

// Forever is the sentinel "not yet retired" version.
const Forever Version = math.MaxInt32

// String implements fmt.Stringer.
func (v Version) String() string {
	if v == Forever {
		return "forever"
	}
	return fmt.Sprintf("v%d", int32(v))
}

// Clock allocates versions. Every call to Next returns a fresh, strictly
// larger ordinal.
//
// Thread-safety: Clock is safe for concurrent use, though the ecosystem's
// single-writer design means only the ingesting goroutine calls Next.
type Clock struct {
	seq atomic.Int32
}

// NewClock creates a clock whose first allocation is version 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock resuming after start. Used by replay.
func NewClockAt(start Version) *Clock {
	c := &Clock{}
	c.seq.Store(int32(start))
	return c
}

// Next allocates the next version.
func (c *Clock) Next() Version {
	return Version(c.seq.Add(1))
}

// Current returns the most recently allocated version (0 if none).
func (c *Clock) Current() Version {
	return Version(c.seq.Load())
}

// Observe advances the clock so that it never hands out v or anything below it.
func (c *Clock) Observe(v Version) {
	for {
		cur := c.seq.Load()
		if cur >= int32(v) {
			return
		}
		if c.seq.CompareAndSwap(cur, int32(v)) {
			return
		}
	}
}
