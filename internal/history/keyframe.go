package history

import "slices"

// Keyframe records that Value held over the half-open interval
// [Appeared, Disappeared).
type Keyframe[V comparable] struct {
	Value       V
	Appeared    Version
	Disappeared Version

	// previous is the buffer index of the prior keyframe of the same slot,
	// or the keyframe's own index when it is the first one.
	previous int
}

// Head is the optional index of the newest keyframe of a slot. The zero
// Head means the slot never existed.
type Head struct {
	index int32
	ok    bool
}

// Index returns the buffer index the head points at.
func (h Head) Index() (int, bool) {
	return int(h.index), h.ok
}

// IsSet reports whether the slot has any history.
func (h Head) IsSet() bool {
	return h.ok
}

func headAt(i int) Head {
	return Head{index: int32(i), ok: true}
}

// State is a keyframe's temporal status relative to a queried version.
type State uint8

const (
	// Extant means the value holds at the queried version.
	Extant State = iota + 1
	// Extinct means the slot was retired at Lookup.Bound and has not
	// been re-affirmed since.
	Extinct
	// Unavailable means the slot does not appear until Lookup.Bound.
	Unavailable
)

func (s State) String() string {
	switch s {
	case Extant:
		return "extant"
	case Extinct:
		return "extinct"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Lookup is the result of a point-in-time query.
//
// Bound is the retirement version for Extinct and the first appearance for
// Unavailable; it is zero for Extant. Value is the keyframe's value in every
// state, but only meaningful to callers when State is Extant.
type Lookup[V comparable] struct {
	Value V
	State State
	Bound Version
}

// Extant reports whether the lookup found a live value.
func (l Lookup[V]) Extant() bool {
	return l.State == Extant
}

// Buffer is an append-only keyframe store shared by many slots.
//
// A Buffer is not safe for concurrent mutation. Readers of a committed
// snapshot never mutate; writers work on a Clone.
type Buffer[V comparable] struct {
	frames []Keyframe[V]
}

// Len returns the number of keyframes in the buffer.
func (b *Buffer[V]) Len() int {
	return len(b.frames)
}

// At returns the keyframe at buffer index i.
func (b *Buffer[V]) At(i int) Keyframe[V] {
	return b.frames[i]
}

// Clone returns a copy whose mutation does not affect b.
func (b *Buffer[V]) Clone() *Buffer[V] {
	return &Buffer[V]{frames: slices.Clone(b.frames)}
}

// Update records value for the slot at version at.
//
// An empty head gets a fresh keyframe. A changed value appends a keyframe
// linked to the old head, and the old head's validity shrinks to end at at.
// An unchanged value re-affirms the head by resetting Disappeared to
// Forever, so repeated identical updates never grow the chain.
func (b *Buffer[V]) Update(head *Head, at Version, value V) {
	i, ok := head.Index()
	if !ok {
		b.frames = append(b.frames, Keyframe[V]{
			Value:       value,
			Appeared:    at,
			Disappeared: Forever,
			previous:    len(b.frames),
		})
		*head = headAt(len(b.frames) - 1)
		return
	}

	current := &b.frames[i]
	if current.Value == value {
		current.Disappeared = Forever
		return
	}

	// A gap left by an earlier Push is kept: only shrink.
	if current.Disappeared > at {
		current.Disappeared = at
	}
	b.frames = append(b.frames, Keyframe[V]{
		Value:       value,
		Appeared:    at,
		Disappeared: Forever,
		previous:    i,
	})
	*head = headAt(len(b.frames) - 1)
}

// Push retires the slot's newest keyframe starting at at. It only ever
// shrinks the validity window: a keyframe already retired at or before at
// is left alone.
func (b *Buffer[V]) Push(head Head, at Version) {
	i, ok := head.Index()
	if !ok {
		return
	}
	if b.frames[i].Disappeared > at {
		b.frames[i].Disappeared = at
	}
}

// Find returns the slot's status at version at. The boolean is false only
// when the slot has no history at all.
func (b *Buffer[V]) Find(head Head, at Version) (Lookup[V], bool) {
	i, ok := head.Index()
	if !ok {
		return Lookup[V]{}, false
	}
	for {
		k := b.frames[i]
		if at >= k.Disappeared {
			return Lookup[V]{Value: k.Value, State: Extinct, Bound: k.Disappeared}, true
		}
		if at >= k.Appeared {
			return Lookup[V]{Value: k.Value, State: Extant}, true
		}
		prev := k.previous
		if prev < 0 || prev >= i {
			return Lookup[V]{Value: k.Value, State: Unavailable, Bound: k.Appeared}, true
		}
		i = prev
	}
}

// Value returns the slot's value if it is extant at at.
func (b *Buffer[V]) Value(head Head, at Version) (V, bool) {
	l, ok := b.Find(head, at)
	if !ok || !l.Extant() {
		var zero V
		return zero, false
	}
	return l.Value, true
}

// Latest returns the newest keyframe of the slot regardless of extancy.
func (b *Buffer[V]) Latest(head Head) (Keyframe[V], bool) {
	i, ok := head.Index()
	if !ok {
		return Keyframe[V]{}, false
	}
	return b.frames[i], true
}

// Chain returns the buffer indices visited walking back from head, newest
// first.
func (b *Buffer[V]) Chain(head Head) []int {
	i, ok := head.Index()
	if !ok {
		return nil
	}
	var chain []int
	for {
		chain = append(chain, i)
		prev := b.frames[i].previous
		if prev < 0 || prev >= i {
			return chain
		}
		i = prev
	}
}
