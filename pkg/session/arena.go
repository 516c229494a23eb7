// Package session owns the single source of truth for sectors, hubs,
// applications, and viewports, and applies semantic events to it under
// one process-wide write lock.
package session

import "fmt"

// Index is a generation-checked handle into an arena: the index alone
// is not enough to prove validity, since a freed slot can be reused —
// the generation must also match.
type Index struct {
	slot       int
	generation uint32
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is a vector-backed store with O(1) index+generation-checked
// lookup, collapsing the cyclic sector/hub/application references into
// flat storage instead of a graph of pointers.
type Arena[T any] struct {
	slots []slot[T]
	free  []int
}

// NewArena returns an empty arena.
func NewArena[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores a value and returns its handle.
func (a *Arena[T]) Insert(value T) Index {
	if len(a.free) > 0 {
		i := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		a.slots[i].value = value
		a.slots[i].occupied = true
		return Index{slot: i, generation: a.slots[i].generation}
	}
	a.slots = append(a.slots, slot[T]{value: value, occupied: true})
	return Index{slot: len(a.slots) - 1, generation: 0}
}

// Get returns the value at idx if it is still live (generation matches
// and the slot has not been freed).
func (a *Arena[T]) Get(idx Index) (*T, bool) {
	if idx.slot < 0 || idx.slot >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[idx.slot]
	if !s.occupied || s.generation != idx.generation {
		return nil, false
	}
	return &s.value, true
}

// Remove frees idx's slot, bumping its generation so any stale Index
// referencing it fails its next Get — this is the use-after-free
// detection the arena exists to provide.
func (a *Arena[T]) Remove(idx Index) error {
	if idx.slot < 0 || idx.slot >= len(a.slots) {
		return fmt.Errorf("session: index out of range")
	}
	s := &a.slots[idx.slot]
	if !s.occupied || s.generation != idx.generation {
		return fmt.Errorf("session: stale or already-removed index")
	}
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	a.free = append(a.free, idx.slot)
	return nil
}

// Valid reports whether idx currently resolves to a live value.
func (a *Arena[T]) Valid(idx Index) bool {
	_, ok := a.Get(idx)
	return ok
}

// Each visits every live value in slot order.
func (a *Arena[T]) Each(fn func(Index, *T)) {
	for i := range a.slots {
		if !a.slots[i].occupied {
			continue
		}
		fn(Index{slot: i, generation: a.slots[i].generation}, &a.slots[i].value)
	}
}

// Len reports the number of live entries.
func (a *Arena[T]) Len() int {
	return len(a.slots) - len(a.free)
}
