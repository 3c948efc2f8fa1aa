package collections

import (
	"iter"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/hasbyte1/go-live-collections/arr"
)

// State is the lifecycle stage of a register.
type State int32

const (
	// StateUninitialized: the register is being built.
	StateUninitialized State = iota
	// StateActive: the register tracks its source.
	StateActive
	// StateDisposed: the register released its subscriptions and items.
	// This state is terminal.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// buffer is the derived, register-owned list shared by both registers.
// It implements the read-only half of a register.
type buffer[D any] struct {
	mu    sync.RWMutex
	items []D
	state State
}

// Count returns the number of derived items.
func (b *buffer[D]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// At returns the derived item at index. It panics if index is out of range.
func (b *buffer[D]) At(index int) D {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.items[index]
}

// Get returns the derived item at index together with a presence flag.
func (b *buffer[D]) Get(index int) (D, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var zero D
	if !arr.InRange(index, len(b.items)) {
		return zero, false
	}
	return b.items[index], true
}

// All returns a copy of the derived items.
func (b *buffer[D]) All() []D {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.items)
}

// Each calls fn(item, index) for every derived item of a snapshot.
func (b *buffer[D]) Each(fn func(D, int)) {
	for i, item := range b.All() {
		fn(item, i)
	}
}

// Contains reports whether at least one derived item satisfies fn.
func (b *buffer[D]) Contains(fn func(D) bool) bool {
	return b.Search(fn) >= 0
}

// Search returns the index of the first derived item satisfying fn, or -1.
func (b *buffer[D]) Search(fn func(D) bool) int {
	return arr.Search(b.All(), fn)
}

// Seq iterates over a snapshot of the derived items.
func (b *buffer[D]) Seq() iter.Seq2[int, D] {
	return seqOf(b.All())
}

// State returns the lifecycle stage.
func (b *buffer[D]) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

var (
	_ ObservableList[int]    = (*ObservableSlice[int])(nil)
	_ ObservableList[string] = (*Mapped[int, string])(nil)
	_ ObservableList[int]    = (*Flattening[*ObservableSlice[int], int])(nil)
	_ Disposable             = (*Mapped[int, string])(nil)
	_ Disposable             = (*Flattening[*ObservableSlice[int], int])(nil)
)
