package collections

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"

	"github.com/hasbyte1/go-live-collections/arr"
)

// ObservableSlice is a mutable list that publishes a [ChangeEvent] for every
// mutation. It is the reference source for registers.
//
// Every mutation publishes exactly one event, synchronously, after the
// contents have been updated. Mutating the list from inside one of its own
// handlers is rejected with [ErrReentrantMutation]. Mutations must be
// serialized by the caller; reads are safe from any goroutine.
type ObservableSlice[T any] struct {
	mu        sync.RWMutex
	items     []T
	notifying atomic.Int32
	changes   notifier[T]
}

// NewObservableSlice creates a list holding a copy of items.
func NewObservableSlice[T any](items ...T) *ObservableSlice[T] {
	return &ObservableSlice[T]{items: slices.Clone(items)}
}

// ─────────────────────────────────────────────────────────────────────────────
// Accessors
// ─────────────────────────────────────────────────────────────────────────────

// Count returns the number of items.
func (s *ObservableSlice[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns the item at index. It panics if index is out of range.
func (s *ObservableSlice[T]) At(index int) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[index]
}

// Get returns the item at index together with a presence flag.
func (s *ObservableSlice[T]) Get(index int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if !arr.InRange(index, len(s.items)) {
		return zero, false
	}
	return s.items[index], true
}

// All returns a copy of the items.
func (s *ObservableSlice[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Seq iterates over a snapshot of the items.
func (s *ObservableSlice[T]) Seq() iter.Seq2[int, T] {
	return seqOf(s.All())
}

// Subscribe registers handler for every subsequent mutation.
func (s *ObservableSlice[T]) Subscribe(handler ChangeHandler[T]) *Subscription {
	return s.changes.subscribe(handler)
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────────────────

// Add appends items. Adding nothing publishes nothing.
func (s *ObservableSlice[T]) Add(items ...T) error {
	return s.mutate(func() (ChangeEvent[T], bool, error) {
		if len(items) == 0 {
			return ChangeEvent[T]{}, false, nil
		}
		index := len(s.items)
		s.items = append(s.items, items...)
		return AddEvent(index, slices.Clone(items)), true, nil
	})
}

// Insert inserts items so that the first one ends up at index.
// index may equal Count(), which appends.
func (s *ObservableSlice[T]) Insert(index int, items ...T) error {
	return s.mutate(func() (ChangeEvent[T], bool, error) {
		if !arr.SpanInRange(index, 0, len(s.items)) {
			return ChangeEvent[T]{}, false, outOfRange("insert", index, len(s.items))
		}
		if len(items) == 0 {
			return ChangeEvent[T]{}, false, nil
		}
		s.items = arr.InsertAt(s.items, index, items...)
		return AddEvent(index, slices.Clone(items)), true, nil
	})
}

// RemoveAt removes the item at index.
func (s *ObservableSlice[T]) RemoveAt(index int) error {
	return s.RemoveRange(index, 1)
}

// RemoveRange removes count items starting at index as one change.
func (s *ObservableSlice[T]) RemoveRange(index, count int) error {
	return s.mutate(func() (ChangeEvent[T], bool, error) {
		if !arr.SpanInRange(index, count, len(s.items)) {
			return ChangeEvent[T]{}, false, fmt.Errorf("%w: remove %d at %d of %d", ErrIndexOutOfRange, count, index, len(s.items))
		}
		if count == 0 {
			return ChangeEvent[T]{}, false, nil
		}
		var removed []T
		s.items, removed = arr.RemoveRange(s.items, index, count)
		return RemoveEvent(index, removed), true, nil
	})
}

// Set replaces the item at index.
func (s *ObservableSlice[T]) Set(index int, item T) error {
	return s.mutate(func() (ChangeEvent[T], bool, error) {
		if !arr.InRange(index, len(s.items)) {
			return ChangeEvent[T]{}, false, outOfRange("set", index, len(s.items))
		}
		old := s.items[index]
		s.items[index] = item
		return ReplaceEvent(index, index, []T{old}, []T{item}), true, nil
	})
}

// Move relocates the item at oldIndex so that it ends up at newIndex.
// A move onto the same position still publishes a move event.
func (s *ObservableSlice[T]) Move(oldIndex, newIndex int) error {
	return s.mutate(func() (ChangeEvent[T], bool, error) {
		if !arr.InRange(oldIndex, len(s.items)) {
			return ChangeEvent[T]{}, false, outOfRange("move from", oldIndex, len(s.items))
		}
		if !arr.InRange(newIndex, len(s.items)) {
			return ChangeEvent[T]{}, false, outOfRange("move to", newIndex, len(s.items))
		}
		item := s.items[oldIndex]
		s.items = arr.MoveRange(s.items, oldIndex, 1, newIndex)
		return MoveEvent(oldIndex, newIndex, []T{item}), true, nil
	})
}

// ReplaceAll swaps the whole contents and publishes a reset.
func (s *ObservableSlice[T]) ReplaceAll(items ...T) error {
	return s.mutate(func() (ChangeEvent[T], bool, error) {
		s.items = slices.Clone(items)
		return ResetEvent[T](), true, nil
	})
}

// Clear removes every item and publishes a reset.
func (s *ObservableSlice[T]) Clear() error {
	return s.ReplaceAll()
}

// mutate applies fn under the write lock, then publishes its event with the
// lock released so that handlers can read the list.
func (s *ObservableSlice[T]) mutate(fn func() (ChangeEvent[T], bool, error)) error {
	if s.notifying.Load() > 0 {
		return ErrReentrantMutation
	}

	e, changed, err := s.apply(fn)
	if err != nil || !changed {
		return err
	}

	s.notifying.Add(1)
	defer s.notifying.Add(-1)
	s.changes.notify(e)
	return nil
}

func (s *ObservableSlice[T]) apply(fn func() (ChangeEvent[T], bool, error)) (ChangeEvent[T], bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func outOfRange(op string, index, n int) error {
	return fmt.Errorf("%w: %s %d of %d", ErrIndexOutOfRange, op, index, n)
}
