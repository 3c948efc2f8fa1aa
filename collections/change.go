package collections

import (
	"fmt"
	"strings"
)

// ChangeKind tags the variant carried by a [ChangeEvent].
type ChangeKind int

const (
	// ChangeAdd: NewItems were inserted starting at NewIndex.
	ChangeAdd ChangeKind = iota + 1
	// ChangeRemove: OldItems were removed starting at OldIndex.
	ChangeRemove
	// ChangeReplace: OldItems at OldIndex were replaced by NewItems at NewIndex.
	ChangeReplace
	// ChangeMove: the run OldItems moved from OldIndex to NewIndex.
	ChangeMove
	// ChangeReset: the list changed arbitrarily; re-read everything.
	ChangeReset
)

// String returns the lower-case name of the kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	case ChangeReplace:
		return "replace"
	case ChangeMove:
		return "move"
	case ChangeReset:
		return "reset"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Valid reports whether k is one of the five defined kinds.
func (k ChangeKind) Valid() bool {
	return k >= ChangeAdd && k <= ChangeReset
}

// ChangeEvent describes one positional mutation of a list.
//
// Indexes are positions in the publishing list at the time of the event:
// OldIndex in the list before the change, NewIndex in the list after it.
// An index that does not apply to the kind is -1. For ChangeMove the moved
// run is carried in both OldItems and NewItems. ChangeReset carries no items.
type ChangeEvent[T any] struct {
	Kind     ChangeKind
	OldIndex int
	NewIndex int
	OldItems []T
	NewItems []T
}

// ChangeHandler receives change events from an [Observable].
type ChangeHandler[T any] func(ChangeEvent[T])

// AddEvent builds a ChangeAdd event.
func AddEvent[T any](index int, items []T) ChangeEvent[T] {
	return ChangeEvent[T]{Kind: ChangeAdd, OldIndex: -1, NewIndex: index, NewItems: items}
}

// RemoveEvent builds a ChangeRemove event.
func RemoveEvent[T any](index int, items []T) ChangeEvent[T] {
	return ChangeEvent[T]{Kind: ChangeRemove, OldIndex: index, NewIndex: -1, OldItems: items}
}

// ReplaceEvent builds a ChangeReplace event.
func ReplaceEvent[T any](oldIndex, newIndex int, oldItems, newItems []T) ChangeEvent[T] {
	return ChangeEvent[T]{
		Kind:     ChangeReplace,
		OldIndex: oldIndex,
		NewIndex: newIndex,
		OldItems: oldItems,
		NewItems: newItems,
	}
}

// MoveEvent builds a ChangeMove event. newIndex is the start of the run in
// the list after the move.
func MoveEvent[T any](oldIndex, newIndex int, items []T) ChangeEvent[T] {
	return ChangeEvent[T]{
		Kind:     ChangeMove,
		OldIndex: oldIndex,
		NewIndex: newIndex,
		OldItems: items,
		NewItems: items,
	}
}

// ResetEvent builds a ChangeReset event.
func ResetEvent[T any]() ChangeEvent[T] {
	return ChangeEvent[T]{Kind: ChangeReset, OldIndex: -1, NewIndex: -1}
}

// String renders the event compactly for logs, e.g. "move(old=0, new=1, [1 2])".
func (e ChangeEvent[T]) String() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case ChangeAdd:
		fmt.Fprintf(&b, "(new=%d, %v)", e.NewIndex, e.NewItems)
	case ChangeRemove:
		fmt.Fprintf(&b, "(old=%d, %v)", e.OldIndex, e.OldItems)
	case ChangeReplace:
		fmt.Fprintf(&b, "(old=%d, new=%d, %v -> %v)", e.OldIndex, e.NewIndex, e.OldItems, e.NewItems)
	case ChangeMove:
		fmt.Fprintf(&b, "(old=%d, new=%d, %v)", e.OldIndex, e.NewIndex, e.OldItems)
	}
	return b.String()
}
