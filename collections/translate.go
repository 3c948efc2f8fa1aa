package collections

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/hasbyte1/go-live-collections/arr"
)

// splice is the buffer mutation produced by translating one change event.
//
// The run [index, index+remove) is taken out of the buffer, then insert is
// placed at at, which is expressed in post-removal coordinates. When
// relocate is set the removed run itself is reinserted at at and nothing
// leaves the buffer. When rebuild is set every other field is ignored and the
// span the translation was applied to must be recomputed from its source.
type splice[D any] struct {
	index    int
	remove   int
	at       int
	insert   []D
	relocate bool
	rebuild  bool
}

// shift moves a splice computed against a window of the buffer into the
// buffer's own coordinates.
func (s splice[D]) shift(base int) splice[D] {
	s.index += base
	s.at += base
	return s
}

// applySplice performs s on items and returns the updated buffer together
// with the items that left it for good.
func applySplice[D any](items []D, s splice[D]) ([]D, []D) {
	if s.relocate {
		return arr.MoveRange(items, s.index, s.remove, s.at), nil
	}
	items, evicted := arr.RemoveRange(items, s.index, s.remove)
	return arr.InsertAt(items, s.at, s.insert...), evicted
}

// translate maps a change event of a source onto current, the derived span
// that mirrors that source, producing the span mutation and the outbound
// event expressed in the span's coordinates. A nil outbound event means the
// change has no visible effect.
//
// translate is pure apart from calling transform; it does not modify current.
//
//   - add and remove splice the affected run in place.
//   - replace splices in place when the old and new runs have the same
//     length, otherwise the span is rebuilt and a reset is published.
//   - move relocates the already derived items; nothing is re-derived and
//     nothing is disposed.
//   - reset rebuilds the span and publishes a reset without items.
func translate[S, D any](e ChangeEvent[S], current []D, transform func(S) D) (splice[D], *ChangeEvent[D], error) {
	n := len(current)
	switch e.Kind {
	case ChangeAdd:
		if !arr.SpanInRange(e.NewIndex, 0, n) {
			return splice[D]{}, nil, contractError(e, n)
		}
		if len(e.NewItems) == 0 {
			return splice[D]{index: e.NewIndex, at: e.NewIndex}, nil, nil
		}
		derived := mapItems(e.NewItems, transform)
		out := AddEvent(e.NewIndex, derived)
		return splice[D]{index: e.NewIndex, at: e.NewIndex, insert: derived}, &out, nil

	case ChangeRemove:
		k := len(e.OldItems)
		if !arr.SpanInRange(e.OldIndex, k, n) {
			return splice[D]{}, nil, contractError(e, n)
		}
		if k == 0 {
			return splice[D]{index: e.OldIndex, at: e.OldIndex}, nil, nil
		}
		out := RemoveEvent(e.OldIndex, slices.Clone(current[e.OldIndex:e.OldIndex+k]))
		return splice[D]{index: e.OldIndex, remove: k, at: e.OldIndex}, &out, nil

	case ChangeReplace:
		k := len(e.OldItems)
		if k != len(e.NewItems) {
			out := ResetEvent[D]()
			return splice[D]{rebuild: true}, &out, nil
		}
		if !arr.SpanInRange(e.OldIndex, k, n) || !arr.SpanInRange(e.NewIndex, k, n) {
			return splice[D]{}, nil, contractError(e, n)
		}
		derived := mapItems(e.NewItems, transform)
		out := ReplaceEvent(e.OldIndex, e.NewIndex, slices.Clone(current[e.OldIndex:e.OldIndex+k]), derived)
		return splice[D]{index: e.OldIndex, remove: k, at: e.NewIndex, insert: derived}, &out, nil

	case ChangeMove:
		k := len(e.OldItems)
		if !arr.SpanInRange(e.OldIndex, k, n) || !arr.SpanInRange(e.NewIndex, k, n) {
			return splice[D]{}, nil, contractError(e, n)
		}
		out := MoveEvent(e.OldIndex, e.NewIndex, slices.Clone(current[e.OldIndex:e.OldIndex+k]))
		return splice[D]{index: e.OldIndex, remove: k, at: e.NewIndex, relocate: true}, &out, nil

	case ChangeReset:
		out := ResetEvent[D]()
		return splice[D]{rebuild: true}, &out, nil

	default:
		return splice[D]{}, nil, fmt.Errorf("%w: %s", ErrUnknownChangeKind, e.Kind)
	}
}

// shiftEvent moves an outbound event computed against a window of the
// buffer into the buffer's own coordinates.
func shiftEvent[D any](e ChangeEvent[D], base int) ChangeEvent[D] {
	if e.OldIndex >= 0 {
		e.OldIndex += base
	}
	if e.NewIndex >= 0 {
		e.NewIndex += base
	}
	return e
}

func mapItems[S, D any](items []S, transform func(S) D) []D {
	return arr.Map(items, func(item S, _ int) D { return transform(item) })
}

// contractError reports an event whose positions do not fit the derived
// span of length n that mirrors its source.
func contractError[S any](e ChangeEvent[S], n int) error {
	return fmt.Errorf("%w: %s does not fit %d derived items", ErrIndexOutOfRange, e.Kind, n)
}
