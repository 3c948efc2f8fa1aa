package collections

import "reflect"

// ReadOnlyList is the minimal ordered, random-access read contract a source
// must satisfy. At may panic for an index outside [0, Count()).
//
// Accept ReadOnlyList in your own functions so that plain lists, observable
// lists and registers can be used interchangeably.
type ReadOnlyList[T any] interface {
	// Count returns the number of items.
	Count() int

	// At returns the item at index.
	At(index int) T
}

// Observable is implemented by lists that publish their mutations.
type Observable[T any] interface {
	// Subscribe registers handler for every subsequent change. Disposing the
	// returned subscription stops delivery.
	Subscribe(handler ChangeHandler[T]) *Subscription
}

// ObservableList is a list that publishes its mutations.
type ObservableList[T any] interface {
	ReadOnlyList[T]
	Observable[T]
}

// Disposable is implemented by values that hold resources to release.
//
// Values implementing Disposable are disposed by the register holding them
// when they are evicted from its buffer. Registers themselves
// implement Disposable.
type Disposable interface {
	Dispose()
}

// ToSlice copies every item of list into a new slice.
func ToSlice[T any](list ReadOnlyList[T]) []T {
	n := list.Count()
	out := make([]T, n)
	for i := 0; i < n; i++ {
		out[i] = list.At(i)
	}
	return out
}

// Static returns a fixed, non-observable list holding a copy of items.
// Registers built over it compute their state once and never change.
func Static[T any](items ...T) ReadOnlyList[T] {
	dst := make(staticList[T], len(items))
	copy(dst, items)
	return dst
}

type staticList[T any] []T

func (s staticList[T]) Count() int     { return len(s) }
func (s staticList[T]) At(index int) T { return s[index] }

// disposeItem disposes item if it has the capability and reports whether it
// did.
func disposeItem[D any](item D) bool {
	d, ok := any(item).(Disposable)
	if !ok || isNil(d) {
		return false
	}
	d.Dispose()
	return true
}

// disposeAll disposes every disposable value in items and returns how many
// were disposed.
func disposeAll[D any](items []D) int {
	n := 0
	for _, item := range items {
		if disposeItem(item) {
			n++
		}
	}
	return n
}

// disposeEvicted disposes every disposable value of evicted that is not also
// held in retained, at most once per value, and returns how many were
// disposed. Values are matched by identity; values whose dynamic type is not
// comparable cannot be matched and are always disposed.
func disposeEvicted[D any](evicted, retained []D) int {
	seen := make(map[Disposable]struct{})
	for _, item := range retained {
		if d, ok := identityOf(item); ok {
			seen[d] = struct{}{}
		}
	}

	n := 0
	for _, item := range evicted {
		d, ok := identityOf(item)
		if ok {
			if _, held := seen[d]; held {
				continue
			}
			seen[d] = struct{}{}
		}
		if disposeItem(item) {
			n++
		}
	}
	return n
}

// identityOf returns item as a map key when it is a comparable Disposable.
func identityOf[D any](item D) (Disposable, bool) {
	d, ok := any(item).(Disposable)
	if !ok || isNil(d) || !reflect.TypeOf(d).Comparable() {
		return nil, false
	}
	return d, true
}

// isNil reports whether v is nil or an interface wrapping a nil pointer,
// map, slice, func or chan.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
