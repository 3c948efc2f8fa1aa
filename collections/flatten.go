package collections

import (
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"

	"github.com/hasbyte1/go-live-collections/arr"
)

// Flattening is a live, read-only list holding the items of every section of
// an outer list, in section order then item order.
//
// Flattening subscribes to the outer list (when it is [Observable]) and,
// independently, to every section that is Observable. Section subscriptions
// are created when a section enters the outer list and disposed when it
// leaves it, so their lifetime is bounded by the section's membership.
//
// Translations:
//
//   - outer add, remove and move become one add, remove or move of the
//     sections' contiguous flat runs.
//   - outer replace re-flattens the affected runs and publishes a reset.
//   - outer reset rebuilds everything, section subscriptions included.
//   - section add, remove, move and equal-length replace are shifted by the
//     section's flat offset.
//   - section reset and unequal replace re-flatten only that section's run
//     and publish a reset; other sections are left untouched.
//
// Flattening owns the items it holds: an item implementing [Disposable] is
// disposed once it leaves the flat list and is no longer held anywhere else
// in it, and every held item is disposed by [Flattening.Dispose]. Moves
// dispose nothing. Use [WithoutOwnership] when the sections keep ownership of
// their items.
//
// A section may appear in the outer list more than once; every occurrence is
// tracked as its own run.
type Flattening[S ReadOnlyList[T], T any] struct {
	buffer[T]

	source   ReadOnlyList[S]
	outer    *Subscription
	sections sectionTable[S, T]
	changes  notifier[T]
	opts     options
}

// section is one slot of the inner subscription table. size is the length of
// the slot's run in the flat list and changes only together with it.
type section[S ReadOnlyList[T], T any] struct {
	list         S
	size         int
	subscription *Subscription
}

// sectionTable mirrors the order of the outer list. Its slots are matched by
// identity, so a notification from a section that already left the outer
// list finds no slot and is dropped.
type sectionTable[S ReadOnlyList[T], T any] []*section[S, T]

// offset returns the flat index at which slot k starts.
func (t sectionTable[S, T]) offset(k int) int {
	return t.span(0, k)
}

// span returns the flat size of slots [from, from+count).
func (t sectionTable[S, T]) span(from, count int) int {
	size := 0
	for _, slot := range t[from : from+count] {
		size += slot.size
	}
	return size
}

// NewFlattening builds a register over source, a list of sections. The flat
// list is computed eagerly and the register subscribes to source and to every
// observable section.
//
// Returns an [*ArgumentError] when source is nil.
func NewFlattening[S ReadOnlyList[T], T any](source ReadOnlyList[S], opts ...Option) (*Flattening[S, T], error) {
	if isNil(source) {
		return nil, &ArgumentError{Name: "source"}
	}

	f := &Flattening[S, T]{
		source: source,
		opts:   buildOptions("flattening", opts),
	}
	f.sections, f.items = f.attach(ToSlice(source))
	if observable, ok := source.(Observable[S]); ok {
		f.outer = observable.Subscribe(f.onOuterChanged)
	}
	f.state = StateActive

	f.opts.metrics.setInnerSubscriptions(f.opts.name, f.sections.subscribed())
	glog.V(2).Infof("collections: %s active with %d sections, %d items", f.opts.name, len(f.sections), len(f.items))
	return f, nil
}

// Subscribe registers handler for every translated change.
func (f *Flattening[S, T]) Subscribe(handler ChangeHandler[T]) *Subscription {
	return f.changes.subscribe(handler)
}

// Sections returns the number of sections currently tracked.
func (f *Flattening[S, T]) Sections() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sections)
}

// Dispose unsubscribes from the outer list and from every section and
// disposes every item still held, unless the register was built
// [WithoutOwnership]. It publishes nothing. Calling Dispose again does
// nothing.
func (f *Flattening[S, T]) Dispose() {
	f.mu.Lock()
	if f.state == StateDisposed {
		f.mu.Unlock()
		return
	}
	f.state = StateDisposed
	detached := f.sections
	f.sections = nil
	outer := f.outer
	f.outer = nil
	evicted := f.items
	f.items = nil
	f.mu.Unlock()

	outer.Dispose()
	detach(detached)
	f.opts.metrics.setInnerSubscriptions(f.opts.name, 0)
	f.release(evicted, nil)
	glog.V(2).Infof("collections: %s disposed, released %d sections and %d items", f.opts.name, len(detached), len(evicted))
}

// ─────────────────────────────────────────────────────────────────────────────
// Outer list
// ─────────────────────────────────────────────────────────────────────────────

func (f *Flattening[S, T]) onOuterChanged(e ChangeEvent[S]) {
	out, detached, evicted, active, err := f.applyOuter(e)
	if !active {
		f.opts.metrics.notificationDropped(f.opts.name)
		glog.V(2).Infof("collections: %s ignored outer %s after dispose", f.opts.name, e.Kind)
		return
	}
	if err != nil {
		panic(fmt.Errorf("%s: %w", f.opts.name, err))
	}

	detach(detached)
	f.opts.metrics.setInnerSubscriptions(f.opts.name, f.subscribed())
	f.release(evicted, f.All())
	f.publish(out)
}

// applyOuter mutates the section table and the flat list for one change of
// the outer list. It returns the sections that left the table and the items
// that left the flat list; the caller disposes both once the lock is
// released.
//
// Offsets come from the slots' recorded sizes, which always match the runs
// held in the flat list.
func (f *Flattening[S, T]) applyOuter(e ChangeEvent[S]) (out *ChangeEvent[T], detached sectionTable[S, T], evicted []T, active bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateActive {
		return nil, nil, nil, false, nil
	}

	n := len(f.sections)
	switch e.Kind {
	case ChangeAdd:
		if !arr.SpanInRange(e.NewIndex, 0, n) {
			return nil, nil, nil, true, contractError(e, n)
		}
		offset := f.sections.offset(e.NewIndex)
		slots, flat := f.attach(e.NewItems)
		f.sections = arr.InsertAt(f.sections, e.NewIndex, slots...)
		f.items = arr.InsertAt(f.items, offset, flat...)
		if len(flat) > 0 {
			add := AddEvent(offset, flat)
			out = &add
		}

	case ChangeRemove:
		k := len(e.OldItems)
		if !arr.SpanInRange(e.OldIndex, k, n) {
			return nil, nil, nil, true, contractError(e, n)
		}
		offset := f.sections.offset(e.OldIndex)
		size := f.sections.span(e.OldIndex, k)
		f.sections, detached = arr.RemoveRange(f.sections, e.OldIndex, k)
		f.items, evicted = arr.RemoveRange(f.items, offset, size)
		if size > 0 {
			remove := RemoveEvent(offset, slices.Clone(evicted))
			out = &remove
		}

	case ChangeMove:
		k := len(e.OldItems)
		if !arr.SpanInRange(e.OldIndex, k, n) || !arr.SpanInRange(e.NewIndex, k, n) {
			return nil, nil, nil, true, contractError(e, n)
		}
		oldOffset := f.sections.offset(e.OldIndex)
		size := f.sections.span(e.OldIndex, k)
		f.sections = arr.MoveRange(f.sections, e.OldIndex, k, e.NewIndex)
		newOffset := f.sections.offset(e.NewIndex)
		moved := slices.Clone(f.items[oldOffset : oldOffset+size])
		f.items = arr.MoveRange(f.items, oldOffset, size, newOffset)
		if size > 0 {
			move := MoveEvent(oldOffset, newOffset, moved)
			out = &move
		}

	case ChangeReplace:
		k := len(e.OldItems)
		if !arr.SpanInRange(e.OldIndex, k, n) || !arr.SpanInRange(e.NewIndex, 0, n-k) {
			return nil, nil, nil, true, contractError(e, n)
		}
		oldOffset := f.sections.offset(e.OldIndex)
		size := f.sections.span(e.OldIndex, k)
		f.sections, detached = arr.RemoveRange(f.sections, e.OldIndex, k)
		f.items, evicted = arr.RemoveRange(f.items, oldOffset, size)

		newOffset := f.sections.offset(e.NewIndex)
		slots, flat := f.attach(e.NewItems)
		f.sections = arr.InsertAt(f.sections, e.NewIndex, slots...)
		f.items = arr.InsertAt(f.items, newOffset, flat...)
		reset := ResetEvent[T]()
		out = &reset

	case ChangeReset:
		detached = f.sections
		evicted = f.items
		f.sections, f.items = f.attach(ToSlice(f.source))
		reset := ResetEvent[T]()
		out = &reset

	default:
		return nil, nil, nil, true, fmt.Errorf("%w: %s", ErrUnknownChangeKind, e.Kind)
	}
	return out, detached, evicted, true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────────────────

func (f *Flattening[S, T]) onSectionChanged(slot *section[S, T], e ChangeEvent[T]) {
	out, evicted, active, err := f.applySection(slot, e)
	if !active {
		f.opts.metrics.notificationDropped(f.opts.name)
		glog.V(2).Infof("collections: %s ignored section %s from a retired section", f.opts.name, e.Kind)
		return
	}
	if err != nil {
		panic(fmt.Errorf("%s: %w", f.opts.name, err))
	}
	f.release(evicted, f.All())
	f.publish(out)
}

// applySection translates one change of a section against the slot's run of
// the flat list. A section held by several slots is subscribed once per slot,
// so each occurrence receives the change and patches its own run.
func (f *Flattening[S, T]) applySection(slot *section[S, T], e ChangeEvent[T]) (*ChangeEvent[T], []T, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateActive {
		return nil, nil, false, nil
	}
	pos := slices.Index(f.sections, slot)
	if pos < 0 {
		return nil, nil, false, nil
	}

	base := f.sections.offset(pos)
	s, out, err := translate(e, f.items[base:base+slot.size], identity[T])
	if err != nil {
		return nil, nil, true, err
	}

	var evicted []T
	if s.rebuild {
		current := ToSlice[T](slot.list)
		f.items, evicted = arr.RemoveRange(f.items, base, slot.size)
		f.items = arr.InsertAt(f.items, base, current...)
		slot.size = len(current)
		return out, evicted, true, nil
	}

	f.items, evicted = applySplice(f.items, s.shift(base))
	if !s.relocate {
		slot.size += len(s.insert) - s.remove
	}
	if out != nil {
		shifted := shiftEvent(*out, base)
		out = &shifted
	}
	return out, evicted, true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Subscription table
// ─────────────────────────────────────────────────────────────────────────────

// attach creates one slot per list, subscribing to the observable ones, and
// returns the lists' items flattened in slot order.
func (f *Flattening[S, T]) attach(lists []S) (sectionTable[S, T], []T) {
	slots := make(sectionTable[S, T], len(lists))
	var flat []T
	for i, list := range lists {
		items := ToSlice[T](list)
		flat = append(flat, items...)
		slot := &section[S, T]{list: list, size: len(items)}
		if observable, ok := any(list).(Observable[T]); ok {
			slot.subscription = observable.Subscribe(func(e ChangeEvent[T]) {
				f.onSectionChanged(slot, e)
			})
		}
		slots[i] = slot
	}
	return slots, flat
}

func detach[S ReadOnlyList[T], T any](slots sectionTable[S, T]) {
	for _, slot := range slots {
		slot.subscription.Dispose()
	}
}

// subscribed returns the number of slots holding a live subscription.
func (t sectionTable[S, T]) subscribed() int {
	n := 0
	for _, slot := range t {
		if slot.subscription != nil {
			n++
		}
	}
	return n
}

func (f *Flattening[S, T]) subscribed() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sections.subscribed()
}

// release disposes the evicted items that are not retained, unless the
// register was built without ownership.
func (f *Flattening[S, T]) release(evicted, retained []T) {
	if f.opts.borrowed || len(evicted) == 0 {
		return
	}
	f.opts.metrics.disposed(f.opts.name, disposeEvicted(evicted, retained))
}

func (f *Flattening[S, T]) publish(out *ChangeEvent[T]) {
	if out == nil {
		return
	}
	glog.V(2).Infof("collections: %s published %s", f.opts.name, out)
	f.opts.metrics.eventTranslated(f.opts.name, out.Kind)
	f.changes.notify(*out)
}

func identity[T any](item T) T { return item }
