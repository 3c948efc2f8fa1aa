// Package collections keeps derived, observable lists consistent with one or
// more mutable, observable source lists without recomputing them from scratch
// on every mutation.
//
// # Overview
//
// A source publishes positional [ChangeEvent] values (add, remove, replace,
// move, reset) through [Observable.Subscribe]. A register listens to those
// events, translates them into its own coordinate space, patches its derived
// buffer and re-publishes the translated event to its own subscribers:
//
//	src := collections.NewObservableSlice(1, 2, 3)
//	labels, _ := collections.NewMapped(src, strconv.Itoa)
//	defer labels.Dispose()
//
//	labels.Subscribe(func(e collections.ChangeEvent[string]) {
//	    fmt.Println(e) // add(new=3, [4 5])
//	})
//	_ = src.Add(4, 5)
//	labels.All() // → ["1" "2" "3" "4" "5"]
//
// Two registers are provided:
//
//   - [Mapped] transforms every element of one source with a caller
//     supplied function. Derived values that implement [Disposable] are
//     disposed exactly once, when they permanently leave the buffer.
//   - [Flattening] flattens a list of sections into one flat list, tracking
//     the outer list and every section independently. Items it holds are
//     disposed the same way unless it is built [WithoutOwnership].
//
// Registers are themselves observable lists, so they compose:
//
//	flat, _ := collections.NewFlattening[*collections.ObservableSlice[int], int](sections)
//	rows, _ := collections.NewMapped(flat, newRow)
//
// # Threading
//
// Notifications are delivered synchronously on the goroutine that mutated the
// source. A translated event is published only after the derived buffer has
// been fully updated, so listeners may read the register from inside their
// callback. Mutations of one source (and therefore the registers observing
// it) must be serialized by the caller; reads are safe from any goroutine.
//
// # Lifetime
//
// A register subscribes when it is built and stays subscribed until
// [Mapped.Dispose] or [Flattening.Dispose] is called. Dropping the last
// reference to a register does not unsubscribe it.
package collections
