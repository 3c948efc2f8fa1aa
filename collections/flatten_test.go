package collections_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-live-collections/collections"
)

func TestNewFlattening_Validation(t *testing.T) {
	_, err := collections.NewFlattening[section, int](nil)
	assert.ErrorIs(t, err, collections.ErrNilArgument)

	var argErr *collections.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "source", argErr.Name)
}

func TestFlattening_InitialState(t *testing.T) {
	outer := sections([]int{1, 2}, nil, []int{3}, []int{4, 5, 6})
	f := flatten(t, outer)

	assert.Equal(t, collections.StateActive, f.State())
	assert.Equal(t, 4, f.Sections())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, f.All())
	assert.Equal(t, 6, f.Count())
	assert.Equal(t, 4, f.At(3))
}

func TestFlattening_EmptyOuter(t *testing.T) {
	outer := sections()
	f := flatten(t, outer)
	events := record[int](f)

	assert.Zero(t, f.Count())
	require.NoError(t, outer.Add(collections.NewObservableSlice(1, 2)))

	assert.Equal(t, collections.AddEvent(0, []int{1, 2}), events.single(t))
	assert.Equal(t, []int{1, 2}, f.All())
}

func TestFlattening_OuterInsert(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.Insert(1, collections.NewObservableSlice(4)))

	assert.Equal(t, collections.AddEvent(2, []int{4}), events.single(t))
	assert.Equal(t, []int{1, 2, 4, 3}, f.All())
	assert.Equal(t, 3, f.Sections())
}

func TestFlattening_OuterInsertEmptySection(t *testing.T) {
	outer := sections([]int{1}, []int{2})
	f := flatten(t, outer)
	events := record[int](f)

	empty := collections.NewObservableSlice[int]()
	require.NoError(t, outer.Insert(1, empty))
	assert.Empty(t, events.events)

	require.NoError(t, empty.Add(7, 8))
	assert.Equal(t, collections.AddEvent(1, []int{7, 8}), events.single(t))
	assert.Equal(t, []int{1, 7, 8, 2}, f.All())
}

func TestFlattening_OuterRemove(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3}, []int{4, 5, 6})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.RemoveAt(1))

	assert.Equal(t, collections.RemoveEvent(2, []int{3}), events.single(t))
	assert.Equal(t, []int{1, 2, 4, 5, 6}, f.All())

	events.events = nil
	require.NoError(t, outer.RemoveRange(0, 2))
	assert.Equal(t, collections.RemoveEvent(0, []int{1, 2, 4, 5, 6}), events.single(t))
	assert.Empty(t, f.All())
	assert.Zero(t, f.Sections())
}

func TestFlattening_OuterMove(t *testing.T) {
	cases := []struct {
		name     string
		from, to int
		want     collections.ChangeEvent[int]
		flat     []int
	}{
		{"forward", 0, 1, collections.MoveEvent(0, 1, []int{1, 2}), []int{3, 1, 2, 4, 5, 6}},
		{"to end", 0, 2, collections.MoveEvent(0, 4, []int{1, 2}), []int{3, 4, 5, 6, 1, 2}},
		{"backward", 2, 0, collections.MoveEvent(3, 0, []int{4, 5, 6}), []int{4, 5, 6, 1, 2, 3}},
		{"in place", 1, 1, collections.MoveEvent(2, 2, []int{3}), []int{1, 2, 3, 4, 5, 6}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outer := sections([]int{1, 2}, []int{3}, []int{4, 5, 6})
			f := flatten(t, outer)
			events := record[int](f)

			require.NoError(t, outer.Move(tc.from, tc.to))

			assert.Equal(t, tc.want, events.single(t))
			assert.Equal(t, tc.flat, f.All())
			assert.Equal(t, rebuilt(outer), f.All())
		})
	}
}

func TestFlattening_OuterMoveOfEmptySectionIsSilent(t *testing.T) {
	outer := sections([]int{1}, nil, []int{2})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.Move(1, 0))

	assert.Empty(t, events.events)
	assert.Equal(t, []int{1, 2}, f.All())
}

func TestFlattening_OuterSetResets(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3}, []int{4})
	f := flatten(t, outer)
	events := record[int](f)

	old := outer.At(1)
	replacement := collections.NewObservableSlice(7, 8, 9)
	require.NoError(t, outer.Set(1, replacement))

	assert.Equal(t, collections.ResetEvent[int](), events.single(t))
	assert.Equal(t, []int{1, 2, 7, 8, 9, 4}, f.All())

	// the replaced section no longer propagates, its successor does
	events.events = nil
	require.NoError(t, old.Add(100))
	assert.Empty(t, events.events)

	require.NoError(t, replacement.RemoveAt(0))
	assert.Equal(t, collections.RemoveEvent(2, []int{7}), events.single(t))
	assert.Equal(t, []int{1, 2, 8, 9, 4}, f.All())
}

func TestFlattening_OuterResetRebuildsSubscriptions(t *testing.T) {
	outer := sections([]int{1}, []int{2})
	f := flatten(t, outer)
	events := record[int](f)

	before := []section{outer.At(0), outer.At(1)}
	kept := before[1]
	fresh := collections.NewObservableSlice(5)
	require.NoError(t, outer.ReplaceAll(kept, fresh))

	assert.Equal(t, collections.ResetEvent[int](), events.single(t))
	assert.Equal(t, []int{2, 5}, f.All())
	assert.Equal(t, 2, f.Sections())

	events.events = nil
	require.NoError(t, before[0].Add(9))
	assert.Empty(t, events.events)

	// a section surviving the reset is subscribed exactly once
	require.NoError(t, kept.Add(3))
	assert.Equal(t, collections.AddEvent(1, []int{3}), events.single(t))

	events.events = nil
	require.NoError(t, fresh.Add(6))
	assert.Equal(t, collections.AddEvent(3, []int{6}), events.single(t))
	assert.Equal(t, []int{2, 3, 5, 6}, f.All())
}

func TestFlattening_InnerAdd(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3}, []int{4})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.At(1).Add(9, 10))

	assert.Equal(t, collections.AddEvent(3, []int{9, 10}), events.single(t))
	assert.Equal(t, []int{1, 2, 3, 9, 10, 4}, f.All())
}

func TestFlattening_InnerRemove(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3, 4, 5}, []int{6})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.At(1).RemoveRange(1, 2))

	assert.Equal(t, collections.RemoveEvent(3, []int{4, 5}), events.single(t))
	assert.Equal(t, []int{1, 2, 3, 6}, f.All())
}

func TestFlattening_InnerSet(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3, 4})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.At(1).Set(1, 40))

	assert.Equal(t, collections.ReplaceEvent(3, 3, []int{4}, []int{40}), events.single(t))
	assert.Equal(t, []int{1, 2, 3, 40}, f.All())
}

func TestFlattening_InnerMove(t *testing.T) {
	outer := sections([]int{1}, []int{2, 3, 4}, []int{5})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.At(1).Move(0, 2))

	assert.Equal(t, collections.MoveEvent(1, 3, []int{2}), events.single(t))
	assert.Equal(t, []int{1, 3, 4, 2, 5}, f.All())
}

func TestFlattening_InnerResetTouchesOnlyItsSection(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3, 4, 5, 6}, []int{9})
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, outer.At(1).ReplaceAll(7, 8))

	assert.Equal(t, collections.ResetEvent[int](), events.single(t))
	assert.Equal(t, []int{1, 2, 7, 8, 9}, f.All())

	events.events = nil
	require.NoError(t, outer.At(1).Clear())
	assert.Equal(t, collections.ResetEvent[int](), events.single(t))
	assert.Equal(t, []int{1, 2, 9}, f.All())
}

func TestFlattening_InnerChangeAfterOuterMove(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3}, []int{4, 5})
	f := flatten(t, outer)

	moved := outer.At(0)
	require.NoError(t, outer.Move(0, 2))
	events := record[int](f)

	require.NoError(t, moved.Add(6))

	assert.Equal(t, collections.AddEvent(5, []int{6}), events.single(t))
	assert.Equal(t, []int{3, 4, 5, 1, 2, 6}, f.All())
}

func TestFlattening_RemovedSectionStopsPropagating(t *testing.T) {
	outer := sections([]int{1}, []int{2})
	f := flatten(t, outer)

	removed := outer.At(0)
	require.NoError(t, outer.RemoveAt(0))
	events := record[int](f)

	require.NoError(t, removed.Add(3))
	require.NoError(t, removed.Clear())

	assert.Empty(t, events.events)
	assert.Equal(t, []int{2}, f.All())
	assert.Equal(t, 1, f.Sections())
}

func TestFlattening_Dispose(t *testing.T) {
	outer := sections([]int{1}, []int{2})
	f, err := collections.NewFlattening[section, int](outer)
	require.NoError(t, err)
	events := record[int](f)

	inner := outer.At(0)
	f.Dispose()
	f.Dispose()

	assert.Equal(t, collections.StateDisposed, f.State())
	assert.Zero(t, f.Count())
	assert.Zero(t, f.Sections())

	require.NoError(t, inner.Add(5))
	require.NoError(t, outer.Add(collections.NewObservableSlice(6)))
	require.NoError(t, outer.Clear())
	assert.Empty(t, events.events)
}

type resourceSection = *collections.ObservableSlice[*resource]

func resources(values ...int) resourceSection {
	items := make([]*resource, len(values))
	for i, v := range values {
		items[i] = newResource(v)
	}
	return collections.NewObservableSlice(items...)
}

func disposals(rs []*resource) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.disposed
	}
	return out
}

func TestFlattening_DisposesEvictedItems(t *testing.T) {
	first, second, third := resources(1, 2), resources(3), resources(4, 5, 6)
	outer := collections.NewObservableSlice(first, second, third)
	f, err := collections.NewFlattening[resourceSection, *resource](outer)
	require.NoError(t, err)

	removed := first.All()
	require.NoError(t, outer.RemoveAt(0))
	assert.Equal(t, []int{1, 1}, disposals(removed))
	assert.Equal(t, []int{0, 0, 0, 0}, disposals(f.All()))

	moved := f.All()
	require.NoError(t, outer.Move(0, 1))
	require.NoError(t, third.Move(0, 2))
	assert.Equal(t, []int{0, 0, 0, 0}, disposals(moved))

	evicted := third.At(0)
	require.NoError(t, third.RemoveAt(0))
	assert.Equal(t, 1, evicted.disposed)

	replaced := third.At(0)
	require.NoError(t, third.Set(0, newResource(7)))
	assert.Equal(t, 1, replaced.disposed)

	reset := third.All()
	require.NoError(t, third.ReplaceAll(newResource(8), newResource(9)))
	assert.Equal(t, []int{1, 1}, disposals(reset))

	swapped := second.All()
	require.NoError(t, outer.Set(1, resources(10)))
	assert.Equal(t, []int{1}, disposals(swapped))

	// items of a section kept across an outer reset stay alive
	kept := outer.At(0)
	dropped := outer.At(1).All()
	require.NoError(t, outer.ReplaceAll(kept))
	assert.Equal(t, []int{1}, disposals(dropped))
	assert.Equal(t, []int{0, 0}, disposals(kept.All()))

	held := f.All()
	f.Dispose()
	f.Dispose()
	assert.Equal(t, []int{1, 1}, disposals(held))
}

func TestFlattening_WithoutOwnership(t *testing.T) {
	first := resources(1, 2)
	outer := collections.NewObservableSlice(first, resources(3))
	f, err := collections.NewFlattening[resourceSection, *resource](outer, collections.WithoutOwnership())
	require.NoError(t, err)

	items := f.All()
	require.NoError(t, first.RemoveAt(0))
	require.NoError(t, outer.Clear())
	f.Dispose()

	assert.Equal(t, []int{0, 0, 0}, disposals(items))
}

func TestFlattening_DuplicateSections(t *testing.T) {
	a := collections.NewObservableSlice(1, 2)
	outer := collections.NewObservableSlice(a, a)
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, a.Add(3))
	assert.Equal(t, []collections.ChangeEvent[int]{
		collections.AddEvent(2, []int{3}),
		collections.AddEvent(5, []int{3}),
	}, events.events)
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, f.All())

	events.events = nil
	require.NoError(t, a.RemoveAt(0))
	assert.Equal(t, []collections.ChangeEvent[int]{
		collections.RemoveEvent(0, []int{1}),
		collections.RemoveEvent(2, []int{1}),
	}, events.events)
	assert.Equal(t, rebuilt(outer), f.All())

	events.events = nil
	require.NoError(t, outer.RemoveAt(0))
	require.NoError(t, a.Add(4))
	assert.Equal(t, []collections.ChangeEvent[int]{
		collections.RemoveEvent(0, []int{2, 3}),
		collections.AddEvent(2, []int{4}),
	}, events.events)
	assert.Equal(t, []int{2, 3, 4}, f.All())
}

func TestFlattening_DuplicateSectionDisposedWithLastOccurrence(t *testing.T) {
	shared := resources(1, 2)
	outer := collections.NewObservableSlice(shared, resources(3), shared)
	f, err := collections.NewFlattening[resourceSection, *resource](outer)
	require.NoError(t, err)

	items := shared.All()
	require.NoError(t, outer.RemoveAt(0))
	assert.Equal(t, []int{0, 0}, disposals(items))

	require.NoError(t, shared.ReplaceAll(shared.At(1)))
	assert.Equal(t, []int{1, 0}, disposals(items))

	require.NoError(t, outer.RemoveAt(1))
	assert.Equal(t, []int{1, 1}, disposals(items))

	f.Dispose()
	assert.Equal(t, []int{1, 1}, disposals(items))
}

func TestFlattening_ContractViolationMessage(t *testing.T) {
	source := &misbehavingOuter{sections: []section{collections.NewObservableSlice(1)}}
	_, err := collections.NewFlattening[section, int](source, collections.WithName("rows"))
	require.NoError(t, err)

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, collections.ErrIndexOutOfRange)
		assert.True(t, strings.HasPrefix(err.Error(), "rows: collections: "), err.Error())
	}()
	source.handler(collections.RemoveEvent(0, []section{nil, nil}))
}

// misbehavingOuter publishes whatever event it is told to.
type misbehavingOuter struct {
	sections []section
	handler  collections.ChangeHandler[section]
}

func (s *misbehavingOuter) Count() int           { return len(s.sections) }
func (s *misbehavingOuter) At(index int) section { return s.sections[index] }
func (s *misbehavingOuter) Subscribe(h collections.ChangeHandler[section]) *collections.Subscription {
	s.handler = h
	return &collections.Subscription{}
}

func TestFlattening_MixedStaticSections(t *testing.T) {
	live := collections.NewObservableSlice(3)
	outer := collections.NewObservableSlice[collections.ReadOnlyList[int]](
		collections.Static(1, 2),
		live,
	)
	f, err := collections.NewFlattening[collections.ReadOnlyList[int], int](outer)
	require.NoError(t, err)
	defer f.Dispose()
	events := record[int](f)

	require.NoError(t, live.Add(4))
	assert.Equal(t, collections.AddEvent(3, []int{4}), events.single(t))

	events.events = nil
	require.NoError(t, outer.Insert(0, collections.Static(0)))
	assert.Equal(t, collections.AddEvent(0, []int{0}), events.single(t))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, f.All())
}

func TestFlattening_StaticOuter(t *testing.T) {
	inner := collections.NewObservableSlice(1)
	outer := collections.Static(inner, collections.NewObservableSlice(2))
	f := flatten(t, outer)
	events := record[int](f)

	require.NoError(t, inner.Add(5))
	assert.Equal(t, collections.AddEvent(1, []int{5}), events.single(t))
	assert.Equal(t, []int{1, 5, 2}, f.All())
}

// A mapped view over a flattened view stays equal to mapping the rebuilt
// flat list.
func TestFlattening_ComposedWithMapped(t *testing.T) {
	outer := sections([]int{1, 2}, []int{3})
	f := flatten(t, outer)
	m, err := collections.NewMapped[int, string](f, label)
	require.NoError(t, err)
	defer m.Dispose()
	events := record[string](m)

	require.NoError(t, outer.At(1).Insert(0, 9))
	require.NoError(t, outer.Move(1, 0))
	require.NoError(t, outer.At(0).ReplaceAll(4))

	require.Len(t, events.events, 3)
	assert.Equal(t, collections.AddEvent(2, labels(9)), events.events[0])
	assert.Equal(t, collections.MoveEvent(2, 0, labels(9, 3)), events.events[1])
	assert.Equal(t, collections.ResetEvent[string](), events.events[2])
	assert.Equal(t, labels(rebuilt(outer)...), m.All())
	assert.Equal(t, labels(4, 1, 2), m.All())
}
