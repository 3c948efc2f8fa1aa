package collections_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasbyte1/go-live-collections/collections"
)

// recorder collects every event published by an observable.
type recorder[T any] struct {
	events []collections.ChangeEvent[T]
}

func record[T any](o collections.Observable[T]) *recorder[T] {
	r := &recorder[T]{}
	o.Subscribe(func(e collections.ChangeEvent[T]) { r.events = append(r.events, e) })
	return r
}

// single asserts exactly one event was recorded and returns it.
func (r *recorder[T]) single(t *testing.T) collections.ChangeEvent[T] {
	t.Helper()
	require.Len(t, r.events, 1, "events: %v", r.events)
	return r.events[0]
}

// resource is a derived value with a disposal capability.
type resource struct {
	value    int
	disposed int
}

func (r *resource) Dispose() { r.disposed++ }

func newResource(n int) *resource { return &resource{value: n} }

func values(rs []*resource) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.value
	}
	return out
}

func label(n int) string { return strconv.Itoa(n) }

func labels(ns ...int) []string {
	out := make([]string, len(ns))
	for i, n := range ns {
		out[i] = label(n)
	}
	return out
}

type section = *collections.ObservableSlice[int]

func sections(parts ...[]int) *collections.ObservableSlice[section] {
	out := make([]section, len(parts))
	for i, p := range parts {
		out[i] = collections.NewObservableSlice(p...)
	}
	return collections.NewObservableSlice(out...)
}

func flatten(t *testing.T, outer collections.ReadOnlyList[section]) *collections.Flattening[section, int] {
	t.Helper()
	f, err := collections.NewFlattening[section, int](outer)
	require.NoError(t, err)
	t.Cleanup(f.Dispose)
	return f
}

func rebuilt(outer collections.ReadOnlyList[section]) []int {
	return collections.FlattenAll[section, int](outer)
}

// assertItems compares list contents, treating nil and empty alike.
func assertItems[T any](t *testing.T, want, got []T, msgAndArgs ...any) {
	t.Helper()
	if len(want) == 0 {
		assert.Empty(t, got, msgAndArgs...)
		return
	}
	assert.Equal(t, want, got, msgAndArgs...)
}
