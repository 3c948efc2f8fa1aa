package arr

import (
	"golang.org/x/exp/slices"
)

// Number is the set of element types accepted by [Sum].
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// ─────────────────────────────────────────────────────────────────────────────
// Searching & testing
// ─────────────────────────────────────────────────────────────────────────────

// Contains reports whether at least one element satisfies fn.
func Contains[T any](items []T, fn func(T) bool) bool {
	return slices.ContainsFunc(items, fn)
}

// IndexOf returns the index of the first occurrence of value, or -1.
func IndexOf[T comparable](items []T, value T) int {
	return slices.Index(items, value)
}

// Search returns the index of the first element satisfying fn, or -1.
func Search[T any](items []T, fn func(T) bool) int {
	return slices.IndexFunc(items, fn)
}

// InRange reports whether index addresses an existing element of a slice
// of length n.
func InRange(index, n int) bool {
	return index >= 0 && index < n
}

// SpanInRange reports whether [index, index+count) lies within a slice of
// length n. An empty span is valid at any position in [0, n].
func SpanInRange(index, count, n int) bool {
	return index >= 0 && count >= 0 && index <= n && count <= n-index
}

// ─────────────────────────────────────────────────────────────────────────────
// Transformation
// ─────────────────────────────────────────────────────────────────────────────

// Map applies fn(item, index) to each element and returns a new slice.
func Map[T, U any](items []T, fn func(T, int) U) []U {
	out := make([]U, len(items))
	for i, item := range items {
		out[i] = fn(item, i)
	}
	return out
}

// Collapse flattens a slice of slices into a single flat slice.
func Collapse[T any](items [][]T) []T {
	total := 0
	for _, chunk := range items {
		total += len(chunk)
	}
	out := make([]T, 0, total)
	for _, chunk := range items {
		out = append(out, chunk...)
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Splicing
// ─────────────────────────────────────────────────────────────────────────────

// InsertAt inserts values at index, shifting the tail right.
// index may equal len(items), which appends.
func InsertAt[T any](items []T, index int, values ...T) []T {
	if len(values) == 0 {
		return items
	}
	return slices.Insert(items, index, values...)
}

// RemoveRange removes count elements starting at index. It returns the
// shortened slice and a copy of the evicted run.
func RemoveRange[T any](items []T, index, count int) ([]T, []T) {
	if count == 0 {
		return items, nil
	}
	removed := slices.Clone(items[index : index+count])
	var zero T
	items = slices.Delete(items, index, index+count)
	// clear the vacated tail so evicted values can be collected
	tail := items[len(items):cap(items)]
	for i := 0; i < count && i < len(tail); i++ {
		tail[i] = zero
	}
	return items, removed
}

// MoveRange relocates the run [from, from+count) so that it starts at to.
// to is expressed in the coordinates of the slice after the run has been
// taken out, which is also the run's start position in the result.
func MoveRange[T any](items []T, from, count, to int) []T {
	if count == 0 || from == to {
		return items
	}
	items, run := RemoveRange(items, from, count)
	return InsertAt(items, to, run...)
}

// ─────────────────────────────────────────────────────────────────────────────
// Aggregation
// ─────────────────────────────────────────────────────────────────────────────

// Sum returns the sum of the values extracted by fn.
func Sum[T any, N Number](items []T, fn func(T) N) N {
	var total N
	for _, item := range items {
		total += fn(item)
	}
	return total
}
