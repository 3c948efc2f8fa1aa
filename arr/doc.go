// Package arr provides standalone generic helpers for plain Go slices.
//
// Besides the usual search and transformation helpers, the package carries
// the splice primitives the live collections are built on. Each of them
// treats the input as owned by the caller and returns the resulting slice,
// the same way append does:
//
//	items := []int{1, 2, 3, 4, 5}
//	items = arr.InsertAt(items, 1, 9)            // → [1 9 2 3 4 5]
//	items, gone := arr.RemoveRange(items, 0, 2)  // → [2 3 4 5], gone=[1 9]
//	items = arr.MoveRange(items, 0, 2, 2)        // → [4 5 2 3]
//
// Index arguments are never clamped. Passing a range that does not fit the
// slice is a programming error and panics, exactly like slice expressions.
// Use [InRange] and [SpanInRange] to validate untrusted positions first.
package arr
