package collections

import (
	"iter"

	"github.com/hasbyte1/go-live-collections/arr"
)

// This file holds the from-scratch computations the registers fall back to
// on reset. Incremental updates must always agree with them.

// MapAll applies transform to every item of source, in order.
//
//	labels := collections.MapAll(collections.Static(1, 2, 3), strconv.Itoa)
//	// → ["1", "2", "3"]
func MapAll[S, D any](source ReadOnlyList[S], transform func(S) D) []D {
	return arr.Map(ToSlice(source), func(item S, _ int) D { return transform(item) })
}

// FlattenAll concatenates the items of every section of source, in section
// order then item order.
//
//	flat := collections.FlattenAll(collections.Static(
//	    collections.Static(1, 2), collections.Static(3)))
//	// → [1, 2, 3]
func FlattenAll[S ReadOnlyList[T], T any](source ReadOnlyList[S]) []T {
	return arr.Collapse(arr.Map(ToSlice(source), func(section S, _ int) []T {
		return ToSlice[T](section)
	}))
}

func seqOf[T any](items []T) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range items {
			if !yield(i, item) {
				return
			}
		}
	}
}
