package collections

// SectionOffset returns the flat index at which section k starts: the sum of
// the current sizes of sections 0..k-1. k may equal sections.Count(), which
// yields the total flat size.
//
// Sizes are read live on every call. Sections elsewhere in the outer list
// may have changed size since the last call, so offsets are never cached.
// A [Flattening] keeps each run's length next to its slot instead, so that a
// section listed more than once is still located correctly while one of its
// occurrences is being patched.
func SectionOffset[S ReadOnlyList[T], T any](sections ReadOnlyList[S], k int) int {
	offset := 0
	for i := 0; i < k; i++ {
		offset += sections.At(i).Count()
	}
	return offset
}
