package utils

import "cmp"

// ArgMax returns the index of the first largest element, or -1 for an empty
// slice.
func ArgMax[T cmp.Ordered](values []T) int {
	best := -1
	for i, v := range values {
		if best == -1 || v > values[best] {
			best = i
		}
	}
	return best
}
