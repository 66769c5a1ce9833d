// Package topk selects the highest-ranked elements of a slice.
package topk

import "slices"

// Select returns the n elements of list that rank highest under cmp, in
// ascending cmp order. cmp(a, b) is negative when a ranks below b, zero when
// they tie, and positive when a ranks above b.
//
// The result is a new slice; list is never reordered or written to. When list
// holds n or fewer elements the result is all of them, sorted. Ties are
// resolved in favor of elements seen earlier: a later element must strictly
// outrank the current minimum to enter the selection.
//
// Each candidate that enters the selection triggers a re-sort of the n
// working elements, so the cost is O(len(list) * n log n). That is intended
// for the small n used by report queries.
func Select[T any](list []T, n int, cmp func(a, b T) int) []T {
	if n <= 0 {
		return []T{}
	}
	if len(list) <= n {
		out := slices.Clone(list)
		slices.SortStableFunc(out, cmp)
		if out == nil {
			out = []T{}
		}
		return out
	}

	working := slices.Clone(list[:n])
	slices.SortStableFunc(working, cmp)
	for _, cur := range list[n:] {
		if cmp(cur, working[0]) > 0 {
			working[0] = cur
			slices.SortStableFunc(working, cmp)
		}
	}
	return working
}
