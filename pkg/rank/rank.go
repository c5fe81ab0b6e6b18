// Package rank turns numeric vectors into ordinal ranks.
//
// Ranks are dense and start at zero. Equal values are ordered by their first
// occurrence in the input, so the output is always a permutation of 0..n-1.
package rank

import (
	"cmp"
	"slices"
)

// Ascending returns the rank of every element, the smallest value receiving
// rank 0. Ties keep input order.
func Ascending(values []float64) []int {
	return order(values, func(a, b float64) int { return cmp.Compare(a, b) })
}

// Descending returns the rank of every element, the largest value receiving
// rank 0. Ties keep input order.
func Descending(values []float64) []int {
	return order(values, func(a, b float64) int { return cmp.Compare(b, a) })
}

// Below marks every position whose rank is smaller than k.
func Below(ranks []int, k int) []bool {
	out := make([]bool, len(ranks))
	for i, r := range ranks {
		out[i] = r < k
	}
	return out
}

func order(values []float64, compare func(a, b float64) int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return compare(values[a], values[b])
	})

	ranks := make([]int, len(values))
	for r, i := range idx {
		ranks[i] = r
	}
	return ranks
}
