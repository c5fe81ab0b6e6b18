package rank_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/policyevo/policyevo/pkg/rank"
)

func TestAscending(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{name: "empty", values: nil, want: []int{}},
		{name: "distinct", values: []float64{3, -1, 2.5, 10}, want: []int{2, 0, 1, 3}},
		{name: "ties keep first occurrence", values: []float64{1, 0, 1, 0}, want: []int{2, 0, 3, 1}},
		{name: "all equal", values: []float64{5, 5, 5}, want: []int{0, 1, 2}},
		{name: "already ranked", values: []float64{0, 1, 2, 3, 4}, want: []int{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rank.Ascending(tt.values)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Ascending(%v) mismatch (-want +got):\n%s", tt.values, diff)
			}
		})
	}
}

func TestDescending(t *testing.T) {
	got := rank.Descending([]float64{10, -10, -10, 10})
	want := []int{0, 2, 3, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Descending mismatch (-want +got):\n%s", diff)
	}
}

func TestAscendingIsPermutation(t *testing.T) {
	values := []float64{0.3, 9, -2, 4.4, 1e6, -1e-3, 7, 2}
	got := rank.Ascending(values)
	seen := make([]bool, len(values))
	for _, r := range got {
		if r < 0 || r >= len(values) || seen[r] {
			t.Fatalf("ranks %v are not a permutation of 0..%d", got, len(values)-1)
		}
		seen[r] = true
	}
}

func TestReRankingIsIdempotent(t *testing.T) {
	first := rank.Ascending([]float64{4, 1, 3, 1, 0})
	asFloats := make([]float64, len(first))
	for i, r := range first {
		asFloats[i] = float64(r)
	}
	if diff := cmp.Diff(first, rank.Ascending(asFloats)); diff != "" {
		t.Errorf("re-ranking changed ranks (-first +second):\n%s", diff)
	}
}

func TestBelow(t *testing.T) {
	got := rank.Below([]int{2, 0, 3, 1}, 2)
	want := []bool{false, true, false, true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Below mismatch (-want +got):\n%s", diff)
	}
}
