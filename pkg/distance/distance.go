// Package distance implements the Kendall tau distance between rankings and
// the Kemeny score built on top of it.
//
// Rankings are passed as rank-position vectors: a[i] is the position of item
// i, 0 being best. An order (best-to-worst list of items) is converted with
// [Positions].
package distance

import (
	"fmt"

	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// KendallTau returns the number of item pairs that a and b order
// differently. It runs in O(n²) and panics if the lengths differ.
//
// The result lies in [0, n(n-1)/2]. It is symmetric, zero for identical
// vectors, and satisfies the triangle inequality.
func KendallTau(a, b []int) int {
	if len(a) != len(b) {
		panic(fmt.Sprintf("distance: length mismatch %d != %d", len(a), len(b)))
	}
	d := 0
	for i := 0; i < len(a); i++ {
		for j := i + 1; j < len(a); j++ {
			if (a[i]-a[j])*(b[i]-b[j]) < 0 {
				d++
			}
		}
	}
	return d
}

// KendallTauFast computes the same value as [KendallTau] in O(n log n) for
// permutation vectors (each a strict ranking of 0..n-1).
//
// Items are visited in a's order; the distance is the number of inversions
// in the sequence of their b-positions, counted with a Fenwick tree.
func KendallTauFast(a, b []int) int {
	if len(a) != len(b) {
		panic(fmt.Sprintf("distance: length mismatch %d != %d", len(a), len(b)))
	}
	n := len(a)
	seq := make([]int, n)
	for i := range n {
		seq[a[i]] = b[i]
	}

	fenwick := make([]int, n+1)
	inversions := 0
	for seen, pos := range seq {
		lessOrEqual := 0
		for q := pos + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		inversions += seen - lessOrEqual
		for q := pos + 1; q <= n; q += q & (-q) {
			fenwick[q]++
		}
	}
	return inversions
}

// Positions converts a best-to-worst order into its rank-position vector.
func Positions(order []int) []int {
	pos := make([]int, len(order))
	for rank, c := range order {
		pos[c] = rank
	}
	return pos
}

// Score returns the Kemeny score of order against p: the sum of Kendall tau
// distances between the order's rank vector and every voter's row.
func Score(p *profile.Profile, order []int) int {
	pos := Positions(order)
	total := 0
	for v := 0; v < p.Voters(); v++ {
		total += KendallTauFast(pos, p.Row(v))
	}
	return total
}

// CostScore evaluates the same objective from precomputed pairwise
// statistics in O(m²): for every pair placed a-before-b it adds Cost(a, b).
func CostScore(s *pairwise.Stats, order []int) int {
	total := 0
	for i, a := range order {
		for _, b := range order[i+1:] {
			total += s.Cost(a, b)
		}
	}
	return total
}

// MaxScore returns the largest possible Kemeny score for n voters and m
// candidates, reached when every voter reverses the consensus.
func MaxScore(n, m int) int {
	return n * m * (m - 1) / 2
}
