// Package pairwise derives head-to-head statistics from a ranking profile.
//
// Every aggregation method starts here. For candidates a and b:
//
//	Wins(a, b)     voters ranking a above b
//	Cost(a, b)     voters ranking b above a, the penalty for placing a first
//	Majority(a, b) Wins(a, b) > Wins(b, a)
//
// Because every voter submits a strict complete order, Cost(a, b) + Cost(b, a)
// equals the number of voters for every a != b.
package pairwise

import (
	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// Stats holds the pairwise win matrix of a profile. It is read-only after
// Compute returns and safe for concurrent use.
type Stats struct {
	n, m int
	wins []int // wins[a*m+b]
}

// Compute builds the win matrix in O(m² n).
func Compute(p *profile.Profile) (*Stats, error) {
	if p == nil || p.Candidates() == 0 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidProfile, "profile has no candidates")
	}
	n, m := p.Voters(), p.Candidates()
	s := &Stats{n: n, m: m, wins: make([]int, m*m)}
	for v := 0; v < n; v++ {
		row := p.Row(v)
		for a := 0; a < m; a++ {
			ra := row[a]
			for b := a + 1; b < m; b++ {
				if ra < row[b] {
					s.wins[a*m+b]++
				} else {
					s.wins[b*m+a]++
				}
			}
		}
	}
	return s, nil
}

// MustCompute is like Compute but panics on error.
func MustCompute(p *profile.Profile) *Stats {
	s, err := Compute(p)
	if err != nil {
		panic(err)
	}
	return s
}

// Voters returns the number of voters the statistics were built from.
func (s *Stats) Voters() int { return s.n }

// Candidates returns the number of candidates.
func (s *Stats) Candidates() int { return s.m }

// Wins returns the number of voters preferring a over b.
func (s *Stats) Wins(a, b int) int { return s.wins[a*s.m+b] }

// Cost returns the number of voters preferring b over a. It is the Kemeny
// penalty for ranking a anywhere above b. The diagonal is zero.
func (s *Stats) Cost(a, b int) int { return s.wins[b*s.m+a] }

// Margin returns Wins(a, b) - Wins(b, a).
func (s *Stats) Margin(a, b int) int { return s.wins[a*s.m+b] - s.wins[b*s.m+a] }

// Majority reports whether a strict majority prefers a over b. Ties yield
// false in both directions.
func (s *Stats) Majority(a, b int) bool { return s.Margin(a, b) > 0 }

// Beats returns the number of opponents candidate a defeats by strict
// majority (its Copeland score).
func (s *Stats) Beats(a int) int {
	count := 0
	for b := 0; b < s.m; b++ {
		if b != a && 2*s.wins[a*s.m+b] > s.n {
			count++
		}
	}
	return count
}

// WinMatrix returns a copy of the win matrix.
func (s *Stats) WinMatrix() [][]int {
	out := make([][]int, s.m)
	for a := range out {
		out[a] = make([]int, s.m)
		copy(out[a], s.wins[a*s.m:(a+1)*s.m])
	}
	return out
}

// CostMatrix returns a copy of the cost matrix.
func (s *Stats) CostMatrix() [][]int {
	out := make([][]int, s.m)
	for a := range out {
		out[a] = make([]int, s.m)
		for b := range out[a] {
			out[a][b] = s.Cost(a, b)
		}
	}
	return out
}

// CondorcetWinner returns the candidate that beats every other candidate by
// strict majority, if one exists.
func (s *Stats) CondorcetWinner() (int, bool) {
	for a := 0; a < s.m; a++ {
		if s.Beats(a) == s.m-1 {
			return a, true
		}
	}
	return -1, false
}
