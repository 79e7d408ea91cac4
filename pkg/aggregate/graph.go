package aggregate

import (
	"cmp"
	"context"
	"slices"
	"time"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/tournament"
)

// RankedPairs implements Tideman's method.
//
// Every pair is ranked by margin strength |wins[i][j] - wins[j][i]|,
// strongest first, ties broken by (winner, loser) index. Each winner->loser
// edge is locked unless it would close a cycle; the locked graph is then
// topologically sorted with the smallest ready index first.
type RankedPairs struct{}

func (RankedPairs) Name() string { return NameRankedPairs }

func (RankedPairs) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	g := LockPairs(s)
	order, err := g.TopoSort()
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "%s: locked graph", NameRankedPairs)
	}
	return heuristicResult(NameRankedPairs, p, order, start)
}

// Pair is a decided head-to-head contest.
type Pair struct {
	Winner, Loser int
	Strength      int
}

// SortedPairs returns one Pair per unordered candidate pair, strongest
// first. For tied votes the lower index is recorded as the winner.
func SortedPairs(s *pairwise.Stats) []Pair {
	m := s.Candidates()
	pairs := make([]Pair, 0, m*(m-1)/2)
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			w, l := i, j
			if s.Wins(j, i) > s.Wins(i, j) {
				w, l = j, i
			}
			pairs = append(pairs, Pair{Winner: w, Loser: l, Strength: s.Margin(w, l)})
		}
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		return cmp.Or(
			cmp.Compare(b.Strength, a.Strength),
			cmp.Compare(a.Winner, b.Winner),
			cmp.Compare(a.Loser, b.Loser),
		)
	})
	return pairs
}

// LockPairs returns the Ranked Pairs locked graph of s. Edges carry their
// strength as weight. The graph is acyclic by construction.
func LockPairs(s *pairwise.Stats) *tournament.Digraph {
	g := tournament.New(s.Candidates())
	for _, pr := range SortedPairs(s) {
		g.TryLock(pr.Winner, pr.Loser, pr.Strength)
	}
	return g
}

// Schulze implements the beatpath method: strongest paths over the support
// matrix, then candidates ordered by how many opponents their beatpath
// defeats, ties by index.
type Schulze struct{}

func (Schulze) Name() string { return NameSchulze }

func (Schulze) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	m := s.Candidates()
	strength := tournament.StrongestPaths(s.WinMatrix())
	beats := make([]int, m)
	for a := 0; a < m; a++ {
		for b := 0; b < m; b++ {
			if a != b && strength[a][b] > strength[b][a] {
				beats[a]++
			}
		}
	}
	return heuristicResult(NameSchulze, p, sortByKeyDesc(beats), start)
}
