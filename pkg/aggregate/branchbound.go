package aggregate

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/kemeny/pkg/profile"
)

// BranchBound finds a Kemeny optimum by depth-first search over order
// prefixes, top position first.
//
// Each node carries a lower bound: the cost of its prefix plus, for every
// unordered pair still to place, the cheaper of its two orientations.
// Placing c next raises the bound by the excess c pays over that minimum
// against the candidates left below it; a child whose bound reaches the
// incumbent is pruned. The incumbent starts as the Borda order refined by
// adjacent swaps. When some remaining candidate pays no excess (it beats
// or ties every other remaining candidate) it is placed next without
// branching, since moving it to the top of the remainder never costs more.
type BranchBound struct {
	Limit int
	// Progress, when set, is called every few thousand nodes with the
	// number of nodes explored, children pruned and the incumbent score.
	Progress func(explored, pruned, best int)
}

func (BranchBound) Name() string { return NameBranchBound }

type bnbSearch struct {
	ctx      context.Context
	cost     [][]int
	excess   [][]int
	best     int
	bestPath []int
	prefix   []int
	explored int
	pruned   int
	progress func(explored, pruned, best int)
	err      error
}

func (b BranchBound) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	m := p.Candidates()
	if err := checkLimit(NameBranchBound, m, b.Limit); err != nil {
		return nil, err
	}

	cost := s.CostMatrix()
	excess := make([][]int, m)
	floor := 0
	for a := range excess {
		excess[a] = make([]int, m)
		for c := range excess[a] {
			if a == c {
				continue
			}
			lo := min(cost[a][c], cost[c][a])
			excess[a][c] = cost[a][c] - lo
			if a < c {
				floor += lo
			}
		}
	}

	seed, seedScore := twoOpt(s, bordaOrder(p), DefaultMaxNoImprove)
	search := &bnbSearch{
		ctx:      ctx,
		cost:     cost,
		excess:   excess,
		best:     seedScore,
		bestPath: seed,
		prefix:   make([]int, 0, m),
		progress: b.Progress,
	}
	remaining := make([]int, m)
	for i := range remaining {
		remaining[i] = i
	}
	search.visit(remaining, floor)
	if search.err != nil {
		return nil, canceled(NameBranchBound, search.err)
	}
	return finish(NameBranchBound, p, search.bestPath, float64(search.best), true, start)
}

type bnbChild struct {
	cand  int
	bound int
}

// visit extends the current prefix with every candidate in remaining.
// bound is a lower bound on any completion of the prefix.
func (s *bnbSearch) visit(remaining []int, bound int) {
	if s.err != nil {
		return
	}
	s.explored++
	if s.explored%checkEvery == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return
		}
		if s.progress != nil {
			s.progress(s.explored, s.pruned, s.best)
		}
	}

	if len(remaining) == 0 {
		if bound < s.best {
			s.best = bound
			s.bestPath = slices.Clone(s.prefix)
		}
		return
	}

	children := make([]bnbChild, 0, len(remaining))
	for _, c := range remaining {
		extra := 0
		for _, r := range remaining {
			extra += s.excess[c][r]
		}
		if extra == 0 {
			children = append(children[:0], bnbChild{cand: c, bound: bound})
			break
		}
		children = append(children, bnbChild{cand: c, bound: bound + extra})
	}
	slices.SortStableFunc(children, func(a, b bnbChild) int { return a.bound - b.bound })

	rest := make([]int, 0, len(remaining)-1)
	for i, child := range children {
		if child.bound >= s.best {
			s.pruned += len(children) - i
			return
		}
		rest = rest[:0]
		for _, r := range remaining {
			if r != child.cand {
				rest = append(rest, r)
			}
		}
		s.prefix = append(s.prefix, child.cand)
		s.visit(slices.Clone(rest), child.bound)
		s.prefix = s.prefix[:len(s.prefix)-1]
		if s.err != nil {
			return
		}
	}
}
