package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/kemeny/pkg/distance"
	"github.com/matzehuels/kemeny/pkg/perm"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// Borda orders candidates by ascending sum of rank positions.
type Borda struct{}

func (Borda) Name() string { return NameBorda }

func (Borda) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	if _, err := stats(p); err != nil {
		return nil, err
	}
	return heuristicResult(NameBorda, p, bordaOrder(p), start)
}

func bordaOrder(p *profile.Profile) []int {
	return sortByKey(p.RankSums())
}

// Footrule minimises total Spearman footrule distance. For complete strict
// rankings the median-rank assignment reduces to the Borda order, so the
// computation is shared; the method exists under its own name so results
// can be reported against the footrule literature.
type Footrule struct{}

func (Footrule) Name() string { return NameFootrule }

func (Footrule) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	if _, err := stats(p); err != nil {
		return nil, err
	}
	return heuristicResult(NameFootrule, p, bordaOrder(p), start)
}

// Copeland orders candidates by the number of opponents they beat by strict
// majority, most first.
type Copeland struct{}

func (Copeland) Name() string { return NameCopeland }

func (Copeland) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	score := make([]int, s.Candidates())
	for a := range score {
		score[a] = s.Beats(a)
	}
	return heuristicResult(NameCopeland, p, sortByKeyDesc(score), start)
}

// MajoritySort bubble-sorts the index order 0..m-1, swapping adjacent
// candidates whenever the later one beats the earlier by strict majority.
//
// A pair with no strict majority either way is never swapped. Formulations
// that swap whenever the earlier candidate lacks a strict majority over the
// later one also swap tied pairs, so on profiles with ties the two can
// return different orders; this one keeps tied pairs in index order. The
// majority relation need not be transitive, and under a Condorcet cycle the
// result depends on the starting order.
type MajoritySort struct{}

func (MajoritySort) Name() string { return NameMajoritySort }

func (MajoritySort) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	m := s.Candidates()
	order := perm.Seq(m)
	for i := 0; i < m-1; i++ {
		swapped := false
		for j := 0; j < m-i-1; j++ {
			if s.Majority(order[j+1], order[j]) {
				order[j], order[j+1] = order[j+1], order[j]
				swapped = true
			}
		}
		if !swapped {
			break
		}
	}
	return heuristicResult(NameMajoritySort, p, order, start)
}

// PickAPerm returns the voter ranking with the lowest Kemeny score, the
// earliest voter on ties. Because Kendall tau is a metric, the chosen
// ranking scores at most twice the optimum.
type PickAPerm struct{}

func (PickAPerm) Name() string { return NamePickAPerm }

func (PickAPerm) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	best := -1
	var bestOrder []int
	for v := 0; v < p.Voters(); v++ {
		if v%checkEvery == checkEvery-1 && ctx.Err() != nil {
			return nil, canceled(NamePickAPerm, ctx.Err())
		}
		order := p.Order(v)
		key := fmt.Sprint(order)
		if seen[key] {
			continue
		}
		seen[key] = true
		if score := distance.CostScore(s, order); best < 0 || score < best {
			best, bestOrder = score, order
		}
	}
	if bestOrder == nil {
		bestOrder = perm.Seq(p.Candidates())
	}
	return heuristicResult(NamePickAPerm, p, bestOrder, start)
}
