package aggregate

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kemeny/pkg/distance"
	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// Local search defaults.
const (
	DefaultRestarts     = 20
	DefaultMaxNoImprove = 2000
)

// LocalSearch refines the Borda order with first-improvement adjacent
// swaps, restarted several times.
//
// The first restart starts from the Borda order itself; later ones start
// from a Borda order disturbed by m random adjacent transpositions so that
// restarts explore different basins. A restart ends when a full scan finds
// no improving swap or after MaxNoImprove consecutive non-improving probes.
// Restarts run on up to Workers goroutines and the lowest-cost order wins,
// ties going to the earliest restart.
type LocalSearch struct {
	Restarts     int
	MaxNoImprove int
	Workers      int

	src lockedRand
}

// NewLocalSearch returns a LocalSearch drawing restart seeds from rng.
func NewLocalSearch(rng *rand.Rand) *LocalSearch {
	return &LocalSearch{Restarts: DefaultRestarts, MaxNoImprove: DefaultMaxNoImprove, src: lockedRand{rng: rng}}
}

func (*LocalSearch) Name() string { return NameLocalSearch }

func (ls *LocalSearch) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	restarts := max(ls.Restarts, 1)
	bound := ls.MaxNoImprove
	if bound <= 0 {
		bound = DefaultMaxNoImprove
	}

	seeds := ls.seeds(restarts)
	seed := bordaOrder(p)
	orders := make([][]int, restarts)
	scores := make([]int, restarts)

	g, ctx := errgroup.WithContext(ctx)
	if ls.Workers > 0 {
		g.SetLimit(ls.Workers)
	}
	for r := range restarts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			order := slices.Clone(seed)
			if r > 0 {
				rng := rand.New(rand.NewPCG(seeds[r][0], seeds[r][1]))
				perturb(rng, order)
			}
			orders[r], scores[r] = twoOpt(s, order, bound)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, canceled(NameLocalSearch, err)
	}

	best := 0
	for r := 1; r < restarts; r++ {
		if scores[r] < scores[best] {
			best = r
		}
	}
	return finish(NameLocalSearch, p, orders[best], float64(scores[best]), false, start)
}

func (ls *LocalSearch) seeds(n int) [][2]uint64 {
	out := make([][2]uint64, n)
	ls.src.with(func(rng *rand.Rand) {
		for i := range out {
			out[i] = [2]uint64{rng.Uint64(), rng.Uint64()}
		}
	})
	return out
}

func perturb(rng *rand.Rand, order []int) {
	m := len(order)
	if m < 2 {
		return
	}
	for range m {
		i := rng.IntN(m - 1)
		order[i], order[i+1] = order[i+1], order[i]
	}
}

// twoOpt improves order in place and returns it with its cost.
func twoOpt(s *pairwise.Stats, order []int, maxNoImprove int) ([]int, int) {
	score := distance.CostScore(s, order)
	noImprove := 0
	for noImprove < maxNoImprove {
		improved := false
		for i := 0; i+1 < len(order); i++ {
			a, b := order[i], order[i+1]
			delta := s.Cost(b, a) - s.Cost(a, b)
			if delta < 0 {
				order[i], order[i+1] = b, a
				score += delta
				improved = true
				noImprove = 0
			} else {
				noImprove++
			}
		}
		if !improved {
			break
		}
	}
	return order, score
}
