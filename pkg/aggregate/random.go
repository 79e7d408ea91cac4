package aggregate

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// lockedRand serialises access to a caller-supplied source so a method
// value can be shared between goroutines.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) with(fn func(rng *rand.Rand)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rng == nil {
		l.rng = rand.New(rand.NewPCG(0, 0xdeadbeef))
	}
	fn(l.rng)
}

// KwikSort orders candidates by recursive partitioning around random
// pivots using the strict-majority tournament: candidates that beat the
// pivot go left, all others go right.
type KwikSort struct {
	src lockedRand
}

// NewKwikSort returns a KwikSort drawing pivots from rng.
func NewKwikSort(rng *rand.Rand) *KwikSort {
	return &KwikSort{src: lockedRand{rng: rng}}
}

func (*KwikSort) Name() string { return NameKwikSort }

func (k *KwikSort) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	candidates := make([]int, s.Candidates())
	for i := range candidates {
		candidates[i] = i
	}
	var order []int
	k.src.with(func(rng *rand.Rand) {
		order = kwiksort(rng, s, candidates)
	})
	return heuristicResult(NameKwikSort, p, order, start)
}

func kwiksort(rng *rand.Rand, s *pairwise.Stats, set []int) []int {
	if len(set) <= 1 {
		return append([]int(nil), set...)
	}
	pivot := set[rng.IntN(len(set))]
	var left, right []int
	for _, c := range set {
		switch {
		case c == pivot:
		case s.Majority(c, pivot):
			left = append(left, c)
		default:
			right = append(right, c)
		}
	}
	out := kwiksort(rng, s, left)
	out = append(out, pivot)
	return append(out, kwiksort(rng, s, right)...)
}

// Random returns a uniformly random order. It is the control every other
// method should beat.
type Random struct {
	src lockedRand
}

// NewRandom returns a Random baseline drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{src: lockedRand{rng: rng}}
}

func (*Random) Name() string { return NameRandom }

func (r *Random) Aggregate(_ context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	if _, err := stats(p); err != nil {
		return nil, err
	}
	var order []int
	r.src.with(func(rng *rand.Rand) {
		order = rng.Perm(p.Candidates())
	})
	return heuristicResult(NameRandom, p, order, start)
}
