package generate

import (
	"math/rand/v2"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// RandomWeights draws m candidate weights uniformly from [lo, hi).
func RandomWeights(rng *rand.Rand, m int, lo, hi float64) []float64 {
	w := make([]float64, m)
	for i := range w {
		w[i] = lo + rng.Float64()*(hi-lo)
	}
	return w
}

func checkWeights(model string, weights []float64, candidates int) error {
	if len(weights) != candidates {
		return kerrors.New(kerrors.ErrCodeInvalidInput,
			"%s needs %d weights, got %d", model, candidates, len(weights))
	}
	for c, w := range weights {
		if !(w > 0) {
			return kerrors.New(kerrors.ErrCodeInvalidInput, "%s weight of candidate %d is %v, want > 0", model, c, w)
		}
	}
	return nil
}

// BradleyTerry gives each voter a noisy tournament sort of 0..m-1: for
// every pair of positions i < j, the candidates there swap with the
// probability that the lower one beats the upper, strength[b] / (strength[a]
// + strength[b]). A nil strength draws strengths from [0.5, 2).
func BradleyTerry(rng *rand.Rand, voters, candidates int, strength []float64) (*profile.Profile, error) {
	if strength == nil {
		strength = RandomWeights(rng, candidates, 0.5, 2)
	}
	if err := checkWeights(ModelBradleyTerry, strength, candidates); err != nil {
		return nil, err
	}
	orders := make([][]int, voters)
	for v := range orders {
		order := rotation(candidates, 0)
		for i := 0; i < candidates; i++ {
			for j := i + 1; j < candidates; j++ {
				a, b := order[i], order[j]
				if rng.Float64() < strength[b]/(strength[a]+strength[b]) {
					order[i], order[j] = b, a
				}
			}
		}
		orders[v] = order
	}
	return profile.FromOrders(orders)
}

// PlackettLuce samples each order top down, picking the next candidate
// with probability proportional to its weight among those left. A nil
// weights draws weights from [0.1, 2).
func PlackettLuce(rng *rand.Rand, voters, candidates int, weights []float64) (*profile.Profile, error) {
	if weights == nil {
		weights = RandomWeights(rng, candidates, 0.1, 2)
	}
	if err := checkWeights(ModelPlackettLuce, weights, candidates); err != nil {
		return nil, err
	}
	buf := make([]float64, candidates)
	orders := make([][]int, voters)
	for v := range orders {
		remaining := rotation(candidates, 0)
		order := make([]int, 0, candidates)
		for len(remaining) > 0 {
			total := 0.0
			for k, c := range remaining {
				buf[k] = weights[c]
				total += weights[c]
			}
			k := pick(rng, buf[:len(remaining)], total)
			order = append(order, remaining[k])
			remaining = append(remaining[:k], remaining[k+1:]...)
		}
		orders[v] = order
	}
	return profile.FromOrders(orders)
}

// Block splits 0..m-1 into contiguous groups whose sizes differ by at most
// one. Voters rank the groups in index order, except that with probability
// noise a voter shuffles the group order; members of a group are always
// shuffled.
func Block(rng *rand.Rand, voters, candidates, blocks int, noise float64) (*profile.Profile, error) {
	if blocks < 1 || blocks > candidates {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput,
			"block model needs 1..%d blocks, got %d", candidates, blocks)
	}
	ids := rotation(candidates, 0)
	groups := make([][]int, blocks)
	next := 0
	for b := range groups {
		size := candidates / blocks
		if b < candidates%blocks {
			size++
		}
		groups[b] = ids[next : next+size]
		next += size
	}

	orders := make([][]int, voters)
	blockOrder := make([]int, blocks)
	for v := range orders {
		for b := range blockOrder {
			blockOrder[b] = b
		}
		if rng.Float64() < noise {
			rng.Shuffle(blocks, func(i, j int) { blockOrder[i], blockOrder[j] = blockOrder[j], blockOrder[i] })
		}
		order := make([]int, 0, candidates)
		for _, b := range blockOrder {
			start := len(order)
			order = append(order, groups[b]...)
			within := order[start:]
			rng.Shuffle(len(within), func(i, j int) { within[i], within[j] = within[j], within[i] })
		}
		orders[v] = order
	}
	return profile.FromOrders(orders)
}

// Adversarial builds the cyclic profile on which scoring rules do worst.
// Each voter joins one of m groups uniformly at random and group s ranks
// the rotation s, s+1, ..., s-1. Equal groups give the majority cycle
// 0 > 1 > ... > m-1 > 0; random group sizes perturb it. With probability
// noise each position of a voter's order is swapped with a random
// position. It needs at least three candidates.
func Adversarial(rng *rand.Rand, voters, candidates int, noise float64) (*profile.Profile, error) {
	if candidates < 3 {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput,
			"adversarial model needs at least 3 candidates, got %d", candidates)
	}
	sizes := make([]int, candidates)
	for range voters {
		sizes[rng.IntN(candidates)]++
	}
	orders := make([][]int, 0, voters)
	for shift, size := range sizes {
		for range size {
			order := rotation(candidates, shift)
			if noise > 0 {
				for i := range order {
					if rng.Float64() < noise {
						j := rng.IntN(candidates)
						order[i], order[j] = order[j], order[i]
					}
				}
			}
			orders = append(orders, order)
		}
	}
	return profile.FromOrders(orders)
}
