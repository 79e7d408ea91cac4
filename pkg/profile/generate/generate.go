// Package generate builds synthetic profiles.
//
// The generators reproduce the standard synthetic cultures used to
// benchmark rank aggregation: impartial culture (uniform), Mallows noise
// around a reference order, Bradley-Terry and Plackett-Luce strength
// models, clustered block preferences, and Condorcet-cycle-heavy rotation
// profiles including the perfect-cycle adversarial case.
// All randomness comes from the *rand.Rand the caller passes in, so a fixed
// seed yields a fixed profile.
package generate

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/go-playground/validator/v10"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// Model names accepted by Spec.
const (
	ModelUniform   = "uniform"
	ModelMallows   = "mallows"
	ModelCycle     = "cycle"
	ModelRotations = "rotations"
	ModelIdentical = "identical"

	ModelBradleyTerry = "bradleyterry"
	ModelPlackettLuce = "plackettluce"
	ModelBlock        = "block"
	ModelAdversarial  = "adversarial"
)

// DefaultBlocks is the block count of the block model when Spec.Blocks is
// zero.
const DefaultBlocks = 3

// Models lists every generator name.
var Models = []string{
	ModelUniform, ModelMallows, ModelCycle, ModelRotations, ModelIdentical,
	ModelBradleyTerry, ModelPlackettLuce, ModelBlock, ModelAdversarial,
}

// NewRand returns the PCG-backed source used throughout kemeny for a seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Uniform draws every voter's order uniformly at random.
func Uniform(rng *rand.Rand, voters, candidates int) (*profile.Profile, error) {
	orders := make([][]int, voters)
	for v := range orders {
		orders[v] = rng.Perm(candidates)
	}
	return profile.FromOrders(orders)
}

// Mallows samples orders around the identity 0 > 1 > ... > m-1 with
// dispersion phi in [0, 1]. phi = 0 yields identical voters; phi = 1 is
// uniform.
func Mallows(rng *rand.Rand, voters, candidates int, phi float64) (*profile.Profile, error) {
	if phi < 0 || phi > 1 || math.IsNaN(phi) {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "mallows phi %v outside [0,1]", phi)
	}
	weights := make([]float64, candidates)
	orders := make([][]int, voters)
	for v := range orders {
		remaining := make([]int, candidates)
		for i := range remaining {
			remaining[i] = i
		}
		order := make([]int, 0, candidates)
		for len(remaining) > 0 {
			total := 0.0
			for j := range remaining {
				weights[j] = math.Pow(phi, float64(j))
				total += weights[j]
			}
			k := pick(rng, weights[:len(remaining)], total)
			order = append(order, remaining[k])
			remaining = append(remaining[:k], remaining[k+1:]...)
		}
		orders[v] = order
	}
	return profile.FromOrders(orders)
}

func pick(rng *rand.Rand, weights []float64, total float64) int {
	x := rng.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

// Rotations builds m equal blocks of perBlock voters. Block s ranks the
// candidates in the rotated order s, s+1, ..., s-1 (mod m). With m >= 3 the
// majority relation is the cycle 0 > 1 > ... > m-1 > 0 and every rotation
// is a Kemeny optimum.
func Rotations(perBlock, candidates int) (*profile.Profile, error) {
	orders := make([][]int, 0, perBlock*candidates)
	for shift := 0; shift < candidates; shift++ {
		base := rotation(candidates, shift)
		for range perBlock {
			orders = append(orders, base)
		}
	}
	return profile.FromOrders(orders)
}

// CycleHeavy assigns each voter a random rotation of the identity, then
// with probability noise swaps one random adjacent pair.
func CycleHeavy(rng *rand.Rand, voters, candidates int, noise float64) (*profile.Profile, error) {
	orders := make([][]int, voters)
	for v := range orders {
		order := rotation(candidates, rng.IntN(max(candidates, 1)))
		if candidates > 1 && rng.Float64() < noise {
			i := rng.IntN(candidates - 1)
			order[i], order[i+1] = order[i+1], order[i]
		}
		orders[v] = order
	}
	return profile.FromOrders(orders)
}

// Identical gives every voter the order 0 > 1 > ... > m-1.
func Identical(voters, candidates int) (*profile.Profile, error) {
	orders := make([][]int, voters)
	for v := range orders {
		orders[v] = rotation(candidates, 0)
	}
	return profile.FromOrders(orders)
}

func rotation(m, shift int) []int {
	order := make([]int, m)
	for i := range order {
		order[i] = (shift + i) % m
	}
	return order
}

// Spec describes a generated profile. It satisfies profile.Source so the
// CLI can treat synthetic and file-based inputs the same way.
type Spec struct {
	Model      string  `json:"model" validate:"required,oneof=uniform mallows cycle rotations identical bradleyterry plackettluce block adversarial"`
	Voters     int     `json:"voters" validate:"min=1"`
	Candidates int     `json:"candidates" validate:"min=1"`
	Phi        float64 `json:"phi,omitempty" validate:"min=0,max=1"`
	Noise      float64 `json:"noise,omitempty" validate:"min=0,max=1"`
	// Blocks is the group count of the block model; zero selects
	// DefaultBlocks, capped at Candidates.
	Blocks int `json:"blocks,omitempty" validate:"min=0"`
	// Weights are the candidate strengths of the bradleyterry and
	// plackettluce models, one per candidate. Empty draws them from Seed.
	Weights []float64 `json:"weights,omitempty" validate:"omitempty,dive,gt=0"`
	Seed    uint64    `json:"seed"`
}

var validate = validator.New()

// Validate checks s against its struct tags.
func (s Spec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "invalid generator spec")
	}
	return nil
}

// Load implements profile.Source.
func (s Spec) Load(ctx context.Context) (*profile.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	rng := NewRand(s.Seed)
	switch s.Model {
	case ModelUniform:
		return Uniform(rng, s.Voters, s.Candidates)
	case ModelMallows:
		return Mallows(rng, s.Voters, s.Candidates, s.Phi)
	case ModelCycle:
		return CycleHeavy(rng, s.Voters, s.Candidates, s.Noise)
	case ModelRotations:
		if s.Voters%s.Candidates != 0 {
			return nil, kerrors.New(kerrors.ErrCodeInvalidInput,
				"rotations needs voters (%d) divisible by candidates (%d)", s.Voters, s.Candidates)
		}
		return Rotations(s.Voters/s.Candidates, s.Candidates)
	case ModelIdentical:
		return Identical(s.Voters, s.Candidates)
	case ModelBradleyTerry:
		return BradleyTerry(rng, s.Voters, s.Candidates, s.weights())
	case ModelPlackettLuce:
		return PlackettLuce(rng, s.Voters, s.Candidates, s.weights())
	case ModelBlock:
		blocks := s.Blocks
		if blocks == 0 {
			blocks = min(DefaultBlocks, s.Candidates)
		}
		return Block(rng, s.Voters, s.Candidates, blocks, s.Noise)
	case ModelAdversarial:
		return Adversarial(rng, s.Voters, s.Candidates, s.Noise)
	}
	return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "unknown generator model %q", s.Model)
}

func (s Spec) weights() []float64 {
	if len(s.Weights) == 0 {
		return nil
	}
	return s.Weights
}
