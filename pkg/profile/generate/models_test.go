package generate

import (
	"context"
	"testing"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/profile"
)

func TestStrengthModelsProduceValidProfiles(t *testing.T) {
	rng := NewRand(11)
	tests := []struct {
		name string
		gen  func() (*profile.Profile, error)
	}{
		{"bradleyterry", func() (*profile.Profile, error) { return BradleyTerry(rng, 25, 7, nil) }},
		{"plackettluce", func() (*profile.Profile, error) { return PlackettLuce(rng, 25, 7, nil) }},
		{"block uneven", func() (*profile.Profile, error) { return Block(rng, 25, 8, 3, 0.2) }},
		{"block singletons", func() (*profile.Profile, error) { return Block(rng, 5, 4, 4, 0) }},
		{"adversarial", func() (*profile.Profile, error) { return Adversarial(rng, 25, 5, 0.1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.gen()
			if err != nil {
				t.Fatal(err)
			}
			if err := profile.Validate(p.Rows()); err != nil {
				t.Errorf("generated profile invalid: %v", err)
			}
			if p.Voters() != 25 && p.Voters() != 5 {
				t.Errorf("voters = %d", p.Voters())
			}
		})
	}
}

func TestStrengthModelsFollowWeights(t *testing.T) {
	// Candidate 2 dominates; it should top far more ballots than anyone else.
	weights := []float64{1, 1, 50, 1}
	tests := []struct {
		name string
		gen  func() (*profile.Profile, error)
	}{
		{"bradleyterry", func() (*profile.Profile, error) { return BradleyTerry(NewRand(3), 200, 4, weights) }},
		{"plackettluce", func() (*profile.Profile, error) { return PlackettLuce(NewRand(3), 200, 4, weights) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.gen()
			if err != nil {
				t.Fatal(err)
			}
			sums := p.RankSums()
			for c, s := range sums {
				if c != 2 && s <= sums[2] {
					t.Errorf("rank sums %v: candidate %d not behind the strong candidate", sums, c)
				}
			}
		})
	}
}

func TestBlockModelKeepsGroupsTogether(t *testing.T) {
	p, err := Block(NewRand(5), 30, 7, 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Sizes 3, 2, 2: groups {0,1,2}, {3,4}, {5,6}, always in that order.
	group := []int{0, 0, 0, 1, 1, 2, 2}
	for v := 0; v < p.Voters(); v++ {
		order := p.Order(v)
		for i := 1; i < len(order); i++ {
			if group[order[i]] < group[order[i-1]] {
				t.Fatalf("voter %d breaks block order: %v", v, order)
			}
		}
	}
}

func TestAdversarialMajorityCycle(t *testing.T) {
	p, err := Adversarial(NewRand(9), 400, 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	for v := 0; v < p.Voters(); v++ {
		first := p.Order(v)[0]
		for i, c := range p.Order(v) {
			if c != (first+i)%4 {
				t.Fatalf("voter %d order %v is not a rotation", v, p.Order(v))
			}
		}
	}
	for a := 0; a < 4; a++ {
		b := (a + 1) % 4
		wins := 0
		for v := 0; v < p.Voters(); v++ {
			if p.Prefers(v, a, b) {
				wins++
			}
		}
		if 2*wins <= p.Voters() {
			t.Errorf("%d should beat %d by majority, wins %d of %d", a, b, wins, p.Voters())
		}
	}
}

func TestModelArgumentErrors(t *testing.T) {
	rng := NewRand(1)
	tests := []struct {
		name string
		run  func() error
	}{
		{"short weights", func() error { _, err := BradleyTerry(rng, 3, 3, []float64{1, 2}); return err }},
		{"zero weight", func() error { _, err := PlackettLuce(rng, 3, 2, []float64{1, 0}); return err }},
		{"too many blocks", func() error { _, err := Block(rng, 3, 2, 3, 0); return err }},
		{"zero blocks", func() error { _, err := Block(rng, 3, 2, 0, 0); return err }},
		{"tiny adversarial", func() error { _, err := Adversarial(rng, 3, 2, 0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !kerrors.Is(err, kerrors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestSpecNewModels(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		spec    Spec
		wantErr bool
	}{
		{Spec{Model: ModelBradleyTerry, Voters: 6, Candidates: 4, Seed: 1}, false},
		{Spec{Model: ModelPlackettLuce, Voters: 6, Candidates: 3, Weights: []float64{3, 2, 1}}, false},
		{Spec{Model: ModelBlock, Voters: 6, Candidates: 2}, false},
		{Spec{Model: ModelBlock, Voters: 6, Candidates: 5, Blocks: 6}, true},
		{Spec{Model: ModelAdversarial, Voters: 6, Candidates: 5, Noise: 0.1}, false},
		{Spec{Model: ModelPlackettLuce, Voters: 6, Candidates: 3, Weights: []float64{1, -1, 1}}, true},
		{Spec{Model: ModelPlackettLuce, Voters: 6, Candidates: 3, Weights: []float64{1, 1}}, true},
	}
	for _, tt := range tests {
		p, err := tt.spec.Load(ctx)
		if (err != nil) != tt.wantErr {
			t.Errorf("Spec%+v.Load() err = %v, wantErr %v", tt.spec, err, tt.wantErr)
			continue
		}
		if err == nil && (p.Voters() != tt.spec.Voters || p.Candidates() != tt.spec.Candidates) {
			t.Errorf("Spec%+v produced %dx%d", tt.spec, p.Voters(), p.Candidates())
		}
	}
}
