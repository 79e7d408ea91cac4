package generate

import (
	"context"
	"testing"

	"github.com/matzehuels/kemeny/pkg/profile"
)

func TestGeneratorsProduceValidProfiles(t *testing.T) {
	rng := NewRand(7)
	tests := []struct {
		name string
		gen  func() (*profile.Profile, error)
	}{
		{"uniform", func() (*profile.Profile, error) { return Uniform(rng, 20, 6) }},
		{"mallows", func() (*profile.Profile, error) { return Mallows(rng, 20, 6, 0.4) }},
		{"cycle", func() (*profile.Profile, error) { return CycleHeavy(rng, 20, 6, 0.3) }},
		{"rotations", func() (*profile.Profile, error) { return Rotations(5, 4) }},
		{"identical", func() (*profile.Profile, error) { return Identical(3, 5) }},
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
		})
	}
}

func TestMallowsZeroPhiIsUnanimous(t *testing.T) {
	p, err := Mallows(NewRand(1), 10, 5, 0)
	if err != nil {
		t.Fatal(err)
	}
	for v := 0; v < p.Voters(); v++ {
		for c := 0; c < p.Candidates(); c++ {
			if p.Rank(v, c) != c {
				t.Fatalf("voter %d deviates from identity: %v", v, p.Row(v))
			}
		}
	}
}

func TestMallowsRejectsBadPhi(t *testing.T) {
	if _, err := Mallows(NewRand(1), 3, 3, 1.5); err == nil {
		t.Error("phi > 1 should fail")
	}
}

func TestRotationsShape(t *testing.T) {
	p, err := Rotations(3, 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.Voters() != 12 || p.Candidates() != 4 {
		t.Fatalf("shape = %dx%d, want 12x4", p.Voters(), p.Candidates())
	}
	if got := p.Order(3); got[0] != 1 {
		t.Errorf("second block should start with candidate 1, got %v", got)
	}
}

func TestSpecSeedIsDeterministic(t *testing.T) {
	spec := Spec{Model: ModelUniform, Voters: 8, Candidates: 5, Seed: 42}
	a, err := spec.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, _ := spec.Load(context.Background())
	if !a.Equal(b) {
		t.Error("same seed should produce the same profile")
	}
}

func TestSpecErrors(t *testing.T) {
	ctx := context.Background()
	bad := []Spec{
		{Model: "nope", Voters: 2, Candidates: 2},
		{Model: ModelUniform, Voters: 0, Candidates: 2},
		{Model: ModelRotations, Voters: 5, Candidates: 2},
	}
	for _, s := range bad {
		if _, err := s.Load(ctx); err == nil {
			t.Errorf("Spec%+v.Load() should fail", s)
		}
	}
}
