package distance

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/profile/generate"
)

func TestKendallTau(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want int
	}{
		{"empty", []int{}, []int{}, 0},
		{"identical", []int{0, 1, 2, 3}, []int{0, 1, 2, 3}, 0},
		{"reversed", []int{0, 1, 2, 3}, []int{3, 2, 1, 0}, 6},
		{"one swap", []int{0, 1, 2}, []int{1, 0, 2}, 1},
		{"rotation", []int{0, 1, 2}, []int{2, 0, 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KendallTau(tt.a, tt.b); got != tt.want {
				t.Errorf("KendallTau = %d, want %d", got, tt.want)
			}
			if got := KendallTauFast(tt.a, tt.b); got != tt.want {
				t.Errorf("KendallTauFast = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKendallTauPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	KendallTau([]int{0, 1}, []int{0})
}

func TestMetricAxioms(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.IntN(8)
		a, b, c := rng.Perm(n), rng.Perm(n), rng.Perm(n)

		ab, ba := KendallTau(a, b), KendallTau(b, a)
		if ab != ba {
			t.Fatalf("not symmetric: d(a,b)=%d d(b,a)=%d", ab, ba)
		}
		if KendallTau(a, a) != 0 {
			t.Fatalf("d(a,a) != 0 for %v", a)
		}
		if ab > KendallTau(a, c)+KendallTau(c, b) {
			t.Fatalf("triangle inequality violated for %v %v %v", a, b, c)
		}
		if ab > n*(n-1)/2 {
			t.Fatalf("d(a,b)=%d exceeds bound for n=%d", ab, n)
		}
		if fast := KendallTauFast(a, b); fast != ab {
			t.Fatalf("KendallTauFast=%d, KendallTau=%d for %v %v", fast, ab, a, b)
		}
	}
}

func TestPositions(t *testing.T) {
	got := Positions([]int{2, 0, 1})
	want := []int{1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Positions = %v, want %v", got, want)
		}
	}
}

func TestScoreMatchesCostScore(t *testing.T) {
	rng := generate.NewRand(11)
	for trial := 0; trial < 25; trial++ {
		p, err := generate.Uniform(rng, 3+trial, 2+trial%7)
		if err != nil {
			t.Fatal(err)
		}
		s := pairwise.MustCompute(p)
		order := rng.Perm(p.Candidates())
		if a, b := Score(p, order), CostScore(s, order); a != b {
			t.Fatalf("Score=%d CostScore=%d for order %v", a, b, order)
		}
	}
}

func TestScoreUnanimous(t *testing.T) {
	p, err := generate.Identical(5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if got := Score(p, []int{0, 1, 2, 3}); got != 0 {
		t.Errorf("Score(identity) = %d, want 0", got)
	}
	if got := Score(p, []int{3, 2, 1, 0}); got != MaxScore(5, 4) {
		t.Errorf("Score(reverse) = %d, want %d", got, MaxScore(5, 4))
	}
}

func TestScoreConcreteExample(t *testing.T) {
	p := profile.MustNew([][]int{
		{0, 1, 2, 3, 4},
		{0, 1, 3, 2, 4},
		{4, 1, 2, 0, 3},
		{4, 1, 0, 2, 3},
		{4, 1, 3, 2, 0},
	})
	// Voters 1..4 disagree with the identity on 1, 6, 5 and 8 pairs.
	if got := Score(p, []int{0, 1, 2, 3, 4}); got != 20 {
		t.Errorf("Score = %d, want 20", got)
	}
}
