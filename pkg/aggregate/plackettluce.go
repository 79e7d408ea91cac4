package aggregate

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/profile"
	"github.com/matzehuels/kemeny/pkg/tournament"
)

// Comparison records that Winner was ranked above Loser by one voter.
type Comparison struct {
	Winner int `json:"winner"`
	Loser  int `json:"loser"`
}

// Comparisons decomposes every voter's order into all pairwise outcomes it
// implies, voter by voter, in order position order.
func Comparisons(p *profile.Profile) []Comparison {
	m := p.Candidates()
	out := make([]Comparison, 0, p.Voters()*m*(m-1)/2)
	for v := 0; v < p.Voters(); v++ {
		order := p.Order(v)
		for i := range order {
			for _, loser := range order[i+1:] {
				out = append(out, Comparison{Winner: order[i], Loser: loser})
			}
		}
	}
	return out
}

// Identifiable reports whether the comparison graph over m candidates is
// strongly connected. Plackett-Luce strengths have a finite maximum
// likelihood estimate only in that case: a candidate that never loses (or
// never wins) against some group would otherwise drift to infinity.
func Identifiable(m int, comps []Comparison) bool {
	if m <= 1 {
		return true
	}
	fwd, rev := tournament.New(m), tournament.New(m)
	for _, c := range comps {
		fwd.AddEdge(c.Winner, c.Loser)
		rev.AddEdge(c.Loser, c.Winner)
	}
	for c := 1; c < m; c++ {
		if !fwd.Reaches(0, c) || !rev.Reaches(0, c) {
			return false
		}
	}
	return true
}

// Fitter estimates one Plackett-Luce strength per candidate from pairwise
// comparisons. Implementations return an error wrapping ErrNoMLE when no
// estimate exists.
type Fitter interface {
	Fit(ctx context.Context, m int, comps []Comparison) ([]float64, error)
}

// FitterFunc adapts a function to Fitter.
type FitterFunc func(ctx context.Context, m int, comps []Comparison) ([]float64, error)

// Fit calls f.
func (f FitterFunc) Fit(ctx context.Context, m int, comps []Comparison) ([]float64, error) {
	return f(ctx, m, comps)
}

// PlackettLuce orders candidates by descending strength as estimated by
// Fitter. No estimator ships with this package; callers plug one in.
type PlackettLuce struct {
	Fitter Fitter
}

func (PlackettLuce) Name() string { return NamePlackettLuce }

func (pl PlackettLuce) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	if _, err := stats(p); err != nil {
		return nil, err
	}
	if pl.Fitter == nil {
		return nil, kerrors.New(kerrors.ErrCodeUnsupported, "%s: no fitter configured", NamePlackettLuce)
	}
	m := p.Candidates()
	comps := Comparisons(p)
	if !Identifiable(m, comps) {
		return nil, kerrors.Wrap(kerrors.ErrCodeNotIdentifiable, ErrNoMLE, "%s: comparison graph is not strongly connected", NamePlackettLuce)
	}

	strength, err := pl.Fitter.Fit(ctx, m, comps)
	switch {
	case errors.Is(err, ErrNoMLE):
		return nil, kerrors.Wrap(kerrors.ErrCodeNotIdentifiable, err, "%s", NamePlackettLuce)
	case err != nil:
		return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "%s: fit", NamePlackettLuce)
	case len(strength) != m:
		return nil, kerrors.New(kerrors.ErrCodeInternal, "%s: fitter returned %d strengths for %d candidates", NamePlackettLuce, len(strength), m)
	}

	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(strength[b], strength[a]) })
	return heuristicResult(NamePlackettLuce, p, order, start)
}
