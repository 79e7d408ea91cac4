package aggregate

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/distance"
	"github.com/matzehuels/kemeny/pkg/pairwise"
	"github.com/matzehuels/kemeny/pkg/profile"
)

var (
	// ErrTooManyCandidates is wrapped by exact methods whose candidate
	// ceiling the input exceeds.
	ErrTooManyCandidates = errors.New("candidate count exceeds solver limit")

	// ErrNoMLE is returned by a Fitter when the Plackett-Luce likelihood has
	// no maximiser for the given comparisons.
	ErrNoMLE = errors.New("plackett-luce: maximum likelihood estimate does not exist")
)

// Method computes a consensus order for a profile.
type Method interface {
	Name() string
	Aggregate(ctx context.Context, p *profile.Profile) (*Result, error)
}

// Result is the outcome of one aggregation.
type Result struct {
	Method string `json:"method"`
	// Order lists candidates best to worst.
	Order []int `json:"order"`
	// Score is the Kemeny score of Order, recomputed from the profile.
	Score int `json:"score"`
	// Objective is the value the method itself optimised or reported. For
	// exact methods it must equal Score; for the ILP it is the oracle's
	// objective.
	Objective float64 `json:"objective"`
	// Exact is set when Order is a proven Kemeny optimum.
	Exact    bool          `json:"exact"`
	Duration time.Duration `json:"duration"`
}

// Ranks returns the rank position of every candidate under r.Order.
func (r *Result) Ranks() []int { return distance.Positions(r.Order) }

// finish validates order and fills in the recomputed score.
func finish(name string, p *profile.Profile, order []int, objective float64, exact bool, start time.Time) (*Result, error) {
	if !isPermutation(order, p.Candidates()) {
		return nil, kerrors.New(kerrors.ErrCodeInternal, "%s produced an invalid order %v", name, order)
	}
	return &Result{
		Method:    name,
		Order:     order,
		Score:     distance.Score(p, order),
		Objective: objective,
		Exact:     exact,
		Duration:  time.Since(start),
	}, nil
}

// heuristicResult is finish for methods whose objective is their score.
func heuristicResult(name string, p *profile.Profile, order []int, start time.Time) (*Result, error) {
	res, err := finish(name, p, order, 0, false, start)
	if err != nil {
		return nil, err
	}
	res.Objective = float64(res.Score)
	return res, nil
}

func stats(p *profile.Profile) (*pairwise.Stats, error) {
	if p == nil {
		return nil, kerrors.New(kerrors.ErrCodeInvalidProfile, "nil profile")
	}
	return pairwise.Compute(p)
}

func checkLimit(name string, m, limit int) error {
	if limit > 0 && m > limit {
		return kerrors.Wrap(kerrors.ErrCodeLimitExceeded, ErrTooManyCandidates,
			"%s handles at most %d candidates, got %d", name, limit, m)
	}
	return nil
}

func canceled(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return kerrors.Wrap(kerrors.ErrCodeTimeout, err, "%s", name)
	}
	return fmt.Errorf("%s: %w", name, err)
}

func isPermutation(order []int, m int) bool {
	if len(order) != m {
		return false
	}
	seen := make([]bool, m)
	for _, c := range order {
		if c < 0 || c >= m || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// sortByKey returns 0..m-1 ordered by key ascending, ties by index.
func sortByKey(key []int) []int {
	order := make([]int, len(key))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return key[a] - key[b] })
	return order
}

// sortByKeyDesc returns 0..m-1 ordered by key descending, ties by index.
func sortByKeyDesc(key []int) []int {
	order := make([]int, len(key))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return key[b] - key[a] })
	return order
}
