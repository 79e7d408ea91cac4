package aggregate

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"slices"
	"time"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/distance"
	"github.com/matzehuels/kemeny/pkg/mip"
	"github.com/matzehuels/kemeny/pkg/perm"
	"github.com/matzehuels/kemeny/pkg/profile"
)

// Limits caps the candidate count each exact method accepts. Zero disables
// a ceiling.
type Limits struct {
	BruteForce  int `json:"brute_force" toml:"brute_force" validate:"min=0"`
	SubsetDP    int `json:"subset_dp" toml:"subset_dp" validate:"min=0"`
	ILP         int `json:"ilp" toml:"ilp" validate:"min=0"`
	BranchBound int `json:"branch_bound" toml:"branch_bound" validate:"min=0"`
}

// DefaultLimits reflects where each exact method stops finishing in
// seconds on commodity hardware. The SAT-backed ILP is the slowest: its
// proof of optimality grows quickly once cycles span many candidates.
// Branch and bound is fast on profiles with a clear majority structure and
// degrades towards m! on near-ties, so its ceiling is conservative.
var DefaultLimits = Limits{BruteForce: 10, SubsetDP: 20, ILP: 10, BranchBound: 14}

const (
	checkEvery  = 1 << 14
	maxSubsetDP = 30
)

// BruteForce scores every permutation and keeps the first optimum in
// lexicographic order.
type BruteForce struct {
	Limit int
}

func (BruteForce) Name() string { return NameBruteForce }

func (b BruteForce) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	m := p.Candidates()
	if err := checkLimit(NameBruteForce, m, b.Limit); err != nil {
		return nil, err
	}

	best := -1
	var bestOrder []int
	visited := 0
	perm.Each(m, func(order []int) bool {
		visited++
		if visited%checkEvery == 0 && ctx.Err() != nil {
			return false
		}
		score := distance.CostScore(s, order)
		if best < 0 || score < best {
			best = score
			bestOrder = slices.Clone(order)
		}
		return true
	})
	if err := ctx.Err(); err != nil {
		return nil, canceled(NameBruteForce, err)
	}
	return finish(NameBruteForce, p, bestOrder, float64(best), true, start)
}

// SubsetDP solves Kemeny exactly with a dynamic program over candidate
// subsets encoded as bitmasks.
//
// dp[S] is the cheapest way to order the candidates in S and last[S] the
// candidate that order puts at the bottom. Placing i last below S\{i}
// costs Σ cost[c][i] over c in S\{i}. Among equal-cost choices the lowest
// index is kept as last.
type SubsetDP struct {
	Limit int
}

func (SubsetDP) Name() string { return NameSubsetDP }

func (d SubsetDP) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	m := p.Candidates()
	if err := checkLimit(NameSubsetDP, m, d.Limit); err != nil {
		return nil, err
	}
	if m > maxSubsetDP {
		return nil, kerrors.Wrap(kerrors.ErrCodeLimitExceeded, ErrTooManyCandidates,
			"%s: %d candidates exceed the addressable table size", NameSubsetDP, m)
	}

	cost := s.CostMatrix()
	size := 1 << m
	dp := make([]int, size)
	last := make([]int8, size)
	for i := 0; i < m; i++ {
		last[1<<i] = int8(i)
	}

	members := make([]int, 0, m)
	for set := 1; set < size; set++ {
		if set%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, canceled(NameSubsetDP, err)
			}
		}
		if set&(set-1) == 0 {
			continue
		}

		members = members[:0]
		for rest := set; rest != 0; rest &= rest - 1 {
			members = append(members, bits.TrailingZeros(uint(rest)))
		}

		bestCost, bestLast := -1, -1
		for _, i := range members {
			extra := 0
			for _, c := range members {
				extra += cost[c][i]
			}
			total := dp[set&^(1<<i)] + extra
			if bestCost < 0 || total < bestCost {
				bestCost, bestLast = total, i
			}
		}
		dp[set] = bestCost
		last[set] = int8(bestLast)
	}

	full := size - 1
	order := make([]int, m)
	for set, k := full, m-1; set != 0; k-- {
		i := int(last[set])
		order[k] = i
		set &^= 1 << i
	}
	return finish(NameSubsetDP, p, order, float64(dp[full]), true, start)
}

// ILP formulates Kemeny as a 0-1 program and delegates it to Solver.
//
// x[i][j] = 1 means i precedes j. The model minimises Σ cost[i][j]·x[i][j]
// subject to x[i][j] + x[j][i] = 1 and, for every triple of distinct
// candidates, no directed 3-cycle: x[i][j] + x[j][k] + x[k][i] <= 2 in
// both orientations. Since x[j][i] = 1 - x[i][j], the objective is stated
// over i < j only, as Σ min(cost[i][j], cost[j][i]) plus one term per
// pair weighted by its margin. The Borda order refined by adjacent swaps
// is handed to the solver as its starting incumbent. Any status other than
// optimal fails with mip.ErrNotOptimal.
type ILP struct {
	Solver mip.Solver
	Limit  int
}

func (ILP) Name() string { return NameILP }

func (l ILP) Aggregate(ctx context.Context, p *profile.Profile) (*Result, error) {
	start := time.Now()
	s, err := stats(p)
	if err != nil {
		return nil, err
	}
	m := p.Candidates()
	if err := checkLimit(NameILP, m, l.Limit); err != nil {
		return nil, err
	}
	solver := l.Solver
	if solver == nil {
		solver = mip.NewSATSolver()
	}

	model, x := kemenyModel(s.CostMatrix())
	seed, _ := twoOpt(s, bordaOrder(p), DefaultMaxNoImprove)
	model.SetStart(orderValues(model, x, seed))

	sol, err := solver.Solve(ctx, model)
	if err != nil {
		if ctx.Err() != nil {
			return nil, canceled(NameILP, err)
		}
		return nil, kerrors.Wrap(kerrors.ErrCodeSolverInfeasible, err, "%s: solver failed", NameILP)
	}
	if sol.Status != mip.StatusOptimal {
		return nil, kerrors.Wrap(kerrors.ErrCodeSolverInfeasible, mip.ErrNotOptimal, "%s: solver status %s", NameILP, sol.Status)
	}
	if len(sol.Values) != model.NumVars() {
		return nil, kerrors.New(kerrors.ErrCodeSolverInfeasible,
			"%s: solver returned %d values for %d variables", NameILP, len(sol.Values), model.NumVars())
	}

	wins := make([]int, m)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			if i != j && sol.Value(x[i][j]) > 0.5 {
				wins[i]++
			}
		}
	}
	order := sortByKeyDesc(wins)

	res, err := finish(NameILP, p, order, sol.Objective, true, start)
	if err != nil {
		return nil, err
	}
	if math.Abs(float64(res.Score)-sol.Objective) > 0.5 {
		return nil, kerrors.New(kerrors.ErrCodeSolverInfeasible,
			"%s: reconstructed order scores %d but solver reported %v", NameILP, res.Score, sol.Objective)
	}
	return res, nil
}

// kemenyModel builds the ordering ILP for a cost matrix. x[i][i] is unused.
func kemenyModel(cost [][]int) (*mip.Model, [][]mip.Var) {
	m := len(cost)
	model := mip.NewModel()
	x := make([][]mip.Var, m)
	for i := range x {
		x[i] = make([]mip.Var, m)
		for j := range x[i] {
			if i != j {
				x[i][j] = model.AddVar(fmt.Sprintf("x%d_%d", i, j))
			}
		}
	}

	// cost[i][j]·x[i][j] + cost[j][i]·(1 - x[i][j]) for each i < j.
	var objective []mip.Term
	offset := 0
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			offset += cost[j][i]
			if d := cost[i][j] - cost[j][i]; d != 0 {
				objective = append(objective, mip.Term{Var: x[i][j], Coef: float64(d)})
			}
		}
	}
	model.SetObjective(objective...)
	model.SetObjectiveOffset(float64(offset))

	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			model.AddConstraint(mip.Constraint{
				Name:  fmt.Sprintf("anti%d_%d", i, j),
				Terms: []mip.Term{{Var: x[i][j], Coef: 1}, {Var: x[j][i], Coef: 1}},
				Sense: mip.Equal,
				RHS:   1,
			})
		}
	}
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			for k := j + 1; k < m; k++ {
				for _, c := range [2][3]int{{i, j, k}, {i, k, j}} {
					a, b, d := c[0], c[1], c[2]
					model.AddConstraint(mip.Constraint{
						Name:  fmt.Sprintf("tri%d_%d_%d", a, b, d),
						Terms: []mip.Term{{Var: x[a][b], Coef: 1}, {Var: x[b][d], Coef: 1}, {Var: x[d][a], Coef: 1}},
						Sense: mip.LessEq,
						RHS:   2,
					})
				}
			}
		}
	}
	return model, x
}

// orderValues encodes a total order as an assignment of the kemenyModel
// variables.
func orderValues(model *mip.Model, x [][]mip.Var, order []int) []float64 {
	values := make([]float64, model.NumVars())
	pos := distance.Positions(order)
	for i := range x {
		for j := range x {
			if i != j && pos[i] < pos[j] {
				values[x[i][j]] = 1
			}
		}
	}
	return values
}
