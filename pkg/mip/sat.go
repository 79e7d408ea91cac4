package mip

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// DefaultPollInterval is how often SATSolver checks ctx while the SAT
// engine runs.
const DefaultPollInterval = 5 * time.Millisecond

// SATSolver solves integer-coefficient 0-1 models with the gini SAT solver.
type SATSolver struct {
	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
}

// NewSATSolver returns a SATSolver with default settings.
func NewSATSolver() *SATSolver {
	return &SATSolver{}
}

type encoding struct {
	c       *logic.C
	vars    []z.Lit
	roots   []z.Lit
	clauses [][]z.Lit
	obj     *logic.CardSort
	shift   int // literal units minus (objective - offset)
}

// Solve implements Solver.
//
// Constraints that amount to a single clause are added as clauses; the rest
// go through cardinality networks. The objective is minimised by
// repeatedly asking for a solution strictly below the incumbent. A feasible
// Model.Start becomes the first incumbent.
func (s *SATSolver) Solve(ctx context.Context, m *Model) (*Solution, error) {
	enc, err := encode(m)
	if err != nil {
		return nil, err
	}

	g := gini.New()
	enc.c.ToCnf(g)
	for _, l := range enc.vars {
		// Register every decision variable, even ones no clause mentions.
		g.Add(l)
		g.Add(l.Not())
		g.Add(z.LitNull)
	}
	for _, r := range enc.roots {
		g.Add(r)
		g.Add(z.LitNull)
	}
	for _, cl := range enc.clauses {
		for _, l := range cl {
			g.Add(l)
		}
		g.Add(z.LitNull)
	}

	sol := &Solution{Status: StatusUnknown}
	best, ok := enc.warmStart(m, sol)
	if !ok {
		res, err := s.run(ctx, g)
		if err != nil || res != 1 {
			if res == -1 {
				sol.Status = StatusInfeasible
			}
			return sol, err
		}
		best = enc.record(g, m, sol)
	}

	// Binary search on the objective in literal units. Zero units is the
	// smallest value the objective network can express, and best is
	// attained by sol.
	lo := 0
	for lo < best {
		mid := lo + (best-lo-1)/2
		g.Assume(enc.obj.Leq(mid))
		res, err := s.run(ctx, g)
		if err != nil {
			return sol, err
		}
		switch res {
		case 1:
			best = enc.record(g, m, sol)
		case -1:
			lo = mid + 1
		default:
			return sol, nil
		}
	}
	sol.Status = StatusOptimal
	return sol, nil
}

// warmStart installs m.Start as the incumbent when it is feasible.
func (e *encoding) warmStart(m *Model, sol *Solution) (int, bool) {
	start := m.Start()
	if start == nil || !m.Feasible(start) {
		return 0, false
	}
	sol.Values = slices.Clone(start)
	sol.Objective = m.Evaluate(start)
	sol.Status = StatusFeasible
	return e.units(m, sol.Objective), true
}

// record copies the current model into sol and returns its objective in
// literal units.
func (e *encoding) record(g *gini.Gini, m *Model, sol *Solution) int {
	values := make([]float64, len(e.vars))
	for i, l := range e.vars {
		if g.Value(l) {
			values[i] = 1
		}
	}
	sol.Values = values
	sol.Objective = m.Evaluate(values)
	sol.Status = StatusFeasible
	return e.units(m, sol.Objective)
}

func (e *encoding) units(m *Model, objective float64) int {
	return int(math.Round(objective-m.ObjectiveOffset())) + e.shift
}

func (s *SATSolver) run(ctx context.Context, g *gini.Gini) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if ctx.Done() == nil {
		return g.Solve(), nil
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	proc := g.GoSolve()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if res, done := proc.Test(); done {
			return res, nil
		}
		select {
		case <-ctx.Done():
			proc.Stop()
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

func encode(m *Model) (*encoding, error) {
	enc := &encoding{c: logic.NewC()}
	enc.vars = make([]z.Lit, m.NumVars())
	for i := range enc.vars {
		enc.vars[i] = enc.c.Lit()
	}

	for _, con := range m.Constraints() {
		lits, shift, err := enc.expand(con.Terms)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", con.Name, err)
		}
		rhs, err := integral(con.RHS)
		if err != nil {
			return nil, fmt.Errorf("constraint %q: %w", con.Name, err)
		}
		b := rhs + shift
		switch con.Sense {
		case LessEq:
			enc.atMost(lits, b)
		case GreaterEq:
			enc.atLeast(lits, b)
		case Equal:
			enc.atMost(lits, b)
			enc.atLeast(lits, b)
		default:
			return nil, fmt.Errorf("constraint %q: %w: sense %v", con.Name, ErrUnsupported, con.Sense)
		}
	}

	lits, shift, err := enc.expand(m.Objective())
	if err != nil {
		return nil, fmt.Errorf("objective: %w", err)
	}
	enc.obj = logic.NewCardSort(lits, enc.c)
	enc.shift = shift
	return enc, nil
}

// atMost requires at most b of lits to be true.
func (e *encoding) atMost(lits []z.Lit, b int) {
	switch {
	case b >= len(lits):
	case b == len(lits)-1 && len(lits) > 0:
		cl := make([]z.Lit, len(lits))
		for i, l := range lits {
			cl[i] = l.Not()
		}
		e.clauses = append(e.clauses, cl)
	default:
		e.roots = append(e.roots, logic.NewCardSort(lits, e.c).Leq(b))
	}
}

// atLeast requires at least b of lits to be true.
func (e *encoding) atLeast(lits []z.Lit, b int) {
	switch {
	case b <= 0:
	case b == 1 && len(lits) > 0:
		e.clauses = append(e.clauses, slices.Clone(lits))
	default:
		e.roots = append(e.roots, logic.NewCardSort(lits, e.c).Geq(b))
	}
}

// expand turns Σ a_i x_i into a literal multiset L with Σ a_i x_i = |L true| - shift.
func (e *encoding) expand(terms []Term) ([]z.Lit, int, error) {
	var lits []z.Lit
	shift := 0
	for _, t := range terms {
		a, err := integral(t.Coef)
		if err != nil {
			return nil, 0, err
		}
		if int(t.Var) < 0 || int(t.Var) >= len(e.vars) {
			return nil, 0, fmt.Errorf("%w: unknown variable %d", ErrUnsupported, t.Var)
		}
		l := e.vars[t.Var]
		if a < 0 {
			l, a = l.Not(), -a
			shift += a
		}
		for range a {
			lits = append(lits, l)
		}
	}
	return lits, shift, nil
}

func integral(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: non-integer coefficient %v", ErrUnsupported, f)
	}
	return int(f), nil
}
