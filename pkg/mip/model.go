package mip

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotOptimal is returned by callers that require a proven optimum
	// when a solver reports any other status.
	ErrNotOptimal = errors.New("mip: solution not proven optimal")

	// ErrUnsupported is returned when a model uses features the solver
	// cannot encode.
	ErrUnsupported = errors.New("mip: unsupported model")
)

// Var identifies a binary decision variable within a Model.
type Var int

// Term is Coef·Var.
type Term struct {
	Var  Var
	Coef float64
}

// Sense is the relation of a constraint.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	case Equal:
		return "="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Constraint is Σ Terms Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a minimisation problem over binary variables.
type Model struct {
	names       []string
	objective   []Term
	offset      float64
	constraints []Constraint
	start       []float64
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// AddVar adds a binary variable and returns its handle.
func (m *Model) AddVar(name string) Var {
	m.names = append(m.names, name)
	return Var(len(m.names) - 1)
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.names) }

// VarName returns the name given to v.
func (m *Model) VarName(v Var) string { return m.names[v] }

// SetObjective replaces the objective with Σ terms, to be minimised.
func (m *Model) SetObjective(terms ...Term) {
	m.objective = append(m.objective[:0], terms...)
}

// Objective returns the objective terms.
func (m *Model) Objective() []Term { return m.objective }

// SetObjectiveOffset sets a constant added to every objective value.
func (m *Model) SetObjectiveOffset(c float64) { m.offset = c }

// ObjectiveOffset returns the objective constant.
func (m *Model) ObjectiveOffset() float64 { return m.offset }

// SetStart records a known assignment solvers may use as their first
// incumbent. Solvers ignore a start that is infeasible or has the wrong
// length.
func (m *Model) SetStart(values []float64) {
	m.start = append(m.start[:0], values...)
}

// Start returns the assignment set by SetStart, or nil.
func (m *Model) Start() []float64 { return m.start }

// AddConstraint appends c to the model.
func (m *Model) AddConstraint(c Constraint) {
	m.constraints = append(m.constraints, c)
}

// Constraints returns the model's constraints.
func (m *Model) Constraints() []Constraint { return m.constraints }

// Evaluate returns the objective value of an assignment.
func (m *Model) Evaluate(values []float64) float64 {
	total := m.offset
	for _, t := range m.objective {
		total += t.Coef * values[t.Var]
	}
	return total
}

// Feasible reports whether values satisfies every constraint.
func (m *Model) Feasible(values []float64) bool {
	const eps = 1e-9
	if len(values) != len(m.names) {
		return false
	}
	for _, c := range m.constraints {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var]
		}
		switch c.Sense {
		case LessEq:
			if lhs > c.RHS+eps {
				return false
			}
		case GreaterEq:
			if lhs < c.RHS-eps {
				return false
			}
		case Equal:
			if lhs < c.RHS-eps || lhs > c.RHS+eps {
				return false
			}
		}
	}
	return true
}

// Status is the outcome reported by a Solver.
type Status int

const (
	// StatusUnknown means the solver stopped without finding any solution.
	StatusUnknown Status = iota
	// StatusOptimal means Values is a proven optimum.
	StatusOptimal
	// StatusFeasible means Values is feasible but optimality was not proven.
	StatusFeasible
	// StatusInfeasible means no assignment satisfies the constraints.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	}
	return "unknown"
}

// Solution is a solver's answer. Values has one entry per model variable
// and is nil unless Status is StatusOptimal or StatusFeasible.
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
}

// Value returns the value assigned to v.
func (s *Solution) Value(v Var) float64 { return s.Values[v] }

// Solver minimises a Model. Implementations return a non-nil Solution
// whenever err is nil. If ctx ends first they return the best solution
// found so far together with ctx.Err().
type Solver interface {
	Solve(ctx context.Context, m *Model) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, m *Model) (*Solution, error)

// Solve calls f(ctx, m).
func (f SolverFunc) Solve(ctx context.Context, m *Model) (*Solution, error) { return f(ctx, m) }
