package mip

import (
	"context"
	"errors"
	"testing"
)

func TestSATSolverMinimises(t *testing.T) {
	// Choose exactly two of a, b, c; costs 5, 2, 3.
	m := NewModel()
	a, b, c := m.AddVar("a"), m.AddVar("b"), m.AddVar("c")
	m.SetObjective(Term{a, 5}, Term{b, 2}, Term{c, 3})
	m.AddConstraint(Constraint{Name: "pick2", Terms: []Term{{a, 1}, {b, 1}, {c, 1}}, Sense: Equal, RHS: 2})

	sol, err := NewSATSolver().Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusOptimal {
		t.Fatalf("status = %v, want optimal", sol.Status)
	}
	if sol.Objective != 5 {
		t.Errorf("objective = %v, want 5", sol.Objective)
	}
	if sol.Value(a) != 0 || sol.Value(b) != 1 || sol.Value(c) != 1 {
		t.Errorf("values = %v, want [0 1 1]", sol.Values)
	}
	if !m.Feasible(sol.Values) {
		t.Error("solution violates constraints")
	}
}

func TestSATSolverNegativeCoefficients(t *testing.T) {
	// minimise -x - y subject to x - y >= 0 and x + y <= 1
	m := NewModel()
	x, y := m.AddVar("x"), m.AddVar("y")
	m.SetObjective(Term{x, -1}, Term{y, -1})
	m.AddConstraint(Constraint{Terms: []Term{{x, 1}, {y, -1}}, Sense: GreaterEq, RHS: 0})
	m.AddConstraint(Constraint{Terms: []Term{{x, 1}, {y, 1}}, Sense: LessEq, RHS: 1})

	sol, err := NewSATSolver().Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusOptimal || sol.Objective != -1 {
		t.Fatalf("got %v objective %v, want optimal -1", sol.Status, sol.Objective)
	}
	if sol.Value(x) != 1 || sol.Value(y) != 0 {
		t.Errorf("values = %v, want [1 0]", sol.Values)
	}
}

func TestSATSolverInfeasible(t *testing.T) {
	m := NewModel()
	x := m.AddVar("x")
	m.AddConstraint(Constraint{Terms: []Term{{x, 1}}, Sense: GreaterEq, RHS: 2})

	sol, err := NewSATSolver().Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusInfeasible {
		t.Errorf("status = %v, want infeasible", sol.Status)
	}
}

func TestSATSolverRejectsFractionalCoefficients(t *testing.T) {
	m := NewModel()
	x := m.AddVar("x")
	m.SetObjective(Term{x, 0.5})

	_, err := NewSATSolver().Solve(context.Background(), m)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("err = %v, want ErrUnsupported", err)
	}
}

func TestSATSolverCancelled(t *testing.T) {
	m := NewModel()
	m.AddVar("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := NewSATSolver().Solve(ctx, m)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if sol.Status == StatusOptimal {
		t.Error("cancelled solve must not report optimal")
	}
}

func TestModelFeasible(t *testing.T) {
	m := NewModel()
	x, y := m.AddVar("x"), m.AddVar("y")
	m.AddConstraint(Constraint{Terms: []Term{{x, 1}, {y, 1}}, Sense: Equal, RHS: 1})

	if !m.Feasible([]float64{1, 0}) {
		t.Error("[1 0] should be feasible")
	}
	if m.Feasible([]float64{1, 1}) {
		t.Error("[1 1] should be infeasible")
	}
	if m.VarName(y) != "y" || m.NumVars() != 2 {
		t.Error("variable bookkeeping mismatch")
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusOptimal:    "optimal",
		StatusFeasible:   "feasible",
		StatusInfeasible: "infeasible",
		StatusUnknown:    "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestSATSolverStartAndOffset(t *testing.T) {
	// minimise 10 + 3a - 2b subject to a + b = 1; optimum b = 1 at 8.
	m := NewModel()
	a, b := m.AddVar("a"), m.AddVar("b")
	m.SetObjective(Term{a, 3}, Term{b, -2})
	m.SetObjectiveOffset(10)
	m.AddConstraint(Constraint{Name: "one", Terms: []Term{{a, 1}, {b, 1}}, Sense: Equal, RHS: 1})

	tests := []struct {
		name  string
		start []float64
	}{
		{"no start", nil},
		{"suboptimal start", []float64{1, 0}},
		{"optimal start", []float64{0, 1}},
		{"infeasible start", []float64{1, 1}},
		{"short start", []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetStart(tt.start)
			sol, err := NewSATSolver().Solve(context.Background(), m)
			if err != nil {
				t.Fatal(err)
			}
			if sol.Status != StatusOptimal || sol.Objective != 8 {
				t.Fatalf("got %v objective %v, want optimal 8", sol.Status, sol.Objective)
			}
			if sol.Value(a) != 0 || sol.Value(b) != 1 {
				t.Errorf("values = %v, want [0 1]", sol.Values)
			}
		})
	}
}

func TestSATSolverClauseConstraints(t *testing.T) {
	// Forbid the 3-cycle x+y+z <= 2 and require one of them; minimise
	// -x-y-z, so exactly two end up true.
	m := NewModel()
	x, y, z := m.AddVar("x"), m.AddVar("y"), m.AddVar("z")
	m.SetObjective(Term{x, -1}, Term{y, -1}, Term{z, -1})
	m.AddConstraint(Constraint{Terms: []Term{{x, 1}, {y, 1}, {z, 1}}, Sense: LessEq, RHS: 2})
	m.AddConstraint(Constraint{Terms: []Term{{x, 1}, {y, 1}, {z, 1}}, Sense: GreaterEq, RHS: 1})

	sol, err := NewSATSolver().Solve(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if sol.Status != StatusOptimal || sol.Objective != -2 {
		t.Fatalf("got %v objective %v, want optimal -2", sol.Status, sol.Objective)
	}
	if !m.Feasible(sol.Values) {
		t.Errorf("values %v violate the model", sol.Values)
	}
}
