package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
	"github.com/bondgraph-xyz/go-bondgraph/equation"
	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

func rcSystem(t *testing.T) *equation.System {
	t.Helper()
	g, err := bondgraph.New("rc",
		[]*bondgraph.Element{
			bondgraph.NewCapacitance("C", expr.Sub(expr.Var("e"), expr.Var("q")), 2),
			bondgraph.NewResistance("R", expr.Sub(expr.Var("f"), expr.Var("e"))),
			bondgraph.NewCommonEffortJunction("0", false),
		},
		[][2]string{{"0", "C"}, {"0", "R"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	sys, err := equation.FromGraph(g)
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	return sys
}

func TestOrderAssignments(t *testing.T) {
	// Listed in reverse dependency order; the problem must still evaluate.
	sys := &equation.System{
		Assignments: []equation.Assignment{
			{Target: "a", RHS: expr.Add(expr.Var("b"), expr.Const(1))},
			{Target: "b", RHS: expr.Mul(expr.Const(2), expr.Var("c"))},
			{Target: "c", RHS: expr.Const(3)},
		},
	}
	prob, err := NewProblem(sys, [2]float64{0, 1})
	if err != nil {
		t.Fatalf("NewProblem failed: %v", err)
	}
	env := prob.eval(0, nil)
	if env["c"] != 3 || env["b"] != 6 || env["a"] != 7 {
		t.Errorf("Unexpected evaluation: %v", env)
	}
}

func TestAlgebraicLoop(t *testing.T) {
	sys := &equation.System{
		Assignments: []equation.Assignment{
			{Target: "x", RHS: expr.Add(expr.Var("y"), expr.Const(1))},
			{Target: "y", RHS: expr.Var("x")},
		},
	}
	if _, err := NewProblem(sys, [2]float64{0, 1}); !errors.Is(err, ErrAlgebraicLoop) {
		t.Errorf("Expected ErrAlgebraicLoop, got %v", err)
	}
}

func TestStateVariablesBreakCycles(t *testing.T) {
	// A state variable on the right-hand side is known, not a dependency.
	sys := &equation.System{
		Assignments: []equation.Assignment{
			{Target: "e", RHS: expr.Var("q")},
			{Target: "f", RHS: expr.Neg(expr.Var("e"))},
		},
		States: []equation.State{{Name: "q", Deriv: "f", Initial: 1}},
	}
	if _, err := NewProblem(sys, [2]float64{0, 1}); err != nil {
		t.Errorf("Expected no loop, got %v", err)
	}
}

func TestRCDecay(t *testing.T) {
	sys := rcSystem(t)
	prob, err := NewProblem(sys, [2]float64{0, 1})
	if err != nil {
		t.Fatalf("NewProblem failed: %v", err)
	}
	sol := Solve(prob, Tsit5(), AccurateOptions())

	// Analytic solution: q(t) = 2 exp(-t).
	final := sol.GetFinalState()
	expected := 2 * math.Exp(-1)
	if got := final["q0"]; math.Abs(got-expected) > 1e-5 {
		t.Errorf("Expected q0 = %g, got %g", expected, got)
	}
	// The trajectory records bond variables too: the junction effort tracks
	// the charge.
	if got := final["e0"]; math.Abs(got-final["q0"]) > 1e-9 {
		t.Errorf("Expected e0 to equal q0, got %g vs %g", got, final["q0"])
	}
	if sol.StateLabels[0] != "q0" {
		t.Errorf("Expected state label q0, got %v", sol.StateLabels)
	}
}

func TestConstantForce(t *testing.T) {
	// Unit force on a mass of 2: momentum grows linearly, velocity at half
	// the rate.
	g, err := bondgraph.New("moving body",
		[]*bondgraph.Element{
			bondgraph.NewEffortSource("Se", expr.Const(1)),
			bondgraph.NewInertance("I", expr.Sub(expr.Var("p"), expr.Mul(expr.Const(2), expr.Var("f"))), 0),
			bondgraph.NewCommonFlowJunction("1", false),
		},
		[][2]string{{"Se", "1"}, {"1", "I"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	sys, err := equation.FromGraph(g)
	if err != nil {
		t.Fatalf("FromGraph failed: %v", err)
	}
	prob, err := NewProblem(sys, [2]float64{0, 4})
	if err != nil {
		t.Fatalf("NewProblem failed: %v", err)
	}
	sol := Solve(prob, nil, nil)

	final := sol.GetFinalState()
	if got := final["p1"]; math.Abs(got-4) > 1e-3 {
		t.Errorf("Expected p1 = 4, got %g", got)
	}
	if got := final["f1"]; math.Abs(got-2) > 1e-3 {
		t.Errorf("Expected f1 = 2, got %g", got)
	}
}

func TestSolveMethods(t *testing.T) {
	methods := map[string]*Solver{
		"tsit5": Tsit5(),
		"rk45":  RK45(),
		"bs32":  BS32(),
	}
	expected := 2 * math.Exp(-2)
	for name, method := range methods {
		t.Run(name, func(t *testing.T) {
			sys := rcSystem(t)
			prob, err := NewProblem(sys, [2]float64{0, 2})
			if err != nil {
				t.Fatalf("NewProblem failed: %v", err)
			}
			sol := Solve(prob, method, nil)
			if got := sol.GetFinalState()["q0"]; math.Abs(got-expected) > 1e-2 {
				t.Errorf("Expected q0 near %g, got %g", expected, got)
			}
		})
	}
}

func TestFixedStepEuler(t *testing.T) {
	sys := rcSystem(t)
	prob, err := NewProblem(sys, [2]float64{0, 1})
	if err != nil {
		t.Fatalf("NewProblem failed: %v", err)
	}
	opts := &Options{Dt: 0.001, Dtmin: 0.001, Dtmax: 0.001, Maxiters: 10000, Adaptive: false}
	sol := Solve(prob, Euler(), opts)

	expected := 2 * math.Exp(-1)
	if got := sol.GetFinalState()["q0"]; math.Abs(got-expected) > 1e-2 {
		t.Errorf("Expected q0 near %g, got %g", expected, got)
	}
}

func TestSolutionAccessors(t *testing.T) {
	sys := rcSystem(t)
	prob, err := NewProblem(sys, [2]float64{0, 1})
	if err != nil {
		t.Fatalf("NewProblem failed: %v", err)
	}
	sol := Solve(prob, nil, nil)

	series := sol.GetVariable("q0")
	if len(series) != len(sol.T) {
		t.Fatalf("Series length %d does not match %d time points", len(series), len(sol.T))
	}
	if series[0] != 2 {
		t.Errorf("Expected initial value 2, got %g", series[0])
	}
	if sol.GetState(-1) != nil || sol.GetState(len(sol.U)) != nil {
		t.Error("Out-of-range state access must return nil")
	}
	if got := sol.GetState(0)["q0"]; got != 2 {
		t.Errorf("Expected state 0 q0 = 2, got %g", got)
	}
}
