package viewer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
	"github.com/bondgraph-xyz/go-bondgraph/equation"
	"github.com/bondgraph-xyz/go-bondgraph/expr"
	"github.com/bondgraph-xyz/go-bondgraph/solver"
)

func rcSolution(t *testing.T) *solver.Solution {
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
	prob, err := solver.NewProblem(sys, [2]float64{0, 1})
	if err != nil {
		t.Fatalf("NewProblem failed: %v", err)
	}
	return solver.Solve(prob, nil, nil)
}

func TestPlotSolution(t *testing.T) {
	sol := rcSolution(t)
	path := filepath.Join(t.TempDir(), "rc.png")

	if err := PlotSolution(sol, nil, "rc", path); err != nil {
		t.Fatalf("PlotSolution failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Chart file missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Chart file is empty")
	}
}

func TestPlotSelectedVariables(t *testing.T) {
	sol := rcSolution(t)
	path := filepath.Join(t.TempDir(), "flows.svg")

	if err := PlotSolution(sol, []string{"f0", "f1"}, "flows", path); err != nil {
		t.Fatalf("PlotSolution failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Chart file missing: %v", err)
	}
}

func TestPlotNoVariables(t *testing.T) {
	sol := &solver.Solution{T: []float64{0, 1}}
	if err := PlotSolution(sol, nil, "empty", "unused.png"); err == nil {
		t.Error("Expected an error with nothing to plot")
	}
}
