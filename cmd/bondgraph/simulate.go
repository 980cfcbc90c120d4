package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bondgraph-xyz/go-bondgraph/equation"
	"github.com/bondgraph-xyz/go-bondgraph/solver"
	"github.com/bondgraph-xyz/go-bondgraph/viewer"
)

func equations(args []string) error {
	fs := flag.NewFlagSet("equations", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph equations <scenario>

Print the assignment-form equations derived from the causality marks.
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("scenario required")
	}

	g, err := buildScenario(fs.Arg(0))
	if err != nil {
		return err
	}
	sys, err := equation.FromGraph(g)
	if err != nil {
		return err
	}

	for _, a := range sys.Assignments {
		fmt.Println(a)
	}
	for _, st := range sys.States {
		fmt.Println(st)
	}
	return nil
}

func solveScenario(name string, tEnd float64, methodName string, opts *solver.Options) (*solver.Solution, error) {
	g, err := buildScenario(name)
	if err != nil {
		return nil, err
	}
	sys, err := equation.FromGraph(g)
	if err != nil {
		return nil, err
	}
	prob, err := solver.NewProblem(sys, [2]float64{0, tEnd})
	if err != nil {
		return nil, err
	}

	var method *solver.Solver
	switch methodName {
	case "", "tsit5":
		method = solver.Tsit5()
	case "rk45":
		method = solver.RK45()
	case "bs32":
		method = solver.BS32()
	default:
		return nil, fmt.Errorf("unknown method %q (tsit5, rk45, bs32)", methodName)
	}

	return solver.Solve(prob, method, opts), nil
}

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	timeEnd := fs.Float64("time", 10.0, "End time for simulation")
	method := fs.String("method", "tsit5", "Integration method (tsit5, rk45, bs32)")
	accurate := fs.Bool("accurate", false, "Use high-precision tolerances")
	fast := fs.Bool("fast", false, "Trade precision for speed")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph simulate <scenario> [options]

Derive the scenario's equations and integrate them, printing the final state.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("scenario required")
	}

	opts := solver.DefaultOptions()
	if *accurate {
		opts = solver.AccurateOptions()
	}
	if *fast {
		opts = solver.FastOptions()
	}

	sol, err := solveScenario(fs.Arg(0), *timeEnd, *method, opts)
	if err != nil {
		return err
	}

	final := sol.GetFinalState()
	names := make([]string, 0, len(final))
	for name := range final {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("t = %g (%d steps)\n", sol.T[len(sol.T)-1], len(sol.T)-1)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, final[name])
	}
	return nil
}

func plot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	timeEnd := fs.Float64("time", 10.0, "End time for simulation")
	method := fs.String("method", "tsit5", "Integration method (tsit5, rk45, bs32)")
	output := fs.String("output", "", "Output image file (required; .png, .svg or .pdf)")
	varsFlag := fs.String("vars", "", "Comma-separated variables to plot (default: states)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph plot <scenario> [options]

Simulate a scenario and chart selected variables over time.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("scenario required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	sol, err := solveScenario(fs.Arg(0), *timeEnd, *method, nil)
	if err != nil {
		return err
	}

	var names []string
	if *varsFlag != "" {
		for _, name := range strings.Split(*varsFlag, ",") {
			names = append(names, strings.TrimSpace(name))
		}
	}

	if err := viewer.PlotSolution(sol, names, fs.Arg(0), *output); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *output)
	return nil
}
