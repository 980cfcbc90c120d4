// Package viewer renders simulation results as time-series charts.
package viewer

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/bondgraph-xyz/go-bondgraph/solver"
)

// PlotSolution draws the named variables of a solution over time and writes
// the chart to path. The image format follows the file extension (.png,
// .svg, .pdf). An empty variable list plots the state variables.
func PlotSolution(sol *solver.Solution, names []string, title, path string) error {
	if len(names) == 0 {
		names = sol.StateLabels
	}
	if len(names) == 0 {
		return fmt.Errorf("no variables to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Legend.Top = true

	args := make([]interface{}, 0, 2*len(names))
	for _, name := range names {
		series := sol.GetVariable(name)
		pts := make(plotter.XYs, len(sol.T))
		for i, t := range sol.T {
			pts[i].X = t
			pts[i].Y = series[i]
		}
		args = append(args, name, pts)
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return fmt.Errorf("add series: %w", err)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save chart: %w", err)
	}
	return nil
}
