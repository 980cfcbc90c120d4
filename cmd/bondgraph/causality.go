package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bondgraph-xyz/go-bondgraph/plotter"
)

func list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	for _, name := range scenarioNames() {
		fmt.Println(name)
	}
	return nil
}

func causality(args []string) error {
	fs := flag.NewFlagSet("causality", flag.ExitOnError)
	events := fs.Bool("events", false, "Show the assignment event log")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph causality <scenario> [options]

Build a scenario and print the causality mark of every bond.

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

	g, err := buildScenario(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d elements, %d bonds\n", g.Name(), len(g.ElementIDs()), len(g.Bonds()))
	for _, b := range g.Bonds() {
		eff, err := b.EffortInputEndpoint()
		if err != nil {
			return err
		}
		flow, err := b.FlowInputEndpoint()
		if err != nil {
			return err
		}
		fmt.Printf("  bond %d (%s -> %s): effort into %s, flow into %s\n",
			b.Index, b.Start, b.End, eff, flow)
	}

	if fallback := g.FallbackBonds(); len(fallback) > 0 {
		fmt.Printf("warning: %d bond(s) resolved arbitrarily (algebraic loop):\n", len(fallback))
		for _, b := range fallback {
			fmt.Printf("  bond %d (%s -> %s)\n", b.Index, b.Start, b.End)
		}
	}

	if *events {
		fmt.Println("events:")
		for _, ev := range g.Events() {
			fmt.Printf("  %s\n", ev)
		}
	}
	return nil
}

func graph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	output := fs.String("output", "", "Output SVG file (required)")
	width := fs.Float64("width", 640, "Image width")
	height := fs.Float64("height", 480, "Image height")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph graph <scenario> [options]

Render the bond graph structure with causal strokes as SVG.

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

	g, err := buildScenario(fs.Arg(0))
	if err != nil {
		return err
	}

	svg := plotter.RenderGraph(g, *width, *height)
	if err := os.WriteFile(*output, []byte(svg), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	fmt.Printf("Wrote %s\n", *output)
	return nil
}
