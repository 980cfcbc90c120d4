package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "list":
		if err := list(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "causality":
		if err := causality(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "equations":
		if err := equations(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "graph":
		if err := graph(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "plot":
		if err := plot(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "archive":
		if err := archive(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "runs":
		if err := runs(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("bondgraph version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bondgraph - bond graph modeling and causality analysis tool

Usage:
  bondgraph <command> [options]

Commands:
  list       List built-in scenarios
  causality  Show causality marks of a scenario
  equations  Show the assignment-form equations of a scenario
  simulate   Integrate a scenario over time
  graph      Render the bond graph structure as SVG
  plot       Render simulated variables as a chart
  archive    Save a causality run to the run archive
  runs       List archived runs
  help       Show this help message
  version    Show version information

Examples:
  # Inspect causality of the RC circuit
  bondgraph causality rc --events

  # Simulate and chart the spring damper
  bondgraph simulate spring-damper --time 10
  bondgraph plot spring-damper --time 10 --output chart.png

  # Render the bridge circuit
  bondgraph graph bridge --output bridge.svg

For command-specific help, run:
  bondgraph <command> --help`)
}
