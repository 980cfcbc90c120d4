package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bondgraph-xyz/go-bondgraph/runlog"
)

func archive(args []string) error {
	fs := flag.NewFlagSet("archive", flag.ExitOnError)
	dbPath := fs.String("db", "bondgraph.db", "Run archive database file")
	export := fs.Bool("export", false, "Print the archived run as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph archive <scenario> [options]

Assign causality for a scenario and save the marks and event log to the
run archive.

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

	store, err := runlog.New(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveRun(g)
	if err != nil {
		return err
	}
	fmt.Printf("Archived run %s (%s)\n", id, g.Name())

	if *export {
		data, err := store.ExportRunJSON(id)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	return nil
}

func runs(args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "bondgraph.db", "Run archive database file")
	graphName := fs.String("graph", "", "Filter by graph name")
	limit := fs.Int("limit", 20, "Maximum number of runs to list")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: bondgraph runs [options]

List archived causality runs, most recent first.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := runlog.New(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	list, err := store.ListRuns(*graphName, *limit)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}
	for _, r := range list {
		fmt.Printf("%s  %s  %s  %d bonds, %d fallback(s)\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Graph, r.Bonds, r.Fallbacks)
	}
	return nil
}
