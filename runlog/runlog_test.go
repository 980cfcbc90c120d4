package runlog

import (
	"strings"
	"testing"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

func testGraph(t *testing.T) *bondgraph.Graph {
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
	return g
}

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndGetRun(t *testing.T) {
	store := openStore(t)
	g := testGraph(t)

	id, err := store.SaveRun(g)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if id == "" {
		t.Fatal("Expected a run identifier")
	}

	run, err := store.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Graph != "rc" || run.Elements != 3 || run.Bonds != 2 || run.Fallbacks != 0 {
		t.Errorf("Unexpected run record: %+v", run)
	}
}

func TestRunBondsRoundTrip(t *testing.T) {
	store := openStore(t)
	g := testGraph(t)

	id, err := store.SaveRun(g)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	bonds, err := store.GetRunBonds(id)
	if err != nil {
		t.Fatalf("GetRunBonds failed: %v", err)
	}
	if len(bonds) != 2 {
		t.Fatalf("Expected 2 bonds, got %d", len(bonds))
	}
	for i, b := range bonds {
		if b.BondIndex != i {
			t.Errorf("Bond %d stored with index %d", i, b.BondIndex)
		}
		orig := g.Bonds()[i]
		eff, _ := orig.EffortInputEndpoint()
		if b.EffortInputAt != eff || b.Start != orig.Start || b.End != orig.End {
			t.Errorf("Bond %d mismatch: stored %+v", i, b)
		}
		if b.Fallback {
			t.Errorf("Bond %d wrongly flagged as fallback", i)
		}
	}
}

func TestRunEventsRoundTrip(t *testing.T) {
	store := openStore(t)
	g := testGraph(t)

	id, err := store.SaveRun(g)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	events, err := store.GetRunEvents(id)
	if err != nil {
		t.Fatalf("GetRunEvents failed: %v", err)
	}
	if len(events) != len(g.Events()) {
		t.Fatalf("Expected %d events, got %d", len(g.Events()), len(events))
	}
	for i, ev := range events {
		orig := g.Events()[i]
		if ev.Seq != i || ev.Phase != orig.Phase.String() || ev.BondIndex != orig.Bond {
			t.Errorf("Event %d mismatch: stored %+v, original %+v", i, ev, orig)
		}
	}
}

func TestListRuns(t *testing.T) {
	store := openStore(t)
	g := testGraph(t)

	for i := 0; i < 3; i++ {
		if _, err := store.SaveRun(g); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	runs, err := store.ListRuns("", 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("Expected 3 runs, got %d", len(runs))
	}

	filtered, err := store.ListRuns("rc", 2)
	if err != nil {
		t.Fatalf("ListRuns filtered failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("Expected limit of 2, got %d", len(filtered))
	}

	none, err := store.ListRuns("other", 10)
	if err != nil {
		t.Fatalf("ListRuns no-match failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no runs for other graph, got %d", len(none))
	}
}

func TestExportRunJSON(t *testing.T) {
	store := openStore(t)
	g := testGraph(t)

	id, err := store.SaveRun(g)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	data, err := store.ExportRunJSON(id)
	if err != nil {
		t.Fatalf("ExportRunJSON failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{id, `"graph": "rc"`, `"bonds"`, `"events"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Export missing %q", want)
		}
	}
}
