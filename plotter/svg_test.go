package plotter

import (
	"fmt"
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

func TestRenderGraph(t *testing.T) {
	g := testGraph(t)
	svg := RenderGraph(g, 640, 480)

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("Expected a complete SVG document")
	}
	// One node circle per element.
	if got := strings.Count(svg, "<circle"); got != 3 {
		t.Errorf("Expected 3 node circles, got %d", got)
	}
	// Element mnemonics and identifiers appear as labels.
	for _, want := range []string{">C<", ">R<", ">0<"} {
		if !strings.Contains(svg, want) {
			t.Errorf("Missing label %s", want)
		}
	}
	// One causal stroke per marked bond.
	if got := strings.Count(svg, `stroke="#e41a1c"`); got != len(g.Bonds()) {
		t.Errorf("Expected %d causal strokes, got %d", len(g.Bonds()), got)
	}
	// Bond index labels.
	for i := range g.Bonds() {
		if !strings.Contains(svg, fmt.Sprintf(">%d</text>", i)) {
			t.Errorf("Missing index label for bond %d", i)
		}
	}
}

func TestRenderTitleAndEscape(t *testing.T) {
	g := testGraph(t)
	svg := NewDiagram(640, 480).SetTitle(`a <b> & "c"`).Render(g)
	if !strings.Contains(svg, "a &lt;b&gt; &amp; &quot;c&quot;") {
		t.Error("Title must be XML-escaped")
	}
}

func TestRenderDefaultTitle(t *testing.T) {
	g := testGraph(t)
	svg := NewDiagram(640, 480).Render(g)
	if !strings.Contains(svg, ">rc</text>") {
		t.Error("Expected the graph name as default title")
	}
}

func TestInactiveJunctionDimmed(t *testing.T) {
	g, err := bondgraph.New("switched",
		[]*bondgraph.Element{
			bondgraph.NewCapacitance("C", expr.Sub(expr.Var("e"), expr.Var("q")), 2),
			bondgraph.NewResistance("R", expr.Sub(expr.Var("f"), expr.Var("e"))),
			bondgraph.NewCommonEffortJunction("0", true),
		},
		[][2]string{{"0", "C"}, {"0", "R"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := g.Element("0").Deactivate(); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	svg := RenderGraph(g, 640, 480)
	if !strings.Contains(svg, `fill="#eeeeee"`) {
		t.Error("Inactive controlled junction must render dimmed")
	}
}
