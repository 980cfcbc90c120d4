// Package plotter renders bond graph diagrams as SVG. Elements are laid out
// on a circle; each bond is drawn as an arrow in its power direction with a
// causal stroke at the endpoint receiving effort.
package plotter

import (
	"fmt"
	"math"
	"strings"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
)

// Diagram renders a bond graph with customizable dimensions.
type Diagram struct {
	Width  float64
	Height float64
	Title  string
}

// NewDiagram creates a diagram renderer with the given dimensions.
func NewDiagram(width, height float64) *Diagram {
	return &Diagram{Width: width, Height: height}
}

// SetTitle sets the diagram title.
func (d *Diagram) SetTitle(t string) *Diagram {
	d.Title = t
	return d
}

// mnemonics follow the conventional bond graph notation.
var mnemonics = map[bondgraph.Kind]string{
	bondgraph.EffortSource:         "Se",
	bondgraph.FlowSource:           "Sf",
	bondgraph.EffortSensor:         "De",
	bondgraph.FlowSensor:           "Df",
	bondgraph.EffortController:     "MSe",
	bondgraph.FlowController:       "MSf",
	bondgraph.Resistance:           "R",
	bondgraph.Capacitance:          "C",
	bondgraph.Inertance:            "I",
	bondgraph.Transformer:          "TF",
	bondgraph.Gyrator:              "GY",
	bondgraph.CommonEffortJunction: "0",
	bondgraph.CommonFlowJunction:   "1",
}

type point struct{ x, y float64 }

// Render generates the SVG document for the graph.
func (d *Diagram) Render(g *bondgraph.Graph) string {
	ids := g.ElementIDs()
	pos := d.layout(ids)

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(d.Width), int(d.Height)))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#f8f9fa" rx="8"/>`,
		int(d.Width), int(d.Height)))

	title := d.Title
	if title == "" {
		title = g.Name()
	}
	if title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="25" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" font-weight="bold">%s</text>`,
			d.Width/2, escape(title)))
	}

	for _, b := range g.Bonds() {
		d.renderBond(&sb, b, pos)
	}
	for _, id := range ids {
		d.renderElement(&sb, g.Element(id), pos[id])
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

// layout places element centers evenly on a circle, in insertion order.
func (d *Diagram) layout(ids []string) map[string]point {
	cx := d.Width / 2
	cy := d.Height/2 + 10
	r := math.Min(d.Width, d.Height)/2 - 70
	pos := make(map[string]point, len(ids))
	for i, id := range ids {
		angle := 2*math.Pi*float64(i)/float64(len(ids)) - math.Pi/2
		pos[id] = point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pos
}

const nodeRadius = 26.0

// renderBond draws the bond line with an arrowhead in the power direction, a
// causal stroke at the effort-input endpoint, and the bond index label.
func (d *Diagram) renderBond(sb *strings.Builder, b *bondgraph.Bond, pos map[string]point) {
	from, to := pos[b.Start], pos[b.End]
	dx, dy := to.x-from.x, to.y-from.y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length

	// Trim the line to the node boundaries.
	a := point{from.x + ux*nodeRadius, from.y + uy*nodeRadius}
	z := point{to.x - ux*nodeRadius, to.y - uy*nodeRadius}

	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		a.x, a.y, z.x, z.y))

	// Half arrow at the end element: power flows start to end.
	hx, hy := -uy, ux
	sb.WriteString(fmt.Sprintf(`<path d="M%f,%f L%f,%f" stroke="#333" stroke-width="2" fill="none"/>`,
		z.x, z.y, z.x-10*ux+8*hx, z.y-10*uy+8*hy))

	// Causal stroke: perpendicular tick at the endpoint receiving effort.
	if eff, err := b.EffortInputEndpoint(); err == nil {
		tip := z
		if eff == b.Start {
			tip = a
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#e41a1c" stroke-width="3"/>`,
			tip.x-9*hx, tip.y-9*hy, tip.x+9*hx, tip.y+9*hy))
	}

	mid := point{(a.x + z.x) / 2, (a.y + z.y) / 2}
	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10" fill="#666">%d</text>`,
		mid.x+10*hx, mid.y+10*hy, b.Index))
}

// renderElement draws the node circle with its mnemonic and identifier.
// Inactive controlled junctions render dimmed.
func (d *Diagram) renderElement(sb *strings.Builder, el *bondgraph.Element, p point) {
	fill := "#ffffff"
	stroke := "#333"
	if el.IsControlled() && !el.Active() {
		fill = "#eeeeee"
		stroke = "#999"
	}
	sb.WriteString(fmt.Sprintf(`<circle cx="%f" cy="%f" r="%f" fill="%s" stroke="%s" stroke-width="2"/>`,
		p.x, p.y, nodeRadius, fill, stroke))
	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="13" font-weight="bold">%s</text>`,
		p.x, p.y, escape(mnemonics[el.Kind()])))
	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10" fill="#666">%s</text>`,
		p.x, p.y+13, escape(el.ID())))
}

// RenderGraph is a convenience function rendering a graph at default size.
func RenderGraph(g *bondgraph.Graph, width, height float64) string {
	return NewDiagram(width, height).Render(g)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
