// Package equation turns a causality-annotated bond graph into
// assignment-form equations: one expression per computed bond variable plus
// one state equation per energy store. The causality marks decide, per
// element, which conjugate variable is the free input substituted into its
// constitutive relation and which is the derived output.
package equation

import (
	"errors"
	"fmt"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

// Error types for the equation package.
var (
	// ErrDerivativeCausality is returned when a store ended up in derivative
	// causality; the numeric pipeline only integrates, it never
	// differentiates inputs.
	ErrDerivativeCausality = errors.New("store in derivative causality")

	// ErrMissingRelation is returned when an element that needs a
	// constitutive relation has none.
	ErrMissingRelation = errors.New("missing constitutive relation")

	// ErrJunctionUnderdetermined is returned when a junction has no incident
	// bond imposing its shared variable.
	ErrJunctionUnderdetermined = errors.New("junction has no defining bond")

	// ErrTwoPortCausality is returned when a two-port's ports do not carry
	// the causality pattern its rules require.
	ErrTwoPortCausality = errors.New("two-port causality not fitting")
)

// Assignment computes one bond variable from previously known ones.
type Assignment struct {
	Target string
	RHS    expr.Expr
}

func (a Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Target, a.RHS.String())
}

// State is a state variable integrated over time: d/dt Name = value of the
// Deriv variable, starting from Initial.
type State struct {
	Name    string
	Deriv   string
	Initial float64
}

func (s State) String() string {
	return fmt.Sprintf("d/dt %s = %s, %s(0) = %g", s.Name, s.Deriv, s.Name, s.Initial)
}

// System is the complete assignment-form equation set of one graph.
type System struct {
	Assignments []Assignment
	States      []State
	Variables   []string // every bond effort/flow plus states, deterministic order
}

// EffortVar names the effort signal of bond i.
func EffortVar(i int) string { return fmt.Sprintf("e%d", i) }

// FlowVar names the flow signal of bond i.
func FlowVar(i int) string { return fmt.Sprintf("f%d", i) }

// DisplacementVar names the displacement state of the capacitance on bond i.
func DisplacementVar(i int) string { return fmt.Sprintf("q%d", i) }

// MomentumVar names the momentum state of the inertance on bond i.
func MomentumVar(i int) string { return fmt.Sprintf("p%d", i) }

// FromGraph assembles the equation system of a constructed graph. Errors
// from unmarked bonds propagate unchanged; a successfully constructed graph
// never produces them.
func FromGraph(g *bondgraph.Graph) (*System, error) {
	sys := &System{}
	for _, b := range g.Bonds() {
		sys.Variables = append(sys.Variables, EffortVar(b.Index), FlowVar(b.Index))
	}

	measurements, err := sensorMeasurements(g)
	if err != nil {
		return nil, err
	}

	for _, id := range g.ElementIDs() {
		el := g.Element(id)
		if err := elementEquations(sys, g, el, measurements); err != nil {
			return nil, fmt.Errorf("element %q: %w", id, err)
		}
	}
	for _, st := range sys.States {
		sys.Variables = append(sys.Variables, st.Name)
	}
	return sys, nil
}

// sensorMeasurements maps controller measurement variables ("y:<sensor id>")
// to the measured bond variable of each sensor.
func sensorMeasurements(g *bondgraph.Graph) (map[string]string, error) {
	m := make(map[string]string)
	for _, id := range g.ElementIDs() {
		el := g.Element(id)
		if !el.IsSensor() {
			continue
		}
		b := el.Bonds()[0]
		switch el.Kind() {
		case bondgraph.EffortSensor:
			m["y:"+id] = EffortVar(b.Index)
		case bondgraph.FlowSensor:
			m["y:"+id] = FlowVar(b.Index)
		}
	}
	return m, nil
}

func elementEquations(sys *System, g *bondgraph.Graph, el *bondgraph.Element, measurements map[string]string) error {
	switch el.Kind() {
	case bondgraph.EffortSource, bondgraph.FlowSource,
		bondgraph.EffortSensor, bondgraph.FlowSensor,
		bondgraph.EffortController, bondgraph.FlowController:
		return boundaryEquations(sys, el, measurements)
	case bondgraph.Resistance:
		return resistanceEquations(sys, el)
	case bondgraph.Capacitance, bondgraph.Inertance:
		return storeEquations(sys, el)
	case bondgraph.Transformer:
		return transformerEquations(sys, el)
	case bondgraph.Gyrator:
		return gyratorEquations(sys, el)
	case bondgraph.CommonEffortJunction:
		return effortJunctionEquations(sys, el)
	case bondgraph.CommonFlowJunction:
		return flowJunctionEquations(sys, el)
	default:
		return fmt.Errorf("unknown element kind %v", el.Kind())
	}
}

// boundaryEquations covers sources, sensors and controllers: their output is
// a direct function of time (and measurements), or fixed at zero.
func boundaryEquations(sys *System, el *bondgraph.Element, measurements map[string]string) error {
	b := el.Bonds()[0]
	e, f := EffortVar(b.Index), FlowVar(b.Index)
	switch el.Kind() {
	case bondgraph.EffortSource:
		if el.Relation() == nil {
			return ErrMissingRelation
		}
		sys.Assignments = append(sys.Assignments, Assignment{e, el.Relation()})
	case bondgraph.FlowSource:
		if el.Relation() == nil {
			return ErrMissingRelation
		}
		sys.Assignments = append(sys.Assignments, Assignment{f, el.Relation()})
	case bondgraph.EffortSensor:
		// De: draws zero flow.
		sys.Assignments = append(sys.Assignments, Assignment{f, expr.Const(0)})
	case bondgraph.FlowSensor:
		// Df: contributes zero effort.
		sys.Assignments = append(sys.Assignments, Assignment{e, expr.Const(0)})
	case bondgraph.EffortController:
		if el.Relation() == nil {
			return ErrMissingRelation
		}
		sys.Assignments = append(sys.Assignments, Assignment{e, expr.Rename(el.Relation(), measurements)})
	case bondgraph.FlowController:
		if el.Relation() == nil {
			return ErrMissingRelation
		}
		sys.Assignments = append(sys.Assignments, Assignment{f, expr.Rename(el.Relation(), measurements)})
	}
	return nil
}

func resistanceEquations(sys *System, el *bondgraph.Element) error {
	rel := el.Relation()
	if rel == nil {
		return ErrMissingRelation
	}
	b := el.Bonds()[0]
	effortIn, err := b.EffortInputEndpoint()
	if err != nil {
		return err
	}
	e, f := EffortVar(b.Index), FlowVar(b.Index)
	if effortIn == el.ID() {
		// Effort in, flow out: f = phi^-1(e).
		sol, err := expr.SolveFor(rel, "f")
		if err != nil {
			return err
		}
		sys.Assignments = append(sys.Assignments, Assignment{f, expr.Rename(sol, map[string]string{"e": e})})
		return nil
	}
	sol, err := expr.SolveFor(rel, "e")
	if err != nil {
		return err
	}
	sys.Assignments = append(sys.Assignments, Assignment{e, expr.Rename(sol, map[string]string{"f": f})})
	return nil
}

// storeEquations emits the integral-causality form of a store:
// C: e = phi_C(q), dq/dt = f.  I: f = phi_I(p), dp/dt = e.
func storeEquations(sys *System, el *bondgraph.Element) error {
	rel := el.Relation()
	if rel == nil {
		return ErrMissingRelation
	}
	b := el.Bonds()[0]
	effortIn, err := b.EffortInputEndpoint()
	if err != nil {
		return err
	}
	initial, _ := el.InitialValue()
	e, f := EffortVar(b.Index), FlowVar(b.Index)

	if el.Kind() == bondgraph.Capacitance {
		if effortIn == el.ID() {
			return fmt.Errorf("%w: capacitance %q receives effort", ErrDerivativeCausality, el.ID())
		}
		q := DisplacementVar(b.Index)
		sol, err := expr.SolveFor(rel, "e")
		if err != nil {
			return err
		}
		sys.Assignments = append(sys.Assignments, Assignment{e, expr.Rename(sol, map[string]string{"q": q})})
		sys.States = append(sys.States, State{Name: q, Deriv: f, Initial: initial})
		return nil
	}

	if effortIn != el.ID() {
		return fmt.Errorf("%w: inertance %q receives flow", ErrDerivativeCausality, el.ID())
	}
	p := MomentumVar(b.Index)
	sol, err := expr.SolveFor(rel, "f")
	if err != nil {
		return err
	}
	sys.Assignments = append(sys.Assignments, Assignment{f, expr.Rename(sol, map[string]string{"p": p})})
	sys.States = append(sys.States, State{Name: p, Deriv: e, Initial: initial})
	return nil
}

// transformerEquations links the two ports directly: the port receiving
// effort determines the other port's effort, and flows follow the same
// relation in the opposite direction.
func transformerEquations(sys *System, el *bondgraph.Element) error {
	rel := el.Relation()
	if rel == nil {
		return ErrMissingRelation
	}
	bonds := el.Bonds()
	in, out, err := splitByEffortInput(el, bonds)
	if err != nil {
		return err
	}
	sol, err := expr.SolveFor(rel, "eout")
	if err != nil {
		return err
	}
	sys.Assignments = append(sys.Assignments,
		Assignment{EffortVar(out.Index), expr.Rename(sol, map[string]string{"ein": EffortVar(in.Index)})},
		Assignment{FlowVar(in.Index), expr.Rename(sol, map[string]string{"ein": FlowVar(out.Index)})},
	)
	return nil
}

// gyratorEquations cross-couples the ports: an effort received on one port
// determines the flow produced on the other.
func gyratorEquations(sys *System, el *bondgraph.Element) error {
	rel := el.Relation()
	if rel == nil {
		return ErrMissingRelation
	}
	bonds := el.Bonds()
	a, b := bonds[0], bonds[1]
	aIn, err := receivesEffort(el, a)
	if err != nil {
		return err
	}
	bIn, err := receivesEffort(el, b)
	if err != nil {
		return err
	}
	if aIn != bIn {
		return fmt.Errorf("%w: gyrator %q has mixed port roles", ErrTwoPortCausality, el.ID())
	}
	if aIn {
		sol, err := expr.SolveFor(rel, "fout")
		if err != nil {
			return err
		}
		sys.Assignments = append(sys.Assignments,
			Assignment{FlowVar(b.Index), expr.Rename(sol, map[string]string{"ein": EffortVar(a.Index)})},
			Assignment{FlowVar(a.Index), expr.Rename(sol, map[string]string{"ein": EffortVar(b.Index)})},
		)
		return nil
	}
	sol, err := expr.SolveFor(rel, "ein")
	if err != nil {
		return err
	}
	sys.Assignments = append(sys.Assignments,
		Assignment{EffortVar(a.Index), expr.Rename(sol, map[string]string{"fout": FlowVar(b.Index)})},
		Assignment{EffortVar(b.Index), expr.Rename(sol, map[string]string{"fout": FlowVar(a.Index)})},
	)
	return nil
}

// effortJunctionEquations: the unique bond imposing effort on the junction
// supplies the shared effort; its flow balances the remaining flows.
func effortJunctionEquations(sys *System, el *bondgraph.Element) error {
	id := el.ID()
	bonds := el.Bonds()
	var defining *bondgraph.Bond
	for _, b := range bonds {
		in, err := receivesEffort(el, b)
		if err != nil {
			return err
		}
		if in {
			defining = b
			break
		}
	}
	if defining == nil {
		return fmt.Errorf("%w: 0-junction %q", ErrJunctionUnderdetermined, id)
	}
	for _, b := range bonds {
		if b != defining {
			sys.Assignments = append(sys.Assignments,
				Assignment{EffortVar(b.Index), expr.Var(EffortVar(defining.Index))})
		}
	}
	sys.Assignments = append(sys.Assignments,
		Assignment{FlowVar(defining.Index), balance(el, bonds, defining, FlowVar)})
	return nil
}

// flowJunctionEquations: dual of the 0-junction on flows and efforts.
func flowJunctionEquations(sys *System, el *bondgraph.Element) error {
	id := el.ID()
	bonds := el.Bonds()
	var defining *bondgraph.Bond
	for _, b := range bonds {
		in, err := receivesEffort(el, b)
		if err != nil {
			return err
		}
		if !in {
			defining = b
			break
		}
	}
	if defining == nil {
		return fmt.Errorf("%w: 1-junction %q", ErrJunctionUnderdetermined, id)
	}
	for _, b := range bonds {
		if b != defining {
			sys.Assignments = append(sys.Assignments,
				Assignment{FlowVar(b.Index), expr.Var(FlowVar(defining.Index))})
		}
	}
	sys.Assignments = append(sys.Assignments,
		Assignment{EffortVar(defining.Index), balance(el, bonds, defining, EffortVar)})
	return nil
}

// balance builds the signed sum resolving the defining bond's conjugate
// variable: in-bonds carry power toward the junction, out-bonds away, and
// the signed sum over all incident bonds is zero.
func balance(el *bondgraph.Element, bonds []*bondgraph.Bond, defining *bondgraph.Bond, name func(int) string) expr.Expr {
	defSign := bondSign(el, defining)
	var sum expr.Expr
	for _, b := range bonds {
		if b == defining {
			continue
		}
		term := expr.Expr(expr.Var(name(b.Index)))
		if bondSign(el, b) == defSign {
			term = expr.Neg(term)
		}
		if sum == nil {
			sum = term
		} else {
			sum = expr.Add(sum, term)
		}
	}
	if sum == nil {
		return expr.Const(0)
	}
	return sum
}

// bondSign is +1 for bonds directed into the element, -1 for bonds leaving it.
func bondSign(el *bondgraph.Element, b *bondgraph.Bond) int {
	if b.End == el.ID() {
		return 1
	}
	return -1
}

// splitByEffortInput partitions a two-port's bonds into the port receiving
// effort and the port exporting it.
func splitByEffortInput(el *bondgraph.Element, bonds []*bondgraph.Bond) (in, out *bondgraph.Bond, err error) {
	aIn, err := receivesEffort(el, bonds[0])
	if err != nil {
		return nil, nil, err
	}
	bIn, err := receivesEffort(el, bonds[1])
	if err != nil {
		return nil, nil, err
	}
	switch {
	case aIn && !bIn:
		return bonds[0], bonds[1], nil
	case bIn && !aIn:
		return bonds[1], bonds[0], nil
	default:
		return nil, nil, fmt.Errorf("%w: %s %q", ErrTwoPortCausality, el.Kind(), el.ID())
	}
}

func receivesEffort(el *bondgraph.Element, b *bondgraph.Bond) (bool, error) {
	eff, err := b.EffortInputEndpoint()
	if err != nil {
		return false, err
	}
	return eff == el.ID(), nil
}
