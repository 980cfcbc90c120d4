// Package bondgraph implements the bond graph data model and the Sequential
// Causality Assignment Procedure (SCAP). A bond graph is a typed graph of
// port elements connected by directed power bonds; constructing a Graph
// validates the topology and assigns, for every bond, which endpoint
// receives effort as an input and which receives flow.
package bondgraph

import (
	"fmt"

	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

// Kind identifies the variant of a port element. The SCAP engine dispatches
// on Kind only, never on concrete types.
type Kind int

const (
	EffortSource Kind = iota
	FlowSource
	EffortSensor
	FlowSensor
	EffortController
	FlowController
	Resistance
	Capacitance
	Inertance
	Transformer
	Gyrator
	CommonEffortJunction // 0-junction: shared effort, balanced flows
	CommonFlowJunction   // 1-junction: shared flow, balanced efforts
)

var kindNames = map[Kind]string{
	EffortSource:         "effort source",
	FlowSource:           "flow source",
	EffortSensor:         "effort sensor",
	FlowSensor:           "flow sensor",
	EffortController:     "effort controller",
	FlowController:       "flow controller",
	Resistance:           "resistance",
	Capacitance:          "capacitance",
	Inertance:            "inertance",
	Transformer:          "transformer",
	Gyrator:              "gyrator",
	CommonEffortJunction: "0-junction",
	CommonFlowJunction:   "1-junction",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Element is a typed node of the bond graph. Constitutive relations are
// always expressions equal to zero, except for sources and controllers whose
// relation is the output signal itself as a function of time (and, for
// controllers, of sensor measurements named "y:<sensor id>").
type Element struct {
	id       string
	kind     Kind
	relation expr.Expr
	initial  *float64

	controlled bool
	active     bool

	inBonds  []*Bond
	outBonds []*Bond
}

// NewEffortSource creates an ideal effort source with output relation h(t).
func NewEffortSource(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: EffortSource, relation: relation}
}

// NewFlowSource creates an ideal flow source with output relation g(t).
func NewFlowSource(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: FlowSource, relation: relation}
}

// NewEffortSensor creates an ideal effort sensor (draws zero flow).
func NewEffortSensor(id string) *Element {
	return &Element{id: id, kind: EffortSensor}
}

// NewFlowSensor creates an ideal flow sensor (imposes zero effort).
func NewFlowSensor(id string) *Element {
	return &Element{id: id, kind: FlowSensor}
}

// NewEffortController creates a controlled effort source. The relation may
// reference sensor measurements as variables named "y:<sensor id>".
func NewEffortController(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: EffortController, relation: relation}
}

// NewFlowController creates a controlled flow source.
func NewFlowController(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: FlowController, relation: relation}
}

// NewResistance creates a dissipative element with relation phi(e,f) == 0
// over variables "e" and "f".
func NewResistance(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: Resistance, relation: relation}
}

// NewCapacitance creates a displacement store with relation phi(e,q) == 0
// over variables "e" and "q" and the given initial displacement.
func NewCapacitance(id string, relation expr.Expr, initial float64) *Element {
	v := initial
	return &Element{id: id, kind: Capacitance, relation: relation, initial: &v}
}

// NewInertance creates a momentum store with relation phi(f,p) == 0 over
// variables "f" and "p" and the given initial momentum.
func NewInertance(id string, relation expr.Expr, initial float64) *Element {
	v := initial
	return &Element{id: id, kind: Inertance, relation: relation, initial: &v}
}

// NewTransformer creates an ideal transformer with relation phi(ein,eout) == 0
// over variables "ein" and "eout". Flows transform through the same relation.
func NewTransformer(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: Transformer, relation: relation}
}

// NewGyrator creates an ideal gyrator with relation phi(ein,fout) == 0 over
// variables "ein" and "fout"; the cross coupling applies on both ports.
func NewGyrator(id string, relation expr.Expr) *Element {
	return &Element{id: id, kind: Gyrator, relation: relation}
}

// NewCommonEffortJunction creates a 0-junction. A controlled junction may be
// switched active or inactive after construction.
func NewCommonEffortJunction(id string, controlled bool) *Element {
	return &Element{id: id, kind: CommonEffortJunction, controlled: controlled, active: true}
}

// NewCommonFlowJunction creates a 1-junction.
func NewCommonFlowJunction(id string, controlled bool) *Element {
	return &Element{id: id, kind: CommonFlowJunction, controlled: controlled, active: true}
}

// ID returns the unique identifier.
func (e *Element) ID() string { return e.id }

// Kind returns the element variant.
func (e *Element) Kind() Kind { return e.kind }

// Relation returns the constitutive relation, or nil for sensors and
// junctions.
func (e *Element) Relation() expr.Expr { return e.relation }

// InitialValue returns the initial state value and whether one is set.
// Only storage elements carry one.
func (e *Element) InitialValue() (float64, bool) {
	if e.initial == nil {
		return 0, false
	}
	return *e.initial, true
}

// IsControlled reports whether the junction's active flag may be changed.
func (e *Element) IsControlled() bool { return e.controlled }

// Active reports the junction active flag. Non-junction elements are always
// active.
func (e *Element) Active() bool { return e.active }

// Activate sets a controlled junction active.
func (e *Element) Activate() error { return e.setActive(true) }

// Deactivate sets a controlled junction inactive.
func (e *Element) Deactivate() error { return e.setActive(false) }

// Toggle flips a controlled junction's active flag.
func (e *Element) Toggle() error { return e.setActive(!e.active) }

func (e *Element) setActive(v bool) error {
	if !e.controlled {
		return fmt.Errorf("%w: %q", ErrNotControlled, e.id)
	}
	e.active = v
	return nil
}

// Predicates used by the engine to select applicable rules.

func (e *Element) IsJunction() bool {
	return e.kind == CommonEffortJunction || e.kind == CommonFlowJunction
}

func (e *Element) IsStorage() bool {
	return e.kind == Capacitance || e.kind == Inertance
}

func (e *Element) IsSource() bool {
	return e.kind == EffortSource || e.kind == FlowSource
}

func (e *Element) IsSensor() bool {
	return e.kind == EffortSensor || e.kind == FlowSensor
}

func (e *Element) IsController() bool {
	return e.kind == EffortController || e.kind == FlowController
}

func (e *Element) IsOnePort() bool {
	return !e.IsTwoPort() && !e.IsJunction()
}

func (e *Element) IsTwoPort() bool {
	return e.kind == Transformer || e.kind == Gyrator
}

// addInBond attaches a bond ending at this element.
func (e *Element) addInBond(b *Bond) error {
	if b.End != e.id {
		return fmt.Errorf("bond %s does not end at element %q", b, e.id)
	}
	e.inBonds = append(e.inBonds, b)
	return nil
}

// addOutBond attaches a bond starting at this element.
func (e *Element) addOutBond(b *Bond) error {
	if b.Start != e.id {
		return fmt.Errorf("bond %s does not start at element %q", b, e.id)
	}
	e.outBonds = append(e.outBonds, b)
	return nil
}

// InBonds returns the incident bonds directed into this element.
func (e *Element) InBonds() []*Bond { return e.inBonds }

// OutBonds returns the incident bonds directed out of this element.
func (e *Element) OutBonds() []*Bond { return e.outBonds }

// Bonds returns all incident bonds, in-bonds first, in attachment order.
func (e *Element) Bonds() []*Bond {
	bonds := make([]*Bond, 0, len(e.inBonds)+len(e.outBonds))
	bonds = append(bonds, e.inBonds...)
	bonds = append(bonds, e.outBonds...)
	return bonds
}

// CheckBonds enforces the arity invariant: one-ports have exactly one
// incident bond, two-ports exactly two, junctions at least two.
func (e *Element) CheckBonds() error {
	n := len(e.inBonds) + len(e.outBonds)
	switch {
	case e.IsOnePort() && n != 1:
		return &PortArityError{ID: e.id, Kind: e.kind, Got: n}
	case e.IsTwoPort() && n != 2:
		return &PortArityError{ID: e.id, Kind: e.kind, Got: n}
	case e.IsJunction() && n < 2:
		return &PortArityError{ID: e.id, Kind: e.kind, Got: n}
	}
	return nil
}
