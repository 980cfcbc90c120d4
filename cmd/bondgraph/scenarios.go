package main

import (
	"fmt"
	"sort"

	"github.com/bondgraph-xyz/go-bondgraph/bondgraph"
	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

// Built-in scenarios covering the element kinds and the typical causality
// outcomes: fully determined models, controller loops, and bridge circuits
// with algebraic loops.
var scenarios = map[string]func(opts ...bondgraph.Option) (*bondgraph.Graph, error){
	"simple":        simpleCircuit,
	"rc":            rcCircuit,
	"moving-body":   movingBody,
	"controlled":    controlledMovingBody,
	"controller":    movingBodyController,
	"spring-damper": springDamper,
	"transformer":   transformerCheck,
	"bridge":        electricalBridge,
	"causality":     causalityLoops,
	"collision":     collision,
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildScenario(name string, opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	build, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q, run 'bondgraph list'", name)
	}
	return build(opts...)
}

// simpleCircuit: flow source feeding a capacitor and resistor in parallel.
func simpleCircuit(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	e, q, f := expr.Var("e"), expr.Var("q"), expr.Var("f")
	return bondgraph.New("Simple Electrical Circuit",
		[]*bondgraph.Element{
			bondgraph.NewFlowSource("Sf", expr.Const(2)),
			bondgraph.NewCapacitance("C", expr.Sub(e, q), 1),
			bondgraph.NewResistance("R", expr.Sub(f, e)),
			bondgraph.NewCommonEffortJunction("0", false),
		},
		[][2]string{
			{"Sf", "0"},
			{"0", "C"},
			{"0", "R"},
		}, opts...)
}

// rcCircuit: source-free RC discharge, the canonical first-order decay.
func rcCircuit(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	e, q, f := expr.Var("e"), expr.Var("q"), expr.Var("f")
	return bondgraph.New("RC Circuit",
		[]*bondgraph.Element{
			bondgraph.NewCapacitance("C", expr.Sub(e, q), 2),
			bondgraph.NewResistance("R", expr.Sub(f, e)),
			bondgraph.NewCommonEffortJunction("0", false),
		},
		[][2]string{
			{"0", "C"},
			{"0", "R"},
		}, opts...)
}

// movingBody: constant force on a mass of 2.
func movingBody(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	f, p := expr.Var("f"), expr.Var("p")
	return bondgraph.New("Moving Body",
		[]*bondgraph.Element{
			bondgraph.NewInertance("I", expr.Sub(p, expr.Mul(expr.Const(2), f)), 0),
			bondgraph.NewEffortSource("Se", expr.Const(1)),
			bondgraph.NewCommonFlowJunction("1", false),
		},
		[][2]string{
			{"Se", "1"},
			{"1", "I"},
		}, opts...)
}

// controlledMovingBody: mass of 2 under a staged force profile.
func controlledMovingBody(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	f, p := expr.Var("f"), expr.Var("p")
	force := expr.Piecewise(expr.Const(-5),
		expr.Arm{Value: expr.Const(0), When: expr.Le(expr.Time(), expr.Const(3))},
		expr.Arm{Value: expr.Const(3), When: expr.Le(expr.Time(), expr.Const(7))},
	)
	return bondgraph.New("Controlled Moving Body",
		[]*bondgraph.Element{
			bondgraph.NewInertance("I", expr.Sub(p, expr.Mul(expr.Const(2), f)), 5),
			bondgraph.NewEffortSource("Se", force),
			bondgraph.NewCommonFlowJunction("1", false),
		},
		[][2]string{
			{"Se", "1"},
			{"1", "I"},
		}, opts...)
}

// movingBodyController: proportional velocity control against a sinusoidal
// disturbance force.
func movingBodyController(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	f, p := expr.Var("f"), expr.Var("p")
	const setpoint, gain = 10, 5
	control := expr.Mul(expr.Const(gain), expr.Sub(expr.Const(setpoint), expr.Var("y:Df")))
	return bondgraph.New("Moving Body Controller",
		[]*bondgraph.Element{
			bondgraph.NewEffortSource("Se", expr.Sin(expr.Time())),
			bondgraph.NewInertance("I", expr.Sub(p, expr.Mul(expr.Const(2), f)), 0),
			bondgraph.NewFlowSensor("Df"),
			bondgraph.NewEffortController("Ge", control),
			bondgraph.NewCommonFlowJunction("1", false),
		},
		[][2]string{
			{"Ge", "1"},
			{"1", "Df"},
			{"1", "I"},
			{"Se", "1"},
		}, opts...)
}

// springDamper: mass, spring and damper in series under gravity.
func springDamper(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	e, q, f, p := expr.Var("e"), expr.Var("q"), expr.Var("f"), expr.Var("p")
	return bondgraph.New("Spring Damper System",
		[]*bondgraph.Element{
			bondgraph.NewEffortSource("Se", expr.Const(9.81)),
			bondgraph.NewInertance("I", expr.Sub(p, expr.Mul(expr.Const(2), f)), 3),
			bondgraph.NewCapacitance("C", expr.Sub(q, expr.Mul(expr.Const(0.1), e)), 5),
			bondgraph.NewResistance("R", expr.Sub(e, expr.Mul(expr.Const(0.5), f))),
			bondgraph.NewCommonFlowJunction("1", false),
		},
		[][2]string{
			{"Se", "1"},
			{"1", "I"},
			{"1", "C"},
			{"1", "R"},
		}, opts...)
}

// transformerCheck: a transformer between an effort source and an RLC load.
func transformerCheck(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	e, q, f, p := expr.Var("e"), expr.Var("q"), expr.Var("f"), expr.Var("p")
	ratio := expr.Sub(expr.Var("ein"), expr.Mul(expr.Const(5), expr.Var("eout")))
	return bondgraph.New("Transformer Check",
		[]*bondgraph.Element{
			bondgraph.NewEffortSource("Se", expr.Const(0)),
			bondgraph.NewTransformer("TF", ratio),
			bondgraph.NewCommonFlowJunction("1", false),
			bondgraph.NewInertance("I", expr.Sub(p, expr.Mul(expr.Const(2), f)), 0),
			bondgraph.NewCapacitance("C", expr.Sub(q, expr.Mul(expr.Const(3), e)), 2),
			bondgraph.NewResistance("R", expr.Sub(e, expr.Mul(expr.Const(1.5), f))),
		},
		[][2]string{
			{"Se", "TF"},
			{"TF", "1"},
			{"1", "C"},
			{"1", "I"},
			{"1", "R"},
		}, opts...)
}

// electricalBridge: Wheatstone bridge of five equal resistances between a
// supply and ground. Purely resistive, so causality cannot complete without
// fallback assignments.
func electricalBridge(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	ohm := func(id string) *bondgraph.Element {
		return bondgraph.NewResistance(id, expr.Sub(expr.Var("e"), expr.Var("f")))
	}
	return bondgraph.New("Electrical Bridge",
		[]*bondgraph.Element{
			ohm("R1"), ohm("R2"), ohm("R3"), ohm("R4"), ohm("R5"),
			bondgraph.NewCommonFlowJunction("1_1", false),
			bondgraph.NewCommonFlowJunction("1_2", false),
			bondgraph.NewCommonFlowJunction("1_3", false),
			bondgraph.NewCommonFlowJunction("1_4", false),
			bondgraph.NewCommonFlowJunction("1_5", false),
			bondgraph.NewCommonFlowJunction("1_6", false),
			bondgraph.NewCommonEffortJunction("0_1", false),
			bondgraph.NewCommonEffortJunction("0_2", false),
			bondgraph.NewCommonEffortJunction("0_3", false),
			bondgraph.NewCommonEffortJunction("0_4", false),
			bondgraph.NewEffortSource("SeS", expr.Const(5)),
			bondgraph.NewEffortSource("SeG", expr.Const(0)),
		},
		[][2]string{
			{"SeS", "1_1"},
			{"1_1", "0_1"},
			{"0_1", "1_2"},
			{"1_2", "R1"},
			{"0_1", "1_3"},
			{"1_3", "R2"},
			{"1_2", "0_2"},
			{"1_3", "0_3"},
			{"0_2", "1_6"},
			{"0_3", "1_6"},
			{"1_6", "R5"},
			{"0_2", "1_4"},
			{"0_3", "1_5"},
			{"1_4", "R3"},
			{"1_5", "R4"},
			{"1_4", "0_4"},
			{"1_5", "0_4"},
			{"0_4", "1_1"},
			{"0_4", "SeG"},
		}, opts...)
}

// causalityLoops: a junction mesh where sources and resistances do not
// determine every bond, exercising the fallback phase.
func causalityLoops(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	ohm := func(id string) *bondgraph.Element {
		return bondgraph.NewResistance(id, expr.Sub(expr.Var("e"), expr.Var("f")))
	}
	return bondgraph.New("Causality Assignment",
		[]*bondgraph.Element{
			bondgraph.NewEffortSource("Se", expr.Const(0)),
			bondgraph.NewFlowSource("Sf", expr.Const(0)),
			ohm("R1"), ohm("R2"),
			bondgraph.NewCommonFlowJunction("1_1", false),
			bondgraph.NewCommonFlowJunction("1_2", false),
			bondgraph.NewCommonFlowJunction("1_3", false),
			bondgraph.NewCommonEffortJunction("0_1", false),
			bondgraph.NewCommonEffortJunction("0_2", false),
		},
		[][2]string{
			{"0_1", "Se"},
			{"0_1", "0_2"},
			{"0_1", "1_3"},
			{"0_2", "R1"},
			{"R2", "1_3"},
			{"0_2", "1_1"},
			{"1_2", "1_1"},
			{"1_2", "Sf"},
		}, opts...)
}

// collision: two masses coupled through compliant contacts, approaching
// with opposite momenta.
func collision(opts ...bondgraph.Option) (*bondgraph.Graph, error) {
	e, q, f, p := expr.Var("e"), expr.Var("q"), expr.Var("f"), expr.Var("p")
	return bondgraph.New("Collision",
		[]*bondgraph.Element{
			bondgraph.NewInertance("I1", expr.Sub(p, f), 3),
			bondgraph.NewCommonFlowJunction("1_1", false),
			bondgraph.NewCommonFlowJunction("1_3", false),
			bondgraph.NewCommonEffortJunction("0_1", false),
			bondgraph.NewCapacitance("C1", expr.Sub(q, e), 0),

			bondgraph.NewInertance("I2", expr.Sub(p, expr.Mul(expr.Const(2), f)), -10),
			bondgraph.NewCommonFlowJunction("1_2", false),
			bondgraph.NewCommonFlowJunction("1_4", false),
			bondgraph.NewCommonEffortJunction("0_2", false),
			bondgraph.NewCapacitance("C2", expr.Sub(q, e), 0),
		},
		[][2]string{
			{"1_1", "I1"},
			{"1_3", "1_1"},
			{"1_3", "0_1"},
			{"0_1", "1_4"},
			{"0_1", "C1"},

			{"1_2", "I2"},
			{"1_4", "1_2"},
			{"1_4", "0_2"},
			{"0_2", "1_3"},
			{"0_2", "C2"},
		}, opts...)
}
