package bondgraph

import (
	"fmt"

	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

// Sequential Causality Assignment Procedure.
//
// Causality runs in four strictly ordered phases; each seed assignment is
// followed by propagation through junctions, transformers and gyrators until
// a full scan produces no change. Marks are never unset, so every loop
// terminates on the finite bond set.
//
//  1. Forced marks from sources, sensors and controllers.
//  2. Resistances whose relation is invertible for only one port variable.
//  3. Energy stores, preferred integral causality, capacitances first.
//  4. Arbitrary resolution of remaining bonds (algebraic loops), reported
//     as warnings and retained on the graph.
func (g *Graph) assignCausalities() error {
	if err := g.phaseForced(); err != nil {
		return err
	}
	if err := g.propagate(PhaseForced); err != nil {
		return err
	}
	if err := g.phaseResistance(); err != nil {
		return err
	}
	if err := g.phaseStorage(); err != nil {
		return err
	}
	return g.phaseFallback()
}

// mark applies a mark operation to a bond and emits an event when the bond
// was previously unmarked. Conflicts surface as CausalConflictError.
func (g *Graph) mark(b *Bond, op func(*Bond) error, phase Phase, reason string, fallback bool) (bool, error) {
	wasMarked := b.IsMarked()
	if err := op(b); err != nil {
		return false, err
	}
	if wasMarked {
		return false, nil
	}
	g.emit(Event{
		Phase:         phase,
		Bond:          b.Index,
		EffortInputAt: b.effortInputAt,
		Reason:        reason,
		Fallback:      fallback,
	})
	return true, nil
}

// phaseForced applies the fixed one-port assignments before any propagation.
func (g *Graph) phaseForced() error {
	type rule struct {
		kind    Kind
		op      func(id string) func(*Bond) error
		reason  string
	}
	rules := []rule{
		// A source outputs its signal: the neighbor receives it.
		{EffortSource, func(id string) func(*Bond) error {
			return func(b *Bond) error { return b.MarkEffortInputAtOtherOf(id) }
		}, "effort source outputs effort"},
		{FlowSource, func(id string) func(*Bond) error {
			return func(b *Bond) error { return b.MarkFlowInputAtOtherOf(id) }
		}, "flow source outputs flow"},
		// An effort sensor draws zero flow: it receives effort, returns flow.
		{EffortSensor, func(id string) func(*Bond) error {
			return func(b *Bond) error { return b.MarkEffortInputAt(id) }
		}, "effort sensor receives effort"},
		{FlowSensor, func(id string) func(*Bond) error {
			return func(b *Bond) error { return b.MarkFlowInputAt(id) }
		}, "flow sensor receives flow"},
		{EffortController, func(id string) func(*Bond) error {
			return func(b *Bond) error { return b.MarkEffortInputAtOtherOf(id) }
		}, "effort controller outputs effort"},
		{FlowController, func(id string) func(*Bond) error {
			return func(b *Bond) error { return b.MarkFlowInputAtOtherOf(id) }
		}, "flow controller outputs flow"},
	}
	for _, r := range rules {
		for _, el := range g.elementsOfKind(r.kind) {
			for _, b := range el.Bonds() {
				if _, err := g.mark(b, r.op(el.ID()), PhaseForced, r.reason, false); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// phaseResistance assigns causality to resistances whose constitutive
// relation has a unique inverse. Fully invertible relations defer to later
// phases; relations invertible for neither variable are rejected.
func (g *Graph) phaseResistance() error {
	for _, el := range g.elementsOfKind(Resistance) {
		for _, b := range el.Bonds() {
			if b.IsMarked() {
				continue
			}
			rel := el.Relation()
			if rel == nil {
				return &UnsolvableEquationError{ID: el.ID()}
			}
			solvableEffort := solvable(rel, "e")
			solvableFlow := solvable(rel, "f")
			switch {
			case solvableEffort && solvableFlow:
				continue // no canonical choice, defer
			case solvableEffort:
				// e = phi(f): the resistance computes effort from its flow
				// input, so effort leaves the resistance.
				id := el.ID()
				if _, err := g.mark(b, func(b *Bond) error { return b.MarkEffortInputAtOtherOf(id) },
					PhaseResistance, "relation solvable for effort only", false); err != nil {
					return err
				}
			case solvableFlow:
				id := el.ID()
				if _, err := g.mark(b, func(b *Bond) error { return b.MarkFlowInputAtOtherOf(id) },
					PhaseResistance, "relation solvable for flow only", false); err != nil {
					return err
				}
			default:
				return &UnsolvableEquationError{ID: el.ID()}
			}
			if err := g.propagate(PhaseResistance); err != nil {
				return err
			}
		}
	}
	return nil
}

// phaseStorage assigns preferred integral causality to unresolved stores,
// capacitances before inertances, propagating after each assignment so later
// stores may already be fixed (possibly in derivative causality).
func (g *Graph) phaseStorage() error {
	for _, el := range g.elementsOfKind(Capacitance) {
		for _, b := range el.Bonds() {
			if b.IsMarked() {
				continue
			}
			id := el.ID()
			if _, err := g.mark(b, func(b *Bond) error { return b.MarkFlowInputAt(id) },
				PhaseStorage, "capacitance integral causality", false); err != nil {
				return err
			}
			if err := g.propagate(PhaseStorage); err != nil {
				return err
			}
		}
	}
	for _, el := range g.elementsOfKind(Inertance) {
		for _, b := range el.Bonds() {
			if b.IsMarked() {
				continue
			}
			id := el.ID()
			if _, err := g.mark(b, func(b *Bond) error { return b.MarkEffortInputAt(id) },
				PhaseStorage, "inertance integral causality", false); err != nil {
				return err
			}
			if err := g.propagate(PhaseStorage); err != nil {
				return err
			}
		}
	}
	return nil
}

// phaseFallback resolves bonds left unmarked by phases 1-3. Such bonds sit
// on causal cycles with no unique resolution; each is marked arbitrarily at
// its end element and recorded so callers can inspect the loops.
func (g *Graph) phaseFallback() error {
	for _, b := range g.bonds {
		if b.IsMarked() {
			continue
		}
		end := b.End
		if _, err := g.mark(b, func(b *Bond) error { return b.MarkEffortInputAt(end) },
			PhaseFallback, "algebraic loop resolved arbitrarily", true); err != nil {
			return err
		}
		g.fallback = append(g.fallback, b)
		if err := g.propagate(PhaseFallback); err != nil {
			return err
		}
	}
	return nil
}

// propagate runs propagation passes until a full scan changes nothing.
func (g *Graph) propagate(phase Phase) error {
	for {
		changed, err := g.propagateOnce(phase)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
	}
}

// propagateOnce scans all junctions, transformers and gyrators and marks
// every bond their rules newly determine.
func (g *Graph) propagateOnce(phase Phase) (bool, error) {
	changed := false

	// 0-junction: all ports share one effort. Once a bond imposes effort on
	// the junction, every sibling exports effort to its neighbor.
	for _, el := range g.elementsOfKind(CommonEffortJunction) {
		id := el.ID()
		bonds := el.Bonds()
		for _, b := range bonds {
			if !b.effortInputIs(id) {
				continue
			}
			for _, ob := range bonds {
				if ob == b {
					continue
				}
				did, err := g.mark(ob, func(ob *Bond) error { return ob.MarkEffortInputAtOtherOf(id) },
					phase, fmt.Sprintf("0-junction %s exports effort", id), false)
				if err != nil {
					return false, err
				}
				changed = changed || did
			}
		}
	}

	// 1-junction: dual rule on flows.
	for _, el := range g.elementsOfKind(CommonFlowJunction) {
		id := el.ID()
		bonds := el.Bonds()
		for _, b := range bonds {
			if !b.flowInputIs(id) {
				continue
			}
			for _, ob := range bonds {
				if ob == b {
					continue
				}
				did, err := g.mark(ob, func(ob *Bond) error { return ob.MarkFlowInputAtOtherOf(id) },
					phase, fmt.Sprintf("1-junction %s exports flow", id), false)
				if err != nil {
					return false, err
				}
				changed = changed || did
			}
		}
	}

	// Transformer: exactly one port receives effort; the sibling port
	// exports it, and vice versa.
	for _, el := range g.elementsOfKind(Transformer) {
		id := el.ID()
		bonds := el.Bonds()
		for _, b := range bonds {
			if !b.IsMarked() {
				continue
			}
			receives := b.effortInputIs(id)
			for _, ob := range bonds {
				if ob == b {
					continue
				}
				op := func(ob *Bond) error { return ob.MarkEffortInputAtOtherOf(id) }
				if !receives {
					op = func(ob *Bond) error { return ob.MarkEffortInputAt(id) }
				}
				did, err := g.mark(ob, op, phase,
					fmt.Sprintf("transformer %s couples efforts", id), false)
				if err != nil {
					return false, err
				}
				changed = changed || did
			}
		}
	}

	// Gyrator: both ports carry the same effort role at the gyrator (it
	// trades effort on one port for flow on the other, so receiving effort
	// on one port means receiving effort on both).
	for _, el := range g.elementsOfKind(Gyrator) {
		id := el.ID()
		bonds := el.Bonds()
		for _, b := range bonds {
			if !b.IsMarked() {
				continue
			}
			receives := b.effortInputIs(id)
			for _, ob := range bonds {
				if ob == b {
					continue
				}
				op := func(ob *Bond) error { return ob.MarkEffortInputAt(id) }
				if !receives {
					op = func(ob *Bond) error { return ob.MarkEffortInputAtOtherOf(id) }
				}
				did, err := g.mark(ob, op, phase,
					fmt.Sprintf("gyrator %s cross-couples ports", id), false)
				if err != nil {
					return false, err
				}
				changed = changed || did
			}
		}
	}

	return changed, nil
}

func solvable(rel expr.Expr, name string) bool {
	_, err := expr.SolveFor(rel, name)
	return err == nil
}
