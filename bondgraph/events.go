package bondgraph

import "fmt"

// Phase identifies the SCAP phase during which a mark was assigned.
type Phase int

const (
	// PhaseForced covers the fixed assignments of sources, sensors and
	// controllers.
	PhaseForced Phase = iota + 1
	// PhaseResistance covers assignments from one-way-invertible dissipative
	// relations.
	PhaseResistance
	// PhaseStorage covers the preferred integral-causality assignments of
	// energy stores.
	PhaseStorage
	// PhaseFallback covers the arbitrary assignments that break algebraic
	// loops.
	PhaseFallback
)

func (p Phase) String() string {
	switch p {
	case PhaseForced:
		return "forced"
	case PhaseResistance:
		return "resistance"
	case PhaseStorage:
		return "storage"
	case PhaseFallback:
		return "fallback"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Event records one causality mark assignment. Propagated marks carry the
// phase whose seed assignment triggered the propagation.
type Event struct {
	Phase         Phase
	Bond          int    // bond index
	EffortInputAt string // endpoint the mark was resolved to
	Reason        string // rule that produced the mark
	Fallback      bool   // true for Phase 4 arbitrary assignments
}

func (ev Event) String() string {
	return fmt.Sprintf("[%s] bond %d: effort input at %q (%s)", ev.Phase, ev.Bond, ev.EffortInputAt, ev.Reason)
}

// Observer receives assignment events as the engine produces them.
type Observer func(Event)

// Option configures graph construction.
type Option func(*Graph)

// WithObserver registers an observer called for every assignment event.
// The graph retains the full event list regardless.
func WithObserver(fn Observer) Option {
	return func(g *Graph) { g.observer = fn }
}
