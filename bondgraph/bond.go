package bondgraph

import "fmt"

// Bond is a directed power bond between two elements. The direction fixes
// the sign convention for positive energy flow; it is independent of
// causality. Each bond carries a single causality mark naming the endpoint
// that receives effort as an input. The flow-input view is derived from the
// same mark, so effort and flow causality are antiparallel by construction.
type Bond struct {
	Start string
	End   string
	Index int

	// effortInputAt is the endpoint receiving effort as input, or "" while
	// the mark is unset. Written at most once per lifetime; re-assertions of
	// the same endpoint are no-ops.
	effortInputAt string
}

// NewBond creates an unmarked bond from start to end with the given
// assignment index. The index names the bond's conjugate signal pair
// (effort e<index>, flow f<index>).
func NewBond(start, end string, index int) *Bond {
	return &Bond{Start: start, End: end, Index: index}
}

func (b *Bond) String() string {
	return fmt.Sprintf("%d:(%s,%s)", b.Index, b.Start, b.End)
}

// IsMarked reports whether the causality mark has been assigned.
func (b *Bond) IsMarked() bool { return b.effortInputAt != "" }

// EffortInputEndpoint returns the endpoint that receives effort as an input.
func (b *Bond) EffortInputEndpoint() (string, error) {
	if b.effortInputAt == "" {
		return "", fmt.Errorf("%w: bond %s", ErrUnsetCausality, b)
	}
	return b.effortInputAt, nil
}

// FlowInputEndpoint returns the endpoint that receives flow as an input,
// which is always the endpoint opposite the effort input.
func (b *Bond) FlowInputEndpoint() (string, error) {
	eff, err := b.EffortInputEndpoint()
	if err != nil {
		return "", err
	}
	return b.other(eff)
}

// other resolves the endpoint opposite to id.
func (b *Bond) other(id string) (string, error) {
	switch id {
	case b.Start:
		return b.End, nil
	case b.End:
		return b.Start, nil
	default:
		return "", fmt.Errorf("%w: %q in bond %s", ErrUnknownEndpoint, id, b)
	}
}

// MarkEffortInputAt requests that element id be the effort-input endpoint.
// Re-asserting an existing identical mark is a no-op; a differing request
// fails with CausalConflictError.
func (b *Bond) MarkEffortInputAt(id string) error {
	if id != b.Start && id != b.End {
		return fmt.Errorf("%w: %q in bond %s", ErrUnknownEndpoint, id, b)
	}
	if b.effortInputAt != "" {
		if b.effortInputAt != id {
			return &CausalConflictError{
				Index: b.Index, Start: b.Start, End: b.End,
				Have: b.effortInputAt, Want: id,
			}
		}
		return nil
	}
	b.effortInputAt = id
	return nil
}

// MarkEffortInputAtOtherOf requests that the endpoint opposite to id be the
// effort-input endpoint.
func (b *Bond) MarkEffortInputAtOtherOf(id string) error {
	other, err := b.other(id)
	if err != nil {
		return err
	}
	return b.MarkEffortInputAt(other)
}

// MarkFlowInputAt requests that element id be the flow-input endpoint. Flow
// causality is the negation of effort causality at the same endpoint, so this
// marks the opposite endpoint as the effort input.
func (b *Bond) MarkFlowInputAt(id string) error {
	return b.MarkEffortInputAtOtherOf(id)
}

// MarkFlowInputAtOtherOf requests that the endpoint opposite to id be the
// flow-input endpoint.
func (b *Bond) MarkFlowInputAtOtherOf(id string) error {
	return b.MarkEffortInputAt(id)
}

// effortInputIs reports whether the bond is marked with id as effort input.
func (b *Bond) effortInputIs(id string) bool {
	return b.effortInputAt != "" && b.effortInputAt == id
}

// flowInputIs reports whether the bond is marked with id as flow input.
func (b *Bond) flowInputIs(id string) bool {
	return b.effortInputAt != "" && b.effortInputAt != id && (id == b.Start || id == b.End)
}
