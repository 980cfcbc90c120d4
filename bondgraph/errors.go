package bondgraph

import (
	"errors"
	"fmt"
)

// Error types for the bondgraph package.
var (
	// ErrUnsetCausality is returned when an endpoint query reaches a bond
	// whose causality mark has not been assigned.
	ErrUnsetCausality = errors.New("causality not assigned")

	// ErrNotControlled is returned when the active flag of a non-controlled
	// junction is changed.
	ErrNotControlled = errors.New("junction is not controlled")

	// ErrUnknownEndpoint is returned when a mark operation names an element
	// that is not an endpoint of the bond.
	ErrUnknownEndpoint = errors.New("element is not an endpoint of bond")
)

// DuplicateElementError reports an element identifier used twice.
type DuplicateElementError struct {
	ID string
}

func (e *DuplicateElementError) Error() string {
	return fmt.Sprintf("duplicate element %q", e.ID)
}

// UnknownElementError reports a bond endpoint that names no known element.
type UnknownElementError struct {
	ID    string
	Start string
	End   string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("bond (%s,%s) references unknown element %q", e.Start, e.End, e.ID)
}

// DuplicateBondError reports an identical (start,end) pair supplied twice.
type DuplicateBondError struct {
	Start string
	End   string
}

func (e *DuplicateBondError) Error() string {
	return fmt.Sprintf("duplicate bond (%s,%s)", e.Start, e.End)
}

// PortArityError reports an element whose incident bond count violates the
// arity rule of its kind.
type PortArityError struct {
	ID   string
	Kind Kind
	Got  int
}

func (e *PortArityError) Error() string {
	return fmt.Sprintf("wrong number of power bonds for %s %q: got %d", e.Kind, e.ID, e.Got)
}

// CausalConflictError reports a mark request incompatible with the mark a
// bond already carries. Have and Want are the two conflicting effort-input
// endpoints.
type CausalConflictError struct {
	Index int
	Start string
	End   string
	Have  string
	Want  string
}

func (e *CausalConflictError) Error() string {
	return fmt.Sprintf("causal conflict on bond %d:(%s,%s): effort input already at %q, requested at %q",
		e.Index, e.Start, e.End, e.Have, e.Want)
}

// UnsolvableEquationError reports a Resistance whose constitutive relation is
// invertible for neither effort nor flow.
type UnsolvableEquationError struct {
	ID string
}

func (e *UnsolvableEquationError) Error() string {
	return fmt.Sprintf("constitutive relation of %q not solvable for effort or flow", e.ID)
}
