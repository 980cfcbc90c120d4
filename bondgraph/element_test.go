package bondgraph

import (
	"errors"
	"testing"

	"github.com/bondgraph-xyz/go-bondgraph/expr"
)

func TestKindPredicates(t *testing.T) {
	rel := expr.Sub(expr.Var("e"), expr.Var("f"))
	tests := []struct {
		name     string
		el       *Element
		onePort  bool
		twoPort  bool
		junction bool
		storage  bool
	}{
		{"effort source", NewEffortSource("Se", expr.Const(1)), true, false, false, false},
		{"flow sensor", NewFlowSensor("Df"), true, false, false, false},
		{"resistance", NewResistance("R", rel), true, false, false, false},
		{"capacitance", NewCapacitance("C", rel, 0), true, false, false, true},
		{"inertance", NewInertance("I", rel, 0), true, false, false, true},
		{"transformer", NewTransformer("TF", rel), false, true, false, false},
		{"gyrator", NewGyrator("GY", rel), false, true, false, false},
		{"0-junction", NewCommonEffortJunction("0", false), false, false, true, false},
		{"1-junction", NewCommonFlowJunction("1", false), false, false, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.el.IsOnePort(); got != tt.onePort {
				t.Errorf("IsOnePort: expected %v, got %v", tt.onePort, got)
			}
			if got := tt.el.IsTwoPort(); got != tt.twoPort {
				t.Errorf("IsTwoPort: expected %v, got %v", tt.twoPort, got)
			}
			if got := tt.el.IsJunction(); got != tt.junction {
				t.Errorf("IsJunction: expected %v, got %v", tt.junction, got)
			}
			if got := tt.el.IsStorage(); got != tt.storage {
				t.Errorf("IsStorage: expected %v, got %v", tt.storage, got)
			}
		})
	}
}

func TestInitialValue(t *testing.T) {
	c := NewCapacitance("C", expr.Sub(expr.Var("e"), expr.Var("q")), 2.5)
	if v, ok := c.InitialValue(); !ok || v != 2.5 {
		t.Errorf("Expected initial 2.5, got %v (%v)", v, ok)
	}
	r := NewResistance("R", expr.Sub(expr.Var("e"), expr.Var("f")))
	if _, ok := r.InitialValue(); ok {
		t.Error("Resistance must not carry an initial value")
	}
}

func TestControlledJunction(t *testing.T) {
	j := NewCommonEffortJunction("0", true)
	if !j.Active() {
		t.Error("Controlled junction must start active")
	}
	if err := j.Deactivate(); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if j.Active() {
		t.Error("Expected inactive after Deactivate")
	}
	if err := j.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !j.Active() {
		t.Error("Expected active after Toggle")
	}

	fixed := NewCommonFlowJunction("1", false)
	if err := fixed.Deactivate(); !errors.Is(err, ErrNotControlled) {
		t.Errorf("Expected ErrNotControlled, got %v", err)
	}
	if err := fixed.Toggle(); !errors.Is(err, ErrNotControlled) {
		t.Errorf("Expected ErrNotControlled, got %v", err)
	}
}

func TestCheckBondsArity(t *testing.T) {
	rel := expr.Sub(expr.Var("e"), expr.Var("f"))
	tests := []struct {
		name  string
		el    *Element
		bonds int
		valid bool
	}{
		{"one-port with one bond", NewResistance("R", rel), 1, true},
		{"one-port with two bonds", NewResistance("R", rel), 2, false},
		{"one-port with none", NewResistance("R", rel), 0, false},
		{"two-port with two bonds", NewTransformer("TF", rel), 2, true},
		{"two-port with one bond", NewTransformer("TF", rel), 1, false},
		{"junction with two bonds", NewCommonEffortJunction("0", false), 2, true},
		{"junction with four bonds", NewCommonEffortJunction("0", false), 4, true},
		{"junction with one bond", NewCommonEffortJunction("0", false), 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < tt.bonds; i++ {
				b := NewBond("x", tt.el.ID(), i)
				if err := tt.el.addInBond(b); err != nil {
					t.Fatalf("addInBond failed: %v", err)
				}
			}
			err := tt.el.CheckBonds()
			if tt.valid && err != nil {
				t.Errorf("Expected valid arity, got %v", err)
			}
			if !tt.valid {
				var arity *PortArityError
				if !errors.As(err, &arity) {
					t.Errorf("Expected PortArityError, got %v", err)
				}
			}
		})
	}
}

func TestBondsOrder(t *testing.T) {
	j := NewCommonEffortJunction("0", false)
	out := NewBond("0", "a", 0)
	in := NewBond("b", "0", 1)
	if err := j.addOutBond(out); err != nil {
		t.Fatal(err)
	}
	if err := j.addInBond(in); err != nil {
		t.Fatal(err)
	}
	bonds := j.Bonds()
	if len(bonds) != 2 || bonds[0] != in || bonds[1] != out {
		t.Error("Bonds must list in-bonds before out-bonds")
	}
	if err := j.addInBond(out); err == nil {
		t.Error("Expected error attaching bond that does not end here")
	}
}
