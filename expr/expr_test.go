package expr

import (
	"math"
	"reflect"
	"testing"
)

func TestEval(t *testing.T) {
	env := map[string]float64{"e": 3, "f": 2}
	tests := []struct {
		name     string
		e        Expr
		t        float64
		expected float64
	}{
		{"constant", Const(4.5), 0, 4.5},
		{"variable", Var("e"), 0, 3},
		{"missing variable is zero", Var("missing"), 0, 0},
		{"time", Time(), 1.5, 1.5},
		{"add", Add(Var("e"), Var("f")), 0, 5},
		{"sub", Sub(Var("e"), Var("f")), 0, 1},
		{"mul", Mul(Const(2), Var("f")), 0, 4},
		{"div", Div(Var("e"), Var("f")), 0, 1.5},
		{"neg", Neg(Var("e")), 0, -3},
		{"sin of time", Sin(Time()), math.Pi / 2, 1},
		{"nested", Sub(Mul(Const(2), Var("e")), Div(Var("f"), Const(4))), 0, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.e.Eval(tt.t, env)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %g, got %g", tt.expected, got)
			}
		})
	}
}

func TestPiecewiseEval(t *testing.T) {
	// Force profile: 0 until t=3, then 3 until t=7, then -5.
	force := Piecewise(Const(-5),
		Arm{Value: Const(0), When: Le(Time(), Const(3))},
		Arm{Value: Const(3), When: Le(Time(), Const(7))},
	)
	tests := []struct {
		t        float64
		expected float64
	}{
		{0, 0},
		{3, 0},
		{5, 3},
		{7, 3},
		{8, -5},
	}
	for _, tt := range tests {
		if got := force.Eval(tt.t, nil); got != tt.expected {
			t.Errorf("At t=%g expected %g, got %g", tt.t, tt.expected, got)
		}
	}
}

func TestVars(t *testing.T) {
	e := Sub(Mul(Var("b"), Var("a")), Piecewise(Var("c"), Arm{Value: Const(1), When: Lt(Var("d"), Const(0))}))
	got := Vars(e)
	expected := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestContains(t *testing.T) {
	e := Add(Var("e"), Sin(Var("q")))
	if !Contains(e, "q") {
		t.Error("Expected q to be contained")
	}
	if Contains(e, "f") {
		t.Error("Expected f to be absent")
	}
}

func TestRename(t *testing.T) {
	e := Sub(Var("e"), Mul(Const(2), Var("q")))
	renamed := Rename(e, map[string]string{"e": "e3", "q": "q3"})

	env := map[string]float64{"e3": 10, "q3": 4}
	if got := renamed.Eval(0, env); got != 2 {
		t.Errorf("Expected 2, got %g", got)
	}
	// Original is untouched.
	if got := e.Eval(0, map[string]float64{"e": 10, "q": 4}); got != 2 {
		t.Errorf("Original changed: got %g", got)
	}
}

func TestRenamePiecewise(t *testing.T) {
	e := Piecewise(Var("y:Df"), Arm{Value: Const(0), When: Gt(Var("y:Df"), Const(1))})
	renamed := Rename(e, map[string]string{"y:Df": "f1"})

	if got := renamed.Eval(0, map[string]float64{"f1": 0.5}); got != 0.5 {
		t.Errorf("Expected 0.5, got %g", got)
	}
	if got := renamed.Eval(0, map[string]float64{"f1": 2}); got != 0 {
		t.Errorf("Expected 0, got %g", got)
	}
}
