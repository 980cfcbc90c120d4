package expr

import (
	"errors"
	"math"
	"testing"
)

func TestSolveFor(t *testing.T) {
	tests := []struct {
		name     string
		e        Expr
		variable string
		env      map[string]float64
		t        float64
		expected float64
	}{
		{
			name:     "ohmic for effort",
			e:        Sub(Var("e"), Mul(Const(2), Var("f"))), // e - 2f == 0
			variable: "e",
			env:      map[string]float64{"f": 3},
			expected: 6,
		},
		{
			name:     "ohmic for flow",
			e:        Sub(Var("e"), Mul(Const(2), Var("f"))),
			variable: "f",
			env:      map[string]float64{"e": 6},
			expected: 3,
		},
		{
			name:     "linear capacitance",
			e:        Sub(Var("q"), Mul(Const(0.1), Var("e"))), // q - 0.1e == 0
			variable: "e",
			env:      map[string]float64{"q": 5},
			expected: 50,
		},
		{
			name:     "negated coefficient",
			e:        Sub(Var("p"), Mul(Const(2), Var("f"))),
			variable: "f",
			env:      map[string]float64{"p": 8},
			expected: 4,
		},
		{
			name:     "division by constant",
			e:        Sub(Div(Var("e"), Const(4)), Var("f")),
			variable: "e",
			env:      map[string]float64{"f": 2},
			expected: 8,
		},
		{
			name:     "time-dependent rest",
			e:        Sub(Var("e"), Sin(Time())),
			variable: "e",
			env:      nil,
			t:        math.Pi / 2,
			expected: 1,
		},
		{
			name:     "transformer ratio",
			e:        Sub(Var("ein"), Mul(Const(5), Var("eout"))),
			variable: "eout",
			env:      map[string]float64{"ein": 10},
			expected: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := SolveFor(tt.e, tt.variable)
			if err != nil {
				t.Fatalf("SolveFor failed: %v", err)
			}
			if Contains(sol, tt.variable) {
				t.Errorf("Solution still contains %s: %s", tt.variable, sol)
			}
			got := sol.Eval(tt.t, tt.env)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %g, got %g", tt.expected, got)
			}
		})
	}
}

func TestSolveForNotSolvable(t *testing.T) {
	tests := []struct {
		name     string
		e        Expr
		variable string
	}{
		{"absent variable", Sub(Var("e"), Var("f")), "q"},
		{"quadratic", Sub(Mul(Var("f"), Var("f")), Var("e")), "f"},
		{"inside sine", Sub(Sin(Var("f")), Var("e")), "f"},
		{"in divisor", Sub(Div(Const(1), Var("f")), Var("e")), "f"},
		{"inside piecewise", Piecewise(Var("f"), Arm{Value: Const(0), When: Lt(Var("f"), Const(0))}), "f"},
		{"cancelled coefficient", Sub(Var("f"), Var("f")), "f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SolveFor(tt.e, tt.variable); !errors.Is(err, ErrNotSolvable) {
				t.Errorf("Expected ErrNotSolvable, got %v", err)
			}
		})
	}
}
