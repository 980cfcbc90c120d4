// Package expr implements a small symbolic expression language for
// constitutive relations of bond graph elements. Expressions can be
// evaluated numerically and, when they are affine in a variable,
// rearranged to solve for that variable.
package expr

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Expr is a symbolic expression over named variables and time.
type Expr interface {
	// Eval computes the numeric value at time t with the given variable values.
	// Missing variables evaluate to zero.
	Eval(t float64, env map[string]float64) float64

	// String renders the expression for diagnostics.
	String() string

	collectVars(set map[string]struct{})
}

type constant struct{ v float64 }
type variable struct{ name string }
type timeVar struct{}

type binary struct {
	op   byte // '+', '-', '*', '/'
	a, b Expr
}

type negate struct{ a Expr }
type sine struct{ a Expr }

// Const returns a constant expression.
func Const(v float64) Expr { return constant{v} }

// Var returns a named variable.
func Var(name string) Expr { return variable{name} }

// Time returns the time variable t.
func Time() Expr { return timeVar{} }

// Add returns a + b.
func Add(a, b Expr) Expr { return binary{'+', a, b} }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return binary{'-', a, b} }

// Mul returns a * b.
func Mul(a, b Expr) Expr { return binary{'*', a, b} }

// Div returns a / b.
func Div(a, b Expr) Expr { return binary{'/', a, b} }

// Neg returns -a.
func Neg(a Expr) Expr { return negate{a} }

// Sin returns sin(a).
func Sin(a Expr) Expr { return sine{a} }

func (c constant) Eval(float64, map[string]float64) float64 { return c.v }
func (c constant) String() string                           { return trimFloat(c.v) }
func (c constant) collectVars(map[string]struct{})          {}

func (v variable) Eval(_ float64, env map[string]float64) float64 { return env[v.name] }
func (v variable) String() string                                 { return v.name }
func (v variable) collectVars(set map[string]struct{})            { set[v.name] = struct{}{} }

func (timeVar) Eval(t float64, _ map[string]float64) float64 { return t }
func (timeVar) String() string                               { return "t" }
func (timeVar) collectVars(map[string]struct{})              {}

func (b binary) Eval(t float64, env map[string]float64) float64 {
	x := b.a.Eval(t, env)
	y := b.b.Eval(t, env)
	switch b.op {
	case '+':
		return x + y
	case '-':
		return x - y
	case '*':
		return x * y
	default:
		return x / y
	}
}

func (b binary) String() string {
	return fmt.Sprintf("(%s %c %s)", b.a.String(), b.op, b.b.String())
}

func (b binary) collectVars(set map[string]struct{}) {
	b.a.collectVars(set)
	b.b.collectVars(set)
}

func (n negate) Eval(t float64, env map[string]float64) float64 { return -n.a.Eval(t, env) }
func (n negate) String() string                                 { return "-" + n.a.String() }
func (n negate) collectVars(set map[string]struct{})            { n.a.collectVars(set) }

func (s sine) Eval(t float64, env map[string]float64) float64 { return math.Sin(s.a.Eval(t, env)) }
func (s sine) String() string                                 { return "sin(" + s.a.String() + ")" }
func (s sine) collectVars(set map[string]struct{})            { s.a.collectVars(set) }

// Cond is a boolean condition over time and variables, used by Piecewise.
type Cond interface {
	Holds(t float64, env map[string]float64) bool
	String() string
	collectVars(set map[string]struct{})
}

type compare struct {
	op   string // "<", "<=", ">", ">="
	a, b Expr
}

// Lt returns the condition a < b.
func Lt(a, b Expr) Cond { return compare{"<", a, b} }

// Le returns the condition a <= b.
func Le(a, b Expr) Cond { return compare{"<=", a, b} }

// Gt returns the condition a > b.
func Gt(a, b Expr) Cond { return compare{">", a, b} }

// Ge returns the condition a >= b.
func Ge(a, b Expr) Cond { return compare{">=", a, b} }

func (c compare) Holds(t float64, env map[string]float64) bool {
	x := c.a.Eval(t, env)
	y := c.b.Eval(t, env)
	switch c.op {
	case "<":
		return x < y
	case "<=":
		return x <= y
	case ">":
		return x > y
	default:
		return x >= y
	}
}

func (c compare) String() string {
	return fmt.Sprintf("%s %s %s", c.a.String(), c.op, c.b.String())
}

func (c compare) collectVars(set map[string]struct{}) {
	c.a.collectVars(set)
	c.b.collectVars(set)
}

// Arm is one branch of a piecewise expression.
type Arm struct {
	Value Expr
	When  Cond
}

type piecewise struct {
	arms []Arm
	def  Expr
}

// Piecewise returns an expression that evaluates to the value of the first
// arm whose condition holds, or to def when none does.
func Piecewise(def Expr, arms ...Arm) Expr {
	return piecewise{arms: arms, def: def}
}

func (p piecewise) Eval(t float64, env map[string]float64) float64 {
	for _, arm := range p.arms {
		if arm.When.Holds(t, env) {
			return arm.Value.Eval(t, env)
		}
	}
	return p.def.Eval(t, env)
}

func (p piecewise) String() string {
	parts := make([]string, 0, len(p.arms)+1)
	for _, arm := range p.arms {
		parts = append(parts, fmt.Sprintf("%s if %s", arm.Value.String(), arm.When.String()))
	}
	parts = append(parts, p.def.String()+" otherwise")
	return "{" + strings.Join(parts, "; ") + "}"
}

func (p piecewise) collectVars(set map[string]struct{}) {
	for _, arm := range p.arms {
		arm.Value.collectVars(set)
		arm.When.collectVars(set)
	}
	p.def.collectVars(set)
}

// Vars returns the sorted names of all variables occurring in e.
func Vars(e Expr) []string {
	set := make(map[string]struct{})
	e.collectVars(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the variable name occurs in e.
func Contains(e Expr, name string) bool {
	set := make(map[string]struct{})
	e.collectVars(set)
	_, ok := set[name]
	return ok
}

// Rename returns a copy of e with variables renamed per the given mapping.
// Variables not in the mapping are kept as-is.
func Rename(e Expr, mapping map[string]string) Expr {
	switch x := e.(type) {
	case constant, timeVar:
		return e
	case variable:
		if to, ok := mapping[x.name]; ok {
			return variable{to}
		}
		return e
	case binary:
		return binary{x.op, Rename(x.a, mapping), Rename(x.b, mapping)}
	case negate:
		return negate{Rename(x.a, mapping)}
	case sine:
		return sine{Rename(x.a, mapping)}
	case piecewise:
		arms := make([]Arm, len(x.arms))
		for i, arm := range x.arms {
			arms[i] = Arm{Value: Rename(arm.Value, mapping), When: renameCond(arm.When, mapping)}
		}
		return piecewise{arms: arms, def: Rename(x.def, mapping)}
	default:
		return e
	}
}

func renameCond(c Cond, mapping map[string]string) Cond {
	if cmp, ok := c.(compare); ok {
		return compare{cmp.op, Rename(cmp.a, mapping), Rename(cmp.b, mapping)}
	}
	return c
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%g", v)
	return s
}
