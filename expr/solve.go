package expr

import (
	"errors"
	"fmt"
)

// ErrNotSolvable is returned when an expression cannot be rearranged for the
// requested variable. An expression is solvable for x exactly when it is
// affine in x with a nonzero coefficient.
var ErrNotSolvable = errors.New("expression not solvable for variable")

// SolveFor rearranges the equation e == 0 for the named variable and returns
// the expression the variable equals. The input must be affine in the
// variable: e == coef*x + rest with coef and rest free of x, giving
// x == -rest/coef.
func SolveFor(e Expr, name string) (Expr, error) {
	coef, rest, ok := collectAffine(e, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotSolvable, name, e.String())
	}
	c, isConst := foldConst(coef)
	if isConst && c == 0 {
		return nil, fmt.Errorf("%w: zero coefficient of %s in %s", ErrNotSolvable, name, e.String())
	}
	if !Contains(e, name) {
		return nil, fmt.Errorf("%w: %s absent from %s", ErrNotSolvable, name, e.String())
	}
	return simplifyDiv(simplifyNeg(rest), coef), nil
}

// collectAffine decomposes e into coef*x + rest where neither coef nor rest
// contains x. ok is false when e is not affine in x.
func collectAffine(e Expr, name string) (coef, rest Expr, ok bool) {
	switch x := e.(type) {
	case constant, timeVar:
		return Const(0), e, true
	case variable:
		if x.name == name {
			return Const(1), Const(0), true
		}
		return Const(0), e, true
	case negate:
		c, r, inner := collectAffine(x.a, name)
		if !inner {
			return nil, nil, false
		}
		return simplifyNeg(c), simplifyNeg(r), true
	case binary:
		switch x.op {
		case '+':
			ca, ra, okA := collectAffine(x.a, name)
			cb, rb, okB := collectAffine(x.b, name)
			if !okA || !okB {
				return nil, nil, false
			}
			return simplifyAdd(ca, cb), simplifyAdd(ra, rb), true
		case '-':
			ca, ra, okA := collectAffine(x.a, name)
			cb, rb, okB := collectAffine(x.b, name)
			if !okA || !okB {
				return nil, nil, false
			}
			return simplifySub(ca, cb), simplifySub(ra, rb), true
		case '*':
			aHas := Contains(x.a, name)
			bHas := Contains(x.b, name)
			if aHas && bHas {
				return nil, nil, false
			}
			if aHas {
				c, r, inner := collectAffine(x.a, name)
				if !inner {
					return nil, nil, false
				}
				return simplifyMul(c, x.b), simplifyMul(r, x.b), true
			}
			if bHas {
				c, r, inner := collectAffine(x.b, name)
				if !inner {
					return nil, nil, false
				}
				return simplifyMul(x.a, c), simplifyMul(x.a, r), true
			}
			return Const(0), e, true
		case '/':
			if Contains(x.b, name) {
				return nil, nil, false
			}
			c, r, inner := collectAffine(x.a, name)
			if !inner {
				return nil, nil, false
			}
			return simplifyDiv(c, x.b), simplifyDiv(r, x.b), true
		}
		return nil, nil, false
	case sine, piecewise:
		if Contains(e, name) {
			return nil, nil, false
		}
		return Const(0), e, true
	default:
		return nil, nil, false
	}
}

// foldConst reports whether e is a constant-only expression and its value.
func foldConst(e Expr) (float64, bool) {
	switch x := e.(type) {
	case constant:
		return x.v, true
	case negate:
		v, ok := foldConst(x.a)
		return -v, ok
	case binary:
		a, okA := foldConst(x.a)
		b, okB := foldConst(x.b)
		if !okA || !okB {
			return 0, false
		}
		switch x.op {
		case '+':
			return a + b, true
		case '-':
			return a - b, true
		case '*':
			return a * b, true
		default:
			if b == 0 {
				return 0, false
			}
			return a / b, true
		}
	default:
		return 0, false
	}
}

func simplifyAdd(a, b Expr) Expr {
	if isZero(a) {
		return b
	}
	if isZero(b) {
		return a
	}
	if va, okA := foldConst(a); okA {
		if vb, okB := foldConst(b); okB {
			return Const(va + vb)
		}
	}
	return Add(a, b)
}

func simplifySub(a, b Expr) Expr {
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return simplifyNeg(b)
	}
	if va, okA := foldConst(a); okA {
		if vb, okB := foldConst(b); okB {
			return Const(va - vb)
		}
	}
	return Sub(a, b)
}

func simplifyMul(a, b Expr) Expr {
	if isZero(a) || isZero(b) {
		return Const(0)
	}
	if isOne(a) {
		return b
	}
	if isOne(b) {
		return a
	}
	if va, okA := foldConst(a); okA {
		if vb, okB := foldConst(b); okB {
			return Const(va * vb)
		}
	}
	return Mul(a, b)
}

func simplifyDiv(a, b Expr) Expr {
	if isZero(a) {
		return Const(0)
	}
	if isOne(b) {
		return a
	}
	if va, okA := foldConst(a); okA {
		if vb, okB := foldConst(b); okB && vb != 0 {
			return Const(va / vb)
		}
	}
	return Div(a, b)
}

func simplifyNeg(a Expr) Expr {
	if isZero(a) {
		return Const(0)
	}
	if v, ok := foldConst(a); ok {
		return Const(-v)
	}
	return Neg(a)
}

func isZero(e Expr) bool {
	c, ok := e.(constant)
	return ok && c.v == 0
}

func isOne(e Expr) bool {
	c, ok := e.(constant)
	return ok && c.v == 1
}
