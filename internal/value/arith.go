package value

import (
	"math"
	"strings"
)

func promote(a, b *Object) Tag {
	if a.tag.rank() >= b.tag.rank() {
		return a.tag
	}
	return b.tag
}

func numAsFloat(o *Object) float64 {
	switch o.tag {
	case TagChar:
		return float64(o.ch)
	case TagInt:
		return float64(o.i)
	case TagFloat:
		return o.f
	default:
		return 0
	}
}

func numAsInt(o *Object) int64 {
	switch o.tag {
	case TagChar:
		return int64(o.ch)
	case TagInt:
		return o.i
	case TagFloat:
		return int64(o.f)
	default:
		return 0
	}
}

func numericResult(t Tag, i int64, f float64) *Object {
	switch t {
	case TagFloat:
		return NewFloat(f)
	case TagChar:
		// char arithmetic stays char only when both operands were
		// char; the result wraps into a byte.
		return NewChar(byte(i))
	default:
		return NewInt(i)
	}
}

// binNumOp evaluates a binary numeric operator with char<int<float
// promotion.
func binNumOp(a, b *Object, iop func(int64, int64) int64, fop func(float64, float64) float64) *Object {
	t := promote(a, b)
	if t == TagFloat {
		return numericResult(t, 0, fop(numAsFloat(a), numAsFloat(b)))
	}
	return numericResult(t, iop(numAsInt(a), numAsInt(b)), 0)
}

func Add(a, b *Object) (*Object, error) {
	switch {
	case a.tag.isNumeric() && b.tag.isNumeric():
		return binNumOp(a, b, func(x, y int64) int64 { return x + y }, func(x, y float64) float64 { return x + y }), nil
	case a.tag == TagString && b.tag == TagString:
		return NewString(string(a.s) + string(b.s)), nil
	case a.tag == TagList && b.tag == TagList:
		nl := NewList()
		for _, n := range a.list.nodes {
			c := DeepCopy(n.inner)
			ListAppend(nl, c)
			DecRef(c)
		}
		for _, n := range b.list.nodes {
			c := DeepCopy(n.inner)
			ListAppend(nl, c)
			DecRef(c)
		}
		return nl, nil
	case a.tag == TagString && b.tag.isNumeric():
		return NewString(string(a.s) + numericToString(b)), nil
	case a.tag.isNumeric() && b.tag == TagString:
		return NewString(numericToString(a) + string(b.s)), nil
	default:
		return nil, typeErr("unsupported operand types for +: %s and %s", a.tag, b.tag)
	}
}

func requireNumericPair(op string, a, b *Object) error {
	if !a.tag.isNumeric() || !b.tag.isNumeric() {
		return typeErr("unsupported operand types for %s: %s and %s", op, a.tag, b.tag)
	}
	return nil
}

func Sub(a, b *Object) (*Object, error) {
	if err := requireNumericPair("-", a, b); err != nil {
		return nil, err
	}
	return binNumOp(a, b, func(x, y int64) int64 { return x - y }, func(x, y float64) float64 { return x - y }), nil
}

func Mul(a, b *Object) (*Object, error) {
	switch {
	case a.tag.isNumeric() && b.tag.isNumeric():
		return binNumOp(a, b, func(x, y int64) int64 { return x * y }, func(x, y float64) float64 { return x * y }), nil
	case a.tag == TagString && b.tag == TagInt:
		return NewString(strings.Repeat(string(a.s), clampRepeat(b.i))), nil
	case a.tag == TagInt && b.tag == TagString:
		return NewString(strings.Repeat(string(b.s), clampRepeat(a.i))), nil
	case a.tag == TagList && b.tag == TagInt:
		return repeatList(a, b.i), nil
	case a.tag == TagInt && b.tag == TagList:
		return repeatList(b, a.i), nil
	default:
		return nil, typeErr("unsupported operand types for *: %s and %s", a.tag, b.tag)
	}
}

func clampRepeat(n int64) int {
	if n < 0 {
		return 0
	}
	return int(n)
}

func repeatList(l *Object, n int64) *Object {
	nl := NewList()
	for r := 0; r < clampRepeat(n); r++ {
		for _, node := range l.list.nodes {
			c := DeepCopy(node.inner)
			ListAppend(nl, c)
			DecRef(c)
		}
	}
	return nl
}

func Div(a, b *Object) (*Object, error) {
	if err := requireNumericPair("/", a, b); err != nil {
		return nil, err
	}
	t := promote(a, b)
	if t == TagFloat {
		return NewFloat(numAsFloat(a) / numAsFloat(b)), nil
	}
	if numAsInt(b) == 0 {
		return nil, zeroDivErr("integer division by zero")
	}
	return numericResult(t, numAsInt(a)/numAsInt(b), 0), nil
}

func Mod(a, b *Object) (*Object, error) {
	if err := requireNumericPair("%", a, b); err != nil {
		return nil, err
	}
	t := promote(a, b)
	if t == TagFloat {
		return NewFloat(floatMod(numAsFloat(a), numAsFloat(b))), nil
	}
	y := numAsInt(b)
	if y == 0 {
		return nil, zeroDivErr("integer modulus by zero")
	}
	x := numAsInt(a)
	r := x % y // Go's % already follows the sign of the dividend.
	return numericResult(t, r, 0), nil
}

func floatMod(x, y float64) float64 {
	// IEEE fmod.
	return math.Mod(x, y)
}

func Neg(a *Object) (*Object, error) {
	if !a.tag.isNumeric() {
		return nil, typeErr("unsupported operand type for unary -: %s", a.tag)
	}
	if a.tag == TagFloat {
		return NewFloat(-a.f), nil
	}
	return numericResult(a.tag, -numAsInt(a), 0), nil
}

func Pos(a *Object) (*Object, error) {
	if !a.tag.isNumeric() {
		return nil, typeErr("unsupported operand type for unary +: %s", a.tag)
	}
	return DeepCopy(a), nil
}

func Not(a *Object) (*Object, error) {
	if !a.tag.isNumeric() {
		return nil, typeErr("unsupported operand type for !: %s", a.tag)
	}
	if isZero(a) {
		return NewInt(1), nil
	}
	return NewInt(0), nil
}

func isZero(o *Object) bool {
	if o.tag == TagFloat {
		return o.f == 0
	}
	return numAsInt(o) == 0
}

func boolObj(b bool) *Object {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

func Eq(a, b *Object) (*Object, error) {
	return boolObj(equalValues(a, b)), nil
}

func Ne(a, b *Object) (*Object, error) {
	return boolObj(!equalValues(a, b)), nil
}

// equalValues compares for ==/!=/<>: operands of different types are
// unequal, never a type error.
func equalValues(a, b *Object) bool {
	switch {
	case a.tag.isNumeric() && b.tag.isNumeric():
		t := promote(a, b)
		if t == TagFloat {
			return numAsFloat(a) == numAsFloat(b)
		}
		return numAsInt(a) == numAsInt(b)
	case a.tag == TagString && b.tag == TagString:
		return string(a.s) == string(b.s)
	case a.tag == TagList && b.tag == TagList:
		if len(a.list.nodes) != len(b.list.nodes) {
			return false
		}
		for i, n := range a.list.nodes {
			if !equalValues(n.inner, b.list.nodes[i].inner) {
				return false
			}
		}
		return true
	case a.tag == TagNone && b.tag == TagNone:
		return true
	default:
		return false
	}
}

func relational(op string, a, b *Object, cmp func(float64, float64) bool, cmpInt func(int64, int64) bool) (*Object, error) {
	if err := requireNumericPair(op, a, b); err != nil {
		return nil, err
	}
	t := promote(a, b)
	if t == TagFloat {
		return boolObj(cmp(numAsFloat(a), numAsFloat(b))), nil
	}
	return boolObj(cmpInt(numAsInt(a), numAsInt(b))), nil
}

func Lt(a, b *Object) (*Object, error) {
	return relational("<", a, b, func(x, y float64) bool { return x < y }, func(x, y int64) bool { return x < y })
}

func Le(a, b *Object) (*Object, error) {
	return relational("<=", a, b, func(x, y float64) bool { return x <= y }, func(x, y int64) bool { return x <= y })
}

func Gt(a, b *Object) (*Object, error) {
	return relational(">", a, b, func(x, y float64) bool { return x > y }, func(x, y int64) bool { return x > y })
}

func Ge(a, b *Object) (*Object, error) {
	return relational(">=", a, b, func(x, y float64) bool { return x >= y }, func(x, y int64) bool { return x >= y })
}

// And and Or never short-circuit: both operands are already evaluated
// by the caller by the time these run.
func And(a, b *Object) (*Object, error) {
	if err := requireNumericPair("and", a, b); err != nil {
		return nil, err
	}
	return boolObj(!isZero(a) && !isZero(b)), nil
}

func Or(a, b *Object) (*Object, error) {
	if err := requireNumericPair("or", a, b); err != nil {
		return nil, err
	}
	return boolObj(!isZero(a) || !isZero(b)), nil
}

// In tests the left operand with == against each element of the right
// sequence operand, except that a string left operand with a string
// right operand is tested as a substring (see below).
func In(a, seq *Object) (*Object, error) {
	switch seq.tag {
	case TagList:
		for _, n := range seq.list.nodes {
			if equalValues(a, n.inner) {
				return NewInt(1), nil
			}
		}
		return NewInt(0), nil
	case TagString:
		// A string element is naturally a char (see Item), but the
		// grammar's only literal form for a single letter is usually a
		// one-byte string; admit both shapes so `"b" in s` and a bare
		// char both test membership the way a user expects. A string
		// left operand of any length is matched as a substring.
		if a.tag == TagString {
			return boolObj(strings.Contains(string(seq.s), string(a.s))), nil
		}
		for _, c := range seq.s {
			if equalValues(a, &Object{tag: TagChar, ch: c}) {
				return NewInt(1), nil
			}
		}
		return NewInt(0), nil
	default:
		return nil, typeErr("right operand of 'in' must be a sequence, got %s", seq.tag)
	}
}
