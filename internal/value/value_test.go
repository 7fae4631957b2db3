package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPromotion(t *testing.T) {
	a := NewInt(3)
	b := NewFloat(2.0)
	r, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, TagFloat, r.Tag())
	assert.Equal(t, "5", Print(r))
}

func TestIntDivisionByZero(t *testing.T) {
	_, err := Div(NewInt(1), NewInt(0))
	require.Error(t, err)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
}

func TestModSignFollowsDividend(t *testing.T) {
	r, err := Mod(NewInt(-7), NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), r.i)
}

func TestStringConcatAndRepeat(t *testing.T) {
	r, err := Add(NewString("ab"), NewString("cd"))
	require.NoError(t, err)
	assert.Equal(t, "abcd", Print(r))

	rep, err := Mul(NewString("ab"), NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "ababab", Print(rep))
}

func TestListDeepCopyIndependence(t *testing.T) {
	l1 := NewList()
	ListAppend(l1, NewInt(1))
	ListAppend(l1, NewInt(2))

	l2 := DeepCopy(l1)
	// mutate l2's first element in place by rebinding it to a new object
	l2.list.nodes[0] = newListNode(NewInt(99))

	assert.Equal(t, "[1, 2]", Print(l1))
	assert.Equal(t, "[99, 2]", Print(l2))
}

func TestEqualityAcrossTypesNeverErrors(t *testing.T) {
	r, err := Eq(NewInt(1), NewString("1"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), r.i)
}

func TestInOnListAndString(t *testing.T) {
	l := NewList()
	ListAppend(l, NewInt(2))
	ListAppend(l, NewInt(4))
	r, err := In(NewInt(4), l)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.i)

	r2, err := In(NewString("b"), NewString("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), r2.i)
}

func TestSliceClampsBounds(t *testing.T) {
	l := NewList()
	for i := 1; i <= 5; i++ {
		ListAppend(l, NewInt(int64(i)))
	}
	s, err := Slice(l, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, "[2, 3, 4]", Print(s))
}

func TestStringToNumericRequiresWholeString(t *testing.T) {
	_, err := AsInt(NewString("12x"))
	require.Error(t, err)

	n, err := AsInt(NewString("12"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), RawInt(n))

	_, err = AsFloat(NewString("3.5junk"))
	require.Error(t, err)
}

func TestNumericToStringCanonicalForms(t *testing.T) {
	s, err := AsStr(NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, "42", Print(s))

	f, err := AsStr(NewFloat(2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5", Print(f))

	c, err := AsStr(NewChar('x'))
	require.NoError(t, err)
	assert.Equal(t, "x", Print(c))
}

func TestCharIntRoundTripByCodepoint(t *testing.T) {
	n, err := AsInt(NewChar('a'))
	require.NoError(t, err)
	assert.Equal(t, int64(97), RawInt(n))

	c, err := AsChar(NewInt(98))
	require.NoError(t, err)
	assert.Equal(t, "b", Print(c))
}

func TestLengthOfSequences(t *testing.T) {
	n, err := Length(NewString("abc"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), RawInt(n))

	l := NewList()
	ListAppend(l, NewInt(1))
	n2, err := Length(l)
	require.NoError(t, err)
	assert.Equal(t, int64(1), RawInt(n2))

	_, err = Length(NewInt(5))
	assert.Error(t, err)
}

func TestIndexOutOfRange(t *testing.T) {
	_, err := Item(NewString("ab"), 5)
	require.Error(t, err)
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)

	neg, err := Item(NewString("ab"), -1)
	require.NoError(t, err)
	assert.Equal(t, "b", Print(neg))
}

func TestRefcountFreesAtZero(t *testing.T) {
	tracked := map[int64]bool{}
	SetRegistryHook(hookFunc{
		track:   func(o *Object) { tracked[o.ID()] = true },
		untrack: func(o *Object) { delete(tracked, o.ID()) },
	})
	defer SetRegistryHook(nil)

	o := NewInt(42)
	id := o.ID()
	assert.True(t, tracked[id])
	DecRef(o)
	assert.False(t, tracked[id])
}

type hookFunc struct {
	track, untrack func(*Object)
}

func (h hookFunc) Track(o *Object)   { h.track(o) }
func (h hookFunc) Untrack(o *Object) { h.untrack(o) }
