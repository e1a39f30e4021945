package evaluator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqualPrimitives(t *testing.T) {
	assert.True(t, ValuesEqual(IntValue{Value: 1}, IntValue{Value: 1}))
	assert.False(t, ValuesEqual(IntValue{Value: 1}, IntValue{Value: 2}))
	assert.True(t, ValuesEqual(StrValue{Value: "a"}, StrValue{Value: "a"}))
}

func TestFloatNaNHashEqualButNotValueEqual(t *testing.T) {
	nan1 := FloatValue{Value: math.NaN()}
	nan2 := FloatValue{Value: math.NaN()}
	assert.Equal(t, nan1.Hash(), nan2.Hash())
	assert.False(t, ValuesEqual(nan1, nan2), "NaN must never be == equal, even to itself")
}

func TestArrayValuesEqual(t *testing.T) {
	a := ArrayValue{ElemType: IntValue{}.Type(), Elems: []Value{IntValue{Value: 1}, IntValue{Value: 2}}}
	b := ArrayValue{ElemType: IntValue{}.Type(), Elems: []Value{IntValue{Value: 1}, IntValue{Value: 2}}}
	c := ArrayValue{ElemType: IntValue{}.Type(), Elems: []Value{IntValue{Value: 1}, IntValue{Value: 3}}}
	assert.True(t, ValuesEqual(a, b))
	assert.False(t, ValuesEqual(a, c))
}

func TestIsError(t *testing.T) {
	assert.True(t, IsError(ErrorTag{Kind: DivisionByZero, Message: "boom"}))
	assert.False(t, IsError(IntValue{Value: 1}))
}

func TestNativeFuncString(t *testing.T) {
	nf := NativeFunc{Name: "double"}
	assert.Equal(t, "<native function double>", nf.String())
}
