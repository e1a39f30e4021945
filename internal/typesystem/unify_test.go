package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifyPrimitives(t *testing.T) {
	m := NewManager()
	assert.NoError(t, m.Unify(Int, Int))
	assert.Error(t, m.Unify(Int, Str))
}

func TestUnifyVariableBindsAndResolves(t *testing.T) {
	m := NewManager()
	v := m.Fresh()
	require.NoError(t, m.Unify(v, Int))
	assert.Equal(t, Int, m.Resolve(v))
}

func TestUnifyIsSymmetric(t *testing.T) {
	m1 := NewManager()
	v1 := m1.Fresh()
	err1 := m1.Unify(v1, Array{Elem: Int})

	m2 := NewManager()
	v2 := m2.Fresh()
	err2 := m2.Unify(Array{Elem: Int}, v2)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, m1.Resolve(v1), m2.Resolve(v2))
}

func TestUnifyArrayElementMismatch(t *testing.T) {
	m := NewManager()
	err := m.Unify(Array{Elem: Int}, Array{Elem: Str})
	require.Error(t, err)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestUnifyOccursCheck(t *testing.T) {
	m := NewManager()
	v := m.Fresh()
	err := m.Unify(v, Array{Elem: v})
	require.Error(t, err)
}

func TestUnifyFuncArityMismatch(t *testing.T) {
	m := NewManager()
	a := Func{Params: []Type{Int}, Return: Bool}
	b := Func{Params: []Type{Int, Int}, Return: Bool}
	require.Error(t, m.Unify(a, b))
}

func TestUnifyMapKeyAndValue(t *testing.T) {
	m := NewManager()
	kv := m.Fresh()
	vv := m.Fresh()
	require.NoError(t, m.Unify(Map{Key: kv, Value: vv}, Map{Key: Str, Value: Int}))
	assert.Equal(t, Str, m.Resolve(kv))
	assert.Equal(t, Int, m.Resolve(vv))
}

func TestUnifyOptionInner(t *testing.T) {
	m := NewManager()
	v := m.Fresh()
	require.NoError(t, m.Unify(Option{Inner: v}, Option{Inner: Int}))
	assert.Equal(t, Int, m.Resolve(v))
}

func TestEmptyArrayHasPolymorphicType(t *testing.T) {
	m := NewManager()
	v := m.Fresh()
	empty := Array{Elem: v}
	assert.IsType(t, Var{}, empty.Elem)
	require.NoError(t, m.Unify(empty, Array{Elem: Str}))
	assert.Equal(t, Str, m.Resolve(v))
}
