package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvLookupFallsThroughToParent(t *testing.T) {
	root := NewEnv(map[string]Value{"x": IntValue{Value: 1}})
	child := root.Child()
	child.Define("y", IntValue{Value: 2})

	v, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.(IntValue).Value)

	v, ok = child.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, int64(2), v.(IntValue).Value)

	_, ok = root.Lookup("y")
	assert.False(t, ok, "a child's bindings must not leak into its parent")
}

func TestEnvShadowing(t *testing.T) {
	root := NewEnv(map[string]Value{"x": IntValue{Value: 1}})
	child := root.Child()
	child.Define("x", IntValue{Value: 99})

	v, ok := child.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(99), v.(IntValue).Value)

	v, ok = root.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, int64(1), v.(IntValue).Value)
}

func TestEnvLookupMissing(t *testing.T) {
	root := NewEnv(nil)
	_, ok := root.Lookup("missing")
	assert.False(t, ok)
}
