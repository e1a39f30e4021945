package melbi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalGoldenScenarios(t *testing.T) {
	core := New()
	ctx := context.Background()

	t.Run("arithmetic precedence", func(t *testing.T) {
		res, err := core.Eval(ctx, "1 + 2 * 3")
		require.NoError(t, err)
		assert.False(t, res.IsError())
		assert.Equal(t, "7", res.String())
	})

	t.Run("polymorphic instantiation", func(t *testing.T) {
		res, err := core.Eval(ctx, `[f({1: "one"}, 1), f({"a": "b"}, "a")] where { f = (m, k) => m[k] }`)
		require.NoError(t, err)
		assert.False(t, res.IsError())
		assert.Equal(t, "[one, b]", res.String())
	})

	t.Run("option match", func(t *testing.T) {
		res, err := core.Eval(ctx, "x match { some y -> y * 2, none -> 0 } where { x = some 21 }")
		require.NoError(t, err)
		assert.Equal(t, "42", res.String())
	})

	t.Run("nonexhaustive bool match fails compilation", func(t *testing.T) {
		_, err := core.Compile("x match { true -> 1 } where { x = false }")
		require.Error(t, err)
		var compileErr *CompileError
		require.ErrorAs(t, err, &compileErr)
	})

	t.Run("recursion is unsupported", func(t *testing.T) {
		_, err := core.Compile("factorial(5) where { factorial = (n) => if n <= 1 then 1 else n * factorial(n - 1) }")
		require.Error(t, err)
	})

	t.Run("division by zero is a runtime ErrorTag, not a Go error", func(t *testing.T) {
		// The unhandled top-level error fails compilation, but the returned
		// handle can still be evaluated to observe the runtime ErrorTag.
		compiled, err := core.Compile("10 / 0")
		var compileErr *CompileError
		require.ErrorAs(t, err, &compileErr)
		res, err := core.Evaluate(ctx, compiled, nil, core.Limits())
		require.NoError(t, err)
		require.True(t, res.IsError())
		tag, ok := res.ErrorTag()
		require.True(t, ok)
		assert.Equal(t, "DivisionByZero", tag.Kind.String())
	})
}

func TestSetAndBind(t *testing.T) {
	core := New()
	ctx := context.Background()

	require.NoError(t, core.Set("limit", int64(10)))
	res, err := core.Eval(ctx, "limit + 1")
	require.NoError(t, err)
	assert.Equal(t, "11", res.String())

	require.NoError(t, core.Bind("double", func(x int64) int64 { return x * 2 }, false))
	res, err = core.Eval(ctx, "double(21)")
	require.NoError(t, err)
	assert.Equal(t, "42", res.String())
}

func TestEnvOverridesDoNotMutateCore(t *testing.T) {
	core := New()
	require.NoError(t, core.Set("x", int64(1)))

	compiled, err := core.Compile("x")
	require.NoError(t, err)

	ctx := context.Background()
	res, err := core.Evaluate(ctx, compiled, map[string]interface{}{"x": int64(99)}, core.Limits())
	require.NoError(t, err)
	assert.Equal(t, "99", res.String())

	res, err = core.Eval(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "1", res.String(), "overriding x for one Evaluate call must not leak into Core's own globals")
}

func TestToGo(t *testing.T) {
	core := New()
	res, err := core.Eval(context.Background(), "1 + 1")
	require.NoError(t, err)

	goVal, err := res.ToGo()
	require.NoError(t, err)
	assert.Equal(t, int64(2), goVal)
}
