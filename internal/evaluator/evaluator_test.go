package evaluator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melbi-lang/melbi/internal/analyzer"
	"github.com/melbi-lang/melbi/internal/config"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/parser"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

func eval(t *testing.T, source string, globals map[string]analyzer.GlobalSignature, env map[string]Value) Value {
	t.Helper()
	expr, parseDiags := parser.New(source).ParseProgram()
	require.Empty(t, parseDiags)
	mgr := typesystem.NewManager()
	typed, diags := analyzer.New(mgr).AnalyzeProgram(expr, globals)
	require.Empty(t, diags)

	e := New(context.Background(), config.DefaultLimits())
	v, err := e.Eval(NewEnv(env), typed)
	require.NoError(t, err)
	return v
}

// evalUnhandled evaluates a program whose top-level expression can fail.
// The analyzer reports exactly one UnhandledError for such a program; the
// typed tree is still evaluated so the runtime ErrorTag can be inspected.
func evalUnhandled(t *testing.T, source string) Value {
	t.Helper()
	expr, parseDiags := parser.New(source).ParseProgram()
	require.Empty(t, parseDiags)
	mgr := typesystem.NewManager()
	typed, diags := analyzer.New(mgr).AnalyzeProgram(expr, nil)
	require.Len(t, diags, 1)
	require.Equal(t, diagnostics.CodeUnhandledError, diags[0].Code)

	e := New(context.Background(), config.DefaultLimits())
	v, err := e.Eval(NewEnv(nil), typed)
	require.NoError(t, err)
	return v
}

func TestEvalArithmeticPrecedence(t *testing.T) {
	assert.Equal(t, "7", eval(t, "1 + 2 * 3", nil, nil).String())
}

func TestEvalIntegerOverflowWraps(t *testing.T) {
	v := eval(t, "9223372036854775807 + 1", nil, nil)
	iv, ok := v.(IntValue)
	require.True(t, ok)
	assert.Equal(t, int64(-9223372036854775808), iv.Value)
}

func TestEvalDivisionByZeroProducesErrorTag(t *testing.T) {
	v := evalUnhandled(t, "10 / 0")
	tag, ok := v.(ErrorTag)
	require.True(t, ok)
	assert.Equal(t, DivisionByZero, tag.Kind)
}

func TestEvalOtherwiseAbsorbsDivisionByZero(t *testing.T) {
	v := eval(t, "(10 / x) otherwise 42 where { x = 0 }", nil, nil)
	assert.Equal(t, "42", v.String())
}

func TestEvalArrayOutOfBounds(t *testing.T) {
	v := evalUnhandled(t, "[1, 2, 3][10]")
	tag, ok := v.(ErrorTag)
	require.True(t, ok)
	assert.Equal(t, OutOfBounds, tag.Kind)
}

func TestEvalArrayNegativeIndexIsOutOfBounds(t *testing.T) {
	v := evalUnhandled(t, "[1, 2, 3][-1]")
	tag, ok := v.(ErrorTag)
	require.True(t, ok)
	assert.Equal(t, OutOfBounds, tag.Kind)
}

func TestEvalMembershipArray(t *testing.T) {
	assert.Equal(t, "true", eval(t, "2 in [1, 2, 3]", nil, nil).String())
	assert.Equal(t, "false", eval(t, "9 in [1, 2, 3]", nil, nil).String())
	assert.Equal(t, "true", eval(t, "9 not in [1, 2, 3]", nil, nil).String())
}

func TestEvalMembershipMap(t *testing.T) {
	assert.Equal(t, "true", eval(t, `"a" in {"a": 1}`, nil, nil).String())
	assert.Equal(t, "false", eval(t, `"z" in {"a": 1}`, nil, nil).String())
}

func TestEvalMembershipStrIsSubstring(t *testing.T) {
	assert.Equal(t, "true", eval(t, `"ell" in "hello"`, nil, nil).String())
	assert.Equal(t, "false", eval(t, `"xyz" in "hello"`, nil, nil).String())
	assert.Equal(t, "true", eval(t, `"xyz" not in "hello"`, nil, nil).String())
}

func TestEvalCastFloatToIntTruncates(t *testing.T) {
	v := eval(t, "3.9 as Int", nil, nil)
	iv, ok := v.(IntValue)
	require.True(t, ok)
	assert.Equal(t, int64(3), iv.Value)
}

func TestEvalCastFloatToIntSaturatesAndMapsNaNToZero(t *testing.T) {
	cases := map[string]int64{
		"(0.0 / 0.0) as Int":  0,
		"(1.0 / 0.0) as Int":  math.MaxInt64,
		"(-1.0 / 0.0) as Int": math.MinInt64,
	}
	for src, want := range cases {
		v := eval(t, src, nil, nil)
		iv, ok := v.(IntValue)
		require.True(t, ok, "source %q", src)
		assert.Equal(t, want, iv.Value, "source %q", src)
	}
}

func TestEvalMapKeyNotFound(t *testing.T) {
	v := evalUnhandled(t, `{"a": 1}["b"]`)
	tag, ok := v.(ErrorTag)
	require.True(t, ok)
	assert.Equal(t, KeyNotFound, tag.Kind)
}

func TestEvalOptionMatch(t *testing.T) {
	v := eval(t, "x match { some y -> y * 2, none -> 0 } where { x = some 21 }", nil, nil)
	assert.Equal(t, "42", v.String())
}

func TestEvalPolymorphicLambdaInstantiation(t *testing.T) {
	v := eval(t, `[f({1: "one"}, 1), f({"a": "b"}, "a")] where { f = (m, k) => m[k] }`, nil, nil)
	assert.Equal(t, "[one, b]", v.String())
}

func TestEvalWhereBindingsAreSequential(t *testing.T) {
	v := eval(t, "b where { a = 1, b = a + 1 }", nil, nil)
	assert.Equal(t, "2", v.String())
}

func TestEvalGlobalsAndNativeFunc(t *testing.T) {
	globals := map[string]analyzer.GlobalSignature{
		"double": {Type: typesystem.Func{Params: []typesystem.Type{typesystem.Int}, Return: typesystem.Int}},
	}
	native := NativeFunc{
		FuncType: typesystem.Func{Params: []typesystem.Type{typesystem.Int}, Return: typesystem.Int},
		Name:     "double",
		Fn: func(args []Value) (Value, error) {
			return IntValue{Value: args[0].(IntValue).Value * 2}, nil
		},
	}
	env := map[string]Value{"double": native}
	v := eval(t, "double(21)", globals, env)
	assert.Equal(t, "42", v.String())
}

func TestEvalClosureCapturesDefiningEnv(t *testing.T) {
	v := eval(t, "adder(10) where { offset = 5, adder = (n) => n + offset }", nil, nil)
	assert.Equal(t, "15", v.String())
}

func TestEvalFunctionValuesAreNotComparable(t *testing.T) {
	v := eval(t, "f == f where { f = (x) => x }", nil, nil)
	tag, ok := v.(ErrorTag)
	require.True(t, ok)
	assert.Equal(t, NotComparable, tag.Kind)
}
