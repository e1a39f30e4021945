package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/parser"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

func analyze(t *testing.T, source string, globals map[string]GlobalSignature) (ast.TypedExpr, diagnostics.List) {
	t.Helper()
	expr, parseDiags := parser.New(source).ParseProgram()
	require.Empty(t, parseDiags)
	mgr := typesystem.NewManager()
	typed, diags := New(mgr).AnalyzeProgram(expr, globals)
	return typed, diags
}

func TestAnalyzeArithmeticInfersInt(t *testing.T) {
	typed, diags := analyze(t, "1 + 2 * 3", nil)
	assert.Empty(t, diags)
	assert.Equal(t, "Int", typed.Type().String())
}

func TestAnalyzeDivisionCanError(t *testing.T) {
	expr, parseDiags := parser.New("(10 / x) otherwise 0 where { x = 0 }").ParseProgram()
	require.Empty(t, parseDiags)
	mgr := typesystem.NewManager()
	typed, diags := New(mgr).AnalyzeProgram(expr, nil)
	require.Empty(t, diags)
	assert.False(t, typed.Effects().CanError, "otherwise must clear can_error")
}

func TestAnalyzeNonExhaustiveBoolMatch(t *testing.T) {
	_, diags := analyze(t, "x match { true -> 1 } where { x = false }", nil)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Code == diagnostics.CodeNonExhaustive {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeMembershipOverArrayAndMap(t *testing.T) {
	typed, diags := analyze(t, "2 in [1, 2, 3]", nil)
	assert.Empty(t, diags)
	assert.Equal(t, "Bool", typed.Type().String())

	typed, diags = analyze(t, `"a" in {"a": 1}`, nil)
	assert.Empty(t, diags)
	assert.Equal(t, "Bool", typed.Type().String())
}

func TestAnalyzeMembershipOverStrIsSubstringTest(t *testing.T) {
	typed, diags := analyze(t, `"ell" in "hello"`, nil)
	assert.Empty(t, diags)
	assert.Equal(t, "Bool", typed.Type().String())

	typed, diags = analyze(t, `"x" not in "hello"`, nil)
	assert.Empty(t, diags)
	assert.Equal(t, "Bool", typed.Type().String())
}

func TestAnalyzeRecursionIsUndefinedVariable(t *testing.T) {
	_, diags := analyze(t, "factorial(5) where { factorial = (n) => if n <= 1 then 1 else n * factorial(n - 1) }", nil)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Code == diagnostics.CodeUndefinedVariable {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzePolymorphicInstantiation(t *testing.T) {
	typed, diags := analyze(t, `[f({1: "one"}, 1), f({"a": "b"}, "a")] where { f = (m, k) => m[k] }`, nil)
	require.Empty(t, diags)
	assert.Equal(t, "Array[Str]", typed.Type().String())
}

func TestAnalyzeGlobalsSchema(t *testing.T) {
	globals := map[string]GlobalSignature{"answer": {Type: typesystem.Int}}
	typed, diags := analyze(t, "answer + 1", globals)
	require.Empty(t, diags)
	assert.Equal(t, "Int", typed.Type().String())
}

func TestAnalyzeImpureGlobalMarksEffect(t *testing.T) {
	globals := map[string]GlobalSignature{"now": {Type: typesystem.Int, Impure: true}}
	typed, diags := analyze(t, "now", globals)
	require.Empty(t, diags)
	assert.True(t, typed.Effects().IsImpure)
}

func TestAnalyzeTopLevelUnhandledErrorDiagnostic(t *testing.T) {
	_, diags := analyze(t, "10 / 0", nil)
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Code == diagnostics.CodeUnhandledError {
			found = true
		}
	}
	assert.True(t, found)
}
