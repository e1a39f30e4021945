package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melbi-lang/melbi/internal/ast"
)

func TestParseProgramArithmeticPrecedence(t *testing.T) {
	expr, diags := New("1 + 2 * 3").ParseProgram()
	require.Empty(t, diags)

	bin, ok := expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)

	_, ok = bin.Lhs.(*ast.IntLit)
	assert.True(t, ok)

	rhs, ok := bin.Rhs.(*ast.Binary)
	require.True(t, ok, "2 * 3 should bind tighter than 1 +")
	assert.Equal(t, ast.Mul, rhs.Op)
}

func TestParseProgramWhereLambdaMatch(t *testing.T) {
	expr, diags := New("x match { some y -> y * 2, none -> 0 } where { x = some 21 }").ParseProgram()
	require.Empty(t, diags)

	where, ok := expr.(*ast.Where)
	require.True(t, ok)
	require.Len(t, where.Bindings, 1)
	assert.Equal(t, "x", where.Bindings[0].Name)

	match, ok := where.Body.(*ast.Match)
	require.True(t, ok)
	require.Len(t, match.Arms, 2)
}

func TestParseProgramLambda(t *testing.T) {
	expr, diags := New("(m, k) => m[k]").ParseProgram()
	require.Empty(t, diags)

	lambda, ok := expr.(*ast.Lambda)
	require.True(t, ok)
	require.Len(t, lambda.Params, 2)
	assert.Equal(t, "m", lambda.Params[0].Name)
	assert.Equal(t, "k", lambda.Params[1].Name)

	_, ok = lambda.Body.(*ast.Index)
	assert.True(t, ok)
}

func TestParseProgramUnclosedDelimiterProducesDiagnostic(t *testing.T) {
	_, diags := New("[1, 2").ParseProgram()
	require.NotEmpty(t, diags)
}

func TestParseProgramRecordAndMapLiterals(t *testing.T) {
	expr, diags := New(`{1: "one"}`).ParseProgram()
	require.Empty(t, diags)
	m, ok := expr.(*ast.MapLit)
	require.True(t, ok)
	require.Len(t, m.Pairs, 1)
}
