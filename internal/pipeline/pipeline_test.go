package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melbi-lang/melbi/internal/analyzer"
	"github.com/melbi-lang/melbi/internal/config"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/evaluator"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

func TestCompileAndEvaluate(t *testing.T) {
	t.Run("arithmetic precedence", func(t *testing.T) {
		res := Compile("1 + 2 * 3", nil)
		require.False(t, res.Failed(), "diagnostics: %v", res.Diagnostics)
		require.Equal(t, "Int", res.Typed.Type().String())

		v, err := Evaluate(context.Background(), res.Typed, nil, config.DefaultLimits())
		require.NoError(t, err)
		assert.Equal(t, "7", v.String())
	})

	t.Run("division by zero recovers via otherwise", func(t *testing.T) {
		res := Compile("(10 / x) otherwise 0 where { x = 0 }", nil)
		require.False(t, res.Failed())

		v, err := Evaluate(context.Background(), res.Typed, nil, config.DefaultLimits())
		require.NoError(t, err)
		assert.Equal(t, "0", v.String())
	})

	t.Run("nonexhaustive bool match is a compile error", func(t *testing.T) {
		res := Compile("x match { true -> 1 } where { x = false }", nil)
		assert.True(t, res.Failed())
		assert.True(t, hasCode(res.Diagnostics, "E0204"))
	})

	t.Run("recursion is unsupported", func(t *testing.T) {
		res := Compile("factorial(5) where { factorial = (n) => if n <= 1 then 1 else n * factorial(n - 1) }", nil)
		assert.True(t, res.Failed())
		assert.True(t, hasCode(res.Diagnostics, "E0101"))
	})

	t.Run("globals are visible to the analyzer and evaluator", func(t *testing.T) {
		globals := map[string]analyzer.GlobalSignature{"answer": {Type: typesystem.Int}}
		res := Compile("answer + 1", globals)
		require.False(t, res.Failed())

		env := map[string]evaluator.Value{"answer": evaluator.IntValue{Value: 41}}
		v, err := Evaluate(context.Background(), res.Typed, env, config.DefaultLimits())
		require.NoError(t, err)
		assert.Equal(t, "42", v.String())
	})
}

func hasCode(diags diagnostics.List, code string) bool {
	for _, d := range diags {
		if string(d.Code) == code {
			return true
		}
	}
	return false
}
