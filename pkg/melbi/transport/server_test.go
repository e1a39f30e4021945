package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/melbi-lang/melbi/pkg/melbi"
)

func TestCoreServerCompileAndEvaluate(t *testing.T) {
	core := melbi.New()
	srv := NewCoreServer(core)
	ctx := context.Background()

	compileResp, err := srv.Compile(ctx, &CompileRequest{Source: "1 + 2 * 3"})
	require.NoError(t, err)
	assert.Empty(t, compileResp.Diagnostics)
	assert.Equal(t, "Int", compileResp.Type)
	require.NotEmpty(t, compileResp.ID)

	evalResp, err := srv.Evaluate(ctx, &EvaluateRequest{ID: compileResp.ID})
	require.NoError(t, err)
	assert.False(t, evalResp.IsError)
	assert.Equal(t, float64(7), evalResp.Value.GetNumberValue())
}

func TestCoreServerCompileDiagnostics(t *testing.T) {
	core := melbi.New()
	srv := NewCoreServer(core)

	resp, err := srv.Compile(context.Background(), &CompileRequest{Source: "x match { true -> 1 } where { x = false }"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Diagnostics)
	assert.Equal(t, "E0204", resp.Diagnostics[0].Code)
}

func TestCoreServerEvaluateUnknownID(t *testing.T) {
	srv := NewCoreServer(melbi.New())
	_, err := srv.Evaluate(context.Background(), &EvaluateRequest{ID: "does-not-exist"})
	assert.Error(t, err)
}

func TestCoreServerEvaluateWithEnv(t *testing.T) {
	// Overrides travel through google.protobuf.Struct's JSON-ish encoding,
	// which conflates Int and Float into one number kind (see codec.go's
	// valueToProto doc comment); a Str-typed global sidesteps that
	// conflation entirely and keeps this test about env plumbing, not
	// numeric-tower edge cases.
	core := melbi.New()
	require.NoError(t, core.Set("name", "default"))
	srv := NewCoreServer(core)
	ctx := context.Background()

	compileResp, err := srv.Compile(ctx, &CompileRequest{Source: "name"})
	require.NoError(t, err)

	envStruct, err := structpb.NewStruct(map[string]interface{}{"name": "override"})
	require.NoError(t, err)

	evalResp, err := srv.Evaluate(ctx, &EvaluateRequest{ID: compileResp.ID, Env: envStruct})
	require.NoError(t, err)
	assert.Equal(t, "override", evalResp.Value.GetStringValue())
}

func TestServiceDescMatchesProtoContract(t *testing.T) {
	names, err := ServiceMethodNames()
	require.NoError(t, err)

	handWritten := make([]string, len(ServiceDesc.Methods))
	for i, m := range ServiceDesc.Methods {
		handWritten[i] = m.MethodName
	}
	assert.ElementsMatch(t, names, handWritten)
}
