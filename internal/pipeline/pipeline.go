// Package pipeline wires the compiler frontend — lexer, parser, analyzer —
// and the evaluator into the two operations pkg/melbi exposes to a host:
// Compile (source -> typed AST) and Evaluate (typed AST -> Value). It is the
// single place that owns the type arena's lifetime across a compilation
// unit (spec.md §3.6), mirroring the teacher's own pipeline package shape of
// threading one context object through a fixed sequence of stages that each
// contribute diagnostics rather than aborting the whole run.
package pipeline

import (
	"context"

	"github.com/melbi-lang/melbi/internal/analyzer"
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/config"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/evaluator"
	"github.com/melbi-lang/melbi/internal/parser"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// CompileResult is the outcome of running source through the parser and
// analyzer (spec.md §6.1 item 1: "compile(source, globals_schema) ->
// CompiledExpression | Error"). Typed is usable even when Diagnostics
// contains errors — the analyzer always returns a best-effort typed tree so
// hover/completions keep working against a partially-broken program.
type CompileResult struct {
	Typed       ast.TypedExpr
	Diagnostics diagnostics.List
	Manager     *typesystem.Manager
}

// Failed reports whether compilation produced at least one error diagnostic.
func (r CompileResult) Failed() bool {
	return r.Diagnostics.HasErrors()
}

// Compile parses and type-checks source against globals, the host's
// globals_schema (spec.md §6.1). It never panics on malformed input — parse
// and analysis errors are collected into the returned diagnostics, matching
// the teacher pipeline's "continue on errors to collect diagnostics from
// all stages" discipline.
func Compile(source string, globals map[string]analyzer.GlobalSignature) CompileResult {
	p := parser.New(source)
	expr, parseDiags := p.ParseProgram()

	mgr := typesystem.NewManager()
	a := analyzer.New(mgr)
	typed, analyzeDiags := a.AnalyzeProgram(expr, globals)

	all := make(diagnostics.List, 0, len(parseDiags)+len(analyzeDiags))
	all = append(all, parseDiags...)
	all = append(all, analyzeDiags...)

	return CompileResult{Typed: typed, Diagnostics: all, Manager: mgr}
}

// Evaluate runs a compiled typed AST against a runtime environment and
// resource limits (spec.md §6.1 item 2: "evaluate(compiled, env, limits) ->
// Result | Error"). The returned error is non-nil only for a resource-bound
// breach (spec.md §5, §7); any other runtime failure comes back as an
// evaluator.ErrorTag Value, which the host's Result type distinguishes from
// a successful value.
func Evaluate(ctx context.Context, typed ast.TypedExpr, globals map[string]evaluator.Value, limits config.Limits) (evaluator.Value, error) {
	eval := evaluator.New(ctx, limits)
	env := evaluator.NewEnv(globals)
	return eval.Eval(env, typed)
}
