package analyzer

import (
	"fmt"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// GlobalSignature describes one entry of the host's globals_schema
// (spec.md §6.1): a name bound at the root environment, its type, and
// whether referencing it introduces is_impure (spec.md §4.4.5).
type GlobalSignature struct {
	Type   typesystem.Type
	Impure bool
	Doc    string
}

// Analyzer performs bidirectional HM inference (spec.md §4.4) over a parsed
// Expr tree, producing a typed AST plus any diagnostics gathered along the
// way. It owns no state beyond a type Manager, a diagnostics sink and the
// set of global names marked impure, per spec.md §9 "No global state".
type Analyzer struct {
	mgr    *typesystem.Manager
	diags  diagnostics.List
	impure map[string]bool
}

// New creates an Analyzer using mgr as its type arena (spec.md §3.6: "the
// type arena outlives the analyzer").
func New(mgr *typesystem.Manager) *Analyzer {
	return &Analyzer{mgr: mgr, impure: map[string]bool{}}
}

// AnalyzeProgram type-checks a full program (spec.md §1: "a complete
// program is a single expression"). globals is the host's globals_schema.
// It returns the typed AST and the accumulated diagnostics (nil when
// nothing was reported). Per spec.md §3.6, the top-level expression must have
// can_error=false; if not, an UnhandledError diagnostic is appended.
func (a *Analyzer) AnalyzeProgram(expr ast.Expr, globals map[string]GlobalSignature) (ast.TypedExpr, diagnostics.List) {
	schemes := make(map[string]typesystem.Scheme, len(globals))
	for name, sig := range globals {
		schemes[name] = typesystem.Mono(sig.Type)
		if sig.Impure {
			a.impure[name] = true
		}
	}
	env := NewEnv(schemes)

	typed := a.infer(env, expr)
	typed = a.resolveTree(typed)

	if typed.Effects().CanError {
		a.errorf(diagnostics.CodeUnhandledError, typed.Span(),
			"top-level expression may fail; handle the error with 'otherwise' or a match arm")
	}
	return typed, a.diags
}

func (a *Analyzer) errorf(code diagnostics.Code, span ast.Span, format string, args ...interface{}) {
	a.diags = append(a.diags, diagnostics.Diagnostic{
		Severity: diagnostics.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

func (a *Analyzer) warnf(code diagnostics.Code, span ast.Span, format string, args ...interface{}) {
	a.diags = append(a.diags, diagnostics.Diagnostic{
		Severity: diagnostics.Warning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// unify unifies t1 and t2, reporting a TypeMismatch diagnostic at span on
// failure. It always returns a usable type: t1 on success, or a fresh
// variable on failure so the caller's result type doesn't itself become a
// second source of cascading errors (spec.md §7: typing errors are
// collected, not fatal to the rest of analysis).
func (a *Analyzer) unify(span ast.Span, t1, t2 typesystem.Type) typesystem.Type {
	if err := a.mgr.Unify(t1, t2); err != nil {
		if mm, ok := err.(*typesystem.MismatchError); ok {
			a.errorf(diagnostics.CodeTypeMismatch, span, "type mismatch: expected %s, found %s", mm.Expected, mm.Found)
		} else {
			a.errorf(diagnostics.CodeOccursCheck, span, "%v", err)
		}
		return a.mgr.Fresh()
	}
	return a.mgr.Resolve(t1)
}

func errType(a *Analyzer) typesystem.Type { return a.mgr.Fresh() }
