package analyzer

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// checkPattern type-checks one Match arm's pattern against scrutineeTy,
// binding any variables it introduces into env, and returns the
// corresponding typed pattern (spec.md §4.4.3).
func (a *Analyzer) checkPattern(env *Env, pat ast.Pattern, scrutineeTy typesystem.Type) ast.TypedPattern {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return &ast.TWildcardPattern{TypedPatternBase: ast.TypedPatternBase{Sp: p.Span()}}
	case *ast.BadPattern:
		return &ast.TWildcardPattern{TypedPatternBase: ast.TypedPatternBase{Sp: p.Span()}}
	case *ast.VarPattern:
		env.Define(p.Name, typesystem.Mono(scrutineeTy))
		return &ast.TVarPattern{TypedPatternBase: ast.TypedPatternBase{Sp: p.Span()}, Name: p.Name, Type: scrutineeTy}
	case *ast.LitPattern:
		lit := a.infer(env, p.Value)
		a.unify(p.Span(), lit.Type(), scrutineeTy)
		return &ast.TLitPattern{TypedPatternBase: ast.TypedPatternBase{Sp: p.Span()}, Value: lit}
	case *ast.SomePattern:
		inner := a.mgr.Fresh()
		a.unify(p.Span(), scrutineeTy, a.mgr.Intern(typesystem.Option{Inner: inner}))
		innerPat := a.checkPattern(env, p.Inner, inner)
		return &ast.TSomePattern{TypedPatternBase: ast.TypedPatternBase{Sp: p.Span()}, Inner: innerPat}
	case *ast.NonePattern:
		inner := a.mgr.Fresh()
		a.unify(p.Span(), scrutineeTy, a.mgr.Intern(typesystem.Option{Inner: inner}))
		return &ast.TNonePattern{TypedPatternBase: ast.TypedPatternBase{Sp: p.Span()}}
	default:
		a.errorf(diagnostics.CodeTypeMismatch, pat.Span(), "internal: unhandled pattern kind %T", pat)
		return &ast.TWildcardPattern{TypedPatternBase: ast.TypedPatternBase{Sp: pat.Span()}}
	}
}

// isCatchAll reports whether pat matches every value of its scrutinee type
// on its own (a wildcard or bare variable binding).
func isCatchAll(pat ast.Pattern) bool {
	switch pat.(type) {
	case *ast.WildcardPattern, *ast.VarPattern, *ast.BadPattern:
		return true
	}
	return false
}

// checkExhaustiveness enforces spec.md §4.4.3: Bool needs both true and
// false covered (or a catch-all), Option[T] needs both Some(_) and None (or
// a catch-all), and every other scrutinee type requires a catch-all arm.
// It also flags arms that can never be reached because an earlier catch-all
// arm already matches every value (spec.md §4.4.3 "unreachable arm"
// warning); a literal arm repeating an earlier literal is not flagged.
func (a *Analyzer) checkExhaustiveness(m *ast.Match, scrutineeTy typesystem.Type) {
	if len(m.Arms) == 0 {
		a.errorf(diagnostics.CodeNonExhaustive, m.Span(), "match has no arms")
		return
	}

	seenCatchAll := false
	for _, arm := range m.Arms {
		if seenCatchAll {
			a.warnf(diagnostics.CodeUnreachableArm, arm.Pattern.Span(), "unreachable match arm: an earlier arm already matches every value")
			continue
		}
		if isCatchAll(arm.Pattern) {
			seenCatchAll = true
		}
	}
	if seenCatchAll {
		return
	}

	resolved := a.mgr.Resolve(scrutineeTy)
	if _, isVar := resolved.(typesystem.Var); isVar {
		// Scrutinee type never resolved (e.g. all arms erroneous); do not
		// pile on a redundant diagnostic.
		return
	}
	if resolved == typesystem.Bool {
		hasTrue, hasFalse := false, false
		for _, arm := range m.Arms {
			lit, ok := arm.Pattern.(*ast.LitPattern)
			if !ok {
				continue
			}
			b, ok := lit.Value.(*ast.BoolLit)
			if !ok {
				continue
			}
			if b.Value {
				hasTrue = true
			} else {
				hasFalse = true
			}
		}
		if !hasTrue || !hasFalse {
			a.errorf(diagnostics.CodeNonExhaustive, m.Span(), "match on Bool is not exhaustive: missing %s", missingBoolArm(hasTrue, hasFalse))
		}
		return
	}
	if _, isOption := resolved.(typesystem.Option); isOption {
		hasSome, hasNone := false, false
		for _, arm := range m.Arms {
			switch arm.Pattern.(type) {
			case *ast.SomePattern:
				hasSome = true
			case *ast.NonePattern:
				hasNone = true
			}
		}
		if !hasSome || !hasNone {
			a.errorf(diagnostics.CodeNonExhaustive, m.Span(), "match on Option is not exhaustive: missing %s", missingOptionArm(hasSome, hasNone))
		}
		return
	}
	a.errorf(diagnostics.CodeNonExhaustive, m.Span(), "match on %s is not exhaustive: add a wildcard or variable arm", resolved)
}

func missingBoolArm(hasTrue, hasFalse bool) string {
	switch {
	case !hasTrue && !hasFalse:
		return "true and false"
	case !hasTrue:
		return "true"
	default:
		return "false"
	}
}

func missingOptionArm(hasSome, hasNone bool) string {
	switch {
	case !hasSome && !hasNone:
		return "some(_) and none"
	case !hasSome:
		return "some(_)"
	default:
		return "none"
	}
}
