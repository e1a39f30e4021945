package evaluator

import "github.com/melbi-lang/melbi/internal/ast"

func (e *Evaluator) evalIf(env *Env, t *ast.TIf) (Value, error) {
	cond, err := e.Eval(env, t.Cond)
	if err != nil {
		return nil, err
	}
	if IsError(cond) {
		return cond, nil
	}
	b, ok := cond.(BoolValue)
	if !ok {
		return ErrorTag{Kind: HostError, Message: "internal: non-bool if condition"}, nil
	}
	if b.Value {
		return e.Eval(env, t.Then)
	}
	return e.Eval(env, t.Else)
}

// evalWhere evaluates each binding sequentially into a single child scope,
// each one visible to the bindings after it but not to itself (spec.md §4.4.3:
// "no recursive where/let" — the analyzer already rejected a self-reference,
// so this is purely an evaluation-order concern, not a lookup restriction).
func (e *Evaluator) evalWhere(env *Env, t *ast.TWhere) (Value, error) {
	child := env.Child()
	for _, b := range t.Bindings {
		v, err := e.Eval(child, b.Value)
		if err != nil {
			return nil, err
		}
		if IsError(v) {
			return v, nil
		}
		child.Define(b.Name, v)
	}
	return e.Eval(child, t.Body)
}

// evalMatch dispatches on the scrutinee's runtime shape against each arm's
// pattern in order, evaluating the first arm whose pattern matches (spec.md
// §4.4.3). The analyzer has already proven exhaustiveness, so falling off
// the end of the arm list is an internal defect, not a user-facing error.
func (e *Evaluator) evalMatch(env *Env, t *ast.TMatch) (Value, error) {
	scrutinee, err := e.Eval(env, t.Scrutinee)
	if err != nil {
		return nil, err
	}
	if IsError(scrutinee) {
		return scrutinee, nil
	}
	for _, arm := range t.Arms {
		child := env.Child()
		matched, err := e.matchPattern(child, arm.Pattern, scrutinee)
		if err != nil {
			return nil, err
		}
		if matched {
			return e.Eval(child, arm.Body)
		}
	}
	return ErrorTag{Kind: HostError, Message: "internal: no match arm matched an exhaustiveness-checked match"}, nil
}

// matchPattern reports whether pat matches v, binding any variables it
// introduces into env as a side effect.
func (e *Evaluator) matchPattern(env *Env, pat ast.TypedPattern, v Value) (bool, error) {
	switch p := pat.(type) {
	case *ast.TWildcardPattern:
		return true, nil
	case *ast.TVarPattern:
		env.Define(p.Name, v)
		return true, nil
	case *ast.TLitPattern:
		lit, err := e.Eval(env, p.Value)
		if err != nil {
			return false, err
		}
		if IsError(lit) {
			return false, nil
		}
		return ValuesEqual(lit, v), nil
	case *ast.TSomePattern:
		opt, ok := v.(OptionValue)
		if !ok || !opt.Present {
			return false, nil
		}
		return e.matchPattern(env, p.Inner, opt.Inner)
	case *ast.TNonePattern:
		opt, ok := v.(OptionValue)
		return ok && !opt.Present, nil
	default:
		return false, nil
	}
}

// evalOtherwise evaluates the primary expression and, if it produced an
// ErrorTag, evaluates the fallback instead (spec.md §4.4.1, §9's resolved
// Open Question: "otherwise clears can_error, preserves is_impure").
func (e *Evaluator) evalOtherwise(env *Env, t *ast.TOtherwise) (Value, error) {
	v, err := e.Eval(env, t.Expr)
	if err != nil {
		return nil, err
	}
	if IsError(v) {
		return e.Eval(env, t.Fallback)
	}
	return v, nil
}
