package evaluator

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// evalLambda constructs a Closure capturing env (spec.md §4.6: "a Function
// value closes over its defining Env"). No work happens yet — the body is
// not evaluated until the closure is called.
func (e *Evaluator) evalLambda(env *Env, t *ast.TLambda) (Value, error) {
	funcTy, _ := t.Type().(typesystem.Func)
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.Name
	}
	return Closure{FuncType: funcTy, Params: params, Body: t.Body, Env: env}, nil
}

// evalCall implements function application (spec.md §4.4.1, §4.6). Call
// depth is tracked against the resource budget for the duration of a
// Closure body's evaluation (spec.md §5: "max call depth"); NativeFunc calls
// do not recurse into the evaluator and so are not counted against it.
func (e *Evaluator) evalCall(env *Env, t *ast.TCall) (Value, error) {
	callee, err := e.Eval(env, t.Callee)
	if err != nil {
		return nil, err
	}
	if IsError(callee) {
		return callee, nil
	}

	args := make([]Value, len(t.Args))
	for i, a := range t.Args {
		v, err := e.Eval(env, a)
		if err != nil {
			return nil, err
		}
		if IsError(v) {
			return v, nil
		}
		args[i] = v
	}

	switch fn := callee.(type) {
	case Closure:
		return e.callClosure(fn, args)
	case NativeFunc:
		v, err := fn.Fn(args)
		if err != nil {
			return ErrorTag{Kind: HostError, Message: err.Error()}, nil
		}
		return v, nil
	default:
		return ErrorTag{Kind: HostError, Message: "internal: call on non-function value"}, nil
	}
}

func (e *Evaluator) callClosure(fn Closure, args []Value) (Value, error) {
	if err := e.Budget.EnterCall(); err != nil {
		return nil, err
	}
	defer e.Budget.ExitCall()

	child := fn.Env.Child()
	for i, name := range fn.Params {
		if i < len(args) {
			child.Define(name, args[i])
		}
	}
	return e.Eval(child, fn.Body)
}
