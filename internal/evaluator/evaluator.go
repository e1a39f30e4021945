// Package evaluator tree-walks a typed AST (spec.md §4.5) producing a
// runtime Value or propagating an ErrorTag, within the resource bounds of
// spec.md §5.
package evaluator

import (
	"context"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/config"
	"github.com/melbi-lang/melbi/internal/limits"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// Evaluator walks one CompiledExpression's typed AST. It is not safe for
// concurrent Eval calls against the same instance — construct one per
// in-flight evaluation (spec.md §5: "the value arena is exclusively owned
// by the current evaluation"), matching the teacher evaluator's Fork
// convention for background execution rather than sharing one mutable
// Evaluator across goroutines.
type Evaluator struct {
	Budget *limits.Budget
	Logger config.Logger
}

// New creates an Evaluator bound to ctx for cancellation and cfg for
// resource bounds (spec.md §5).
func New(ctx context.Context, cfg config.Limits) *Evaluator {
	return &Evaluator{Budget: limits.New(ctx, cfg), Logger: config.NopLogger}
}

// Eval evaluates typed in env. The returned error is non-nil only for a
// resource-limit breach (spec.md §7: "Resource errors terminate evaluation
// immediately"); every other failure mode is represented as an ErrorTag
// Value that the caller (or an enclosing `otherwise`/match arm) observes
// through the normal return value.
func (e *Evaluator) Eval(env *Env, typed ast.TypedExpr) (Value, error) {
	if err := e.Budget.Step(); err != nil {
		return nil, err
	}
	switch t := typed.(type) {
	case *ast.TIntLit:
		return IntValue{Value: t.Value}, nil
	case *ast.TFloatLit:
		return FloatValue{Value: t.Value}, nil
	case *ast.TBoolLit:
		return BoolValue{Value: t.Value}, nil
	case *ast.TBytesLit:
		return BytesValue{Value: t.Value}, nil
	case *ast.TNoneLit:
		return e.evalNone(t), nil
	case *ast.TStrLit:
		return e.evalStrLit(env, t)
	case *ast.TIdent:
		return e.evalIdent(env, t)
	case *ast.TArrayLit:
		return e.evalArrayLit(env, t)
	case *ast.TMapLit:
		return e.evalMapLit(env, t)
	case *ast.TRecordLit:
		return e.evalRecordLit(env, t)
	case *ast.TBinary:
		return e.evalBinary(env, t)
	case *ast.TUnary:
		return e.evalUnary(env, t)
	case *ast.TIf:
		return e.evalIf(env, t)
	case *ast.TIndex:
		return e.evalIndex(env, t)
	case *ast.TField:
		return e.evalField(env, t)
	case *ast.TCast:
		return e.evalCastExpr(env, t)
	case *ast.TCall:
		return e.evalCall(env, t)
	case *ast.TLambda:
		return e.evalLambda(env, t)
	case *ast.TWhere:
		return e.evalWhere(env, t)
	case *ast.TMatch:
		return e.evalMatch(env, t)
	case *ast.TOtherwise:
		return e.evalOtherwise(env, t)
	default:
		return ErrorTag{Kind: HostError, Message: "internal: unhandled typed expression"}, nil
	}
}

// IsError reports whether v is a propagating ErrorTag.
func IsError(v Value) bool {
	_, ok := v.(ErrorTag)
	return ok
}

func (e *Evaluator) evalNone(t *ast.TNoneLit) Value {
	inner := typesystem.Type(typesystem.Var{})
	if opt, ok := t.Type().(typesystem.Option); ok {
		inner = opt.Inner
	}
	return OptionValue{InnerType: inner, Present: false}
}
