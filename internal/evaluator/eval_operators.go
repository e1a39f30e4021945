package evaluator

import (
	"math"
	"strings"

	"github.com/melbi-lang/melbi/internal/ast"
)

func (e *Evaluator) evalBinary(env *Env, t *ast.TBinary) (Value, error) {
	// LogAnd/LogOr short-circuit (spec.md §8: left-to-right evaluation order
	// with short-circuiting), so the right operand is evaluated lazily.
	if t.Op == ast.LogAnd || t.Op == ast.LogOr {
		return e.evalShortCircuit(env, t)
	}

	lhs, err := e.Eval(env, t.Lhs)
	if err != nil {
		return nil, err
	}
	if IsError(lhs) {
		return lhs, nil
	}
	rhs, err := e.Eval(env, t.Rhs)
	if err != nil {
		return nil, err
	}
	if IsError(rhs) {
		return rhs, nil
	}

	switch t.Op {
	case ast.Add:
		return evalAdd(lhs, rhs), nil
	case ast.Sub:
		return evalArith(t.Op, lhs, rhs), nil
	case ast.Mul:
		return evalArith(t.Op, lhs, rhs), nil
	case ast.Div:
		return evalDiv(lhs, rhs), nil
	case ast.Pow:
		return evalArith(t.Op, lhs, rhs), nil
	case ast.Eq:
		return evalEquality(lhs, rhs, false), nil
	case ast.NotEq:
		return evalEquality(lhs, rhs, true), nil
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		return evalCompare(t.Op, lhs, rhs), nil
	case ast.InOp:
		return evalMembership(lhs, rhs, false), nil
	case ast.NotInOp:
		return evalMembership(lhs, rhs, true), nil
	default:
		return ErrorTag{Kind: HostError, Message: "internal: unhandled binary operator"}, nil
	}
}

func (e *Evaluator) evalShortCircuit(env *Env, t *ast.TBinary) (Value, error) {
	lhs, err := e.Eval(env, t.Lhs)
	if err != nil {
		return nil, err
	}
	if IsError(lhs) {
		return lhs, nil
	}
	lb, ok := lhs.(BoolValue)
	if !ok {
		return ErrorTag{Kind: HostError, Message: "internal: non-bool operand to logical operator"}, nil
	}
	if t.Op == ast.LogAnd && !lb.Value {
		return BoolValue{Value: false}, nil
	}
	if t.Op == ast.LogOr && lb.Value {
		return BoolValue{Value: true}, nil
	}
	rhs, err := e.Eval(env, t.Rhs)
	if err != nil {
		return nil, err
	}
	if IsError(rhs) {
		return rhs, nil
	}
	rb, ok := rhs.(BoolValue)
	if !ok {
		return ErrorTag{Kind: HostError, Message: "internal: non-bool operand to logical operator"}, nil
	}
	return BoolValue{Value: rb.Value}, nil
}

// evalAdd overloads `+` for numeric addition and Str/Bytes concatenation
// (spec.md §4.4.1).
func evalAdd(lhs, rhs Value) Value {
	switch l := lhs.(type) {
	case StrValue:
		r := rhs.(StrValue)
		return StrValue{Value: l.Value + r.Value}
	case BytesValue:
		r := rhs.(BytesValue)
		out := make([]byte, 0, len(l.Value)+len(r.Value))
		out = append(out, l.Value...)
		out = append(out, r.Value...)
		return BytesValue{Value: out}
	default:
		return evalArith(ast.Add, lhs, rhs)
	}
}

// evalArith implements +, -, *, ^ for Int/Float. Int arithmetic wraps on
// overflow via Go's native two's-complement int64 semantics (spec.md §8:
// "Integer overflow in + - *: wrap-around, no error").
func evalArith(op ast.BinOp, lhs, rhs Value) Value {
	switch l := lhs.(type) {
	case IntValue:
		r := rhs.(IntValue)
		switch op {
		case ast.Add:
			return IntValue{Value: l.Value + r.Value}
		case ast.Sub:
			return IntValue{Value: l.Value - r.Value}
		case ast.Mul:
			return IntValue{Value: l.Value * r.Value}
		case ast.Pow:
			return IntValue{Value: intPow(l.Value, r.Value)}
		}
	case FloatValue:
		r := rhs.(FloatValue)
		switch op {
		case ast.Add:
			return FloatValue{Value: l.Value + r.Value}
		case ast.Sub:
			return FloatValue{Value: l.Value - r.Value}
		case ast.Mul:
			return FloatValue{Value: l.Value * r.Value}
		case ast.Pow:
			return FloatValue{Value: math.Pow(l.Value, r.Value)}
		}
	}
	return ErrorTag{Kind: HostError, Message: "internal: non-numeric operand to arithmetic operator"}
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

// evalDiv implements Int/Float division. Only Int `/` by zero is a runtime
// error (spec.md §4.4.5, §8); Float division by zero follows IEEE-754
// (+Inf/-Inf/NaN), matching the type system's decision not to flag Float
// division with can_error.
func evalDiv(lhs, rhs Value) Value {
	switch l := lhs.(type) {
	case IntValue:
		r := rhs.(IntValue)
		if r.Value == 0 {
			return ErrorTag{Kind: DivisionByZero, Message: "integer division by zero"}
		}
		return IntValue{Value: l.Value / r.Value}
	case FloatValue:
		r := rhs.(FloatValue)
		return FloatValue{Value: l.Value / r.Value}
	}
	return ErrorTag{Kind: HostError, Message: "internal: non-numeric operand to /"}
}

// evalEquality implements == and != (spec.md §4.4.1, §4.6). Function values
// are not comparable (spec.md §7 category 4); comparing two Closures always
// yields NotComparable rather than a silent `false`.
func evalEquality(lhs, rhs Value, negate bool) Value {
	if isFunction(lhs) || isFunction(rhs) {
		return ErrorTag{Kind: NotComparable, Message: "function values are not comparable"}
	}
	eq := ValuesEqual(lhs, rhs)
	if negate {
		eq = !eq
	}
	return BoolValue{Value: eq}
}

func isFunction(v Value) bool {
	switch v.(type) {
	case Closure, NativeFunc:
		return true
	}
	return false
}

func evalCompare(op ast.BinOp, lhs, rhs Value) Value {
	cmp, ok := compareValues(lhs, rhs)
	if !ok {
		return ErrorTag{Kind: HostError, Message: "internal: non-ordered operand to comparison operator"}
	}
	switch op {
	case ast.Lt:
		return BoolValue{Value: cmp < 0}
	case ast.Gt:
		return BoolValue{Value: cmp > 0}
	case ast.Le:
		return BoolValue{Value: cmp <= 0}
	case ast.Ge:
		return BoolValue{Value: cmp >= 0}
	}
	return ErrorTag{Kind: HostError, Message: "internal: unhandled comparison operator"}
}

// compareValues returns -1/0/1 for Int, Float, Str, Bytes operands
// (spec.md §4.4.1 "IsOrdered" types).
func compareValues(lhs, rhs Value) (int, bool) {
	switch l := lhs.(type) {
	case IntValue:
		r := rhs.(IntValue)
		switch {
		case l.Value < r.Value:
			return -1, true
		case l.Value > r.Value:
			return 1, true
		default:
			return 0, true
		}
	case FloatValue:
		r := rhs.(FloatValue)
		switch {
		case l.Value < r.Value:
			return -1, true
		case l.Value > r.Value:
			return 1, true
		default:
			return 0, true
		}
	case StrValue:
		r := rhs.(StrValue)
		return strings.Compare(l.Value, r.Value), true
	case BytesValue:
		r := rhs.(BytesValue)
		return strings.Compare(string(l.Value), string(r.Value)), true
	}
	return 0, false
}

// evalMembership implements `in`/`not in` over Array, Map, and Str (spec.md
// §4.4.1: `Str in Str` is a substring test).
func evalMembership(lhs, rhs Value, negate bool) Value {
	var found bool
	switch r := rhs.(type) {
	case ArrayValue:
		for _, el := range r.Elems {
			if ValuesEqual(el, lhs) {
				found = true
				break
			}
		}
	case MapValue:
		_, found = r.Lookup(lhs)
	case StrValue:
		found = strings.Contains(r.Value, lhs.(StrValue).Value)
	default:
		return ErrorTag{Kind: HostError, Message: "internal: non-container operand to in"}
	}
	if negate {
		found = !found
	}
	return BoolValue{Value: found}
}

func (e *Evaluator) evalUnary(env *Env, t *ast.TUnary) (Value, error) {
	inner, err := e.Eval(env, t.Inner)
	if err != nil {
		return nil, err
	}
	if IsError(inner) {
		return inner, nil
	}
	switch t.Op {
	case ast.Neg:
		switch v := inner.(type) {
		case IntValue:
			return IntValue{Value: -v.Value}, nil
		case FloatValue:
			return FloatValue{Value: -v.Value}, nil
		}
		return ErrorTag{Kind: HostError, Message: "internal: non-numeric operand to unary -"}, nil
	case ast.Not:
		b, ok := inner.(BoolValue)
		if !ok {
			return ErrorTag{Kind: HostError, Message: "internal: non-bool operand to not"}, nil
		}
		return BoolValue{Value: !b.Value}, nil
	case ast.SomeWrap:
		return OptionValue{InnerType: inner.Type(), Present: true, Inner: inner}, nil
	default:
		return ErrorTag{Kind: HostError, Message: "internal: unhandled unary operator"}, nil
	}
}
