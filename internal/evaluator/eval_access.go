package evaluator

import "github.com/melbi-lang/melbi/internal/ast"

// evalIndex implements `container[key]` over Array and Map (spec.md §4.4.1,
// §7 category 4: OutOfBounds / KeyNotFound are runtime ErrorTags, never Go
// errors).
func (e *Evaluator) evalIndex(env *Env, t *ast.TIndex) (Value, error) {
	container, err := e.Eval(env, t.Container)
	if err != nil {
		return nil, err
	}
	if IsError(container) {
		return container, nil
	}
	key, err := e.Eval(env, t.Key)
	if err != nil {
		return nil, err
	}
	if IsError(key) {
		return key, nil
	}

	switch c := container.(type) {
	case ArrayValue:
		idx, ok := key.(IntValue)
		if !ok {
			return ErrorTag{Kind: HostError, Message: "internal: non-int array index"}, nil
		}
		i := idx.Value
		if i < 0 || i >= int64(len(c.Elems)) {
			return ErrorTag{Kind: OutOfBounds, Message: "array index out of bounds"}, nil
		}
		return c.Elems[i], nil
	case MapValue:
		v, found := c.Lookup(key)
		if !found {
			return ErrorTag{Kind: KeyNotFound, Message: "key not found in map"}, nil
		}
		return v, nil
	default:
		return ErrorTag{Kind: HostError, Message: "internal: non-container operand to index"}, nil
	}
}

// evalField implements `record.field` (spec.md §4.4.1). Field presence is
// guaranteed by the analyzer's exact-record typing, so a missing field here
// indicates an internal defect rather than a user-facing runtime error.
func (e *Evaluator) evalField(env *Env, t *ast.TField) (Value, error) {
	rec, err := e.Eval(env, t.Record)
	if err != nil {
		return nil, err
	}
	if IsError(rec) {
		return rec, nil
	}
	r, ok := rec.(RecordValue)
	if !ok {
		return ErrorTag{Kind: HostError, Message: "internal: field access on non-record"}, nil
	}
	v, found := r.FieldByName(t.Name)
	if !found {
		return ErrorTag{Kind: HostError, Message: "internal: unknown field " + t.Name}, nil
	}
	return v, nil
}

func (e *Evaluator) evalCastExpr(env *Env, t *ast.TCast) (Value, error) {
	v, err := e.Eval(env, t.Inner)
	if err != nil {
		return nil, err
	}
	if IsError(v) {
		return v, nil
	}
	return e.evalCast(t.Type(), v), nil
}
