package evaluator

import (
	"strings"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

func (e *Evaluator) evalStrLit(env *Env, t *ast.TStrLit) (Value, error) {
	if t.Parts == nil {
		return StrValue{Value: t.Value}, nil
	}
	var sb strings.Builder
	for _, part := range t.Parts {
		if part.Expr == nil {
			sb.WriteString(part.Text)
			continue
		}
		v, err := e.Eval(env, part.Expr)
		if err != nil {
			return nil, err
		}
		if IsError(v) {
			return v, nil
		}
		sb.WriteString(v.String())
	}
	return StrValue{Value: sb.String()}, nil
}

func (e *Evaluator) evalArrayLit(env *Env, t *ast.TArrayLit) (Value, error) {
	arrTy, _ := t.Type().(typesystem.Array)
	elems := make([]Value, len(t.Elems))
	for i, el := range t.Elems {
		v, err := e.Eval(env, el)
		if err != nil {
			return nil, err
		}
		if IsError(v) {
			return v, nil
		}
		elems[i] = v
	}
	return ArrayValue{ElemType: arrTy.Elem, Elems: elems}, nil
}

func (e *Evaluator) evalMapLit(env *Env, t *ast.TMapLit) (Value, error) {
	mapTy, _ := t.Type().(typesystem.Map)
	pairs := make([]MapPair, 0, len(t.Pairs))
	for _, p := range t.Pairs {
		k, err := e.Eval(env, p.Key)
		if err != nil {
			return nil, err
		}
		if IsError(k) {
			return k, nil
		}
		v, err := e.Eval(env, p.Value)
		if err != nil {
			return nil, err
		}
		if IsError(v) {
			return v, nil
		}
		pairs = replaceOrAppend(pairs, MapPair{Key: k, Value: v})
	}
	return MapValue{KeyType: mapTy.Key, ValueType: mapTy.Value, Pairs: pairs}, nil
}

// replaceOrAppend implements map-literal "last write wins" for duplicate
// keys (spec.md §4.6: Map is a value, not an append log).
func replaceOrAppend(pairs []MapPair, next MapPair) []MapPair {
	for i, p := range pairs {
		if ValuesEqual(p.Key, next.Key) {
			pairs[i] = next
			return pairs
		}
	}
	return append(pairs, next)
}

func (e *Evaluator) evalRecordLit(env *Env, t *ast.TRecordLit) (Value, error) {
	recTy, _ := t.Type().(typesystem.Record)
	fields := make([]RecordFieldValue, len(t.Fields))
	for i, f := range t.Fields {
		v, err := e.Eval(env, f.Value)
		if err != nil {
			return nil, err
		}
		if IsError(v) {
			return v, nil
		}
		fields[i] = RecordFieldValue{Name: f.Name, Value: v}
	}
	return buildRecordValue(recTy, fields), nil
}

// buildRecordValue sorts fields to match recTy.Fields' canonical order and
// carries recTy.DisplayOrder through unchanged for String() output.
func buildRecordValue(recTy typesystem.Record, fields []RecordFieldValue) RecordValue {
	sorted := make([]RecordFieldValue, len(fields))
	for i, rf := range recTy.Fields {
		for _, f := range fields {
			if f.Name == rf.Name {
				sorted[i] = f
				break
			}
		}
	}
	return RecordValue{RecordType: recTy, Fields: sorted, DisplayOrder: recTy.DisplayOrder}
}
