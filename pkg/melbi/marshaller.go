package melbi

import (
	"fmt"
	"reflect"

	"github.com/melbi-lang/melbi/internal/evaluator"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// marshaller converts between Go values and melbi runtime Values, and
// infers a melbi typesystem.Type for an arbitrary bound Go value — the
// embedding-side counterpart to spec.md §6.1's "globals_schema is a mapping
// name -> {type, effect-hints, doc?}".
type marshaller struct{}

func newMarshaller() *marshaller { return &marshaller{} }

// inferType derives a melbi Type from a Go value's reflect.Type, the way a
// host would describe a bound Go function or constant to globals_schema.
func inferType(goVal interface{}) (typesystem.Type, error) {
	if goVal == nil {
		return nil, fmt.Errorf("melbi: cannot infer a type for a nil value")
	}
	return inferTypeOf(reflect.TypeOf(goVal))
}

func inferTypeOf(t reflect.Type) (typesystem.Type, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return typesystem.Int, nil
	case reflect.Float32, reflect.Float64:
		return typesystem.Float, nil
	case reflect.Bool:
		return typesystem.Bool, nil
	case reflect.String:
		return typesystem.Str, nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return typesystem.Bytes, nil
		}
		elem, err := inferTypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return typesystem.Array{Elem: elem}, nil
	case reflect.Map:
		key, err := inferTypeOf(t.Key())
		if err != nil {
			return nil, err
		}
		val, err := inferTypeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return typesystem.Map{Key: key, Value: val}, nil
	case reflect.Struct:
		fields := make([]typesystem.RecordField, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			ft, err := inferTypeOf(f.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, typesystem.RecordField{Name: f.Name, Type: ft})
		}
		return typesystem.NewRecord(fields), nil
	case reflect.Func:
		numOut := t.NumOut()
		if numOut == 2 && t.Out(1) == reflect.TypeOf((*error)(nil)).Elem() {
			numOut = 1
		}
		if numOut > 1 {
			return nil, fmt.Errorf("melbi: bound functions must return at most one value (plus an optional error)")
		}
		params := make([]typesystem.Type, t.NumIn())
		for i := 0; i < t.NumIn(); i++ {
			pt, err := inferTypeOf(t.In(i))
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		var ret typesystem.Type = typesystem.Bool
		if numOut == 1 {
			rt, err := inferTypeOf(t.Out(0))
			if err != nil {
				return nil, err
			}
			ret = rt
		}
		return typesystem.Func{Params: params, Return: ret}, nil
	case reflect.Ptr:
		return inferTypeOf(t.Elem())
	default:
		return nil, fmt.Errorf("melbi: cannot infer a melbi type for Go kind %s", t.Kind())
	}
}

// toValue converts a fully-evaluated Go value into a melbi runtime Value.
func (m *marshaller) toValue(goVal interface{}) (evaluator.Value, error) {
	if goVal == nil {
		return evaluator.OptionValue{Present: false}, nil
	}
	v := reflect.ValueOf(goVal)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return evaluator.IntValue{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return evaluator.IntValue{Value: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return evaluator.FloatValue{Value: v.Float()}, nil
	case reflect.Bool:
		return evaluator.BoolValue{Value: v.Bool()}, nil
	case reflect.String:
		return evaluator.StrValue{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
			return evaluator.BytesValue{Value: b}, nil
		}
		elems := make([]evaluator.Value, v.Len())
		var elemTy typesystem.Type
		for i := 0; i < v.Len(); i++ {
			ev, err := m.toValue(v.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			elems[i] = ev
			elemTy = ev.Type()
		}
		if elemTy == nil {
			et, err := inferTypeOf(v.Type().Elem())
			if err != nil {
				return nil, err
			}
			elemTy = et
		}
		return evaluator.ArrayValue{ElemType: elemTy, Elems: elems}, nil
	case reflect.Map:
		pairs := make([]evaluator.MapPair, 0, v.Len())
		var keyTy, valTy typesystem.Type
		iter := v.MapRange()
		for iter.Next() {
			kv, err := m.toValue(iter.Key().Interface())
			if err != nil {
				return nil, err
			}
			vv, err := m.toValue(iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, evaluator.MapPair{Key: kv, Value: vv})
			keyTy, valTy = kv.Type(), vv.Type()
		}
		return evaluator.MapValue{KeyType: keyTy, ValueType: valTy, Pairs: pairs}, nil
	case reflect.Struct:
		t := v.Type()
		fields := make([]evaluator.RecordFieldValue, 0, v.NumField())
		recFields := make([]typesystem.RecordField, 0, v.NumField())
		for i := 0; i < v.NumField(); i++ {
			ft := t.Field(i)
			if ft.PkgPath != "" {
				continue
			}
			fv, err := m.toValue(v.Field(i).Interface())
			if err != nil {
				return nil, err
			}
			fields = append(fields, evaluator.RecordFieldValue{Name: ft.Name, Value: fv})
			recFields = append(recFields, typesystem.RecordField{Name: ft.Name, Type: fv.Type()})
		}
		recTy := typesystem.NewRecord(recFields)
		sorted := make([]evaluator.RecordFieldValue, len(fields))
		for i, rf := range recTy.Fields {
			for _, f := range fields {
				if f.Name == rf.Name {
					sorted[i] = f
					break
				}
			}
		}
		return evaluator.RecordValue{RecordType: recTy, Fields: sorted, DisplayOrder: recTy.DisplayOrder}, nil
	case reflect.Ptr:
		if v.IsNil() {
			return evaluator.OptionValue{Present: false}, nil
		}
		inner, err := m.toValue(v.Elem().Interface())
		if err != nil {
			return nil, err
		}
		return evaluator.OptionValue{InnerType: inner.Type(), Present: true, Inner: inner}, nil
	default:
		return nil, fmt.Errorf("melbi: cannot convert Go kind %s to a melbi value", v.Kind())
	}
}

// fromValue converts a melbi runtime Value back into a Go value, optionally
// coerced toward target (targetType may be nil, in which case a natural Go
// type is chosen).
func (m *marshaller) fromValue(v evaluator.Value, target reflect.Type) (interface{}, error) {
	switch val := v.(type) {
	case evaluator.IntValue:
		if target != nil && target.Kind() == reflect.Float64 {
			return float64(val.Value), nil
		}
		if target != nil {
			return reflect.ValueOf(val.Value).Convert(target).Interface(), nil
		}
		return val.Value, nil
	case evaluator.FloatValue:
		return val.Value, nil
	case evaluator.BoolValue:
		return val.Value, nil
	case evaluator.StrValue:
		return val.Value, nil
	case evaluator.BytesValue:
		return val.Value, nil
	case evaluator.ArrayValue:
		elemType := reflect.TypeOf((*interface{})(nil)).Elem()
		if target != nil && target.Kind() == reflect.Slice {
			elemType = target.Elem()
		}
		out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, len(val.Elems))
		for _, e := range val.Elems {
			gv, err := m.fromValue(e, elemType)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, reflect.ValueOf(gv))
		}
		return out.Interface(), nil
	case evaluator.MapValue:
		out := make(map[interface{}]interface{}, len(val.Pairs))
		for _, p := range val.Pairs {
			k, err := m.fromValue(p.Key, nil)
			if err != nil {
				return nil, err
			}
			vv, err := m.fromValue(p.Value, nil)
			if err != nil {
				return nil, err
			}
			out[k] = vv
		}
		return out, nil
	case evaluator.RecordValue:
		out := make(map[string]interface{}, len(val.Fields))
		for _, f := range val.Fields {
			gv, err := m.fromValue(f.Value, nil)
			if err != nil {
				return nil, err
			}
			out[f.Name] = gv
		}
		return out, nil
	case evaluator.OptionValue:
		if !val.Present {
			return nil, nil
		}
		return m.fromValue(val.Inner, target)
	case evaluator.Closure, evaluator.NativeFunc:
		return nil, fmt.Errorf("melbi: function values cannot cross back into Go")
	case evaluator.ErrorTag:
		return nil, fmt.Errorf("melbi: %s: %s", val.Kind, val.Message)
	default:
		return nil, fmt.Errorf("melbi: unsupported value for Go conversion: %s", v)
	}
}

// bindFunc wraps a Go function as a melbi NativeFunc, converting arguments
// and the return value through the marshaller (spec.md §6.1: "Functions
// passed as globals supply an opaque callable identity invoked by the
// evaluator"). A non-nil trailing Go `error` return is passed back from Fn,
// and the evaluator turns it into a HostError ErrorTag rather than aborting,
// since a host function failing is a normal part of evaluation, not
// resource exhaustion.
func (m *marshaller) bindFunc(name string, fn interface{}) (evaluator.NativeFunc, typesystem.Type, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return evaluator.NativeFunc{}, nil, fmt.Errorf("melbi: Bind(%q, ...) requires a func value", name)
	}
	sig, err := inferTypeOf(ft)
	if err != nil {
		return evaluator.NativeFunc{}, nil, fmt.Errorf("melbi: Bind(%q, ...): %w", name, err)
	}
	funcSig := sig.(typesystem.Func)

	returnsError := ft.NumOut() == 2 && ft.Out(1) == reflect.TypeOf((*error)(nil)).Elem()

	call := func(args []evaluator.Value) (evaluator.Value, error) {
		if len(args) != ft.NumIn() {
			return nil, fmt.Errorf("%s: expected %d arguments, got %d", name, ft.NumIn(), len(args))
		}
		goArgs := make([]reflect.Value, len(args))
		for i, a := range args {
			gv, err := m.fromValue(a, ft.In(i))
			if err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", name, i, err)
			}
			rv := reflect.ValueOf(gv)
			if !rv.IsValid() {
				rv = reflect.Zero(ft.In(i))
			}
			goArgs[i] = rv
		}
		results := fv.Call(goArgs)
		if returnsError && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		if ft.NumOut() == 0 {
			return evaluator.BoolValue{Value: true}, nil
		}
		return m.toValue(results[0].Interface())
	}

	return evaluator.NativeFunc{FuncType: funcSig, Name: name, Fn: call}, sig, nil
}
