package transport

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// envFromStruct decodes an EvaluateRequest's env Struct into the
// map[string]interface{} shape Core.Evaluate's envOverrides parameter
// expects, reusing structpb's own JSON-ish conversion rather than
// re-deriving one against melbi's internal Value representation — the RPC
// surface only ever needs to get as far as the same Go values the
// embedding API already accepts.
func envFromStruct(s *structpb.Struct) map[string]interface{} {
	if s == nil {
		return nil
	}
	return s.AsMap()
}

// valueToProto renders a plain Go value (as produced by Result.ToGo) as a
// google.protobuf.Value, the wire encoding SPEC_FULL.md's domain stack
// section assigns to protobuf transport. int64 results are narrowed to
// float64 first since structpb.NewValue has no integer kind of its own —
// the same number/float conflation JSON itself has.
func valueToProto(goVal interface{}) (*structpb.Value, error) {
	switch v := goVal.(type) {
	case int64:
		return structpb.NewValue(float64(v))
	case []byte:
		return structpb.NewValue(string(v))
	case nil:
		return structpb.NewNullValue(), nil
	case map[interface{}]interface{}:
		fields := make(map[string]interface{}, len(v))
		for k, fv := range v {
			fields[fmt.Sprint(k)] = fv
		}
		return valueToProto(fields)
	default:
		pv, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("transport: encoding result value: %w", err)
		}
		return pv, nil
	}
}
