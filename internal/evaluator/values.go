package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// Value is melbi's runtime object model (spec.md §3.5, §4.6). Concrete
// values are plain Go structs, not reference types wrapping a VM heap cell —
// there is no mutation in the language, so nothing needs identity beyond
// structural equality.
type Value interface {
	fmt.Stringer
	Type() typesystem.Type
	Hash() uint64
	valueNode()
}

type valueBase struct{}

func (valueBase) valueNode() {}

type IntValue struct {
	valueBase
	Value int64
}

func (v IntValue) Type() typesystem.Type { return typesystem.Int }
func (v IntValue) String() string        { return fmt.Sprintf("%d", v.Value) }
func (v IntValue) Hash() uint64          { return uint64(v.Value) }

// FloatValue. Per spec.md §8 ("NaN hash-equal but not ==-equal"), two NaN
// FloatValues hash identically (every NaN hashes as one canonical NaN bit
// pattern) but are never == equal, matching IEEE-754 semantics for the `==`
// operator. Map lookup compares keys with ValuesEqual, so a NaN key is never
// found.
type FloatValue struct {
	valueBase
	Value float64
}

func (v FloatValue) Type() typesystem.Type { return typesystem.Float }
func (v FloatValue) String() string        { return fmt.Sprintf("%g", v.Value) }
func (v FloatValue) Hash() uint64 {
	if math.IsNaN(v.Value) {
		return math.Float64bits(math.NaN())
	}
	return math.Float64bits(v.Value)
}

type BoolValue struct {
	valueBase
	Value bool
}

func (v BoolValue) Type() typesystem.Type { return typesystem.Bool }
func (v BoolValue) String() string        { return fmt.Sprintf("%t", v.Value) }
func (v BoolValue) Hash() uint64 {
	if v.Value {
		return 1
	}
	return 0
}

type StrValue struct {
	valueBase
	Value string
}

func (v StrValue) Type() typesystem.Type { return typesystem.Str }
func (v StrValue) String() string        { return v.Value }
func (v StrValue) Hash() uint64          { return hashBytes([]byte(v.Value)) }

type BytesValue struct {
	valueBase
	Value []byte
}

func (v BytesValue) Type() typesystem.Type { return typesystem.Bytes }
func (v BytesValue) String() string        { return fmt.Sprintf("% x", v.Value) }
func (v BytesValue) Hash() uint64          { return hashBytes(v.Value) }

func hashBytes(b []byte) uint64 {
	// FNV-1a; fast, good-enough distribution for a Map implementation that
	// is not exposed to adversarial input.
	var h uint64 = 14695981039346656037
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}

// ArrayValue is an immutable, eagerly-materialized array. ElemType is
// carried separately from the element values so an empty array still has a
// concrete runtime type (spec.md §8: "Empty array: [] has polymorphic type
// Array[alpha]" resolved to a concrete Array[T] after analysis).
type ArrayValue struct {
	valueBase
	ElemType typesystem.Type
	Elems    []Value
}

func (v ArrayValue) Type() typesystem.Type { return typesystem.Array{Elem: v.ElemType} }
func (v ArrayValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (v ArrayValue) Hash() uint64 {
	h := uint64(14695981039346656037)
	for _, e := range v.Elems {
		h ^= e.Hash()
		h *= 1099511628211
	}
	return h
}

// MapPair is one key/value entry of a MapValue, kept in insertion order for
// deterministic String() output.
type MapPair struct {
	Key, Value Value
}

// MapValue is an immutable association from Value to Value, stored as a
// list of pairs and searched by a linear ValuesEqual scan (spec.md §4.6).
type MapValue struct {
	valueBase
	KeyType, ValueType typesystem.Type
	Pairs              []MapPair
}

func (v MapValue) Type() typesystem.Type { return typesystem.Map{Key: v.KeyType, Value: v.ValueType} }
func (v MapValue) String() string {
	parts := make([]string, len(v.Pairs))
	for i, p := range v.Pairs {
		parts[i] = fmt.Sprintf("%s: %s", p.Key, p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (v MapValue) Hash() uint64 {
	var h uint64
	for _, p := range v.Pairs {
		h ^= p.Key.Hash()*31 + p.Value.Hash()
	}
	return h
}

// Lookup returns the value for key using structural equality, per spec.md
// §4.6.
func (v MapValue) Lookup(key Value) (Value, bool) {
	for _, p := range v.Pairs {
		if ValuesEqual(p.Key, key) {
			return p.Value, true
		}
	}
	return nil, false
}

// RecordFieldValue is one name/value entry of a RecordValue, sorted by Name to
// match typesystem.Record's canonical field order.
type RecordFieldValue struct {
	Name  string
	Value Value
}

type RecordValue struct {
	valueBase
	RecordType   typesystem.Record
	Fields       []RecordFieldValue // sorted by Name, parallel to RecordType.Fields
	DisplayOrder []int
}

func (v RecordValue) Type() typesystem.Type { return v.RecordType }
func (v RecordValue) String() string {
	order := v.DisplayOrder
	if len(order) != len(v.Fields) {
		order = make([]int, len(v.Fields))
		for i := range order {
			order[i] = i
		}
	}
	parts := make([]string, len(order))
	for i, idx := range order {
		f := v.Fields[idx]
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Value)
	}
	return "Record { " + strings.Join(parts, ", ") + " }"
}
func (v RecordValue) Hash() uint64 {
	var h uint64
	for _, f := range v.Fields {
		h ^= hashBytes([]byte(f.Name))*31 + f.Value.Hash()
	}
	return h
}

// FieldByName returns the field's value, for TField evaluation.
func (v RecordValue) FieldByName(name string) (Value, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// OptionValue represents `some x` or `none`; Present is false for none, in
// which case Inner is nil.
type OptionValue struct {
	valueBase
	InnerType typesystem.Type
	Present   bool
	Inner     Value
}

func (v OptionValue) Type() typesystem.Type { return typesystem.Option{Inner: v.InnerType} }
func (v OptionValue) String() string {
	if !v.Present {
		return "none"
	}
	return "some(" + v.Inner.String() + ")"
}
func (v OptionValue) Hash() uint64 {
	if !v.Present {
		return 0
	}
	return 1 + v.Inner.Hash()*31
}

// Closure is a lambda value capturing its defining environment (spec.md
// §4.6: "a Function value closes over its defining Env"). Per spec.md §4.4,
// function values are never comparable with `==` (CodeNotComparable at
// runtime, spec.md §7 category 4).
type Closure struct {
	valueBase
	FuncType typesystem.Func
	Params   []string
	Body     ast.TypedExpr
	Env      *Env
}

func (v Closure) Type() typesystem.Type { return v.FuncType }
func (v Closure) String() string        { return "<function>" }
func (v Closure) Hash() uint64          { return 0 }

// NativeFunc wraps a host-supplied callable (spec.md §6.1: "Functions passed
// as globals supply an opaque callable identity invoked by the evaluator").
// Fn receives already-evaluated arguments and returns either a Value (which
// may itself be an ErrorTag) or a Go error for a genuine host-side failure,
// which the evaluator reports as a HostError ErrorTag rather than aborting
// the whole evaluation, since host failures are not resource exhaustion.
type NativeFunc struct {
	valueBase
	FuncType typesystem.Func
	Name     string
	Fn       func(args []Value) (Value, error)
}

func (v NativeFunc) Type() typesystem.Type { return v.FuncType }
func (v NativeFunc) String() string        { return "<native function " + v.Name + ">" }
func (v NativeFunc) Hash() uint64          { return 0 }

// ErrorTag is the runtime representation of a failed sub-expression (spec.md
// §3.5, §7: "Runtime errors are represented as ErrorTag values; they flow
// through expressions"). It is a Value so `otherwise`/match can observe and
// absorb it without a separate control-flow channel for ordinary
// expression evaluation; Eval still returns a Go error for anything that
// must abort evaluation outright (resource limits).
type ErrorTag struct {
	valueBase
	Kind    RuntimeErrorKind
	Message string
}

func (v ErrorTag) Type() typesystem.Type { return errorTagType{} }
func (v ErrorTag) String() string        { return "Error(" + v.Message + ")" }
func (v ErrorTag) Hash() uint64          { return hashBytes([]byte(v.Message)) }

// errorTagType is ErrorTag's nominal runtime type; it is never unifiable
// with anything at the type-checking stage (ErrorTag only exists after
// analysis, attached to the can_error effect, not to a Type), so it is
// deliberately outside typesystem's normal Type set.
type errorTagType struct{}

func (errorTagType) String() string { return "ErrorTag" }
func (errorTagType) isType()        {}

// RuntimeErrorKind enumerates spec.md §7 category 4 (Runtime) errors.
type RuntimeErrorKind int

const (
	DivisionByZero RuntimeErrorKind = iota
	OutOfBounds
	KeyNotFound
	InvalidUtf8
	NotComparable
	HostError
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case DivisionByZero:
		return "DivisionByZero"
	case OutOfBounds:
		return "OutOfBounds"
	case KeyNotFound:
		return "KeyNotFound"
	case InvalidUtf8:
		return "InvalidUtf8"
	case NotComparable:
		return "NotComparable"
	case HostError:
		return "HostError"
	}
	return "?"
}

// ValuesEqual implements melbi's `==` (spec.md §4.4.1, §4.6): structural
// equality, with IEEE-754 float comparison (so NaN == NaN is false even
// though the two NaNs may Hash() identically) and function values always
// comparing unequal via a reported NotComparable error handled by the
// caller, not here.
func ValuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.Value == bv.Value
	case FloatValue:
		bv, ok := b.(FloatValue)
		return ok && av.Value == bv.Value
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Value == bv.Value
	case StrValue:
		bv, ok := b.(StrValue)
		return ok && av.Value == bv.Value
	case BytesValue:
		bv, ok := b.(BytesValue)
		return ok && string(av.Value) == string(bv.Value)
	case ArrayValue:
		bv, ok := b.(ArrayValue)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !ValuesEqual(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case MapValue:
		bv, ok := b.(MapValue)
		if !ok || len(av.Pairs) != len(bv.Pairs) {
			return false
		}
		for _, p := range av.Pairs {
			other, found := bv.Lookup(p.Key)
			if !found || !ValuesEqual(p.Value, other) {
				return false
			}
		}
		return true
	case RecordValue:
		bv, ok := b.(RecordValue)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Name != bv.Fields[i].Name || !ValuesEqual(av.Fields[i].Value, bv.Fields[i].Value) {
				return false
			}
		}
		return true
	case OptionValue:
		bv, ok := b.(OptionValue)
		if !ok || av.Present != bv.Present {
			return false
		}
		if !av.Present {
			return true
		}
		return ValuesEqual(av.Inner, bv.Inner)
	default:
		return false
	}
}

// SortMapPairs orders pairs by key Hash() then String() for deterministic
// MapValue.String() output across a Go map-free, insertion-order-agnostic
// construction path (building from a literal preserves insertion order
// already; this is used when a builtin needs a canonical ordering).
func SortMapPairs(pairs []MapPair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Key.Hash() != pairs[j].Key.Hash() {
			return pairs[i].Key.Hash() < pairs[j].Key.Hash()
		}
		return pairs[i].Key.String() < pairs[j].Key.String()
	})
}
