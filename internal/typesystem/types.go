// Package typesystem implements melbi's interned type representation (the
// "type manager", spec.md §4.2) and first-order unification (spec.md §4.3).
package typesystem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/melbi-lang/melbi/internal/config"
)

// Type is the interface implemented by every type in the system. Composite
// types are interned by Manager so structurally equal descriptors share
// identity; primitives are process-wide singletons.
type Type interface {
	String() string
	isType()
}

// Primitive types are singletons; there is exactly one *Int, *Float, etc.
type (
	intType   struct{}
	floatType struct{}
	boolType  struct{}
	strType   struct{}
	bytesType struct{}
)

func (intType) isType()   {}
func (floatType) isType() {}
func (boolType) isType()  {}
func (strType) isType()   {}
func (bytesType) isType() {}

func (intType) String() string   { return "Int" }
func (floatType) String() string { return "Float" }
func (boolType) String() string  { return "Bool" }
func (strType) String() string   { return "Str" }
func (bytesType) String() string { return "Bytes" }

var (
	Int   Type = intType{}
	Float Type = floatType{}
	Bool  Type = boolType{}
	Str   Type = strType{}
	Bytes Type = bytesType{}
)

// Array is `Array[Elem]`.
type Array struct{ Elem Type }

func (Array) isType() {}
func (a Array) String() string { return fmt.Sprintf("Array[%s]", a.Elem) }

// Map is `Map[Key, Value]`.
type Map struct{ Key, Value Type }

func (Map) isType() {}
func (m Map) String() string { return fmt.Sprintf("Map[%s, %s]", m.Key, m.Value) }

// Option is `Option[Inner]`.
type Option struct{ Inner Type }

func (Option) isType() {}
func (o Option) String() string { return fmt.Sprintf("Option[%s]", o.Inner) }

// RecordField is one exact-row field; Record.Fields is always kept sorted
// by Name for canonicalization (spec.md §3.3), but DisplayOrder preserves
// the insertion order for printing.
type RecordField struct {
	Name string
	Type Type
}

// Record is an exact row type: `{name: T, ...}`. Fields is sorted by name;
// DisplayOrder holds the original field indices into Fields for printing
// in the order the user wrote them (spec.md §3.3: "equality ignores
// insertion order but preserves it for display").
type Record struct {
	Fields       []RecordField // sorted by Name
	DisplayOrder []int         // permutation of indices into Fields
}

func (Record) isType() {}

func (r Record) String() string {
	order := r.DisplayOrder
	if len(order) != len(r.Fields) {
		order = make([]int, len(r.Fields))
		for i := range order {
			order[i] = i
		}
	}
	parts := make([]string, len(order))
	for i, idx := range order {
		f := r.Fields[idx]
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type)
	}
	return "Record{" + strings.Join(parts, ", ") + "}"
}

// FieldByName returns the field type for name and whether it was found.
func (r Record) FieldByName(name string) (Type, bool) {
	// Fields is sorted by name, but linear scan is fine at the record sizes
	// melbi programs realistically use.
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// NewRecord builds a canonical Record from fields in source/display order.
func NewRecord(fieldsInOrder []RecordField) Record {
	sorted := make([]RecordField, len(fieldsInOrder))
	copy(sorted, fieldsInOrder)
	order := make([]int, len(sorted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return sorted[order[i]].Name < sorted[order[j]].Name })
	display := make([]int, len(sorted))
	permuted := make([]RecordField, len(sorted))
	for newIdx, oldIdx := range order {
		permuted[newIdx] = sorted[oldIdx]
	}
	// DisplayOrder[i] is the index into permuted.Fields of the field the
	// caller listed in position i, so printing in DisplayOrder recovers the
	// user's original field order regardless of the sorted storage order.
	for origIdx, f := range fieldsInOrder {
		for newIdx, pf := range permuted {
			if pf.Name == f.Name {
				display[origIdx] = newIdx
				break
			}
		}
	}
	return Record{Fields: permuted, DisplayOrder: display}
}

// Func is `Function(Params) Return`.
type Func struct {
	Params []Type
	Return Type
}

func (Func) isType() {}

func (f Func) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Return)
}

// Var is an unbound-or-bound unification variable, resolved via Manager's
// substitution map (spec.md §3.3: "TypeVar(id)... resolved via a
// union-find-like binding map owned by the unifier").
type Var struct{ ID uint64 }

func (Var) isType() {}

func (v Var) String() string {
	name := fmt.Sprintf("t%d", v.ID)
	if config.IsTestMode || config.IsLSPMode {
		return "t?"
	}
	return name
}

// IsPrimitive reports whether t is one of Int, Float, Bool, Str, Bytes.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case intType, floatType, boolType, strType, bytesType:
		return true
	}
	return false
}

// IsNumeric reports whether t is Int or Float.
func IsNumeric(t Type) bool {
	switch t.(type) {
	case intType, floatType:
		return true
	}
	return false
}

// IsOrdered reports whether t supports < > <= >= (spec.md §4.4.1).
func IsOrdered(t Type) bool {
	switch t.(type) {
	case intType, floatType, strType, bytesType:
		return true
	}
	return false
}
