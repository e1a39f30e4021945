package melbi

import "github.com/melbi-lang/melbi/internal/evaluator"

// Result wraps evaluate()'s returned Value (spec.md §6.1 item 2). A Result
// never wraps a Go error for a runtime failure — a runtime ErrorTag is a
// legitimate successful evaluation outcome the host may want to inspect
// directly (e.g. to log which ErrorTag kind occurred) rather than have it
// forced into the error return.
type Result struct {
	value evaluator.Value
	m     *marshaller
}

// IsError reports whether evaluation produced a runtime ErrorTag rather
// than an ordinary value (spec.md §7 category 4).
func (r *Result) IsError() bool { return evaluator.IsError(r.value) }

// ErrorTag returns the underlying runtime error and true, if IsError.
func (r *Result) ErrorTag() (evaluator.ErrorTag, bool) {
	tag, ok := r.value.(evaluator.ErrorTag)
	return tag, ok
}

// Value returns the raw melbi runtime value.
func (r *Result) Value() evaluator.Value { return r.value }

// String renders the value the way melbi's own evaluator would display it.
func (r *Result) String() string { return r.value.String() }

// ToGo converts the result to a plain Go value (int64, float64, bool,
// string, []byte, []interface{}, map[interface{}]interface{} for a Map,
// map[string]interface{} for a Record, or nil for none).
// It returns an error if the result IsError, or if the value is a function
// (functions have no Go representation to cross the embedding boundary).
func (r *Result) ToGo() (interface{}, error) {
	return r.m.fromValue(r.value, nil)
}
