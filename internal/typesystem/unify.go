package typesystem

import "fmt"

// MismatchError is returned when two types cannot be unified (spec.md §4.3
// step 3). Span is attached by the analyzer, which knows the source
// location the unification arose from; the unifier itself is span-agnostic.
type MismatchError struct {
	Expected, Found Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
}

// Unify attempts to make t1 and t2 equal by binding variables in m's
// substitution map. It is imperative: on success the bindings it made
// persist in m; on failure, any bindings already made before the failing
// step are left in place (spec.md §4.3: "failure leaves partial bindings in
// place -- acceptable, the analyzer records an error and continues").
func (m *Manager) Unify(t1, t2 Type) error {
	t1 = m.Resolve(t1)
	t2 = m.Resolve(t2)

	if v1, ok := t1.(Var); ok {
		if v2, ok := t2.(Var); ok && v1.ID == v2.ID {
			return nil
		}
		return m.bindVar(v1, t2)
	}
	if v2, ok := t2.(Var); ok {
		return m.bindVar(v2, t1)
	}

	switch a := t1.(type) {
	case intType:
		if _, ok := t2.(intType); ok {
			return nil
		}
	case floatType:
		if _, ok := t2.(floatType); ok {
			return nil
		}
	case boolType:
		if _, ok := t2.(boolType); ok {
			return nil
		}
	case strType:
		if _, ok := t2.(strType); ok {
			return nil
		}
	case bytesType:
		if _, ok := t2.(bytesType); ok {
			return nil
		}
	case Array:
		if b, ok := t2.(Array); ok {
			return m.Unify(a.Elem, b.Elem)
		}
	case Map:
		if b, ok := t2.(Map); ok {
			if err := m.Unify(a.Key, b.Key); err != nil {
				return err
			}
			return m.Unify(a.Value, b.Value)
		}
	case Option:
		if b, ok := t2.(Option); ok {
			return m.Unify(a.Inner, b.Inner)
		}
	case Func:
		if b, ok := t2.(Func); ok {
			if len(a.Params) != len(b.Params) {
				return &MismatchError{Expected: t1, Found: t2}
			}
			for i := range a.Params {
				if err := m.Unify(a.Params[i], b.Params[i]); err != nil {
					return err
				}
			}
			return m.Unify(a.Return, b.Return)
		}
	case Record:
		if b, ok := t2.(Record); ok {
			return m.unifyRecords(a, b)
		}
	}
	return &MismatchError{Expected: t1, Found: t2}
}

// unifyRecords requires identical sorted field-name sets (spec.md §4.3
// step 2: "identical sorted field-name sets") and unifies values pointwise.
func (m *Manager) unifyRecords(a, b Record) error {
	if len(a.Fields) != len(b.Fields) {
		return &MismatchError{Expected: a, Found: b}
	}
	for i := range a.Fields {
		if a.Fields[i].Name != b.Fields[i].Name {
			return &MismatchError{Expected: a, Found: b}
		}
		if err := m.Unify(a.Fields[i].Type, b.Fields[i].Type); err != nil {
			return err
		}
	}
	return nil
}

// bindVar binds v to t after an occurs check (spec.md §4.3 step 1: "variable
// must not appear free in the other side").
func (m *Manager) bindVar(v Var, t Type) error {
	if tv, ok := t.(Var); ok && tv.ID == v.ID {
		return nil
	}
	if occursIn(m, v, t) {
		return &OccursCheckError{Var: v, In: t}
	}
	m.Bind(v, t)
	return nil
}

func occursIn(m *Manager, v Var, t Type) bool {
	t = m.Resolve(t)
	switch typ := t.(type) {
	case Var:
		return typ.ID == v.ID
	case Array:
		return occursIn(m, v, typ.Elem)
	case Map:
		return occursIn(m, v, typ.Key) || occursIn(m, v, typ.Value)
	case Option:
		return occursIn(m, v, typ.Inner)
	case Func:
		for _, p := range typ.Params {
			if occursIn(m, v, p) {
				return true
			}
		}
		return occursIn(m, v, typ.Return)
	case Record:
		for _, f := range typ.Fields {
			if occursIn(m, v, f.Type) {
				return true
			}
		}
	}
	return false
}

// FreeVars returns the free (unbound) type variables of t, resolved
// through m's substitution map. Used by the analyzer's generalization step
// (spec.md §4.4: "Generalization closes over type variables not free in Γ").
func FreeVars(m *Manager, t Type) []Var {
	seen := map[uint64]bool{}
	var out []Var
	var walk func(Type)
	walk = func(t Type) {
		t = m.Resolve(t)
		switch typ := t.(type) {
		case Var:
			if !seen[typ.ID] {
				seen[typ.ID] = true
				out = append(out, typ)
			}
		case Array:
			walk(typ.Elem)
		case Map:
			walk(typ.Key)
			walk(typ.Value)
		case Option:
			walk(typ.Inner)
		case Func:
			for _, p := range typ.Params {
				walk(p)
			}
			walk(typ.Return)
		case Record:
			for _, f := range typ.Fields {
				walk(f.Type)
			}
		}
	}
	walk(t)
	return out
}
