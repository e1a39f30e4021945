package typesystem

import "fmt"

// Manager is the type arena (spec.md §4.2): it mints fresh type variables,
// interns structurally-equal composite type descriptors to a single
// identity, and owns the substitution map the unifier writes into.
//
// A Manager is created per compilation unit and must outlive every typed
// AST that references types it produced (spec.md §3.6).
type Manager struct {
	nextVar uint64
	subst   map[uint64]Type
	intern  map[string]Type
}

// NewManager creates an empty type arena.
func NewManager() *Manager {
	return &Manager{
		subst:  make(map[uint64]Type),
		intern: make(map[string]Type),
	}
}

// Fresh mints a new, unbound type variable.
func (m *Manager) Fresh() Var {
	m.nextVar++
	return Var{ID: m.nextVar}
}

// Intern returns a canonical instance for a structural type descriptor:
// repeated calls with structurally-equal composite types return the same
// Go value (by identity, for pointer-comparable use) where feasible.
// Primitives are already singletons and pass through unchanged.
func (m *Manager) Intern(t Type) Type {
	switch t.(type) {
	case intType, floatType, boolType, strType, bytesType, Var:
		return t
	}
	key := t.String()
	if existing, ok := m.intern[key]; ok {
		return existing
	}
	m.intern[key] = t
	return t
}

// Bind records that Var v resolves to t. Callers (the unifier) must have
// already performed the occurs check.
func (m *Manager) Bind(v Var, t Type) {
	m.subst[v.ID] = t
}

// Resolve follows variable bindings one level at a time until it reaches an
// unbound variable or a non-variable type (lazy path compression: it
// shortens the chain it walks so future lookups are O(1)).
func (m *Manager) Resolve(t Type) Type {
	v, ok := t.(Var)
	if !ok {
		return t
	}
	bound, ok := m.subst[v.ID]
	if !ok {
		return v
	}
	resolved := m.Resolve(bound)
	if resolved != bound {
		m.subst[v.ID] = resolved // path compression
	}
	return resolved
}

// FullyResolve recursively resolves t into a concrete tree, substituting
// every bound variable transitively. Free (unbound) variables are left as
// Var. It performs no cycle check of its own and never returns an error in
// practice: bindings made through Unify are kept acyclic by its occurs
// check (spec.md §4.2).
func (m *Manager) FullyResolve(t Type) (Type, error) {
	return m.fullyResolve(t, make(map[uint64]bool))
}

func (m *Manager) fullyResolve(t Type, visiting map[uint64]bool) (Type, error) {
	t = m.Resolve(t)
	switch typ := t.(type) {
	case Var:
		return typ, nil
	case Array:
		elem, err := m.fullyResolve(typ.Elem, visiting)
		if err != nil {
			return nil, err
		}
		return m.Intern(Array{Elem: elem}), nil
	case Map:
		k, err := m.fullyResolve(typ.Key, visiting)
		if err != nil {
			return nil, err
		}
		v, err := m.fullyResolve(typ.Value, visiting)
		if err != nil {
			return nil, err
		}
		return m.Intern(Map{Key: k, Value: v}), nil
	case Option:
		inner, err := m.fullyResolve(typ.Inner, visiting)
		if err != nil {
			return nil, err
		}
		return m.Intern(Option{Inner: inner}), nil
	case Record:
		fields := make([]RecordField, len(typ.Fields))
		for i, f := range typ.Fields {
			ft, err := m.fullyResolve(f.Type, visiting)
			if err != nil {
				return nil, err
			}
			fields[i] = RecordField{Name: f.Name, Type: ft}
		}
		return m.Intern(Record{Fields: fields, DisplayOrder: typ.DisplayOrder}), nil
	case Func:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			pt, err := m.fullyResolve(p, visiting)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := m.fullyResolve(typ.Return, visiting)
		if err != nil {
			return nil, err
		}
		return m.Intern(Func{Params: params, Return: ret}), nil
	default:
		return t, nil
	}
}

// OccursCheckError reports that binding a variable would create an infinite
// type. Unify returns it when the occurs check fails (spec.md §4.2).
type OccursCheckError struct {
	Var Var
	In  Type
}

func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.In)
}
