package typesystem

// Scheme is a polymorphic type `∀ᾱ. τ` stored in the analyzer's
// environment (spec.md §4.4, glossary "Scheme").
type Scheme struct {
	Vars []Var
	Type Type
}

// Mono wraps a monotype as a scheme with no quantified variables, for
// lambda parameters, which are never generalized over (spec.md §4.4
// "Lambda" scoping rule).
func Mono(t Type) Scheme { return Scheme{Type: t} }

// Generalize closes t over the type variables free in t but not free in the
// environment envFree, producing a scheme (spec.md glossary
// "Generalization").
func Generalize(m *Manager, envFree map[uint64]bool, t Type) Scheme {
	free := FreeVars(m, t)
	var quantified []Var
	for _, v := range free {
		if !envFree[v.ID] {
			quantified = append(quantified, v)
		}
	}
	return Scheme{Vars: quantified, Type: t}
}

// Instantiate renames a scheme's quantified variables with fresh unification
// variables (spec.md glossary "Instantiation"), returning the resulting
// monotype and the substitution used (so the analyzer can record it on the
// Ident node per spec.md §3.4 / §9).
func Instantiate(m *Manager, s Scheme) (Type, map[uint64]Type) {
	if len(s.Vars) == 0 {
		return s.Type, nil
	}
	sub := make(map[uint64]Type, len(s.Vars))
	for _, v := range s.Vars {
		sub[v.ID] = m.Fresh()
	}
	return substitute(s.Type, sub), sub
}

// substitute applies a var-id -> Type renaming to t without touching m's
// global substitution map (this is scheme instantiation, not unification).
func substitute(t Type, sub map[uint64]Type) Type {
	switch typ := t.(type) {
	case Var:
		if repl, ok := sub[typ.ID]; ok {
			return repl
		}
		return typ
	case Array:
		return Array{Elem: substitute(typ.Elem, sub)}
	case Map:
		return Map{Key: substitute(typ.Key, sub), Value: substitute(typ.Value, sub)}
	case Option:
		return Option{Inner: substitute(typ.Inner, sub)}
	case Func:
		params := make([]Type, len(typ.Params))
		for i, p := range typ.Params {
			params[i] = substitute(p, sub)
		}
		return Func{Params: params, Return: substitute(typ.Return, sub)}
	case Record:
		fields := make([]RecordField, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = RecordField{Name: f.Name, Type: substitute(f.Type, sub)}
		}
		return Record{Fields: fields, DisplayOrder: typ.DisplayOrder}
	default:
		return t
	}
}

// EnvFreeVars collects the set of variable ids free anywhere in an
// environment's schemes (Generalize's envFree argument), accounting for
// variables already bound by an outer scheme (those are NOT free).
func EnvFreeVars(m *Manager, env map[string]Scheme) map[uint64]bool {
	free := make(map[uint64]bool)
	for _, scheme := range env {
		bound := make(map[uint64]bool, len(scheme.Vars))
		for _, v := range scheme.Vars {
			bound[v.ID] = true
		}
		for _, v := range FreeVars(m, scheme.Type) {
			if !bound[v.ID] {
				free[v.ID] = true
			}
		}
	}
	return free
}
