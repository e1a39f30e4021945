// Package analyzer implements melbi's bidirectional Hindley-Milner type
// inference over the untyped AST (spec.md §4.4), producing a typed AST with
// resolved types and inferred effect sets.
package analyzer

import "github.com/melbi-lang/melbi/internal/typesystem"

// Env is Γ: a chain of lexical scopes mapping name to type scheme. Lookup
// walks outward from the innermost scope; a child scope's bindings shadow
// its parent's, matching melbi's lexical Where/Lambda/Match-arm scoping
// (spec.md §4.4).
type Env struct {
	vars   map[string]typesystem.Scheme
	parent *Env
}

// NewEnv creates a root environment seeded with the host's globals_schema
// (spec.md §6.1).
func NewEnv(globals map[string]typesystem.Scheme) *Env {
	vars := make(map[string]typesystem.Scheme, len(globals))
	for k, v := range globals {
		vars[k] = v
	}
	return &Env{vars: vars}
}

// Child creates a new scope nested under e.
func (e *Env) Child() *Env {
	return &Env{vars: map[string]typesystem.Scheme{}, parent: e}
}

// Define binds name to scheme in this scope.
func (e *Env) Define(name string, s typesystem.Scheme) {
	e.vars[name] = s
}

// Lookup finds name's scheme, searching outward through parent scopes.
func (e *Env) Lookup(name string) (typesystem.Scheme, bool) {
	s, _, ok := e.LookupWithScope(name)
	return s, ok
}

// LookupWithScope is Lookup plus whether the binding was found in the root
// (globals) scope — used to decide whether a global's impure effect-hint
// applies, since a local Where/Lambda binding shadowing a global name is
// never itself impure.
func (e *Env) LookupWithScope(name string) (typesystem.Scheme, bool, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.vars[name]; ok {
			return s, env.parent == nil, true
		}
	}
	return typesystem.Scheme{}, false, false
}

// Flatten merges the whole scope chain into one map (child bindings win),
// for use with typesystem.EnvFreeVars when generalizing a Where binding.
func (e *Env) Flatten() map[string]typesystem.Scheme {
	out := map[string]typesystem.Scheme{}
	var chain []*Env
	for env := e; env != nil; env = env.parent {
		chain = append(chain, env)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].vars {
			out[k] = v
		}
	}
	return out
}
