package evaluator

import "github.com/melbi-lang/melbi/internal/ast"

// evalIdent looks up a binding's runtime value. Polymorphic identifiers
// (spec.md §4.4.4) carry no runtime representation beyond the single Value
// bound to the name — instantiation only affects the static type, so Eval
// does not need t.Subst at all.
func (e *Evaluator) evalIdent(env *Env, t *ast.TIdent) (Value, error) {
	v, ok := env.Lookup(t.Name)
	if !ok {
		return ErrorTag{Kind: HostError, Message: "internal: unbound identifier " + t.Name + " reached the evaluator"}, nil
	}
	return v, nil
}
