package melbi

import "github.com/melbi-lang/melbi/internal/ast"

// HoverInfo is the resolved-type lookup the LSP surface needs (spec.md
// §6.1 item 3: "hover(compiled, offset) -> Option<{type, span, doc?}>").
type HoverInfo struct {
	Type   string
	Span   ast.Span
	Effect ast.EffectSet
}

// Hover returns the smallest typed-AST node containing offset, or false if
// offset falls outside the program. HoverInfo carries no doc string — melbi
// programs carry no doc-comment syntax of their own (spec.md §3 data model
// has nothing to attach one to); a host's own globals_schema doc strings
// are the only documentation source, and those live on the identifier's
// binding, not on a use site, so Hover does not attempt to surface them.
func (c *CompiledExpression) Hover(offset int) (HoverInfo, bool) {
	node := smallestNode(c.typed, offset)
	if node == nil {
		return HoverInfo{}, false
	}
	return HoverInfo{Type: node.Type().String(), Span: node.Span(), Effect: node.Effects()}, true
}

// smallestNode returns the innermost TypedExpr whose span contains offset.
func smallestNode(node ast.TypedExpr, offset int) ast.TypedExpr {
	if node == nil {
		return nil
	}
	sp := node.Span()
	if offset < sp.Start || offset > sp.End {
		return nil
	}
	for _, child := range children(node) {
		if found := smallestNode(child, offset); found != nil {
			return found
		}
	}
	return node
}

// children returns node's immediate TypedExpr children, in source order.
// For a match, these are the scrutinee and the arm bodies; arm patterns are
// not included, so they cannot be hovered.
func children(node ast.TypedExpr) []ast.TypedExpr {
	switch t := node.(type) {
	case *ast.TStrLit:
		var out []ast.TypedExpr
		for _, part := range t.Parts {
			if part.Expr != nil {
				out = append(out, part.Expr)
			}
		}
		return out
	case *ast.TArrayLit:
		return t.Elems
	case *ast.TMapLit:
		out := make([]ast.TypedExpr, 0, len(t.Pairs)*2)
		for _, p := range t.Pairs {
			out = append(out, p.Key, p.Value)
		}
		return out
	case *ast.TRecordLit:
		out := make([]ast.TypedExpr, len(t.Fields))
		for i, f := range t.Fields {
			out[i] = f.Value
		}
		return out
	case *ast.TBinary:
		return []ast.TypedExpr{t.Lhs, t.Rhs}
	case *ast.TUnary:
		return []ast.TypedExpr{t.Inner}
	case *ast.TIf:
		return []ast.TypedExpr{t.Cond, t.Then, t.Else}
	case *ast.TIndex:
		return []ast.TypedExpr{t.Container, t.Key}
	case *ast.TField:
		return []ast.TypedExpr{t.Record}
	case *ast.TCast:
		return []ast.TypedExpr{t.Inner}
	case *ast.TCall:
		out := make([]ast.TypedExpr, 0, len(t.Args)+1)
		out = append(out, t.Callee)
		out = append(out, t.Args...)
		return out
	case *ast.TLambda:
		return []ast.TypedExpr{t.Body}
	case *ast.TWhere:
		out := make([]ast.TypedExpr, 0, len(t.Bindings)+1)
		for _, b := range t.Bindings {
			out = append(out, b.Value)
		}
		out = append(out, t.Body)
		return out
	case *ast.TMatch:
		out := make([]ast.TypedExpr, 0, len(t.Arms)+1)
		out = append(out, t.Scrutinee)
		for _, arm := range t.Arms {
			out = append(out, arm.Body)
		}
		return out
	case *ast.TOtherwise:
		return []ast.TypedExpr{t.Expr, t.Fallback}
	default:
		return nil
	}
}
