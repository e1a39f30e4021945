package analyzer

import "github.com/melbi-lang/melbi/internal/ast"

// resolveTree walks a freshly-inferred typed AST and replaces every node's
// Type (and, for TIdent, its instantiation substitution) with its fully
// resolved form (spec.md §9: "a final tree-wide resolution pass converts
// every lingering type variable reference into its concrete binding").
// Variables still free after analysis (e.g. the element type of `[]` or
// the inner type of `none`) are left as Var.
func (a *Analyzer) resolveTree(typed ast.TypedExpr) ast.TypedExpr {
	if typed == nil {
		return nil
	}
	switch t := typed.(type) {
	case *ast.TIntLit, *ast.TFloatLit, *ast.TBoolLit, *ast.TBytesLit, *ast.TNoneLit:
		a.resolveInPlace(typed)
		return typed
	case *ast.TStrLit:
		for i := range t.Parts {
			if t.Parts[i].Expr != nil {
				t.Parts[i].Expr = a.resolveTree(t.Parts[i].Expr)
			}
		}
		a.resolveInPlace(typed)
	case *ast.TIdent:
		if t.Subst != nil {
			for k, v := range t.Subst {
				t.Subst[k], _ = a.mgr.FullyResolve(v)
			}
		}
		a.resolveInPlace(typed)
	case *ast.TArrayLit:
		for i := range t.Elems {
			t.Elems[i] = a.resolveTree(t.Elems[i])
		}
		a.resolveInPlace(typed)
	case *ast.TMapLit:
		for i := range t.Pairs {
			t.Pairs[i].Key = a.resolveTree(t.Pairs[i].Key)
			t.Pairs[i].Value = a.resolveTree(t.Pairs[i].Value)
		}
		a.resolveInPlace(typed)
	case *ast.TRecordLit:
		for i := range t.Fields {
			t.Fields[i].Value = a.resolveTree(t.Fields[i].Value)
		}
		a.resolveInPlace(typed)
	case *ast.TBinary:
		t.Lhs = a.resolveTree(t.Lhs)
		t.Rhs = a.resolveTree(t.Rhs)
		a.resolveInPlace(typed)
	case *ast.TUnary:
		t.Inner = a.resolveTree(t.Inner)
		a.resolveInPlace(typed)
	case *ast.TIf:
		t.Cond = a.resolveTree(t.Cond)
		t.Then = a.resolveTree(t.Then)
		t.Else = a.resolveTree(t.Else)
		a.resolveInPlace(typed)
	case *ast.TIndex:
		t.Container = a.resolveTree(t.Container)
		t.Key = a.resolveTree(t.Key)
		a.resolveInPlace(typed)
	case *ast.TField:
		t.Record = a.resolveTree(t.Record)
		a.resolveInPlace(typed)
	case *ast.TCast:
		t.Inner = a.resolveTree(t.Inner)
		a.resolveInPlace(typed)
	case *ast.TCall:
		t.Callee = a.resolveTree(t.Callee)
		for i := range t.Args {
			t.Args[i] = a.resolveTree(t.Args[i])
		}
		a.resolveInPlace(typed)
	case *ast.TLambda:
		for i := range t.Params {
			t.Params[i].Type, _ = a.mgr.FullyResolve(t.Params[i].Type)
		}
		t.Body = a.resolveTree(t.Body)
		a.resolveInPlace(typed)
	case *ast.TWhere:
		for i := range t.Bindings {
			t.Bindings[i].Value = a.resolveTree(t.Bindings[i].Value)
		}
		t.Body = a.resolveTree(t.Body)
		a.resolveInPlace(typed)
	case *ast.TMatch:
		t.Scrutinee = a.resolveTree(t.Scrutinee)
		for i := range t.Arms {
			t.Arms[i].Pattern = a.resolvePattern(t.Arms[i].Pattern)
			t.Arms[i].Body = a.resolveTree(t.Arms[i].Body)
		}
		a.resolveInPlace(typed)
	case *ast.TOtherwise:
		t.Expr = a.resolveTree(t.Expr)
		t.Fallback = a.resolveTree(t.Fallback)
		a.resolveInPlace(typed)
	}
	return typed
}

// resolveInPlace overwrites typed's Ty field with its fully-resolved form.
// Every TypedExpr variant embeds TypedBase, which is the only place Ty
// lives, so a single type switch back to *TypedBase would require an
// exported setter; instead each concrete type gets its own tiny case here.
func (a *Analyzer) resolveInPlace(typed ast.TypedExpr) {
	switch t := typed.(type) {
	case *ast.TIntLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TFloatLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TBoolLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TBytesLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TNoneLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TStrLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TIdent:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TArrayLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TMapLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TRecordLit:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TBinary:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TUnary:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TIf:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TIndex:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TField:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TCast:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TCall:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TLambda:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TWhere:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TMatch:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	case *ast.TOtherwise:
		t.Ty, _ = a.mgr.FullyResolve(t.Ty)
	}
}

func (a *Analyzer) resolvePattern(pat ast.TypedPattern) ast.TypedPattern {
	switch p := pat.(type) {
	case *ast.TVarPattern:
		p.Type, _ = a.mgr.FullyResolve(p.Type)
		return p
	case *ast.TLitPattern:
		p.Value = a.resolveTree(p.Value)
		return p
	case *ast.TSomePattern:
		p.Inner = a.resolvePattern(p.Inner)
		return p
	default:
		return pat
	}
}
