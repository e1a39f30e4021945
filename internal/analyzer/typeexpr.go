package analyzer

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// resolveTypeExpr converts the parser's surface TypeExpr into a concrete
// typesystem.Type, interning composites through a.mgr (spec.md §4.2).
func (a *Analyzer) resolveTypeExpr(te ast.TypeExpr) typesystem.Type {
	switch t := te.(type) {
	case nil:
		return a.mgr.Fresh()
	case *ast.NamedType:
		switch t.Name {
		case "Int":
			return typesystem.Int
		case "Float":
			return typesystem.Float
		case "Bool":
			return typesystem.Bool
		case "Str":
			return typesystem.Str
		case "Bytes":
			return typesystem.Bytes
		default:
			return a.mgr.Fresh()
		}
	case *ast.ArrayType:
		return a.mgr.Intern(typesystem.Array{Elem: a.resolveTypeExpr(t.Elem)})
	case *ast.MapType:
		return a.mgr.Intern(typesystem.Map{Key: a.resolveTypeExpr(t.Key), Value: a.resolveTypeExpr(t.Value)})
	case *ast.OptionType:
		return a.mgr.Intern(typesystem.Option{Inner: a.resolveTypeExpr(t.Inner)})
	case *ast.RecordType:
		fields := make([]typesystem.RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = typesystem.RecordField{Name: f.Name, Type: a.resolveTypeExpr(f.Type)}
		}
		return a.mgr.Intern(typesystem.NewRecord(fields))
	case *ast.FuncType:
		params := make([]typesystem.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolveTypeExpr(p)
		}
		ret := a.resolveTypeExpr(t.Return)
		return a.mgr.Intern(typesystem.Func{Params: params, Return: ret})
	default:
		return a.mgr.Fresh()
	}
}
