package analyzer

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/typesystem"
)

// infer is the heart of the analyzer: bidirectional HM inference over one
// Expr node (spec.md §4.4), dispatching by concrete AST type.
func (a *Analyzer) infer(env *Env, expr ast.Expr) ast.TypedExpr {
	switch e := expr.(type) {
	case *ast.BadExpr:
		return &ast.TIdent{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Fresh()}, Name: "<error>"}
	case *ast.IntLit:
		return &ast.TIntLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: typesystem.Int}, Value: e.Value}
	case *ast.FloatLit:
		return &ast.TFloatLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: typesystem.Float}, Value: e.Value}
	case *ast.BoolLit:
		return &ast.TBoolLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: typesystem.Bool}, Value: e.Value}
	case *ast.StrLit:
		return a.inferStrLit(env, e)
	case *ast.BytesLit:
		return &ast.TBytesLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: typesystem.Bytes}, Value: e.Value}
	case *ast.NoneLit:
		return &ast.TNoneLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Intern(typesystem.Option{Inner: a.mgr.Fresh()})}}
	case *ast.Ident:
		return a.inferIdent(env, e)
	case *ast.ArrayLit:
		return a.inferArrayLit(env, e)
	case *ast.MapLit:
		return a.inferMapLit(env, e)
	case *ast.RecordLit:
		return a.inferRecordLit(env, e)
	case *ast.Binary:
		return a.inferBinary(env, e)
	case *ast.Unary:
		return a.inferUnary(env, e)
	case *ast.If:
		return a.inferIf(env, e)
	case *ast.Index:
		return a.inferIndex(env, e)
	case *ast.Field:
		return a.inferField(env, e)
	case *ast.Cast:
		return a.inferCast(env, e)
	case *ast.Call:
		return a.inferCall(env, e)
	case *ast.Lambda:
		return a.inferLambda(env, e)
	case *ast.Where:
		return a.inferWhere(env, e)
	case *ast.Match:
		return a.inferMatch(env, e)
	case *ast.Otherwise:
		return a.inferOtherwise(env, e)
	default:
		a.errorf(diagnostics.CodeTypeMismatch, expr.Span(), "internal: unhandled expression kind %T", expr)
		return &ast.TIdent{TypedBase: ast.TypedBase{Sp: expr.Span(), Ty: a.mgr.Fresh()}, Name: "<error>"}
	}
}

func (a *Analyzer) inferStrLit(env *Env, e *ast.StrLit) ast.TypedExpr {
	if e.Parts == nil {
		return &ast.TStrLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: typesystem.Str}, Value: e.Value}
	}
	var eff ast.EffectSet
	parts := make([]ast.TFStringPart, len(e.Parts))
	for i, part := range e.Parts {
		if part.Expr == nil {
			parts[i] = ast.TFStringPart{Text: part.Text}
			continue
		}
		typed := a.infer(env, part.Expr)
		eff = eff.Union(typed.Effects())
		parts[i] = ast.TFStringPart{Expr: typed}
	}
	return &ast.TStrLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: typesystem.Str, Ef: eff}, Parts: parts}
}

// inferIdent resolves a name to its scheme, instantiates it (spec.md
// §4.4.4), and marks is_impure when the binding is a host global declared
// impure (spec.md §4.4.5).
func (a *Analyzer) inferIdent(env *Env, e *ast.Ident) ast.TypedExpr {
	scheme, isGlobal, ok := env.LookupWithScope(e.Name)
	if !ok {
		a.errorf(diagnostics.CodeUndefinedVariable, e.Span(), "undefined variable %q", e.Name)
		return &ast.TIdent{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Fresh()}, Name: e.Name}
	}
	ty, sub := typesystem.Instantiate(a.mgr, scheme)
	var eff ast.EffectSet
	if isGlobal && a.impure[e.Name] {
		eff.IsImpure = true
	}
	return &ast.TIdent{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: ty, Ef: eff}, Name: e.Name, Subst: sub}
}

func (a *Analyzer) inferArrayLit(env *Env, e *ast.ArrayLit) ast.TypedExpr {
	if len(e.Elems) == 0 {
		elem := a.mgr.Fresh()
		return &ast.TArrayLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Intern(typesystem.Array{Elem: elem})}}
	}
	elems := make([]ast.TypedExpr, len(e.Elems))
	var eff ast.EffectSet
	elems[0] = a.infer(env, e.Elems[0])
	elemTy := elems[0].Type()
	eff = eff.Union(elems[0].Effects())
	for i := 1; i < len(e.Elems); i++ {
		elems[i] = a.infer(env, e.Elems[i])
		eff = eff.Union(elems[i].Effects())
		elemTy = a.unify(e.Elems[i].Span(), elemTy, elems[i].Type())
	}
	return &ast.TArrayLit{
		TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Intern(typesystem.Array{Elem: elemTy}), Ef: eff},
		Elems:     elems,
	}
}

func (a *Analyzer) inferMapLit(env *Env, e *ast.MapLit) ast.TypedExpr {
	if len(e.Pairs) == 0 {
		k, v := a.mgr.Fresh(), a.mgr.Fresh()
		return &ast.TMapLit{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Intern(typesystem.Map{Key: k, Value: v})}}
	}
	pairs := make([]ast.TMapPair, len(e.Pairs))
	var eff ast.EffectSet
	firstKey := a.infer(env, e.Pairs[0].Key)
	firstVal := a.infer(env, e.Pairs[0].Value)
	keyTy, valTy := firstKey.Type(), firstVal.Type()
	eff = eff.Union(firstKey.Effects()).Union(firstVal.Effects())
	pairs[0] = ast.TMapPair{Key: firstKey, Value: firstVal}
	for i := 1; i < len(e.Pairs); i++ {
		k := a.infer(env, e.Pairs[i].Key)
		v := a.infer(env, e.Pairs[i].Value)
		eff = eff.Union(k.Effects()).Union(v.Effects())
		keyTy = a.unify(e.Pairs[i].Key.Span(), keyTy, k.Type())
		valTy = a.unify(e.Pairs[i].Value.Span(), valTy, v.Type())
		pairs[i] = ast.TMapPair{Key: k, Value: v}
	}
	return &ast.TMapLit{
		TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Intern(typesystem.Map{Key: keyTy, Value: valTy}), Ef: eff},
		Pairs:     pairs,
	}
}

func (a *Analyzer) inferRecordLit(env *Env, e *ast.RecordLit) ast.TypedExpr {
	fields := make([]ast.TRecordField, len(e.Fields))
	typeFields := make([]typesystem.RecordField, len(e.Fields))
	var eff ast.EffectSet
	for i, f := range e.Fields {
		val := a.infer(env, f.Value)
		eff = eff.Union(val.Effects())
		fields[i] = ast.TRecordField{Name: f.Name, Value: val}
		typeFields[i] = typesystem.RecordField{Name: f.Name, Type: val.Type()}
	}
	return &ast.TRecordLit{
		TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Intern(typesystem.NewRecord(typeFields)), Ef: eff},
		Fields:    fields,
	}
}

func (a *Analyzer) inferIf(env *Env, e *ast.If) ast.TypedExpr {
	cond := a.infer(env, e.Cond)
	a.unify(e.Cond.Span(), cond.Type(), typesystem.Bool)
	then := a.infer(env, e.Then)
	els := a.infer(env, e.Else)
	resultTy := a.unify(e.Span(), then.Type(), els.Type())
	eff := cond.Effects().Union(then.Effects()).Union(els.Effects())
	return &ast.TIf{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: resultTy, Ef: eff}, Cond: cond, Then: then, Else: els}
}

func (a *Analyzer) inferOtherwise(env *Env, e *ast.Otherwise) ast.TypedExpr {
	primary := a.infer(env, e.Expr)
	fallback := a.infer(env, e.Fallback)
	resultTy := a.unify(e.Span(), primary.Type(), fallback.Type())
	eff := primary.Effects().Union(fallback.Effects()).ClearError()
	return &ast.TOtherwise{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: resultTy, Ef: eff}, Expr: primary, Fallback: fallback}
}

func (a *Analyzer) inferIndex(env *Env, e *ast.Index) ast.TypedExpr {
	container := a.infer(env, e.Container)
	key := a.infer(env, e.Key)
	eff := container.Effects().Union(key.Effects())
	eff.CanError = true

	containerTy := a.mgr.Resolve(container.Type())
	var resultTy typesystem.Type
	switch ct := containerTy.(type) {
	case typesystem.Array:
		a.unify(e.Key.Span(), key.Type(), typesystem.Int)
		resultTy = ct.Elem
	case typesystem.Map:
		a.unify(e.Key.Span(), key.Type(), ct.Key)
		resultTy = ct.Value
	case typesystem.Var:
		// Container type not yet resolved; assume Array indexing, the more
		// common surface form, and let a later mismatch surface normally.
		elem := a.mgr.Fresh()
		a.unify(e.Container.Span(), containerTy, a.mgr.Intern(typesystem.Array{Elem: elem}))
		a.unify(e.Key.Span(), key.Type(), typesystem.Int)
		resultTy = elem
	default:
		a.errorf(diagnostics.CodeTypeMismatch, e.Container.Span(), "cannot index into %s", containerTy)
		resultTy = a.mgr.Fresh()
	}
	return &ast.TIndex{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: resultTy, Ef: eff}, Container: container, Key: key}
}

func (a *Analyzer) inferField(env *Env, e *ast.Field) ast.TypedExpr {
	record := a.infer(env, e.Record)
	recTy := a.mgr.Resolve(record.Type())
	rec, ok := recTy.(typesystem.Record)
	if !ok {
		a.errorf(diagnostics.CodeTypeMismatch, e.Record.Span(), "expected a record, found %s", recTy)
		return &ast.TField{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Fresh(), Ef: record.Effects()}, Record: record, Name: e.Name}
	}
	fieldTy, ok := rec.FieldByName(e.Name)
	if !ok {
		a.errorf(diagnostics.CodeUnknownField, e.Span(), "record has no field %q", e.Name)
		fieldTy = a.mgr.Fresh()
	}
	return &ast.TField{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: fieldTy, Ef: record.Effects()}, Record: record, Name: e.Name}
}

func (a *Analyzer) inferCast(env *Env, e *ast.Cast) ast.TypedExpr {
	inner := a.infer(env, e.Inner)
	target := a.resolveTypeExpr(e.Type)
	srcTy := a.mgr.Resolve(inner.Type())
	dstTy := a.mgr.Resolve(target)

	eff := inner.Effects()
	if !castAllowed(srcTy, dstTy) {
		a.errorf(diagnostics.CodeTypeMismatch, e.Span(), "unsupported cast from %s to %s", srcTy, dstTy)
	}
	if isBytes(srcTy) && isStr(dstTy) {
		eff.CanError = true
	}
	return &ast.TCast{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: target, Ef: eff}, Inner: inner, Mode: ast.CastPermissive}
}

func castAllowed(src, dst typesystem.Type) bool {
	if sameType(src, dst) {
		return true
	}
	if _, ok := src.(typesystem.Var); ok {
		return true
	}
	if _, ok := dst.(typesystem.Var); ok {
		return true
	}
	switch {
	case isNumericT(src) && isNumericT(dst):
		return true
	case isBytes(src) && isStr(dst):
		return true
	case isStr(src) && isBytes(dst):
		return true
	}
	return false
}

func isNumericT(t typesystem.Type) bool { return typesystem.IsNumeric(t) }
func isBytes(t typesystem.Type) bool    { return t == typesystem.Bytes }
func isStr(t typesystem.Type) bool      { return t == typesystem.Str }

func sameType(a, b typesystem.Type) bool { return a.String() == b.String() }

func (a *Analyzer) inferCall(env *Env, e *ast.Call) ast.TypedExpr {
	callee := a.infer(env, e.Callee)
	args := make([]ast.TypedExpr, len(e.Args))
	eff := callee.Effects()
	for i, argExpr := range e.Args {
		args[i] = a.infer(env, argExpr)
		eff = eff.Union(args[i].Effects())
	}

	calleeTy := a.mgr.Resolve(callee.Type())
	fn, ok := calleeTy.(typesystem.Func)
	if !ok {
		if v, isVar := calleeTy.(typesystem.Var); isVar {
			params := make([]typesystem.Type, len(args))
			for i, arg := range args {
				params[i] = arg.Type()
			}
			ret := a.mgr.Fresh()
			a.mgr.Bind(v, typesystem.Func{Params: params, Return: ret})
			return &ast.TCall{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: ret, Ef: eff}, Callee: callee, Args: args}
		}
		a.errorf(diagnostics.CodeTypeMismatch, e.Callee.Span(), "cannot call non-function type %s", calleeTy)
		return &ast.TCall{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: a.mgr.Fresh(), Ef: eff}, Callee: callee, Args: args}
	}
	if len(fn.Params) != len(args) {
		a.errorf(diagnostics.CodeArityMismatch, e.Span(), "expected %d argument(s), found %d", len(fn.Params), len(args))
	} else {
		for i, arg := range args {
			a.unify(e.Args[i].Span(), arg.Type(), fn.Params[i])
		}
	}
	return &ast.TCall{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: fn.Return, Ef: eff}, Callee: callee, Args: args}
}

// inferLambda allocates a fresh variable per parameter and infers the body
// without generalizing over them (spec.md §4.4 "Lambda" scoping rule).
// Constructing a closure is pure: the body's effects manifest only when the
// closure is later called, not at the point the lambda value is created.
func (a *Analyzer) inferLambda(env *Env, e *ast.Lambda) ast.TypedExpr {
	child := env.Child()
	params := make([]ast.TParam, len(e.Params))
	for i, p := range e.Params {
		pty := a.mgr.Fresh()
		if p.TypeAnnotation != nil {
			annotated := a.resolveTypeExpr(p.TypeAnnotation)
			a.unify(e.Span(), pty, annotated)
		}
		child.Define(p.Name, typesystem.Mono(pty))
		params[i] = ast.TParam{Name: p.Name, Type: pty}
	}
	body := a.infer(child, e.Body)
	paramTypes := make([]typesystem.Type, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}
	fnTy := a.mgr.Intern(typesystem.Func{Params: paramTypes, Return: body.Type()})
	return &ast.TLambda{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: fnTy}, Params: params, Body: body}
}

// inferBinary types a binary operator application per operator category
// (spec.md §4.4.1). Int `/` is the one arithmetic form that can fail at
// runtime (division by zero, spec.md §4.4.5), so it alone sets CanError.
func (a *Analyzer) inferBinary(env *Env, e *ast.Binary) ast.TypedExpr {
	lhs := a.infer(env, e.Lhs)
	rhs := a.infer(env, e.Rhs)
	eff := lhs.Effects().Union(rhs.Effects())

	var resultTy typesystem.Type
	switch e.Op {
	case ast.Add:
		resultTy = a.inferAdd(e, lhs, rhs)
	case ast.Sub, ast.Mul, ast.Pow:
		resultTy = a.inferArith(e, lhs, rhs)
	case ast.Div:
		resultTy = a.inferArith(e, lhs, rhs)
		if sameType(a.mgr.Resolve(resultTy), typesystem.Int) {
			eff.CanError = true
		}
	case ast.Eq, ast.NotEq:
		a.unify(e.Span(), lhs.Type(), rhs.Type())
		resultTy = typesystem.Bool
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		resultTy = a.inferCompare(e, lhs, rhs)
	case ast.LogAnd, ast.LogOr:
		a.unify(e.Lhs.Span(), lhs.Type(), typesystem.Bool)
		a.unify(e.Rhs.Span(), rhs.Type(), typesystem.Bool)
		resultTy = typesystem.Bool
	case ast.InOp, ast.NotInOp:
		resultTy = a.inferMembership(e, lhs, rhs)
	default:
		a.errorf(diagnostics.CodeTypeMismatch, e.Span(), "internal: unhandled operator %s", e.Op)
		resultTy = a.mgr.Fresh()
	}
	return &ast.TBinary{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: resultTy, Ef: eff}, Op: e.Op, Lhs: lhs, Rhs: rhs}
}

// inferAdd allows numeric addition plus Str/Bytes concatenation (spec.md
// §4.4.1: "+ additionally overloaded for Str and Bytes concatenation").
func (a *Analyzer) inferAdd(e *ast.Binary, lhs, rhs ast.TypedExpr) typesystem.Type {
	lt := a.mgr.Resolve(lhs.Type())
	if isStr(lt) || isBytes(lt) {
		a.unify(e.Span(), lhs.Type(), rhs.Type())
		return lt
	}
	return a.inferArith(e, lhs, rhs)
}

func (a *Analyzer) inferArith(e *ast.Binary, lhs, rhs ast.TypedExpr) typesystem.Type {
	ty := a.unify(e.Span(), lhs.Type(), rhs.Type())
	resolved := a.mgr.Resolve(ty)
	if _, isVar := resolved.(typesystem.Var); !isVar && !isNumericT(resolved) {
		a.errorf(diagnostics.CodeTypeMismatch, e.Span(), "operator %s requires numeric operands, found %s", e.Op, resolved)
	}
	return ty
}

func (a *Analyzer) inferCompare(e *ast.Binary, lhs, rhs ast.TypedExpr) typesystem.Type {
	ty := a.unify(e.Span(), lhs.Type(), rhs.Type())
	resolved := a.mgr.Resolve(ty)
	if _, isVar := resolved.(typesystem.Var); !isVar && !typesystem.IsOrdered(resolved) {
		a.errorf(diagnostics.CodeTypeMismatch, e.Span(), "operator %s requires an ordered type, found %s", e.Op, resolved)
	}
	return typesystem.Bool
}

// inferMembership types `in`/`not in` against an Array, Map, or Str right
// operand (spec.md §4.4.1: `Str in Str` is a substring test).
func (a *Analyzer) inferMembership(e *ast.Binary, lhs, rhs ast.TypedExpr) typesystem.Type {
	rt := a.mgr.Resolve(rhs.Type())
	if isStr(rt) {
		a.unify(e.Lhs.Span(), lhs.Type(), typesystem.Str)
		return typesystem.Bool
	}
	switch c := rt.(type) {
	case typesystem.Array:
		a.unify(e.Lhs.Span(), lhs.Type(), c.Elem)
	case typesystem.Map:
		a.unify(e.Lhs.Span(), lhs.Type(), c.Key)
	case typesystem.Var:
		elem := a.mgr.Fresh()
		a.unify(e.Rhs.Span(), rt, a.mgr.Intern(typesystem.Array{Elem: elem}))
		a.unify(e.Lhs.Span(), lhs.Type(), elem)
	default:
		a.errorf(diagnostics.CodeTypeMismatch, e.Rhs.Span(), "%s requires an Array, Map, or Str, found %s", e.Op, rt)
	}
	return typesystem.Bool
}

func (a *Analyzer) inferUnary(env *Env, e *ast.Unary) ast.TypedExpr {
	inner := a.infer(env, e.Inner)
	var resultTy typesystem.Type
	switch e.Op {
	case ast.Neg:
		resolved := a.mgr.Resolve(inner.Type())
		if _, isVar := resolved.(typesystem.Var); !isVar && !isNumericT(resolved) {
			a.errorf(diagnostics.CodeTypeMismatch, e.Span(), "unary - requires a numeric operand, found %s", resolved)
		}
		resultTy = inner.Type()
	case ast.Not:
		a.unify(e.Inner.Span(), inner.Type(), typesystem.Bool)
		resultTy = typesystem.Bool
	case ast.SomeWrap:
		resultTy = a.mgr.Intern(typesystem.Option{Inner: inner.Type()})
	default:
		a.errorf(diagnostics.CodeTypeMismatch, e.Span(), "internal: unhandled unary operator %s", e.Op)
		resultTy = a.mgr.Fresh()
	}
	return &ast.TUnary{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: resultTy, Ef: inner.Effects()}, Op: e.Op, Inner: inner}
}

// inferMatch types the scrutinee, checks every arm's pattern against it
// (binding pattern variables into a child scope), unifies all arm bodies to
// a common result type, and runs exhaustiveness/reachability analysis
// (spec.md §4.4.3).
func (a *Analyzer) inferMatch(env *Env, e *ast.Match) ast.TypedExpr {
	scrutinee := a.infer(env, e.Scrutinee)
	eff := scrutinee.Effects()

	arms := make([]ast.TArm, len(e.Arms))
	var resultTy typesystem.Type
	for i, arm := range e.Arms {
		child := env.Child()
		pat := a.checkPattern(child, arm.Pattern, scrutinee.Type())
		body := a.infer(child, arm.Body)
		eff = eff.Union(body.Effects())
		if resultTy == nil {
			resultTy = body.Type()
		} else {
			resultTy = a.unify(arm.Body.Span(), resultTy, body.Type())
		}
		arms[i] = ast.TArm{Pattern: pat, Body: body}
	}
	if resultTy == nil {
		resultTy = a.mgr.Fresh()
	}
	a.checkExhaustiveness(e, scrutinee.Type())
	return &ast.TMatch{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: resultTy, Ef: eff}, Scrutinee: scrutinee, Arms: arms}
}

// inferWhere analyzes each binding in order against Γ extended with only the
// prior bindings, rejecting self- and mutual recursion by construction
// (spec.md §4.4 "Where" scoping rule, §8 scenario 6). Each binding's result
// is generalized over variables free in it but not in the pre-binding Γ,
// then added as a polymorphic scheme before the next binding is analyzed.
func (a *Analyzer) inferWhere(env *Env, e *ast.Where) ast.TypedExpr {
	child := env.Child()
	bindings := make([]ast.TBinding, len(e.Bindings))
	var eff ast.EffectSet
	for i, b := range e.Bindings {
		envFree := typesystem.EnvFreeVars(a.mgr, child.Flatten())
		val := a.infer(child, b.Value)
		eff = eff.Union(val.Effects())
		scheme := typesystem.Generalize(a.mgr, envFree, val.Type())
		child.Define(b.Name, scheme)
		bindings[i] = ast.TBinding{Name: b.Name, Value: val}
	}
	body := a.infer(child, e.Body)
	eff = eff.Union(body.Effects())
	return &ast.TWhere{TypedBase: ast.TypedBase{Sp: e.Span(), Ty: body.Type(), Ef: eff}, Body: body, Bindings: bindings}
}
