package ast

import "github.com/melbi-lang/melbi/internal/typesystem"

// EffectSet is the two-flag effect system of spec.md §3.3: whether an
// expression can fail at runtime, and whether it depends on host-provided
// impure state. It is attached to TypedExpr nodes, not to Type itself.
type EffectSet struct {
	CanError bool
	IsImpure bool
}

// Union combines two effect sets (spec.md §4.4.5: "union of its children's
// effects").
func (e EffectSet) Union(o EffectSet) EffectSet {
	return EffectSet{CanError: e.CanError || o.CanError, IsImpure: e.IsImpure || o.IsImpure}
}

// ClearError returns e with CanError forced false, IsImpure preserved —
// exactly the otherwise operator's effect on its own result (spec.md §4.4.1
// and the resolved Open Question in spec.md §9).
func (e EffectSet) ClearError() EffectSet {
	return EffectSet{CanError: false, IsImpure: e.IsImpure}
}

// TypedExpr is the base interface for every typed AST node (spec.md §3.4).
// It mirrors Expr's variants but additionally carries a resolved Type and
// EffectSet.
type TypedExpr interface {
	Span() Span
	Type() typesystem.Type
	Effects() EffectSet
	typedExprNode()
}

type TypedBase struct {
	Sp Span
	Ty typesystem.Type
	Ef EffectSet
}

func (b TypedBase) Span() Span              { return b.Sp }
func (b TypedBase) Type() typesystem.Type   { return b.Ty }
func (b TypedBase) Effects() EffectSet      { return b.Ef }
func (TypedBase) typedExprNode()            {}

type TIntLit struct {
	TypedBase
	Value int64
}

type TFloatLit struct {
	TypedBase
	Value float64
}

type TBoolLit struct {
	TypedBase
	Value bool
}

type TStrLit struct {
	TypedBase
	Value string
	Parts []TFStringPart
}

type TFStringPart struct {
	Text string
	Expr TypedExpr
}

type TBytesLit struct {
	TypedBase
	Value []byte
}

type TNoneLit struct{ TypedBase }

// TIdent is an identifier reference. Subst is non-nil only when the
// identifier resolved a polymorphic scheme; it records the instantiation
// substitution (var id -> Type) per spec.md §3.4 / §9, so the evaluator or
// a future monomorphizing backend can materialize the right instance.
type TIdent struct {
	TypedBase
	Name  string
	Subst map[uint64]typesystem.Type
}

type TArrayLit struct {
	TypedBase
	Elems []TypedExpr
}

type TMapPair struct {
	Key, Value TypedExpr
}

type TMapLit struct {
	TypedBase
	Pairs []TMapPair
}

type TRecordField struct {
	Name  string
	Value TypedExpr
}

type TRecordLit struct {
	TypedBase
	Fields []TRecordField
}

type TBinary struct {
	TypedBase
	Op       BinOp
	Lhs, Rhs TypedExpr
}

type TUnary struct {
	TypedBase
	Op    UnOp
	Inner TypedExpr
}

type TIf struct {
	TypedBase
	Cond, Then, Else TypedExpr
}

type TIndex struct {
	TypedBase
	Container TypedExpr
	Key       TypedExpr
}

type TField struct {
	TypedBase
	Record TypedExpr
	Name   string
}

// CastMode selects the cast's numeric conversion policy (spec.md §4.5:
// "default permissive ... strict mode promised by design doc but not in the
// core MVP"). Only Permissive is reachable from surface syntax today; Strict
// is retained so a future `as strict T` form (or a host flag) has a type to
// target without another breaking change to TCast.
type CastMode int

const (
	CastPermissive CastMode = iota
	CastStrict
)

type TCast struct {
	TypedBase
	Inner TypedExpr
	Mode  CastMode
}

type TCall struct {
	TypedBase
	Callee TypedExpr
	Args   []TypedExpr
}

type TParam struct {
	Name string
	Type typesystem.Type
}

type TLambda struct {
	TypedBase
	Params []TParam
	Body   TypedExpr
}

type TBinding struct {
	Name  string
	Value TypedExpr
}

type TWhere struct {
	TypedBase
	Body     TypedExpr
	Bindings []TBinding
}

type TArm struct {
	Pattern TypedPattern
	Body    TypedExpr
}

type TMatch struct {
	TypedBase
	Scrutinee TypedExpr
	Arms      []TArm
}

type TOtherwise struct {
	TypedBase
	Expr, Fallback TypedExpr
}

// TypedPattern mirrors Pattern with bindings resolved to types (spec.md
// §3.4: "Match stores typed patterns").
type TypedPattern interface {
	Span() Span
	typedPatternNode()
}

type TypedPatternBase struct{ Sp Span }

func (b TypedPatternBase) Span() Span       { return b.Sp }
func (TypedPatternBase) typedPatternNode() {}

type TWildcardPattern struct{ TypedPatternBase }

type TVarPattern struct {
	TypedPatternBase
	Name string
	Type typesystem.Type
}

type TLitPattern struct {
	TypedPatternBase
	Value TypedExpr
}

type TSomePattern struct {
	TypedPatternBase
	Inner TypedPattern
}

type TNonePattern struct{ TypedPatternBase }
