// Package ast defines the untyped syntax tree produced by the parser
// (spec.md §3.2) and the typed syntax tree produced by the analyzer
// (spec.md §3.4). Both trees share node shapes; TypedExpr wraps an Expr with
// a resolved Type and EffectSet rather than duplicating every variant.
package ast

import (
	"github.com/melbi-lang/melbi/internal/diagnostics"
)

// Span is a half-open byte range into the original source text.
type Span = diagnostics.Span

// BinOp enumerates the binary operators of spec.md §3.2.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Pow
	Eq
	NotEq
	Lt
	Gt
	Le
	Ge
	LogAnd
	LogOr
	InOp
	NotInOp
)

func (op BinOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Pow:
		return "^"
	case Eq:
		return "=="
	case NotEq:
		return "!="
	case Lt:
		return "<"
	case Gt:
		return ">"
	case Le:
		return "<="
	case Ge:
		return ">="
	case LogAnd:
		return "and"
	case LogOr:
		return "or"
	case InOp:
		return "in"
	case NotInOp:
		return "not in"
	}
	return "?"
}

// UnOp enumerates the unary/prefix operators of spec.md §3.2.
type UnOp int

const (
	Neg UnOp = iota
	Not
	SomeWrap
)

func (op UnOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "not"
	case SomeWrap:
		return "some"
	}
	return "?"
}

// Expr is the base interface for every untyped AST node.
type Expr interface {
	Span() Span
	exprNode()
}

type ExprBase struct{ Sp Span }

func (b ExprBase) Span() Span { return b.Sp }
func (ExprBase) exprNode()    {}

// BadExpr is a placeholder left by parser error recovery (spec.md §4.1: the
// parser "recovers at statement-shaped boundaries ... to permit multi-error
// reporting"). The analyzer treats a BadExpr as already erroneous and does
// not emit further diagnostics about it, to avoid cascades.
type BadExpr struct{ ExprBase }

// IntLit is an integer literal, e.g. 42, 0x2a, 0b101010, 1_000.
type IntLit struct {
	ExprBase
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	ExprBase
	Value float64
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	ExprBase
	Value bool
}

// StrLit is a string literal (already escape-decoded by the lexer) or an
// f-string; Parts is nil for a plain string and non-nil for an f-string,
// alternating literal text and embedded Expr values.
type StrLit struct {
	ExprBase
	Value string
	Parts []FStringPart // nil unless this came from an f"..." literal
}

// FStringPart is either a literal run of text (Expr == nil) or an embedded
// expression (Text == "").
type FStringPart struct {
	Text string
	Expr Expr
}

// BytesLit is a byte-string literal, e.g. b"\x00\x01".
type BytesLit struct {
	ExprBase
	Value []byte
}

// NoneLit is the nullary `none` literal (Option(fresh) at the type level).
type NoneLit struct{ ExprBase }

// Ident references a binding by name.
type Ident struct {
	ExprBase
	Name string
}

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	ExprBase
	Elems []Expr
}

// MapPair is one `key: value` entry of a MapLit.
type MapPair struct {
	Key, Value Expr
}

// MapLit is `{k1: v1, k2: v2, ...}`.
type MapLit struct {
	ExprBase
	Pairs []MapPair
}

// RecordField is one `name: value` entry of a RecordLit, in source order.
type RecordField struct {
	Name  string
	Value Expr
}

// RecordLit is `Record { name: value, ... }`.
type RecordLit struct {
	ExprBase
	Fields []RecordField
}

// Binary is a binary operator application.
type Binary struct {
	ExprBase
	Op       BinOp
	Lhs, Rhs Expr
}

// Unary is a prefix operator application.
type Unary struct {
	ExprBase
	Op    UnOp
	Inner Expr
}

// If is `if cond then thenBranch else elseBranch`.
type If struct {
	ExprBase
	Cond, Then, Else Expr
}

// Index is `container[key]`.
type Index struct {
	ExprBase
	Container Expr
	Key       Expr
}

// Field is `record.name`.
type Field struct {
	ExprBase
	Record Expr
	Name   string
}

// Cast is `expr as TypeAnnotation`.
type Cast struct {
	ExprBase
	Inner Expr
	Type  TypeExpr
}

// Call is `callee(args...)`.
type Call struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// Param is one lambda parameter; TypeAnnotation is optional (nil when
// omitted — the analyzer infers a fresh type variable for it).
type Param struct {
	Name           string
	TypeAnnotation TypeExpr
}

// Lambda is `(p1, p2, ...) => body`.
type Lambda struct {
	ExprBase
	Params []Param
	Body   Expr
}

// Binding is one `name = expr` entry of a Where clause, in source order.
type Binding struct {
	Name  string
	Value Expr
}

// Where is `body where { n1 = e1, ..., nk = ek }` (spec.md §4.4 scoping).
type Where struct {
	ExprBase
	Body     Expr
	Bindings []Binding
}

// Arm is one `pattern -> body` arm of a Match.
type Arm struct {
	Pattern Pattern
	Body    Expr
}

// Match is `scrutinee match { arm1, arm2, ... }`.
type Match struct {
	ExprBase
	Scrutinee Expr
	Arms      []Arm
}

// Otherwise is `expr otherwise fallback` (spec.md §4.5).
type Otherwise struct {
	ExprBase
	Expr, Fallback Expr
}

// TypeExpr is the surface syntax for a type annotation (Cast target, lambda
// param annotation). It is distinct from typesystem.Type, which is the
// interned, resolved representation the analyzer produces from it.
type TypeExpr interface {
	typeExprNode()
}

type TypeExprBase struct{}

func (TypeExprBase) typeExprNode() {}

type NamedType struct {
	TypeExprBase
	Name string // "Int", "Float", "Bool", "Str", "Bytes"
}

type ArrayType struct {
	TypeExprBase
	Elem TypeExpr
}

type MapType struct {
	TypeExprBase
	Key, Value TypeExpr
}

type OptionType struct {
	TypeExprBase
	Inner TypeExpr
}

type RecordType struct {
	TypeExprBase
	Fields []RecordTypeField
}

type RecordTypeField struct {
	Name string
	Type TypeExpr
}

type FuncType struct {
	TypeExprBase
	Params []TypeExpr
	Return TypeExpr
}
