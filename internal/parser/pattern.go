package parser

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/token"
)

// parsePattern parses one Match arm's pattern (spec.md §3.2):
//
//	Pattern := "_"
//	         | Ident
//	         | IntLit | FloatLit | BoolLit | StrLit | BytesLit
//	         | "some" Pattern
//	         | "none"
func (p *Parser) parsePattern() ast.Pattern {
	switch p.curToken.Type {
	case token.IDENT:
		t := p.curToken
		p.nextToken()
		if t.Lexeme == "_" {
			return &ast.WildcardPattern{PatternBase: ast.PatternBase{Sp: spanOf(t)}}
		}
		return &ast.VarPattern{PatternBase: ast.PatternBase{Sp: spanOf(t)}, Name: t.Lexeme}
	case token.NONE:
		t := p.curToken
		p.nextToken()
		return &ast.NonePattern{PatternBase: ast.PatternBase{Sp: spanOf(t)}}
	case token.SOME:
		start := p.curToken
		p.nextToken()
		inner := p.parsePattern()
		return &ast.SomePattern{PatternBase: ast.PatternBase{Sp: spanFrom(spanOf(start), inner.Span())}, Inner: inner}
	case token.INT, token.FLOAT, token.TRUE, token.FALSE, token.STRING, token.BYTES:
		lit := p.parsePrefix()
		if lit == nil {
			return &ast.BadPattern{}
		}
		return &ast.LitPattern{PatternBase: ast.PatternBase{Sp: lit.Span()}, Value: lit}
	case token.MINUS:
		// Negative numeric literal pattern, e.g. `-1 -> ...`.
		start := p.curToken
		p.nextToken()
		lit := p.parsePrefix()
		if lit == nil {
			return &ast.BadPattern{}
		}
		neg := &ast.Unary{ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(start), lit.Span())}, Op: ast.Neg, Inner: lit}
		return &ast.LitPattern{PatternBase: ast.PatternBase{Sp: neg.Span()}, Value: neg}
	default:
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(p.curToken), "expected a pattern, got %s %q", p.curToken.Type, p.curToken.Lexeme)
		p.recoverToBoundary()
		return &ast.BadPattern{PatternBase: ast.PatternBase{Sp: spanOf(p.curToken)}}
	}
}
