// Package parser implements melbi's Pratt/operator-precedence parser
// (spec.md §4.1): token stream in, untyped ast.Expr out, with source spans
// and multi-error recovery at delimiter boundaries.
package parser

import (
	"fmt"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/lexer"
	"github.com/melbi-lang/melbi/internal/token"
)

// Precedence levels, lowest to highest, per spec.md §4.1.
const (
	LOWEST = iota
	OTHERWISE_PREC
	OR_PREC
	AND_PREC
	IN_PREC
	COMPARE_PREC
	ADDSUB_PREC
	MULDIV_PREC
	POW_PREC
	PREFIX_PREC
	POSTFIX_PREC
)

var precedences = map[token.Type]int{
	token.OTHERWISE: OTHERWISE_PREC,
	token.OR:        OR_PREC,
	token.AND:       AND_PREC,
	token.IN:        IN_PREC,
	token.NOT:       IN_PREC, // only valid as the start of `not in`
	token.EQ:        COMPARE_PREC,
	token.NOT_EQ:    COMPARE_PREC,
	token.LT:        COMPARE_PREC,
	token.GT:        COMPARE_PREC,
	token.LE:        COMPARE_PREC,
	token.GE:        COMPARE_PREC,
	token.PLUS:      ADDSUB_PREC,
	token.MINUS:     ADDSUB_PREC,
	token.STAR:      MULDIV_PREC,
	token.SLASH:     MULDIV_PREC,
	token.CARET:     POW_PREC,
	token.LPAREN:    POSTFIX_PREC,
	token.LBRACKET:  POSTFIX_PREC,
	token.DOT:       POSTFIX_PREC,
	token.AS:        POSTFIX_PREC,
	token.MATCH:     POSTFIX_PREC,
}

// MaxRecursionDepth guards against pathological/adversarial input
// overflowing the Go call stack while descending the Pratt parser, matching
// the resource-bound spirit of spec.md §5 applied to the compile phase.
const MaxRecursionDepth = 500

// Parser holds a two-token lookahead window over the lexer's token stream
// plus the accumulated diagnostics list.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	diags diagnostics.List
	depth int
}

// New creates a Parser over src.
func New(src string) *Parser {
	p := &Parser{l: lexer.New(src)}
	p.nextToken()
	p.nextToken()
	return p
}

// ParseProgram parses the entire source as a single expression (spec.md
// §1: "A complete program is a single expression") and returns any
// diagnostics gathered along the way (nil when nothing was reported).
func (p *Parser) ParseProgram() (ast.Expr, diagnostics.List) {
	p.skipNewlines()
	if p.curTokenIs(token.EOF) {
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(p.curToken), "empty program: expected an expression")
		return &ast.BadExpr{}, p.diags
	}
	expr := p.parseTopLevelExpression()
	p.skipNewlines()
	if !p.curTokenIs(token.EOF) {
		p.errorf(diagnostics.CodeTrailingContent, spanOf(p.curToken), "unexpected trailing content after the program's expression: %q", p.curToken.Lexeme)
	}
	return expr, p.diags
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) expect(t token.Type) bool {
	p.skipNewlines()
	if p.curTokenIs(t) {
		return true
	}
	p.errorf(diagnostics.CodeUnexpectedToken, spanOf(p.curToken), "expected %s, got %s %q", t, p.curToken.Type, p.curToken.Lexeme)
	return false
}

// expectAndAdvance expects t as the current token, consumes it, and returns
// whether it was present.
func (p *Parser) expectAndAdvance(t token.Type) bool {
	if !p.expect(t) {
		return false
	}
	p.nextToken()
	return true
}

func (p *Parser) errorf(code diagnostics.Code, span ast.Span, format string, args ...interface{}) {
	p.diags = append(p.diags, diagnostics.Diagnostic{
		Severity: diagnostics.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Span:     span,
	})
}

// recoverToBoundary advances past tokens until a likely recovery point
// (spec.md §4.1: "comma, closing bracket") so sibling elements in an array/
// map/record/call/where/match can still be parsed and reported on.
func (p *Parser) recoverToBoundary() {
	for !p.curTokenIs(token.COMMA) &&
		!p.curTokenIs(token.RPAREN) &&
		!p.curTokenIs(token.RBRACKET) &&
		!p.curTokenIs(token.RBRACE) &&
		!p.curTokenIs(token.EOF) {
		p.nextToken()
	}
}

// parserSnapshot captures enough of a Parser's state to restore it exactly,
// including the lexer's scan position — a plain `saved := *p` is not enough
// because p.l is a pointer and NextToken mutates the Lexer value it points
// at, not the Parser struct.
type parserSnapshot struct {
	lexerState lexer.Lexer
	curToken   token.Token
	peekToken  token.Token
	diagsLen   int
}

func (p *Parser) snapshot() parserSnapshot {
	return parserSnapshot{
		lexerState: *p.l,
		curToken:   p.curToken,
		peekToken:  p.peekToken,
		diagsLen:   len(p.diags),
	}
}

func (p *Parser) restore(s parserSnapshot) {
	*p.l = s.lexerState
	p.curToken = s.curToken
	p.peekToken = s.peekToken
	p.diags = p.diags[:s.diagsLen]
}

// spanOf converts a single token into a Span.
func spanOf(t token.Token) ast.Span {
	return ast.Span{Start: t.Start, End: t.End, Line: t.Line, Column: t.Column}
}

// spanFrom builds a Span covering [start.Start, end.End).
func spanFrom(start, end ast.Span) ast.Span {
	return ast.Span{Start: start.Start, End: end.End, Line: start.Line, Column: start.Column}
}
