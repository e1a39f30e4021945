package parser

import (
	"strconv"
	"strings"

	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/token"
)

// parseExpression is the Pratt/operator-precedence core (spec.md §4.1).
func (p *Parser) parseExpression(precedence int) ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(p.curToken), "expression nested too deeply")
		p.recoverToBoundary()
		return &ast.BadExpr{}
	}

	left := p.parsePrefix()
	if left == nil {
		return &ast.BadExpr{}
	}

	for {
		p.skipInfixNewlines()
		if precedence >= p.peekPrecedence() {
			break
		}
		next := p.parseInfix(left)
		if next == nil {
			return left
		}
		left = next
	}
	return left
}

// skipInfixNewlines allows a binary/postfix operator to continue on the
// next line, since melbi has no statement terminators to disambiguate.
// Newlines are only swallowed when an operator token genuinely follows;
// otherwise the lookahead is rewound so the caller still sees them.
func (p *Parser) skipInfixNewlines() {
	if !p.peekTokenIs(token.NEWLINE) {
		return
	}
	saved := p.snapshot()
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	if _, ok := precedences[p.peekToken.Type]; !ok {
		p.restore(saved)
	}
}

// parseTopLevelExpression parses a full expression and its optional
// trailing `where { ... }` clause (spec.md §3.2 Where). `where` is not part
// of the Pratt precedence table: it wraps whatever expression was already
// assembled at LOWEST precedence, regardless of that expression's own
// top-level operator, matching spec.md §8 scenario 2
// (`(10 / x) otherwise 0 where { x = 0 }` binds `where` over the whole
// `otherwise` expression, not just its right operand). Lambda bodies and
// match arm bodies are themselves full expressions, so they share this
// entry point rather than the bare Pratt core.
func (p *Parser) parseTopLevelExpression() ast.Expr {
	expr := p.parseExpression(LOWEST)
	p.skipNewlines()
	for p.curTokenIs(token.WHERE) {
		expr = p.parseWhere(expr)
		p.skipNewlines()
	}
	return expr
}

func (p *Parser) parseWhere(body ast.Expr) ast.Expr {
	start := body.Span()
	p.nextToken() // consume 'where'
	if !p.expectAndAdvance(token.LBRACE) {
		return body
	}
	var bindings []ast.Binding
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if !p.expect(token.IDENT) {
			p.recoverToBoundary()
		} else {
			name := p.curToken.Lexeme
			p.nextToken()
			if p.expectAndAdvance(token.ASSIGN) {
				val := p.parseExpression(LOWEST)
				bindings = append(bindings, ast.Binding{Name: name, Value: val})
			} else {
				p.recoverToBoundary()
			}
		}
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	end := spanOf(p.curToken)
	p.expectAndAdvance(token.RBRACE)
	return &ast.Where{ExprBase: ast.ExprBase{Sp: spanFrom(start, end)}, Body: body, Bindings: bindings}
}

// parsePrefix dispatches on the current token to parse a primary
// expression or a prefix-operator application.
func (p *Parser) parsePrefix() ast.Expr {
	switch p.curToken.Type {
	case token.INT:
		return p.parseIntLit()
	case token.FLOAT:
		return p.parseFloatLit()
	case token.TRUE, token.FALSE:
		return p.parseBoolLit()
	case token.STRING:
		return p.parseStrLit()
	case token.FSTRING:
		return p.parseFStringLit()
	case token.BYTES:
		return p.parseBytesLit()
	case token.NONE:
		t := p.curToken
		p.nextToken()
		return &ast.NoneLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}}
	case token.IF:
		return p.parseIf()
	case token.IDENT:
		t := p.curToken
		p.nextToken()
		return &ast.Ident{ExprBase: ast.ExprBase{Sp: spanOf(t)}, Name: t.Lexeme}
	case token.LPAREN:
		if lambda, ok := p.tryParseLambda(); ok {
			return lambda
		}
		return p.parseParenExpr()
	case token.LBRACKET:
		return p.parseArrayLit()
	case token.LBRACE:
		return p.parseMapLit()
	case token.RECORD:
		return p.parseRecordLit()
	case token.MINUS:
		return p.parseUnary(ast.Neg)
	case token.NOT:
		return p.parseUnary(ast.Not)
	case token.SOME:
		return p.parseUnary(ast.SomeWrap)
	default:
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(p.curToken), "unexpected %s %q", p.curToken.Type, p.curToken.Lexeme)
		p.recoverToBoundary()
		return nil
	}
}

func (p *Parser) parseIntLit() ast.Expr {
	t := p.curToken
	p.nextToken()
	lit := strings.ReplaceAll(t.Lexeme, "_", "")
	v, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		p.errorf(diagnostics.CodeInvalidLiteral, spanOf(t), "invalid integer literal %q: %v", t.Lexeme, err)
		return &ast.BadExpr{ExprBase: ast.ExprBase{Sp: spanOf(t)}}
	}
	return &ast.IntLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}, Value: v}
}

func (p *Parser) parseFloatLit() ast.Expr {
	t := p.curToken
	p.nextToken()
	lit := strings.ReplaceAll(t.Lexeme, "_", "")
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.errorf(diagnostics.CodeInvalidLiteral, spanOf(t), "invalid float literal %q: %v", t.Lexeme, err)
		return &ast.BadExpr{ExprBase: ast.ExprBase{Sp: spanOf(t)}}
	}
	return &ast.FloatLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}, Value: v}
}

func (p *Parser) parseBoolLit() ast.Expr {
	t := p.curToken
	p.nextToken()
	return &ast.BoolLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}, Value: t.Type == token.TRUE}
}

func (p *Parser) parseStrLit() ast.Expr {
	t := p.curToken
	p.nextToken()
	return &ast.StrLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}, Value: t.Literal}
}

func (p *Parser) parseBytesLit() ast.Expr {
	t := p.curToken
	p.nextToken()
	return &ast.BytesLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}, Value: []byte(t.Literal)}
}

// parseFStringLit splits an f-string's decoded literal on `{expr}` and
// recursively parses each embedded expression with its own lexer/parser
// (spec.md §4.1: "Format strings embed {expr}").
func (p *Parser) parseFStringLit() ast.Expr {
	t := p.curToken
	p.nextToken()
	parts, err := splitFString(t.Literal)
	if err != nil {
		p.errorf(diagnostics.CodeInvalidLiteral, spanOf(t), "invalid format string: %v", err)
		return &ast.BadExpr{ExprBase: ast.ExprBase{Sp: spanOf(t)}}
	}
	out := &ast.StrLit{ExprBase: ast.ExprBase{Sp: spanOf(t)}}
	for _, part := range parts {
		if part.isExpr {
			sub := New(part.text)
			expr, subDiags := sub.ParseProgram()
			for _, d := range subDiags {
				d.Span.Line = t.Line
				p.diags = append(p.diags, d)
			}
			out.Parts = append(out.Parts, ast.FStringPart{Expr: expr})
		} else {
			out.Parts = append(out.Parts, ast.FStringPart{Text: part.text})
		}
	}
	return out
}

type fstringPart struct {
	text   string
	isExpr bool
}

func splitFString(s string) ([]fstringPart, error) {
	var parts []fstringPart
	var lit strings.Builder
	i := 0
	for i < len(s) {
		switch s[i] {
		case '{':
			if lit.Len() > 0 {
				parts = append(parts, fstringPart{text: lit.String()})
				lit.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(s) && depth > 0 {
				switch s[j] {
				case '{':
					depth++
				case '}':
					depth--
					if depth == 0 {
						continue
					}
				}
				j++
			}
			parts = append(parts, fstringPart{text: s[i+1 : j], isExpr: true})
			i = j + 1
		default:
			lit.WriteByte(s[i])
			i++
		}
	}
	if lit.Len() > 0 {
		parts = append(parts, fstringPart{text: lit.String()})
	}
	return parts, nil
}

// parseIf parses `if cond then thenBranch else elseBranch` (spec.md §3.2).
// Unlike most languages melbi's if is a total expression: else is mandatory.
func (p *Parser) parseIf() ast.Expr {
	start := p.curToken
	p.nextToken() // consume 'if'
	cond := p.parseExpression(LOWEST)
	p.skipNewlines()
	if !p.expectAndAdvance(token.THEN) {
		return &ast.BadExpr{ExprBase: ast.ExprBase{Sp: spanOf(start)}}
	}
	thenBranch := p.parseExpression(LOWEST)
	p.skipNewlines()
	if !p.expectAndAdvance(token.ELSE) {
		return &ast.BadExpr{ExprBase: ast.ExprBase{Sp: spanOf(start)}}
	}
	elseBranch := p.parseExpression(LOWEST)
	return &ast.If{
		ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(start), elseBranch.Span())},
		Cond:     cond,
		Then:     thenBranch,
		Else:     elseBranch,
	}
}

func (p *Parser) parseUnary(op ast.UnOp) ast.Expr {
	start := p.curToken
	p.nextToken()
	inner := p.parseExpression(PREFIX_PREC)
	end := inner.Span()
	return &ast.Unary{ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(start), end)}, Op: op, Inner: inner}
}

// tryParseLambda speculatively parses `(p1: T1, p2, ...) => body`. LPAREN
// starts both a lambda's parameter list and a plain parenthesized group, so
// this attempts the lambda reading and rewinds (including the lexer's scan
// position, via snapshot/restore) if the token shape doesn't match, letting
// the caller fall back to parseParenExpr.
func (p *Parser) tryParseLambda() (ast.Expr, bool) {
	saved := p.snapshot()
	startTok := p.curToken
	p.nextToken() // consume '('
	p.skipNewlines()

	var params []ast.Param
	for !p.curTokenIs(token.RPAREN) {
		if !p.curTokenIs(token.IDENT) {
			p.restore(saved)
			return nil, false
		}
		name := p.curToken.Lexeme
		p.nextToken()
		var typeAnn ast.TypeExpr
		if p.curTokenIs(token.COLON) {
			p.nextToken()
			typeAnn = p.parseTypeExpr()
			if typeAnn == nil {
				p.restore(saved)
				return nil, false
			}
		}
		params = append(params, ast.Param{Name: name, TypeAnnotation: typeAnn})
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
			continue
		}
		break
	}
	if !p.curTokenIs(token.RPAREN) {
		p.restore(saved)
		return nil, false
	}
	p.nextToken() // consume ')'
	if !p.curTokenIs(token.FATARROW) {
		p.restore(saved)
		return nil, false
	}
	p.nextToken() // consume '=>'
	p.skipNewlines()
	body := p.parseTopLevelExpression()
	return &ast.Lambda{
		ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(startTok), body.Span())},
		Params:   params,
		Body:     body,
	}, true
}

func (p *Parser) parseParenExpr() ast.Expr {
	p.nextToken() // consume '('
	p.skipNewlines()
	inner := p.parseExpression(LOWEST)
	p.skipNewlines()
	p.expectAndAdvance(token.RPAREN)
	// Parens are pure grouping: the inner node's own span already carries
	// its precise location, so it is returned unwrapped.
	return inner
}

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.curToken
	p.nextToken()
	var elems []ast.Expr
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACKET) && !p.curTokenIs(token.EOF) {
		elems = append(elems, p.parseExpression(LOWEST))
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	end := spanOf(p.curToken)
	p.expectAndAdvance(token.RBRACKET)
	return &ast.ArrayLit{ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(start), end)}, Elems: elems}
}

func (p *Parser) parseMapLit() ast.Expr {
	start := p.curToken
	p.nextToken()
	var pairs []ast.MapPair
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		key := p.parseExpression(LOWEST)
		if !p.expectAndAdvance(token.COLON) {
			p.recoverToBoundary()
		} else {
			val := p.parseExpression(LOWEST)
			pairs = append(pairs, ast.MapPair{Key: key, Value: val})
		}
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	end := spanOf(p.curToken)
	p.expectAndAdvance(token.RBRACE)
	return &ast.MapLit{ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(start), end)}, Pairs: pairs}
}

func (p *Parser) parseRecordLit() ast.Expr {
	start := p.curToken
	p.nextToken() // consume 'Record'
	if !p.expectAndAdvance(token.LBRACE) {
		return &ast.BadExpr{ExprBase: ast.ExprBase{Sp: spanOf(start)}}
	}
	var fields []ast.RecordField
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if !p.expect(token.IDENT) {
			p.recoverToBoundary()
		} else {
			name := p.curToken.Lexeme
			p.nextToken()
			if p.expectAndAdvance(token.COLON) {
				val := p.parseExpression(LOWEST)
				fields = append(fields, ast.RecordField{Name: name, Value: val})
			} else {
				p.recoverToBoundary()
			}
		}
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	end := spanOf(p.curToken)
	p.expectAndAdvance(token.RBRACE)
	return &ast.RecordLit{ExprBase: ast.ExprBase{Sp: spanFrom(spanOf(start), end)}, Fields: fields}
}
