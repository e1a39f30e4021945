package parser

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/token"
)

// parseInfix consumes one binary or postfix operator with left as its left
// operand (or sole operand for postfix forms) and returns the resulting
// node. Called from parseExpression's Pratt loop once precedence has
// already been checked against peekToken.
func (p *Parser) parseInfix(left ast.Expr) ast.Expr {
	switch p.peekToken.Type {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.CARET,
		token.EQ, token.NOT_EQ, token.LT, token.GT, token.LE, token.GE,
		token.AND, token.OR, token.OTHERWISE:
		return p.parseBinaryOp(left)
	case token.IN:
		return p.parseInOp(left, false)
	case token.NOT:
		return p.parseNotInOp(left)
	case token.LPAREN:
		return p.parseCall(left)
	case token.LBRACKET:
		return p.parseIndex(left)
	case token.DOT:
		return p.parseField(left)
	case token.AS:
		return p.parseCast(left)
	case token.MATCH:
		return p.parseMatch(left)
	default:
		return nil
	}
}

func (p *Parser) parseBinaryOp(left ast.Expr) ast.Expr {
	p.nextToken() // move to operator token
	opTok := p.curToken
	prec := p.peekPrecedenceFor(opTok.Type)

	if opTok.Type == token.OTHERWISE {
		p.nextToken()
		p.skipNewlines()
		rhs := p.parseExpression(prec)
		return &ast.Otherwise{
			ExprBase: ast.ExprBase{Sp: spanFrom(left.Span(), rhs.Span())},
			Expr:     left,
			Fallback: rhs,
		}
	}

	op, ok := binOpFor(opTok.Type)
	if !ok {
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(opTok), "unexpected operator %q", opTok.Lexeme)
		return left
	}
	p.nextToken()
	p.skipNewlines()
	rhs := p.parseExpression(prec)
	return &ast.Binary{
		ExprBase: ast.ExprBase{Sp: spanFrom(left.Span(), rhs.Span())},
		Op:       op,
		Lhs:      left,
		Rhs:      rhs,
	}
}

// parseInOp handles `in` and the lexer's NOT+IN sequence for `not in`.
// melbi's lexer emits NOT and IN as separate tokens (spec.md §3.2 lists
// `not in` as one operator); parseInfix sends `not in` to parseNotInOp, so
// here we only ever see plain `in`.
func (p *Parser) parseInOp(left ast.Expr, negated bool) ast.Expr {
	p.nextToken() // move to 'in'
	prec := p.peekPrecedenceFor(token.IN)
	p.nextToken()
	p.skipNewlines()
	rhs := p.parseExpression(prec)
	op := ast.InOp
	if negated {
		op = ast.NotInOp
	}
	return &ast.Binary{
		ExprBase: ast.ExprBase{Sp: spanFrom(left.Span(), rhs.Span())},
		Op:       op,
		Lhs:      left,
		Rhs:      rhs,
	}
}

// parseNotInOp handles `lhs not in rhs` (spec.md §3.2). The lexer emits NOT
// and IN as two independent keyword tokens; a bare `not` can otherwise only
// appear in prefix position, so seeing it here unambiguously means `not in`.
func (p *Parser) parseNotInOp(left ast.Expr) ast.Expr {
	p.nextToken() // move to 'not'
	notTok := p.curToken
	p.nextToken() // consume 'not'
	if !p.expectAndAdvance(token.IN) {
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(notTok), "expected 'in' after 'not'")
		return left
	}
	p.skipNewlines()
	rhs := p.parseExpression(IN_PREC)
	return &ast.Binary{
		ExprBase: ast.ExprBase{Sp: spanFrom(left.Span(), rhs.Span())},
		Op:       ast.NotInOp,
		Lhs:      left,
		Rhs:      rhs,
	}
}

func (p *Parser) peekPrecedenceFor(t token.Type) int {
	if prec, ok := precedences[t]; ok {
		return prec
	}
	return LOWEST
}

func binOpFor(t token.Type) (ast.BinOp, bool) {
	switch t {
	case token.PLUS:
		return ast.Add, true
	case token.MINUS:
		return ast.Sub, true
	case token.STAR:
		return ast.Mul, true
	case token.SLASH:
		return ast.Div, true
	case token.CARET:
		return ast.Pow, true
	case token.EQ:
		return ast.Eq, true
	case token.NOT_EQ:
		return ast.NotEq, true
	case token.LT:
		return ast.Lt, true
	case token.GT:
		return ast.Gt, true
	case token.LE:
		return ast.Le, true
	case token.GE:
		return ast.Ge, true
	case token.AND:
		return ast.LogAnd, true
	case token.OR:
		return ast.LogOr, true
	default:
		return 0, false
	}
}

func (p *Parser) parseCall(callee ast.Expr) ast.Expr {
	p.nextToken() // move to '('
	p.nextToken() // consume '('
	var args []ast.Expr
	p.skipNewlines()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		args = append(args, p.parseExpression(LOWEST))
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	end := spanOf(p.curToken)
	p.expectAndAdvance(token.RPAREN)
	return &ast.Call{
		ExprBase: ast.ExprBase{Sp: spanFrom(callee.Span(), end)},
		Callee:   callee,
		Args:     args,
	}
}

func (p *Parser) parseIndex(container ast.Expr) ast.Expr {
	p.nextToken() // move to '['
	p.nextToken() // consume '['
	key := p.parseExpression(LOWEST)
	end := spanOf(p.curToken)
	p.expectAndAdvance(token.RBRACKET)
	return &ast.Index{
		ExprBase:  ast.ExprBase{Sp: spanFrom(container.Span(), end)},
		Container: container,
		Key:       key,
	}
}

func (p *Parser) parseField(record ast.Expr) ast.Expr {
	p.nextToken() // move to '.'
	p.nextToken() // consume '.'
	if !p.expect(token.IDENT) {
		p.recoverToBoundary()
		return record
	}
	name := p.curToken.Lexeme
	end := spanOf(p.curToken)
	p.nextToken()
	return &ast.Field{
		ExprBase: ast.ExprBase{Sp: spanFrom(record.Span(), end)},
		Record:   record,
		Name:     name,
	}
}

func (p *Parser) parseCast(inner ast.Expr) ast.Expr {
	p.nextToken() // move to 'as'
	p.nextToken() // consume 'as'
	ty := p.parseTypeExpr()
	sp := inner.Span()
	if ty != nil {
		sp = spanFrom(inner.Span(), spanOf(p.curToken))
	}
	return &ast.Cast{
		ExprBase: ast.ExprBase{Sp: sp},
		Inner:    inner,
		Type:     ty,
	}
}

func (p *Parser) parseMatch(scrutinee ast.Expr) ast.Expr {
	p.nextToken() // move to 'match'
	p.nextToken() // consume 'match'
	if !p.expectAndAdvance(token.LBRACE) {
		return scrutinee
	}
	var arms []ast.Arm
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		pat := p.parsePattern()
		if !p.expectAndAdvance(token.ARROW) {
			p.recoverToBoundary()
		} else {
			body := p.parseTopLevelExpression()
			arms = append(arms, ast.Arm{Pattern: pat, Body: body})
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
	return &ast.Match{
		ExprBase:  ast.ExprBase{Sp: spanFrom(scrutinee.Span(), end)},
		Scrutinee: scrutinee,
		Arms:      arms,
	}
}
