package parser

import (
	"github.com/melbi-lang/melbi/internal/ast"
	"github.com/melbi-lang/melbi/internal/diagnostics"
	"github.com/melbi-lang/melbi/internal/token"
)

// parseTypeExpr parses the surface syntax for a type annotation, used after
// `as` (spec.md §3.2 Cast). Grammar:
//
//	TypeExpr := Ident ( "[" TypeExpr ("," TypeExpr)* "]" )?
//	          | "Record" "{" (Ident ":" TypeExpr ("," Ident ":" TypeExpr)*)? "}"
//	          | "(" (TypeExpr ("," TypeExpr)*)? ")" "->" TypeExpr
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.curToken.Type {
	case token.RECORD:
		return p.parseRecordTypeExpr()
	case token.LPAREN:
		return p.parseFuncTypeExpr()
	case token.IDENT:
		name := p.curToken.Lexeme
		p.nextToken()
		switch name {
		case "Array":
			if !p.expectAndAdvance(token.LBRACKET) {
				return nil
			}
			elem := p.parseTypeExpr()
			if !p.expectAndAdvance(token.RBRACKET) {
				return nil
			}
			return &ast.ArrayType{Elem: elem}
		case "Map":
			if !p.expectAndAdvance(token.LBRACKET) {
				return nil
			}
			key := p.parseTypeExpr()
			if !p.expectAndAdvance(token.COMMA) {
				return nil
			}
			val := p.parseTypeExpr()
			if !p.expectAndAdvance(token.RBRACKET) {
				return nil
			}
			return &ast.MapType{Key: key, Value: val}
		case "Option":
			if !p.expectAndAdvance(token.LBRACKET) {
				return nil
			}
			inner := p.parseTypeExpr()
			if !p.expectAndAdvance(token.RBRACKET) {
				return nil
			}
			return &ast.OptionType{Inner: inner}
		default:
			return &ast.NamedType{Name: name}
		}
	default:
		p.errorf(diagnostics.CodeUnexpectedToken, spanOf(p.curToken), "expected a type, got %s %q", p.curToken.Type, p.curToken.Lexeme)
		p.recoverToBoundary()
		return nil
	}
}

func (p *Parser) parseRecordTypeExpr() ast.TypeExpr {
	p.nextToken() // consume 'Record'
	if !p.expectAndAdvance(token.LBRACE) {
		return nil
	}
	var fields []ast.RecordTypeField
	p.skipNewlines()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if !p.expect(token.IDENT) {
			p.recoverToBoundary()
			break
		}
		name := p.curToken.Lexeme
		p.nextToken()
		if !p.expectAndAdvance(token.COLON) {
			break
		}
		ft := p.parseTypeExpr()
		fields = append(fields, ast.RecordTypeField{Name: name, Type: ft})
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	p.expectAndAdvance(token.RBRACE)
	return &ast.RecordType{Fields: fields}
}

func (p *Parser) parseFuncTypeExpr() ast.TypeExpr {
	p.nextToken() // consume '('
	var params []ast.TypeExpr
	p.skipNewlines()
	for !p.curTokenIs(token.RPAREN) && !p.curTokenIs(token.EOF) {
		params = append(params, p.parseTypeExpr())
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else {
			break
		}
	}
	p.expectAndAdvance(token.RPAREN)
	if !p.expectAndAdvance(token.ARROW) {
		return &ast.FuncType{Params: params}
	}
	ret := p.parseTypeExpr()
	return &ast.FuncType{Params: params, Return: ret}
}
