package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melbi-lang/melbi/internal/token"
)

func allTokens(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestNextTokenArithmetic(t *testing.T) {
	toks := allTokens("1 + 2 * 3")
	require.Len(t, toks, 6) // INT PLUS INT STAR INT EOF
	assert.Equal(t, token.INT, toks[0].Type)
	assert.Equal(t, "1", toks[0].Lexeme)
	assert.Equal(t, token.PLUS, toks[1].Type)
	assert.Equal(t, token.STAR, toks[3].Type)
	assert.Equal(t, token.EOF, toks[5].Type)
}

func TestNextTokenStringLiteral(t *testing.T) {
	toks := allTokens(`"hello\nworld"`)
	require.GreaterOrEqual(t, len(toks), 1)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "hello\nworld", toks[0].Literal)
}

func TestNextTokenFormatString(t *testing.T) {
	toks := allTokens(`f"hi {name}"`)
	assert.Equal(t, token.FSTRING, toks[0].Type)
}

func TestNextTokenBytesLiteral(t *testing.T) {
	toks := allTokens(`b"ab"`)
	assert.Equal(t, token.BYTES, toks[0].Type)
}

func TestNextTokenDelimitersAndOperators(t *testing.T) {
	toks := allTokens("[1, 2] == {1: 2} -> => !")
	kinds := make([]token.Type, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Type)
	}
	assert.Contains(t, kinds, token.LBRACKET)
	assert.Contains(t, kinds, token.RBRACKET)
	assert.Contains(t, kinds, token.EQ)
	assert.Contains(t, kinds, token.LBRACE)
	assert.Contains(t, kinds, token.ARROW)
	assert.Contains(t, kinds, token.FATARROW)
	assert.Contains(t, kinds, token.ILLEGAL)
}

func TestNextTokenLineAndColumnTracking(t *testing.T) {
	toks := allTokens("1\n  2")
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, 1, toks[0].Line)

	var second *token.Token
	for i := range toks {
		if toks[i].Type == token.INT && toks[i].Lexeme == "2" {
			second = &toks[i]
		}
	}
	require.NotNil(t, second)
	assert.Equal(t, 2, second.Line)
}
