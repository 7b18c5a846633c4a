package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextToken(t *testing.T) {
	input := `<T extends string = "a">(x: T, ...rest: number[]): T | null
typeof x === 'number' && x?.y !== 1_000n`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
		expectedLine    int
	}{
		{LT, "<", 1},
		{IDENT, "T", 1},
		{EXTENDS, "extends", 1},
		{IDENT, "string", 1},
		{ASSIGN, "=", 1},
		{STRING, "a", 1},
		{GT, ">", 1},
		{LPAREN, "(", 1},
		{IDENT, "x", 1},
		{COLON, ":", 1},
		{IDENT, "T", 1},
		{COMMA, ",", 1},
		{SPREAD, "...", 1},
		{IDENT, "rest", 1},
		{COLON, ":", 1},
		{IDENT, "number", 1},
		{LBRACKET, "[", 1},
		{RBRACKET, "]", 1},
		{RPAREN, ")", 1},
		{COLON, ":", 1},
		{IDENT, "T", 1},
		{PIPE, "|", 1},
		{NULL, "null", 1},
		{TYPEOF, "typeof", 2},
		{IDENT, "x", 2},
		{STRICT_EQ, "===", 2},
		{STRING, "number", 2},
		{LOGICAL_AND, "&&", 2},
		{IDENT, "x", 2},
		{OPTIONAL_CHAIN, "?.", 2},
		{IDENT, "y", 2},
		{STRICT_NOT_EQ, "!==", 2},
		{BIGINT, "1000", 2},
		{EOF, "", 2},
	}

	l := NewLexer(input)
	for i, tt := range tests {
		tok := l.NextToken()
		assert.Equal(t, tt.expectedType, tok.Type, "token %d", i)
		assert.Equal(t, tt.expectedLiteral, tok.Literal, "token %d", i)
		assert.Equal(t, tt.expectedLine, tok.Line, "token %d", i)
	}
}

func TestTokenColumns(t *testing.T) {
	l := NewLexer("a  =>\n  1.5e3")
	tok := l.NextToken()
	assert.Equal(t, 1, tok.Column)
	tok = l.NextToken()
	assert.Equal(t, ARROW, tok.Type)
	assert.Equal(t, 4, tok.Column)
	tok = l.NextToken()
	assert.Equal(t, NUMBER, tok.Type)
	assert.Equal(t, "1.5e3", tok.Literal)
	assert.Equal(t, 2, tok.Line)
	assert.Equal(t, 3, tok.Column)
}

func TestIllegalInput(t *testing.T) {
	l := NewLexer(`"unterminated`)
	assert.Equal(t, ILLEGAL, l.NextToken().Type)

	l = NewLexer("#")
	tok := l.NextToken()
	assert.Equal(t, ILLEGAL, tok.Type)
	assert.Equal(t, "#", tok.Literal)
}
