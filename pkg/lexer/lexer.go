// Package lexer tokenizes the annotation and expression snippets embedded in
// declaration files: type expressions (`{ x: number; y?: string }`),
// signatures (`<T>(a: T): T`) and expressions (`typeof x === "string"`).
package lexer

import (
	"strings"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string // The actual text of the token (lexeme)
	Line    int    // 1-based line number where the token starts
	Column  int    // 1-based column number where the token starts
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL" // Unknown token/character
	EOF     TokenType = "EOF"     // End Of File

	// Identifiers + Literals
	IDENT  TokenType = "IDENT"  // functionName, variableName
	NUMBER TokenType = "NUMBER" // 123, 45.67
	BIGINT TokenType = "BIGINT" // 10n
	STRING TokenType = "STRING" // "hello world"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	BANG     TokenType = "!"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	LT       TokenType = "<"
	GT       TokenType = ">"
	EQ       TokenType = "=="
	NOT_EQ   TokenType = "!="
	LE       TokenType = "<="
	GE       TokenType = ">="
	DOT      TokenType = "."
	SPREAD   TokenType = "..."

	// Type Operators
	PIPE TokenType = "|"
	AMP  TokenType = "&"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	ARROW     TokenType = "=>"

	// Keywords
	TRUE      TokenType = "TRUE"
	FALSE     TokenType = "FALSE"
	NULL      TokenType = "NULL"
	UNDEFINED TokenType = "UNDEFINED"
	TYPEOF    TokenType = "TYPEOF"
	NEW       TokenType = "NEW"
	THIS      TokenType = "THIS"
	READONLY  TokenType = "READONLY"
	EXTENDS   TokenType = "EXTENDS"
	AS        TokenType = "AS"

	// Logical Operators
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"
	COALESCE    TokenType = "??"

	// Strict Equality Operators
	STRICT_EQ     TokenType = "==="
	STRICT_NOT_EQ TokenType = "!=="

	QUESTION       TokenType = "?"
	OPTIONAL_CHAIN TokenType = "?."
)

var keywords = map[string]TokenType{
	"true":      TRUE,
	"false":     FALSE,
	"null":      NULL,
	"undefined": UNDEFINED,
	"typeof":    TYPEOF,
	"new":       NEW,
	"this":      THIS,
	"readonly":  READONLY,
	"extends":   EXTENDS,
	"as":        AS,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// operators lists the punctuation tokens, longest first so that the
// scanner prefers "===" over "==" over "=".
var operators = []TokenType{
	SPREAD, STRICT_EQ, STRICT_NOT_EQ,
	ARROW, EQ, NOT_EQ, LE, GE, LOGICAL_AND, LOGICAL_OR, COALESCE, OPTIONAL_CHAIN,
	ASSIGN, PLUS, MINUS, BANG, ASTERISK, SLASH, PERCENT, LT, GT, DOT, PIPE, AMP,
	COMMA, SEMICOLON, COLON, LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET, QUESTION,
}

// Lexer holds the state of the scanner.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input, line: 1}
	l.readChar()
	return l
}

// readChar gives us the next character and advances our position in the input string.
// It also updates the line and column count.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 is ASCII for NUL, signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipWhitespace consumes whitespace characters (space, tab, newline, carriage return).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	tok := Token{Line: l.line, Column: l.column}

	switch {
	case l.ch == 0:
		tok.Type = EOF
		return tok
	case l.ch == '"' || l.ch == '\'':
		literal, ok := l.readString(l.ch)
		if !ok {
			tok.Type, tok.Literal = ILLEGAL, "invalid string literal"
			return tok
		}
		tok.Type, tok.Literal = STRING, literal
		return tok
	case isLetter(l.ch) || l.ch == '$':
		tok.Literal = l.readIdentifier()
		tok.Type = LookupIdent(tok.Literal)
		return tok
	case isDigit(l.ch):
		tok.Literal = l.readNumber()
		tok.Type = NUMBER
		if l.ch == 'n' {
			l.readChar()
			tok.Type = BIGINT
		}
		return tok
	}

	rest := l.input[l.position:]
	for _, op := range operators {
		if strings.HasPrefix(rest, string(op)) {
			// "?." followed by a digit is a conditional with a decimal, not a chain.
			if op == OPTIONAL_CHAIN && len(rest) > 2 && isDigit(rest[2]) {
				continue
			}
			for range len(op) {
				l.readChar()
			}
			tok.Type, tok.Literal = op, string(op)
			return tok
		}
	}

	tok.Type, tok.Literal = ILLEGAL, string(l.ch)
	l.readChar()
	return tok
}

// readIdentifier reads an identifier (letters, digits, _, $) and advances the lexer's position.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '$' {
		l.readChar()
	}
	return l.input[startPos:l.position]
}

// readNumber reads a decimal number literal with an optional fraction,
// exponent and '_' separators. The separators are dropped from the result.
func (l *Lexer) readNumber() string {
	var sb strings.Builder
	digits := func() {
		for isDigit(l.ch) || (l.ch == '_' && isDigit(l.peekChar())) {
			if l.ch != '_' {
				sb.WriteByte(l.ch)
			}
			l.readChar()
		}
	}
	digits()
	if l.ch == '.' && isDigit(l.peekChar()) {
		sb.WriteByte('.')
		l.readChar()
		digits()
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			sb.WriteByte('e')
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				sb.WriteByte(l.ch)
				l.readChar()
			}
			digits()
		}
	}
	return sb.String()
}

// readString reads a string literal enclosed in the given quote character.
// It handles basic escape sequences: \n, \t, \r, \\, and escaped quotes.
// Returns the unescaped string content and a boolean indicating success.
func (l *Lexer) readString(quote byte) (string, bool) {
	var builder strings.Builder
	l.readChar() // opening quote
	for {
		switch l.ch {
		case quote:
			l.readChar()
			return builder.String(), true
		case 0, '\n', '\r':
			return "", false
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			case 'r':
				builder.WriteByte('\r')
			case '\\', '"', '\'':
				builder.WriteByte(l.ch)
			default:
				return "", false
			}
		default:
			builder.WriteByte(l.ch)
		}
		l.readChar()
	}
}

// isLetter checks if the character is a letter or underscore.
func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if the character is a digit.
func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
