package loader

import (
	"fmt"
	"strconv"

	"structcheck/pkg/ast"
	"structcheck/pkg/lexer"
	"structcheck/pkg/source"
)

// --- Precedence ---
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	COALESCE    // ??
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	EQUALS      // ==, !=, ===, !==
	LESSGREATER // >, <, >=, <=
	SUM         // + or -
	PRODUCT     // * or / or %
	PREFIX      // -X or !X or typeof X
	ASSERTION   // value as Type
	CALL        // myFunction(X)
	MEMBER      // object.property, array[index]
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:         ASSIGNMENT,
	lexer.COALESCE:       COALESCE,
	lexer.LOGICAL_OR:     LOGICAL_OR,
	lexer.LOGICAL_AND:    LOGICAL_AND,
	lexer.EQ:             EQUALS,
	lexer.NOT_EQ:         EQUALS,
	lexer.STRICT_EQ:      EQUALS,
	lexer.STRICT_NOT_EQ:  EQUALS,
	lexer.LT:             LESSGREATER,
	lexer.GT:             LESSGREATER,
	lexer.LE:             LESSGREATER,
	lexer.GE:             LESSGREATER,
	lexer.PLUS:           SUM,
	lexer.MINUS:          SUM,
	lexer.ASTERISK:       PRODUCT,
	lexer.SLASH:          PRODUCT,
	lexer.PERCENT:        PRODUCT,
	lexer.AS:             ASSERTION,
	lexer.LPAREN:         CALL,
	lexer.DOT:            MEMBER,
	lexer.OPTIONAL_CHAIN: MEMBER,
	lexer.LBRACKET:       MEMBER,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser parses one snippet: a type, an expression, a signature or an
// object member. The snippet is tokenized up front so the parser can look
// ahead past parenthesized lists to tell arrow functions from groupings.
type Parser struct {
	tokens []lexer.Token
	pos    int
	base   source.Position
	errors []error

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// NewParser creates a parser for text whose first character sits at base.
func NewParser(text string, base source.Position) *Parser {
	l := lexer.NewLexer(text)
	p := &Parser{base: base}
	for {
		tok := l.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Type == lexer.EOF {
			break
		}
	}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:     p.parseIdentifier,
		lexer.NUMBER:    p.parseNumberLiteral,
		lexer.BIGINT:    p.parseBigIntLiteral,
		lexer.STRING:    p.parseStringLiteral,
		lexer.TRUE:      p.parseBooleanLiteral,
		lexer.FALSE:     p.parseBooleanLiteral,
		lexer.NULL:      p.parseNullLiteral,
		lexer.UNDEFINED: p.parseUndefinedLiteral,
		lexer.THIS:      p.parseThis,
		lexer.BANG:      p.parsePrefixExpression,
		lexer.MINUS:     p.parsePrefixExpression,
		lexer.TYPEOF:    p.parseTypeofExpression,
		lexer.LPAREN:    p.parseGroupedOrArrow,
		lexer.LT:        p.parseGenericArrow,
		lexer.LBRACKET:  p.parseArrayLiteral,
		lexer.LBRACE:    p.parseObjectLiteral,
		lexer.NEW:       p.parseNewExpression,
	}
	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, op := range []lexer.TokenType{
		lexer.COALESCE, lexer.LOGICAL_OR, lexer.LOGICAL_AND,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE,
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH, lexer.PERCENT,
	} {
		p.infixParseFns[op] = p.parseInfixExpression
	}
	p.infixParseFns[lexer.ASSIGN] = p.parseAssignment
	p.infixParseFns[lexer.AS] = p.parseTypeAssertion
	p.infixParseFns[lexer.LPAREN] = p.parseCallExpression
	p.infixParseFns[lexer.DOT] = p.parseMemberExpression
	p.infixParseFns[lexer.OPTIONAL_CHAIN] = p.parseMemberExpression
	p.infixParseFns[lexer.LBRACKET] = p.parseIndexExpression
	return p
}

// Errors returns the syntax errors collected so far.
func (p *Parser) Errors() []error {
	return p.errors
}

// --- Token helpers ---

func (p *Parser) cur() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) peek() lexer.Token { return p.peekAt(1) }

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.cur().Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peek().Type == t }

// expectPeek advances when the next token has type t and records an error
// otherwise.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peek().Type]; ok {
		return prec
	}
	return LOWEST
}

// span converts a token position to a position in the declaration file.
func (p *Parser) span(tok lexer.Token) ast.Span {
	pos := p.base
	if tok.Line == 1 {
		pos.Column = p.base.Column + tok.Column - 1
	} else {
		pos.Line = p.base.Line + tok.Line - 1
		pos.Column = tok.Column
	}
	return ast.Span{Position: pos}
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...any) {
	p.errors = append(p.errors, &SyntaxError{Position: p.span(tok).Position, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) peekError(t lexer.TokenType) {
	tok := p.peek()
	p.errorf(tok, "expected next token to be %s, got %s instead", t, describe(tok))
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s (%q)", tok.Type, tok.Literal)
}

// expectEnd records an error unless the whole snippet was consumed.
func (p *Parser) expectEnd() {
	if !p.peekTokenIs(lexer.EOF) {
		p.errorf(p.peek(), "unexpected %s", describe(p.peek()))
	}
}

// closingParenFollowedBy reports whether the parenthesized list opening at
// the current token is followed by one of the given tokens.
func (p *Parser) closingParenFollowedBy(ts ...lexer.TokenType) bool {
	depth := 0
	for i := p.pos; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				if i+1 >= len(p.tokens) {
					return false
				}
				next := p.tokens[i+1].Type
				for _, t := range ts {
					if next == t {
						return true
					}
				}
				return false
			}
		case lexer.EOF:
			return false
		}
	}
	return false
}

// isPropertyName reports whether tok can name a property. Keywords are
// valid property names.
func isPropertyName(tok lexer.Token) bool {
	switch tok.Type {
	case lexer.IDENT, lexer.STRING, lexer.NUMBER, lexer.TRUE, lexer.FALSE, lexer.NULL,
		lexer.UNDEFINED, lexer.TYPEOF, lexer.NEW, lexer.THIS, lexer.READONLY, lexer.EXTENDS, lexer.AS:
		return true
	}
	return false
}

// --- Expressions ---

// ParseExpression parses a complete expression snippet.
func (p *Parser) ParseExpression() ast.Expression {
	expr := p.parseExpression(LOWEST)
	p.expectEnd()
	return expr
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.cur().Type]
	if prefix == nil {
		p.errorf(p.cur(), "no prefix parse function for %s found", describe(p.cur()))
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peek().Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.cur()
	if p.peekTokenIs(lexer.ARROW) {
		param := &ast.Parameter{Span: p.span(tok), Name: tok.Literal}
		p.nextToken()
		return p.parseArrowBody(&ast.FunctionLiteral{Span: p.span(tok), Params: []*ast.Parameter{param}})
	}
	return &ast.Identifier{Span: p.span(tok), Value: tok.Literal}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.cur()
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(tok, "could not parse %q as number", tok.Literal)
		return nil
	}
	return &ast.NumberLiteral{Span: p.span(tok), Value: value}
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	return &ast.BigIntLiteral{Span: p.span(p.cur()), Digits: p.cur().Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Span: p.span(p.cur()), Value: p.cur().Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Span: p.span(p.cur()), Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	return &ast.NullLiteral{Span: p.span(p.cur())}
}

func (p *Parser) parseUndefinedLiteral() ast.Expression {
	return &ast.UndefinedLiteral{Span: p.span(p.cur())}
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.ThisExpression{Span: p.span(p.cur())}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.cur()
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.PrefixExpression{Span: p.span(tok), Operator: tok.Literal, Right: right}
}

func (p *Parser) parseTypeofExpression() ast.Expression {
	tok := p.cur()
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	if operand == nil {
		return nil
	}
	return &ast.TypeofExpression{Span: p.span(tok), Operand: operand}
}

func (p *Parser) parseGroupedOrArrow() ast.Expression {
	if p.closingParenFollowedBy(lexer.ARROW, lexer.COLON) {
		fn := &ast.FunctionLiteral{Span: p.span(p.cur())}
		fn.Params, fn.Rest, _ = p.parseParameterList()
		return p.parseArrowSignatureTail(fn)
	}
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

// parseGenericArrow parses <T>(x: T) => x.
func (p *Parser) parseGenericArrow() ast.Expression {
	fn := &ast.FunctionLiteral{Span: p.span(p.cur())}
	fn.TypeParams = p.parseTypeParameters()
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fn.Params, fn.Rest, _ = p.parseParameterList()
	return p.parseArrowSignatureTail(fn)
}

// parseArrowSignatureTail parses the optional return annotation and the
// arrow of a function literal whose parameter list ends at the current ')'.
func (p *Parser) parseArrowSignatureTail(fn *ast.FunctionLiteral) ast.Expression {
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
	}
	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	return p.parseArrowBody(fn)
}

// parseArrowBody parses the expression after '=>' (the current token).
func (p *Parser) parseArrowBody(fn *ast.FunctionLiteral) ast.Expression {
	if p.peekTokenIs(lexer.LBRACE) {
		p.errorf(p.peek(), "block-bodied function literals are declared with a body list, not inline")
		return nil
	}
	p.nextToken()
	fn.ExpressionBody = p.parseExpression(ASSIGNMENT - 1)
	if fn.ExpressionBody == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Span: p.span(p.cur())}
	arr.Elements = p.parseExpressionList(lexer.RBRACKET)
	return arr
}

// parseExpressionList parses comma-separated expressions up to end. The
// current token is the opening delimiter.
func (p *Parser) parseExpressionList(end lexer.TokenType) []ast.Expression {
	list := []ast.Expression{}
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	list = append(list, p.parseExpression(LOWEST))
	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{Span: p.span(p.cur())}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		keyTok := p.cur()
		if !isPropertyName(keyTok) {
			p.errorf(keyTok, "expected property name, got %s", describe(keyTok))
			return nil
		}
		prop := &ast.ObjectProperty{Span: p.span(keyTok), Key: keyTok.Literal}
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			prop.Value = p.parseExpression(LOWEST)
		} else if keyTok.Type == lexer.IDENT {
			prop.Value = &ast.Identifier{Span: p.span(keyTok), Value: keyTok.Literal}
		} else {
			p.peekError(lexer.COLON)
			return nil
		}
		if prop.Value == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)
		if !p.peekTokenIs(lexer.RBRACE) && !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
	p.nextToken()
	return obj
}

func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.NewExpression{Span: p.span(p.cur())}
	p.nextToken()
	expr.Callee = p.parseExpression(CALL)
	if expr.Callee == nil {
		return nil
	}
	if p.peekTokenIs(lexer.LT) {
		p.nextToken()
		expr.TypeArguments = p.parseTypeArgumentList()
	}
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		expr.Arguments = p.parseExpressionList(lexer.RPAREN)
	}
	return expr
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	if tok.Type == lexer.LT {
		if call := p.tryGenericCall(left); call != nil {
			return call
		}
	}
	precedence := precedences[tok.Type]
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.InfixExpression{Span: p.span(tok), Left: left, Operator: tok.Literal, Right: right}
}

// tryGenericCall attempts to read `<TypeArgs>(args)` after left. On failure
// the parser is rewound and nil returned, so the '<' is a comparison.
func (p *Parser) tryGenericCall(left ast.Expression) ast.Expression {
	start, errs := p.pos, len(p.errors)
	args := p.parseTypeArgumentList()
	if len(p.errors) == errs && args != nil && p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		call := &ast.CallExpression{Span: ast.Span{Position: left.Pos()}, Callee: left, TypeArguments: args}
		call.Arguments = p.parseExpressionList(lexer.RPAREN)
		return call
	}
	p.pos, p.errors = start, p.errors[:errs]
	return nil
}

func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.nextToken()
	// Right-associative.
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}
	return &ast.AssignmentExpression{Span: p.span(tok), Target: left, Value: value}
}

func (p *Parser) parseTypeAssertion(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.nextToken()
	typ := p.parseType()
	if typ == nil {
		return nil
	}
	return &ast.TypeAssertionExpression{Span: p.span(tok), Expression: left, Type: typ}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	call := &ast.CallExpression{Span: ast.Span{Position: callee.Pos()}, Callee: callee}
	call.Arguments = p.parseExpressionList(lexer.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	optional := p.curTokenIs(lexer.OPTIONAL_CHAIN)
	p.nextToken()
	if !isPropertyName(p.cur()) || p.curTokenIs(lexer.STRING) || p.curTokenIs(lexer.NUMBER) {
		p.errorf(p.cur(), "expected property name after '.', got %s", describe(p.cur()))
		return nil
	}
	return &ast.MemberExpression{Span: p.span(p.cur()), Object: object, Property: p.cur().Literal, Optional: optional}
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.cur()
	p.nextToken()
	index := p.parseExpression(LOWEST)
	if index == nil || !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return &ast.IndexExpression{Span: p.span(tok), Left: left, Index: index}
}

// --- Types ---

// ParseType parses a complete type snippet.
func (p *Parser) ParseType() ast.TypeNode {
	typ := p.parseType()
	p.expectEnd()
	return typ
}

func (p *Parser) parseType() ast.TypeNode {
	if p.curTokenIs(lexer.LT) || (p.curTokenIs(lexer.LPAREN) && p.closingParenFollowedBy(lexer.ARROW)) {
		return p.parseFunctionType()
	}
	start := p.cur()
	if p.curTokenIs(lexer.PIPE) {
		p.nextToken()
	}
	first := p.parseIntersectionType()
	if first == nil {
		return nil
	}
	if !p.peekTokenIs(lexer.PIPE) {
		return first
	}
	union := &ast.UnionTypeExpression{Span: p.span(start), Types: []ast.TypeNode{first}}
	for p.peekTokenIs(lexer.PIPE) {
		p.nextToken()
		p.nextToken()
		member := p.parseIntersectionType()
		if member == nil {
			return nil
		}
		union.Types = append(union.Types, member)
	}
	return union
}

func (p *Parser) parseIntersectionType() ast.TypeNode {
	start := p.cur()
	first := p.parsePostfixType()
	if first == nil || !p.peekTokenIs(lexer.AMP) {
		return first
	}
	inter := &ast.IntersectionTypeExpression{Span: p.span(start), Types: []ast.TypeNode{first}}
	for p.peekTokenIs(lexer.AMP) {
		p.nextToken()
		p.nextToken()
		member := p.parsePostfixType()
		if member == nil {
			return nil
		}
		inter.Types = append(inter.Types, member)
	}
	return inter
}

func (p *Parser) parsePostfixType() ast.TypeNode {
	start := p.cur()
	if p.curTokenIs(lexer.READONLY) {
		p.nextToken()
		switch inner := p.parsePostfixType().(type) {
		case *ast.ArrayTypeExpression:
			inner.Readonly = true
			return inner
		case *ast.TupleTypeExpression:
			inner.Readonly = true
			return inner
		case nil:
			return nil
		default:
			p.errorf(start, "'readonly' type modifier is only permitted on array and tuple types")
			return nil
		}
	}
	typ := p.parsePrimaryType()
	for typ != nil && p.peekTokenIs(lexer.LBRACKET) && p.peekAt(2).Type == lexer.RBRACKET {
		p.nextToken()
		p.nextToken()
		typ = &ast.ArrayTypeExpression{Span: p.span(start), ElementType: typ}
	}
	return typ
}

func (p *Parser) parsePrimaryType() ast.TypeNode {
	tok := p.cur()
	switch tok.Type {
	case lexer.IDENT:
		ref := &ast.TypeReference{Span: p.span(tok), Name: tok.Literal}
		for p.peekTokenIs(lexer.DOT) && p.peekAt(2).Type == lexer.IDENT {
			p.nextToken()
			p.nextToken()
			ref.Name += "." + p.cur().Literal
		}
		if p.peekTokenIs(lexer.LT) {
			p.nextToken()
			ref.TypeArguments = p.parseTypeArgumentList()
			if ref.TypeArguments == nil {
				return nil
			}
		}
		return ref
	case lexer.NULL, lexer.UNDEFINED:
		return &ast.TypeReference{Span: p.span(tok), Name: tok.Literal}
	case lexer.STRING:
		return &ast.LiteralTypeExpression{Span: p.span(tok), Value: tok.Literal}
	case lexer.TRUE, lexer.FALSE:
		return &ast.LiteralTypeExpression{Span: p.span(tok), Value: tok.Type == lexer.TRUE}
	case lexer.BIGINT:
		return &ast.LiteralTypeExpression{Span: p.span(tok), BigInt: tok.Literal}
	case lexer.NUMBER, lexer.MINUS:
		sign := 1.0
		if tok.Type == lexer.MINUS {
			if !p.expectPeek(lexer.NUMBER) {
				return nil
			}
			sign = -1
		}
		value, err := strconv.ParseFloat(p.cur().Literal, 64)
		if err != nil {
			p.errorf(p.cur(), "could not parse %q as number", p.cur().Literal)
			return nil
		}
		return &ast.LiteralTypeExpression{Span: p.span(tok), Value: sign * value}
	case lexer.LBRACE:
		return p.parseObjectType()
	case lexer.LBRACKET:
		return p.parseTupleType()
	case lexer.LPAREN:
		p.nextToken()
		inner := p.parseType()
		if inner == nil || !p.expectPeek(lexer.RPAREN) {
			return nil
		}
		return inner
	}
	p.errorf(tok, "expected a type, got %s", describe(tok))
	return nil
}

// parseTypeArgumentList parses <A, B>. The current token is '<'.
func (p *Parser) parseTypeArgumentList() []ast.TypeNode {
	var args []ast.TypeNode
	for {
		p.nextToken()
		arg := p.parseType()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.GT) {
		return nil
	}
	return args
}

func (p *Parser) parseTupleType() ast.TypeNode {
	tuple := &ast.TupleTypeExpression{Span: p.span(p.cur())}
	for !p.peekTokenIs(lexer.RBRACKET) {
		p.nextToken()
		if tuple.Rest != nil {
			p.errorf(p.cur(), "a rest element must be last in a tuple type")
			return nil
		}
		if p.curTokenIs(lexer.SPREAD) {
			p.nextToken()
			restTok := p.cur()
			rest := p.parseType()
			arr, ok := rest.(*ast.ArrayTypeExpression)
			if !ok {
				if rest != nil {
					p.errorf(restTok, "a rest element type must be an array type")
				}
				return nil
			}
			tuple.Rest = arr.ElementType
		} else {
			elem := &ast.TupleElement{Type: p.parseType()}
			if elem.Type == nil {
				return nil
			}
			if p.peekTokenIs(lexer.QUESTION) {
				p.nextToken()
				elem.Optional = true
			}
			tuple.Elements = append(tuple.Elements, elem)
		}
		if !p.peekTokenIs(lexer.RBRACKET) && !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
	p.nextToken()
	return tuple
}

func (p *Parser) parseObjectType() ast.TypeNode {
	obj := &ast.ObjectTypeExpression{Span: p.span(p.cur())}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		if !p.parseObjectMember(obj) {
			return nil
		}
		if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
		} else if !p.peekTokenIs(lexer.RBRACE) {
			p.peekError(lexer.SEMICOLON)
			return nil
		}
	}
	p.nextToken()
	return obj
}

// ParseObjectMember parses a single interface member snippet into obj.
func (p *Parser) ParseObjectMember(obj *ast.ObjectTypeExpression) {
	if p.parseObjectMember(obj) {
		p.expectEnd()
	}
}

// parseObjectMember parses a property, an index signature or a call
// signature starting at the current token.
func (p *Parser) parseObjectMember(obj *ast.ObjectTypeExpression) bool {
	tok := p.cur()
	switch {
	case tok.Type == lexer.LPAREN || tok.Type == lexer.LT:
		sig := p.parseSignature(lexer.COLON)
		if sig == nil {
			return false
		}
		obj.Calls = append(obj.Calls, sig)
		return true
	case tok.Type == lexer.LBRACKET && p.peek().Type == lexer.IDENT && p.peekAt(2).Type == lexer.COLON:
		return p.parseIndexSignature(obj)
	}
	prop := p.parsePropertyHead()
	if prop == nil {
		return false
	}
	switch {
	case p.peekTokenIs(lexer.COLON):
		p.nextToken()
		p.nextToken()
		prop.Type = p.parseType()
	case p.peekTokenIs(lexer.LPAREN) || p.peekTokenIs(lexer.LT):
		// Method shorthand: name(params): Ret
		p.nextToken()
		sig := p.parseSignature(lexer.COLON)
		if sig == nil {
			return false
		}
		prop.Type = sig
	default:
		p.peekError(lexer.COLON)
		return false
	}
	if prop.Type == nil {
		return false
	}
	obj.Properties = append(obj.Properties, prop)
	return true
}

// parsePropertyHead parses `readonly name?` and leaves the name (or '?') as
// the current token.
func (p *Parser) parsePropertyHead() *ast.ObjectTypeProperty {
	prop := &ast.ObjectTypeProperty{Span: p.span(p.cur())}
	if p.curTokenIs(lexer.READONLY) && isPropertyName(p.peek()) {
		prop.Readonly = true
		p.nextToken()
	}
	if !isPropertyName(p.cur()) {
		p.errorf(p.cur(), "expected property name, got %s", describe(p.cur()))
		return nil
	}
	prop.Name = p.cur().Literal
	if p.peekTokenIs(lexer.QUESTION) {
		p.nextToken()
		prop.Optional = true
	}
	return prop
}

func (p *Parser) parseIndexSignature(obj *ast.ObjectTypeExpression) bool {
	index := &ast.IndexSignature{Span: p.span(p.cur())}
	p.nextToken() // key name
	p.nextToken() // ':'
	if !p.expectPeek(lexer.IDENT) {
		return false
	}
	index.KeyType = p.cur().Literal
	if index.KeyType != "string" && index.KeyType != "number" {
		p.errorf(p.cur(), "an index signature parameter type must be 'string' or 'number'")
		return false
	}
	if !p.expectPeek(lexer.RBRACKET) || !p.expectPeek(lexer.COLON) {
		return false
	}
	p.nextToken()
	index.ValueType = p.parseType()
	if index.ValueType == nil {
		return false
	}
	if obj.Index != nil {
		p.errorf(p.cur(), "duplicate index signature")
		return false
	}
	obj.Index = index
	return true
}

// parseFunctionType parses <T>(a: A) => R.
func (p *Parser) parseFunctionType() ast.TypeNode {
	sig := p.parseSignature(lexer.ARROW)
	if sig == nil {
		return nil
	}
	for _, param := range sig.Params {
		if param.Default != nil {
			p.errorf(p.cur(), "a parameter initializer is only allowed in a function implementation")
			return nil
		}
	}
	return sig
}

// ParseSignature parses a declaration signature: <T>(a: A): R. The return
// annotation is optional.
func (p *Parser) ParseSignature() *ast.FunctionTypeExpression {
	sig := p.parseSignature(lexer.COLON)
	if sig != nil {
		p.expectEnd()
	}
	return sig
}

// parseSignature parses type parameters, the parameter list and a return
// type introduced by sep. With sep == ARROW the return type is required.
func (p *Parser) parseSignature(sep lexer.TokenType) *ast.FunctionTypeExpression {
	sig := &ast.FunctionTypeExpression{Span: p.span(p.cur())}
	if p.curTokenIs(lexer.LT) {
		sig.TypeParams = p.parseTypeParameters()
		if sig.TypeParams == nil || !p.expectPeek(lexer.LPAREN) {
			return nil
		}
	}
	if !p.curTokenIs(lexer.LPAREN) {
		p.errorf(p.cur(), "expected '(' to start a parameter list, got %s", describe(p.cur()))
		return nil
	}
	var ok bool
	sig.Params, sig.Rest, ok = p.parseParameterList()
	if !ok {
		return nil
	}
	if len(sig.Params) > 0 && sig.Params[0].Name == "this" {
		sig.This = sig.Params[0].Type
		sig.Params = sig.Params[1:]
	}
	if sep == lexer.ARROW && !p.peekTokenIs(lexer.ARROW) {
		p.peekError(lexer.ARROW)
		return nil
	}
	if p.peekTokenIs(sep) {
		p.nextToken()
		p.nextToken()
		sig.ReturnType = p.parseType()
		if sig.ReturnType == nil {
			return nil
		}
	}
	return sig
}

// parseParameterList parses (a: A, b?: B, c = 1, ...rest: R[]). The
// current token is '(' and is ')' afterwards.
func (p *Parser) parseParameterList() ([]*ast.Parameter, *ast.Parameter, bool) {
	var params []*ast.Parameter
	var rest *ast.Parameter
	for !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		if rest != nil {
			p.errorf(p.cur(), "a rest parameter must be last in a parameter list")
			return nil, nil, false
		}
		spread := p.curTokenIs(lexer.SPREAD)
		if spread {
			p.nextToken()
		}
		if !p.curTokenIs(lexer.IDENT) && !p.curTokenIs(lexer.THIS) {
			p.errorf(p.cur(), "expected parameter name, got %s", describe(p.cur()))
			return nil, nil, false
		}
		param := &ast.Parameter{Span: p.span(p.cur()), Name: p.cur().Literal}
		if p.peekTokenIs(lexer.QUESTION) {
			p.nextToken()
			param.Optional = true
		}
		if p.peekTokenIs(lexer.COLON) {
			p.nextToken()
			p.nextToken()
			param.Type = p.parseType()
			if param.Type == nil {
				return nil, nil, false
			}
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			if param.Optional || spread {
				p.errorf(p.cur(), "parameter '%s' cannot have both an initializer and '?' or '...'", param.Name)
				return nil, nil, false
			}
			p.nextToken()
			if param.Default = p.parseExpression(LOWEST); param.Default == nil {
				return nil, nil, false
			}
		}
		if spread {
			rest = param
		} else {
			params = append(params, param)
		}
		if !p.peekTokenIs(lexer.RPAREN) && !p.expectPeek(lexer.COMMA) {
			return nil, nil, false
		}
	}
	p.nextToken()
	return params, rest, true
}

// ParseTypeParameter parses one `T extends Bound = Default` snippet.
func (p *Parser) ParseTypeParameter() *ast.TypeParam {
	tp := p.parseTypeParameter()
	if tp != nil {
		p.expectEnd()
	}
	return tp
}

// parseTypeParameters parses <T, U extends T>. The current token is '<'
// and is '>' afterwards.
func (p *Parser) parseTypeParameters() []*ast.TypeParam {
	var params []*ast.TypeParam
	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		tp := p.parseTypeParameter()
		if tp == nil {
			return nil
		}
		params = append(params, tp)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(lexer.GT) {
		return nil
	}
	return params
}

func (p *Parser) parseTypeParameter() *ast.TypeParam {
	if !p.curTokenIs(lexer.IDENT) {
		p.errorf(p.cur(), "expected type parameter name, got %s", describe(p.cur()))
		return nil
	}
	tp := &ast.TypeParam{Span: p.span(p.cur()), Name: p.cur().Literal}
	if p.peekTokenIs(lexer.EXTENDS) {
		p.nextToken()
		p.nextToken()
		if tp.Constraint = p.parseType(); tp.Constraint == nil {
			return nil
		}
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		if tp.Default = p.parseType(); tp.Default == nil {
			return nil
		}
	}
	return tp
}

// ParseClassField parses `readonly name?: Type = initializer`.
func (p *Parser) ParseClassField() *ast.ClassField {
	prop := p.parsePropertyHead()
	if prop == nil {
		return nil
	}
	field := &ast.ClassField{Span: prop.Span, Name: prop.Name, Optional: prop.Optional, Readonly: prop.Readonly}
	if p.peekTokenIs(lexer.COLON) {
		p.nextToken()
		p.nextToken()
		if field.Type = p.parseType(); field.Type == nil {
			return nil
		}
	}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		if field.Value = p.parseExpression(LOWEST); field.Value == nil {
			return nil
		}
	}
	p.expectEnd()
	return field
}

// ParseEnumMember parses `Name` or `Name = value`.
func (p *Parser) ParseEnumMember() *ast.EnumMember {
	if !isPropertyName(p.cur()) {
		p.errorf(p.cur(), "expected enum member name, got %s", describe(p.cur()))
		return nil
	}
	member := &ast.EnumMember{Span: p.span(p.cur()), Name: p.cur().Literal}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		if member.Value = p.parseExpression(LOWEST); member.Value == nil {
			return nil
		}
	}
	p.expectEnd()
	return member
}
