// Package loader reads declaration files into the tree pkg/checker
// consumes. A declaration file is YAML: a list of declarations whose first
// key names the declaration kind, with type annotations, signatures and
// expressions written as snippets of TypeScript-like syntax:
//
//	declarations:
//	  - type: Pair
//	    params: ["T", "U = T"]
//	    is: "[T, U]"
//	  - function: first
//	    signature: "<T>(items: T[]): T | undefined"
//	    body:
//	      - return: "items[0]"
//
// Positions in the tree point into the YAML file, down to the token inside
// a snippet.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"structcheck/pkg/ast"
	"structcheck/pkg/source"
)

// SyntaxError reports a malformed snippet or declaration.
type SyntaxError struct {
	source.Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: SyntaxError: %s", e.Position, e.Msg)
}

// LoadFile reads and loads the declaration file at path.
func LoadFile(path string) (*ast.Program, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return Load(source.FromFile(path, string(content)))
}

// Load decodes src. Every syntax error found is returned, joined.
func Load(src *source.SourceFile) (*ast.Program, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src.Content), &doc); err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", src.DisplayPath(), err)
	}
	d := &decoder{src: src}
	program := d.program(&doc)
	if len(d.errors) > 0 {
		return nil, errors.Join(d.errors...)
	}
	return program, nil
}

// LoadString loads an in-memory declaration file, for tests and embedders.
func LoadString(name, content string) (*ast.Program, error) {
	return Load(source.NewSourceFile(name, "", content))
}

type decoder struct {
	src    *source.SourceFile
	errors []error
}

func (d *decoder) errorf(node *yaml.Node, format string, args ...any) {
	d.errors = append(d.errors, &SyntaxError{Position: d.pos(node), Msg: fmt.Sprintf(format, args...)})
}

func (d *decoder) pos(node *yaml.Node) source.Position {
	return source.Position{Line: node.Line, Column: node.Column, Source: d.src}
}

// snippetBase returns the position of the first character of a scalar's
// text, skipping quotes and block scalar headers.
func (d *decoder) snippetBase(node *yaml.Node) source.Position {
	pos := d.pos(node)
	switch node.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		pos.Column++
	case yaml.LiteralStyle, yaml.FoldedStyle:
		pos.Line++
		line := d.src.Line(pos.Line)
		pos.Column = len(line) - len(strings.TrimLeft(line, " ")) + 1
	}
	return pos
}

// parser returns a snippet parser for a scalar node.
func (d *decoder) parser(node *yaml.Node) *Parser {
	return NewParser(node.Value, d.snippetBase(node))
}

func (d *decoder) collect(p *Parser) {
	d.errors = append(d.errors, p.Errors()...)
}

func (d *decoder) program(doc *yaml.Node) *ast.Program {
	program := &ast.Program{Source: d.src}
	if doc.Kind == 0 {
		return program
	}
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	var list *yaml.Node
	switch root.Kind {
	case yaml.SequenceNode:
		list = root
	case yaml.MappingNode:
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == "declarations" {
				list = root.Content[i+1]
			}
		}
	}
	if list == nil || list.Kind != yaml.SequenceNode {
		d.errorf(root, "expected a 'declarations' list")
		return program
	}
	for _, item := range list.Content {
		if decl := d.declaration(item); decl != nil {
			program.Declarations = append(program.Declarations, decl)
		}
	}
	return program
}

// entry is a decoded mapping: the kind key and value plus the other keys.
type entry struct {
	kind   string
	name   *yaml.Node
	fields map[string]*yaml.Node
}

func (d *decoder) entry(node *yaml.Node) (*entry, bool) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode || len(node.Content) < 2 {
		d.errorf(node, "expected a mapping whose first key names the kind")
		return nil, false
	}
	e := &entry{kind: node.Content[0].Value, name: node.Content[1], fields: make(map[string]*yaml.Node)}
	for i := 2; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if _, dup := e.fields[key.Value]; dup {
			d.errorf(key, "duplicate key %q", key.Value)
			continue
		}
		e.fields[key.Value] = node.Content[i+1]
	}
	return e, true
}

// scalar returns the value of e's field key, which must be a scalar.
func (d *decoder) scalar(e *entry, key string) (*yaml.Node, bool) {
	node, ok := e.fields[key]
	if !ok || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, false
	}
	if node.Kind != yaml.ScalarNode {
		d.errorf(node, "%s: expected a string", key)
		return nil, false
	}
	return node, true
}

// list returns the items of e's field key: a sequence, or a lone scalar.
func (d *decoder) list(e *entry, key string) []*yaml.Node {
	node, ok := e.fields[key]
	if !ok {
		return nil
	}
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Content
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return []*yaml.Node{node}
	}
	d.errorf(node, "%s: expected a list", key)
	return nil
}

func (d *decoder) flag(e *entry, key string) bool {
	node, ok := e.fields[key]
	if !ok {
		return false
	}
	var b bool
	if err := node.Decode(&b); err != nil {
		d.errorf(node, "%s: expected true or false", key)
	}
	return b
}

func (d *decoder) identifier(node *yaml.Node, what string) string {
	name := strings.TrimSpace(node.Value)
	if node.Kind != yaml.ScalarNode || name == "" || strings.ContainsAny(name, " \t<>()[]{}:;,|&") {
		d.errorf(node, "expected a %s name", what)
		return ""
	}
	return name
}

// --- Snippets ---

func (d *decoder) typeNode(node *yaml.Node) ast.TypeNode {
	p := d.parser(node)
	typ := p.ParseType()
	d.collect(p)
	return typ
}

func (d *decoder) optionalType(e *entry, key string) ast.TypeNode {
	if node, ok := d.scalar(e, key); ok {
		return d.typeNode(node)
	}
	return nil
}

func (d *decoder) expression(node *yaml.Node) ast.Expression {
	p := d.parser(node)
	expr := p.ParseExpression()
	d.collect(p)
	return expr
}

func (d *decoder) optionalExpression(e *entry, key string) ast.Expression {
	if node, ok := d.scalar(e, key); ok {
		return d.expression(node)
	}
	return nil
}

func (d *decoder) typeParams(e *entry) []*ast.TypeParam {
	var params []*ast.TypeParam
	for _, node := range d.list(e, "params") {
		p := d.parser(node)
		if tp := p.ParseTypeParameter(); tp != nil {
			params = append(params, tp)
		}
		d.collect(p)
	}
	return params
}

func (d *decoder) signature(e *entry) *ast.FunctionTypeExpression {
	node, ok := d.scalar(e, "signature")
	if !ok {
		return &ast.FunctionTypeExpression{Span: ast.Span{Position: d.pos(e.name)}}
	}
	p := d.parser(node)
	sig := p.ParseSignature()
	d.collect(p)
	return sig
}

// --- Declarations ---

func (d *decoder) declaration(node *yaml.Node) ast.Declaration {
	e, ok := d.entry(node)
	if !ok {
		return nil
	}
	switch e.kind {
	case "type":
		return d.typeAlias(e)
	case "interface":
		return d.interfaceDecl(e)
	case "enum":
		return d.enumDecl(e)
	case "function":
		return d.function(e)
	case "class":
		return d.class(e)
	case "let", "const", "var":
		return d.varStatement(e)
	}
	if stmt := d.statementFrom(e); stmt != nil {
		return &ast.StatementDeclaration{Span: ast.Span{Position: d.pos(node)}, Statement: stmt}
	}
	return nil
}

func (d *decoder) typeAlias(e *entry) ast.Declaration {
	decl := &ast.TypeAliasStatement{Span: ast.Span{Position: d.pos(e.name)}, Name: d.identifier(e.name, "type")}
	decl.TypeParams = d.typeParams(e)
	node, ok := d.scalar(e, "is")
	if !ok {
		d.errorf(e.name, "type %s: missing 'is'", decl.Name)
		return nil
	}
	decl.Type = d.typeNode(node)
	return decl
}

func (d *decoder) interfaceDecl(e *entry) ast.Declaration {
	decl := &ast.InterfaceDeclaration{Span: ast.Span{Position: d.pos(e.name)}, Name: d.identifier(e.name, "interface")}
	decl.TypeParams = d.typeParams(e)
	for _, node := range d.list(e, "extends") {
		if base := d.typeNode(node); base != nil {
			decl.Extends = append(decl.Extends, base)
		}
	}
	body := &ast.ObjectTypeExpression{}
	for _, node := range d.list(e, "members") {
		p := d.parser(node)
		p.ParseObjectMember(body)
		d.collect(p)
	}
	decl.Properties, decl.Index, decl.Calls = body.Properties, body.Index, body.Calls
	return decl
}

func (d *decoder) enumDecl(e *entry) ast.Declaration {
	decl := &ast.EnumDeclaration{
		Span:  ast.Span{Position: d.pos(e.name)},
		Name:  d.identifier(e.name, "enum"),
		Const: d.flag(e, "const"),
	}
	for _, node := range d.list(e, "members") {
		p := d.parser(node)
		if m := p.ParseEnumMember(); m != nil {
			decl.Members = append(decl.Members, m)
		}
		d.collect(p)
	}
	return decl
}

func (d *decoder) function(e *entry) ast.Declaration {
	// A nil *FunctionDeclaration must not become a non-nil interface.
	if fn := d.functionLike(e, "function"); fn != nil {
		return fn
	}
	return nil
}

// functionLike decodes name, signature and optional body. A missing body
// key makes the declaration an overload signature.
func (d *decoder) functionLike(e *entry, what string) *ast.FunctionDeclaration {
	fn := &ast.FunctionDeclaration{Span: ast.Span{Position: d.pos(e.name)}}
	if e.name.Kind == yaml.ScalarNode {
		fn.Name = d.identifier(e.name, what)
	}
	sig := d.signature(e)
	if sig == nil {
		return nil
	}
	fn.TypeParams, fn.Params, fn.Rest, fn.This, fn.ReturnType = sig.TypeParams, sig.Params, sig.Rest, sig.This, sig.ReturnType
	if body, ok := e.fields["body"]; ok {
		fn.Body = d.block(body)
	}
	return fn
}

func (d *decoder) class(e *entry) ast.Declaration {
	decl := &ast.ClassDeclaration{
		Span:     ast.Span{Position: d.pos(e.name)},
		Name:     d.identifier(e.name, "class"),
		Abstract: d.flag(e, "abstract"),
	}
	decl.TypeParams = d.typeParams(e)
	if node, ok := d.scalar(e, "extends"); ok {
		switch base := d.typeNode(node).(type) {
		case *ast.TypeReference:
			decl.Extends = base
		case nil:
		default:
			d.errorf(node, "extends: expected a class name")
		}
	}
	for _, node := range d.list(e, "implements") {
		if typ := d.typeNode(node); typ != nil {
			decl.Implements = append(decl.Implements, typ)
		}
	}
	for _, node := range d.list(e, "fields") {
		p := d.parser(node)
		if f := p.ParseClassField(); f != nil {
			decl.Fields = append(decl.Fields, f)
		}
		d.collect(p)
	}
	if node, ok := e.fields["constructor"]; ok {
		if node.Kind != yaml.MappingNode {
			d.errorf(node, "constructor: expected a mapping with signature and body")
		} else {
			ctor := &entry{kind: "constructor", name: node, fields: make(map[string]*yaml.Node)}
			for i := 0; i+1 < len(node.Content); i += 2 {
				ctor.fields[node.Content[i].Value] = node.Content[i+1]
			}
			decl.Constructor = d.functionLike(ctor, "constructor")
			if decl.Constructor != nil {
				decl.Constructor.Name = "constructor"
			}
		}
	}
	for _, node := range d.list(e, "methods") {
		m, ok := d.entry(node)
		if !ok {
			continue
		}
		if m.kind != "method" {
			d.errorf(node, "expected 'method', got %q", m.kind)
			continue
		}
		if fn := d.functionLike(m, "method"); fn != nil {
			fn.Abstract = d.flag(m, "abstract")
			decl.Methods = append(decl.Methods, fn)
		}
	}
	return decl
}

func (d *decoder) varStatement(e *entry) *ast.VarStatement {
	kind := ast.Let
	switch e.kind {
	case "const":
		kind = ast.Const
	case "var":
		kind = ast.Var
	}
	return &ast.VarStatement{
		Span:  ast.Span{Position: d.pos(e.name)},
		Kind:  kind,
		Name:  d.identifier(e.name, "variable"),
		Type:  d.optionalType(e, "type"),
		Value: d.optionalExpression(e, "value"),
	}
}

// --- Statements ---

func (d *decoder) block(node *yaml.Node) *ast.BlockStatement {
	block := &ast.BlockStatement{Span: ast.Span{Position: d.pos(node)}}
	switch {
	case node.Kind == yaml.SequenceNode:
		for _, item := range node.Content {
			if stmt := d.statement(item); stmt != nil {
				block.Statements = append(block.Statements, stmt)
			}
		}
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
	default:
		d.errorf(node, "expected a list of statements")
	}
	return block
}

func (d *decoder) statement(node *yaml.Node) ast.Statement {
	e, ok := d.entry(node)
	if !ok {
		return nil
	}
	switch e.kind {
	case "let", "const", "var":
		return d.varStatement(e)
	}
	return d.statementFrom(e)
}

func (d *decoder) statementFrom(e *entry) ast.Statement {
	span := ast.Span{Position: d.pos(e.name)}
	switch e.kind {
	case "expr":
		expr := d.expression(e.name)
		if expr == nil {
			return nil
		}
		return &ast.ExpressionStatement{Span: span, Expression: expr}
	case "if":
		stmt := &ast.IfStatement{Span: span, Condition: d.expression(e.name)}
		if stmt.Condition == nil {
			return nil
		}
		then, ok := e.fields["then"]
		if !ok {
			d.errorf(e.name, "if: missing 'then'")
			return nil
		}
		stmt.Consequence = d.block(then)
		if alt, ok := e.fields["else"]; ok {
			stmt.Alternative = d.block(alt)
		}
		return stmt
	case "return":
		stmt := &ast.ReturnStatement{Span: span}
		if e.name.Tag != "!!null" {
			stmt.Value = d.expression(e.name)
		}
		return stmt
	case "throw":
		return &ast.ThrowStatement{Span: span, Value: d.expression(e.name)}
	case "block":
		return d.block(e.name)
	}
	d.errorf(e.name, "unknown declaration or statement kind %q", e.kind)
	return nil
}
