package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/pkg/ast"
	"structcheck/pkg/source"
)

const sample = `declarations:
  - type: Pair
    params: ["T", "U extends string = 'x'"]
    is: "[T, U?, ...number[]]"
  - interface: Point
    extends: [Base]
    members:
      - "readonly x: number"
      - "y?: string"
      - "[key: string]: number | string"
      - "(a: string): void"
      - "move(dx: number): Point"
  - enum: Color
    const: true
    members: ["Red", "Green = 5"]
  - function: greet
    signature: "(a: string, b: string, c: Date): void"
  - function: greet
    signature: "(a: string, ...rest: string[]): void"
    body:
      - let: n
        type: "number | undefined"
        value: "rest.length"
      - if: "typeof n === 'number'"
        then:
          - expr: "n = n + 1"
        else:
          - return:
      - throw: "'bad'"
  - class: Dog
    implements: ["Animal"]
    fields: ["readonly name: string", "age = 3"]
    constructor:
      signature: "(name: string)"
      body: []
    methods:
      - method: bark
        signature: "(this: Dog): string"
        body:
          - return: "this.name"
  - const: id
    value: "<T>(x: T): T => x"
  - expr: "greet<string>('a', 'b')"
`

func TestLoadDeclarations(t *testing.T) {
	program, err := LoadString("sample.yaml", sample)
	require.NoError(t, err)
	require.Len(t, program.Declarations, 8)

	alias := program.Declarations[0].(*ast.TypeAliasStatement)
	assert.Equal(t, "Pair", alias.Name)
	require.Len(t, alias.TypeParams, 2)
	assert.Equal(t, "string", alias.TypeParams[1].Constraint.String())
	assert.Equal(t, `"x"`, alias.TypeParams[1].Default.String())
	tuple := alias.Type.(*ast.TupleTypeExpression)
	assert.Len(t, tuple.Elements, 2)
	assert.True(t, tuple.Elements[1].Optional)
	assert.Equal(t, "number", tuple.Rest.String())

	iface := program.Declarations[1].(*ast.InterfaceDeclaration)
	assert.Equal(t, "Point", iface.Name)
	require.Len(t, iface.Properties, 3)
	assert.True(t, iface.Properties[0].Readonly)
	assert.True(t, iface.Properties[1].Optional)
	assert.IsType(t, &ast.FunctionTypeExpression{}, iface.Properties[2].Type)
	require.NotNil(t, iface.Index)
	assert.Equal(t, "string", iface.Index.KeyType)
	assert.Len(t, iface.Calls, 1)
	assert.Len(t, iface.Extends, 1)

	enum := program.Declarations[2].(*ast.EnumDeclaration)
	assert.True(t, enum.Const)
	require.Len(t, enum.Members, 2)
	assert.Nil(t, enum.Members[0].Value)
	assert.Equal(t, "5", enum.Members[1].Value.String())

	overload := program.Declarations[3].(*ast.FunctionDeclaration)
	assert.Nil(t, overload.Body)
	assert.Len(t, overload.Params, 3)

	impl := program.Declarations[4].(*ast.FunctionDeclaration)
	require.NotNil(t, impl.Body)
	require.NotNil(t, impl.Rest)
	assert.Equal(t, "string[]", impl.Rest.Type.String())
	require.Len(t, impl.Body.Statements, 3)
	ifStmt := impl.Body.Statements[1].(*ast.IfStatement)
	assert.Equal(t, `(typeof n === "number")`, ifStmt.Condition.String())
	ret := ifStmt.Alternative.(*ast.BlockStatement).Statements[0].(*ast.ReturnStatement)
	assert.Nil(t, ret.Value)

	class := program.Declarations[5].(*ast.ClassDeclaration)
	require.Len(t, class.Fields, 2)
	assert.True(t, class.Fields[0].Readonly)
	assert.Nil(t, class.Fields[1].Type)
	assert.NotNil(t, class.Fields[1].Value)
	require.NotNil(t, class.Constructor)
	assert.Len(t, class.Constructor.Params, 1)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "Dog", class.Methods[0].This.String())

	v := program.Declarations[6].(*ast.VarStatement)
	assert.Equal(t, ast.Const, v.Kind)
	fn := v.Value.(*ast.FunctionLiteral)
	assert.Len(t, fn.TypeParams, 1)
	assert.Equal(t, "T", fn.ReturnType.String())

	stmt := program.Declarations[7].(*ast.StatementDeclaration)
	call := stmt.Statement.(*ast.ExpressionStatement).Expression.(*ast.CallExpression)
	assert.Len(t, call.TypeArguments, 1)
	assert.Len(t, call.Arguments, 2)
}

func TestSnippetPositions(t *testing.T) {
	program, err := LoadString("pos.yaml", "declarations:\n  - let: x\n    value: \"a + missing\"\n")
	require.NoError(t, err)
	v := program.Declarations[0].(*ast.VarStatement)
	assert.Equal(t, 2, v.Pos().Line)
	assert.Equal(t, 10, v.Pos().Column)

	infix := v.Value.(*ast.InfixExpression)
	right := infix.Right.(*ast.Identifier)
	assert.Equal(t, 3, right.Pos().Line)
	// value: "a + missing" -> the quote is column 12, 'm' is column 17.
	assert.Equal(t, 17, right.Pos().Column)
}

func TestSyntaxErrors(t *testing.T) {
	_, err := LoadString("bad.yaml", `declarations:
  - type: Broken
    is: "{ x: }"
  - let: y
    value: "1 +"
  - frobnicate: z
`)
	require.Error(t, err)
	var syntaxErr *SyntaxError
	require.True(t, errors.As(err, &syntaxErr))
	assert.Equal(t, 3, syntaxErr.Line)
	assert.Contains(t, err.Error(), "unknown declaration or statement kind")
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"string | number", "string | number"},
		{"A & B | C", "A & B | C"},
		{"readonly string[]", "readonly string[]"},
		{"(a: number, b?: string) => void", "(a: number, b?: string) => void"},
		{"Box<number>[]", "Box<number>[]"},
		{"-1 | 'a' | true | 10n", `-1 | "a" | true | 10n`},
		{"{ a: number; b?: string }", "{ a: number; b?: string }"},
		{"Color.Red", "Color.Red"},
		{"(string | number)[]", "(string | number)[]"},
	}
	for _, tt := range tests {
		p := NewParser(tt.input, source.Position{Line: 1, Column: 1})
		typ := p.ParseType()
		require.Empty(t, p.Errors(), tt.input)
		assert.Equal(t, tt.expected, typ.String(), tt.input)
	}
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a + b * c", "(a + (b * c))"},
		{"!x === false", "((!x) === false)"},
		{"a < b", "(a < b)"},
		{"f<number>(1)", "f<number>(1)"},
		{"a?.b.c[0]", "a?.b.c[0]"},
		{"x = y = 1", "x = y = 1"},
		{"new Dog('rex')", `new Dog("rex")`},
		{"x as string", "x as string"},
		{"(x) => x", "(x) => ..."},
		{"{ a: 1, b }", "{ a: 1, b: b }"},
	}
	for _, tt := range tests {
		p := NewParser(tt.input, source.Position{Line: 1, Column: 1})
		expr := p.ParseExpression()
		require.Empty(t, p.Errors(), tt.input)
		assert.Equal(t, tt.expected, expr.String(), tt.input)
	}
}

func TestLoadClassHierarchy(t *testing.T) {
	program, err := LoadString("shapes.yaml", `declarations:
  - class: Shape
    abstract: true
    params: ["T = number"]
    methods:
      - method: area
        signature: "(): T"
        abstract: true
  - class: Square
    extends: "Shape<number>"
    constructor:
      signature: "(side: number = 1, label = 'square')"
      body: []
`)
	require.NoError(t, err)
	require.Len(t, program.Declarations, 2)

	shape := program.Declarations[0].(*ast.ClassDeclaration)
	assert.True(t, shape.Abstract)
	require.Len(t, shape.TypeParams, 1)
	assert.Equal(t, "T", shape.TypeParams[0].Name)
	require.Len(t, shape.Methods, 1)
	assert.True(t, shape.Methods[0].Abstract)
	assert.Nil(t, shape.Methods[0].Body)

	square := program.Declarations[1].(*ast.ClassDeclaration)
	assert.False(t, square.Abstract)
	require.NotNil(t, square.Extends)
	assert.Equal(t, "Shape<number>", square.Extends.String())
	params := square.Constructor.Params
	require.Len(t, params, 2)
	assert.Equal(t, "1", params[0].Default.String())
	assert.Equal(t, "number", params[0].Type.String())
	assert.Nil(t, params[1].Type)
	assert.Equal(t, `"square"`, params[1].Default.String())
}

func TestParameterInitializerErrors(t *testing.T) {
	for _, input := range []string{"(a?: number = 1): void", "(...a: number[] = []): void"} {
		p := NewParser(input, source.Position{Line: 1, Column: 1})
		p.ParseSignature()
		assert.NotEmpty(t, p.Errors(), input)
	}
	p := NewParser("(a: number = 1) => void", source.Position{Line: 1, Column: 1})
	p.ParseType()
	assert.NotEmpty(t, p.Errors())
}
