package ast

import (
	"strconv"
	"strings"
)

// --- Expression Nodes ---

// Identifier represents an identifier in the source code.
type Identifier struct {
	Span
	Value string
}

func (e *Identifier) expressionNode() {}
func (e *Identifier) String() string  { return e.Value }

// NumberLiteral represents a numeric literal.
type NumberLiteral struct {
	Span
	Value float64
}

func (e *NumberLiteral) expressionNode() {}
func (e *NumberLiteral) String() string  { return strconv.FormatFloat(e.Value, 'g', -1, 64) }

// StringLiteral represents a string literal.
type StringLiteral struct {
	Span
	Value string
}

func (e *StringLiteral) expressionNode() {}
func (e *StringLiteral) String() string  { return strconv.Quote(e.Value) }

// BooleanLiteral represents `true` or `false`.
type BooleanLiteral struct {
	Span
	Value bool
}

func (e *BooleanLiteral) expressionNode() {}
func (e *BooleanLiteral) String() string  { return strconv.FormatBool(e.Value) }

// BigIntLiteral represents a bigint literal such as 10n. Digits excludes the
// trailing n.
type BigIntLiteral struct {
	Span
	Digits string
}

func (e *BigIntLiteral) expressionNode() {}
func (e *BigIntLiteral) String() string  { return e.Digits + "n" }

// NullLiteral represents `null`.
type NullLiteral struct{ Span }

func (e *NullLiteral) expressionNode() {}
func (e *NullLiteral) String() string  { return "null" }

// UndefinedLiteral represents `undefined`.
type UndefinedLiteral struct{ Span }

func (e *UndefinedLiteral) expressionNode() {}
func (e *UndefinedLiteral) String() string  { return "undefined" }

// ThisExpression represents `this`.
type ThisExpression struct{ Span }

func (e *ThisExpression) expressionNode() {}
func (e *ThisExpression) String() string  { return "this" }

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	Span
	Elements []Expression
}

func (e *ArrayLiteral) expressionNode() {}
func (e *ArrayLiteral) String() string  { return "[" + joinExprs(e.Elements) + "]" }

// ObjectProperty is one key: value entry of an object literal.
type ObjectProperty struct {
	Span
	Key   string
	Value Expression
}

// ObjectLiteral represents { key: value, ... }.
type ObjectLiteral struct {
	Span
	Properties []*ObjectProperty
}

func (e *ObjectLiteral) expressionNode() {}
func (e *ObjectLiteral) String() string {
	parts := make([]string, len(e.Properties))
	for i, p := range e.Properties {
		parts[i] = p.Key + ": " + p.Value.String()
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// CallExpression represents Callee<TypeArguments>(Arguments).
type CallExpression struct {
	Span
	Callee        Expression
	TypeArguments []TypeNode
	Arguments     []Expression
}

func (e *CallExpression) expressionNode() {}
func (e *CallExpression) String() string {
	return e.Callee.String() + typeArgs(e.TypeArguments) + "(" + joinExprs(e.Arguments) + ")"
}

// NewExpression represents new Callee<TypeArguments>(Arguments).
type NewExpression struct {
	Span
	Callee        Expression
	TypeArguments []TypeNode
	Arguments     []Expression
}

func (e *NewExpression) expressionNode() {}
func (e *NewExpression) String() string {
	return "new " + e.Callee.String() + typeArgs(e.TypeArguments) + "(" + joinExprs(e.Arguments) + ")"
}

// MemberExpression represents Object.Property (or Object?.Property).
type MemberExpression struct {
	Span
	Object   Expression
	Property string
	Optional bool
}

func (e *MemberExpression) expressionNode() {}
func (e *MemberExpression) String() string {
	if e.Optional {
		return e.Object.String() + "?." + e.Property
	}
	return e.Object.String() + "." + e.Property
}

// IndexExpression represents Left[Index].
type IndexExpression struct {
	Span
	Left  Expression
	Index Expression
}

func (e *IndexExpression) expressionNode() {}
func (e *IndexExpression) String() string  { return e.Left.String() + "[" + e.Index.String() + "]" }

// TypeofExpression represents typeof Operand.
type TypeofExpression struct {
	Span
	Operand Expression
}

func (e *TypeofExpression) expressionNode() {}
func (e *TypeofExpression) String() string  { return "typeof " + e.Operand.String() }

// PrefixExpression represents a unary operator: !x, -x.
type PrefixExpression struct {
	Span
	Operator string
	Right    Expression
}

func (e *PrefixExpression) expressionNode() {}
func (e *PrefixExpression) String() string  { return "(" + e.Operator + e.Right.String() + ")" }

// InfixExpression represents a binary operator: a + b, a === b, a && b.
type InfixExpression struct {
	Span
	Left     Expression
	Operator string
	Right    Expression
}

func (e *InfixExpression) expressionNode() {}
func (e *InfixExpression) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// AssignmentExpression represents Target = Value.
type AssignmentExpression struct {
	Span
	Target Expression
	Value  Expression
}

func (e *AssignmentExpression) expressionNode() {}
func (e *AssignmentExpression) String() string  { return e.Target.String() + " = " + e.Value.String() }

// TypeAssertionExpression represents Expression as Type.
type TypeAssertionExpression struct {
	Span
	Expression Expression
	Type       TypeNode
}

func (e *TypeAssertionExpression) expressionNode() {}
func (e *TypeAssertionExpression) String() string {
	return e.Expression.String() + " as " + e.Type.String()
}

// FunctionLiteral represents a function or arrow function expression.
// Exactly one of Body and ExpressionBody is set.
type FunctionLiteral struct {
	Span
	TypeParams     []*TypeParam
	Params         []*Parameter
	Rest           *Parameter
	ReturnType     TypeNode
	Body           *BlockStatement
	ExpressionBody Expression
}

func (e *FunctionLiteral) expressionNode() {}
func (e *FunctionLiteral) String() string {
	names := make([]string, len(e.Params))
	for i, p := range e.Params {
		names[i] = p.Name
	}
	if e.Rest != nil {
		names = append(names, "..."+e.Rest.Name)
	}
	return "(" + strings.Join(names, ", ") + ") => ..."
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func typeArgs(args []TypeNode) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
