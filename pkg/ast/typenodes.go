package ast

import (
	"strconv"
	"strings"
)

// --- Type Expression Nodes ---

// TypeReference names a type: a primitive, an alias, an interface, an enum,
// a class or a type parameter, optionally applied to arguments.
type TypeReference struct {
	Span
	Name          string
	TypeArguments []TypeNode
}

func (t *TypeReference) typeNode()      {}
func (t *TypeReference) String() string { return t.Name + typeArgs(t.TypeArguments) }

// LiteralTypeExpression is a literal used as a type: "a", 1, true, 10n.
// Value is a float64, string or bool; BigInt holds bigint digits.
type LiteralTypeExpression struct {
	Span
	Value  any
	BigInt string
}

func (t *LiteralTypeExpression) typeNode() {}
func (t *LiteralTypeExpression) String() string {
	switch v := t.Value.(type) {
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	}
	return t.BigInt + "n"
}

// UnionTypeExpression is A | B | C.
type UnionTypeExpression struct {
	Span
	Types []TypeNode
}

func (t *UnionTypeExpression) typeNode()      {}
func (t *UnionTypeExpression) String() string { return joinTypes(t.Types, " | ") }

// IntersectionTypeExpression is A & B & C.
type IntersectionTypeExpression struct {
	Span
	Types []TypeNode
}

func (t *IntersectionTypeExpression) typeNode()      {}
func (t *IntersectionTypeExpression) String() string { return joinTypes(t.Types, " & ") }

// ArrayTypeExpression is T[] or readonly T[].
type ArrayTypeExpression struct {
	Span
	ElementType TypeNode
	Readonly    bool
}

func (t *ArrayTypeExpression) typeNode() {}
func (t *ArrayTypeExpression) String() string {
	elem := t.ElementType.String()
	switch t.ElementType.(type) {
	case *UnionTypeExpression, *IntersectionTypeExpression, *FunctionTypeExpression:
		elem = "(" + elem + ")"
	}
	if t.Readonly {
		return "readonly " + elem + "[]"
	}
	return elem + "[]"
}

// TupleElement is one fixed position of a tuple type.
type TupleElement struct {
	Type     TypeNode
	Optional bool
}

// TupleTypeExpression is [A, B?, ...C[]]. Rest is the element type of the
// trailing rest.
type TupleTypeExpression struct {
	Span
	Elements []*TupleElement
	Rest     TypeNode
	Readonly bool
}

func (t *TupleTypeExpression) typeNode() {}
func (t *TupleTypeExpression) String() string {
	var parts []string
	for _, e := range t.Elements {
		s := e.Type.String()
		if e.Optional {
			s += "?"
		}
		parts = append(parts, s)
	}
	if t.Rest != nil {
		parts = append(parts, "..."+t.Rest.String()+"[]")
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectTypeProperty is one member of an object type or interface.
type ObjectTypeProperty struct {
	Span
	Name     string
	Type     TypeNode
	Optional bool
	Readonly bool
}

// IndexSignature is [key: string]: Value or [key: number]: Value.
type IndexSignature struct {
	Span
	KeyType   string
	ValueType TypeNode
}

// ObjectTypeExpression is an object type literal.
type ObjectTypeExpression struct {
	Span
	Properties []*ObjectTypeProperty
	Index      *IndexSignature
	Calls      []*FunctionTypeExpression
}

func (t *ObjectTypeExpression) typeNode() {}
func (t *ObjectTypeExpression) String() string {
	var parts []string
	for _, p := range t.Properties {
		s := p.Name
		if p.Optional {
			s += "?"
		}
		parts = append(parts, s+": "+p.Type.String())
	}
	if t.Index != nil {
		parts = append(parts, "[key: "+t.Index.KeyType+"]: "+t.Index.ValueType.String())
	}
	for _, c := range t.Calls {
		parts = append(parts, c.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// FunctionTypeExpression is <T>(a: A, ...rest: R[]) => Ret.
type FunctionTypeExpression struct {
	Span
	TypeParams []*TypeParam
	Params     []*Parameter
	Rest       *Parameter
	This       TypeNode
	ReturnType TypeNode
}

func (t *FunctionTypeExpression) typeNode() {}
func (t *FunctionTypeExpression) String() string {
	var parts []string
	for _, p := range t.Params {
		s := p.Name
		if p.Optional {
			s += "?"
		}
		if p.Type != nil {
			s += ": " + p.Type.String()
		}
		parts = append(parts, s)
	}
	if t.Rest != nil && t.Rest.Type != nil {
		parts = append(parts, "..."+t.Rest.Name+": "+t.Rest.Type.String())
	}
	ret := "void"
	if t.ReturnType != nil {
		ret = t.ReturnType.String()
	}
	return "(" + strings.Join(parts, ", ") + ") => " + ret
}

func joinTypes(ts []TypeNode, sep string) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}
