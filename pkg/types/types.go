package types

import (
	"fmt"
	"strings"
)

// TypeID identifies an interned type inside a Table.
type TypeID uint32

// Type is the interface implemented by all type representations.
//
// Types are immutable once built and are only ever constructed through a
// Table (or are one of the package-level singletons), so Equals is an
// identity check.
type Type interface {
	// String returns a string representation of the type, suitable for debugging or printing.
	String() string
	// Equals reports whether other is the same interned type.
	Equals(other Type) bool
	// ID returns the interned identity of the type.
	ID() TypeID

	// typeNode() is a marker method to ensure only types defined in this package
	// can be assigned to the Type interface.
	typeNode()
}

type interned struct {
	id TypeID
}

func (i *interned) ID() TypeID { return i.id }

// --- Function Types ---

// Param is one declared parameter of a function signature.
type Param struct {
	Name     string
	Type     Type
	Optional bool
}

// Signature describes a callable shape. It is the construction input for
// FunctionType and is embedded in it.
type Signature struct {
	TypeParams []*TypeParameter
	Params     []Param
	Rest       *Param // Type is the array type of the rest parameter (...args: T[])
	Return     Type
	This       Type // Declared `this` type, nil when unconstrained
}

// FunctionType represents the type of a function.
type FunctionType struct {
	interned
	Signature
}

func (ft *FunctionType) typeNode()              {}
func (ft *FunctionType) Equals(other Type) bool { return sameType(ft, other) }

func (ft *FunctionType) String() string {
	return ft.format(" => ")
}

// format renders the signature with sep between the parameter list and the
// return type (" => " for function types, ": " inside object call signatures).
func (ft *FunctionType) format(sep string) string {
	var sb strings.Builder
	if len(ft.TypeParams) > 0 {
		names := make([]string, len(ft.TypeParams))
		for i, p := range ft.TypeParams {
			names[i] = p.String()
		}
		sb.WriteString("<")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString(">")
	}
	sb.WriteString("(")
	var parts []string
	if ft.This != nil {
		parts = append(parts, "this: "+ft.This.String())
	}
	for i, p := range ft.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		if p.Optional {
			name += "?"
		}
		parts = append(parts, name+": "+typeString(p.Type))
	}
	if ft.Rest != nil {
		name := ft.Rest.Name
		if name == "" {
			name = "rest"
		}
		parts = append(parts, "..."+name+": "+typeString(ft.Rest.Type))
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(")")
	sb.WriteString(sep)
	ret := Type(Void)
	if ft.Return != nil {
		ret = ft.Return
	}
	sb.WriteString(ret.String())
	return sb.String()
}

// RequiredParams counts the parameters a caller must supply.
func (ft *FunctionType) RequiredParams() int {
	n := 0
	for _, p := range ft.Params {
		if p.Optional {
			break
		}
		n++
	}
	return n
}

// ParamAt returns the declared type for argument position i, consulting the
// rest parameter's element type past the fixed parameters. ok is false when
// the position is not accepted at all.
func (ft *FunctionType) ParamAt(i int) (Type, bool) {
	if i < len(ft.Params) {
		return ft.Params[i].Type, true
	}
	if ft.Rest != nil {
		return RestElement(ft.Rest.Type), true
	}
	return nil, false
}

// AcceptsArity reports whether n arguments fit the parameter list.
func (ft *FunctionType) AcceptsArity(n int) bool {
	if n < ft.RequiredParams() {
		return false
	}
	return ft.Rest != nil || n <= len(ft.Params)
}

// IsGeneric reports whether the signature declares type parameters.
func (ft *FunctionType) IsGeneric() bool {
	return len(ft.TypeParams) > 0
}

// NewFunctionType interns a function type built from sig.
func (t *Table) NewFunctionType(sig Signature) *FunctionType {
	sig.Params = append([]Param(nil), sig.Params...)
	sig.TypeParams = append([]*TypeParameter(nil), sig.TypeParams...)
	if sig.Return == nil {
		sig.Return = Void
	}
	if sig.Rest != nil {
		rest := *sig.Rest
		sig.Rest = &rest
	}
	return t.intern(signatureKey(sig), func(id TypeID) Type {
		return &FunctionType{interned: interned{id}, Signature: sig}
	}).(*FunctionType)
}

// RestElement returns the element type of a rest parameter's declared type.
func RestElement(t Type) Type {
	switch rt := t.(type) {
	case *ArrayType:
		return rt.ElementType
	case *TupleType:
		if rt.RestElementType != nil {
			return rt.RestElementType
		}
	}
	return Any
}

func sameType(a Type, b Type) bool {
	return b != nil && a == b
}

func typeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// wrapped parenthesizes types that would otherwise read ambiguously when
// nested (array elements, union and intersection members).
func wrapped(t Type) string {
	switch t.(type) {
	case *FunctionType, *UnionType, *IntersectionType:
		return "(" + t.String() + ")"
	}
	return typeString(t)
}
