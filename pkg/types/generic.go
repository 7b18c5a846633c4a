package types

import (
	"fmt"
	"strconv"
)

// TypeParameter represents a generic type parameter (e.g., T in Array<T> or function<T>)
type TypeParameter struct {
	Name       string // The parameter name (e.g., "T", "U", "K", "V")
	Constraint Type   // Optional constraint (e.g., T extends string), nil if unconstrained
	Default    Type   // Optional default (e.g., T = number), nil if none
	Index      int    // Position in the type parameter list (0-based)

	serial uint32
}

func (tp *TypeParameter) String() string {
	s := tp.Name
	if tp.Constraint != nil {
		s = fmt.Sprintf("%s extends %s", s, tp.Constraint.String())
	}
	if tp.Default != nil {
		s = fmt.Sprintf("%s = %s", s, tp.Default.String())
	}
	return s
}

// NewTypeParameter creates a type parameter definition. Every call yields a
// distinct parameter, even for equal names.
func (t *Table) NewTypeParameter(name string, index int, constraint, def Type) *TypeParameter {
	return &TypeParameter{
		Name:       name,
		Constraint: constraint,
		Default:    def,
		Index:      index,
		serial:     t.nextParamSerial(),
	}
}

// TypeParameterType represents a reference to a type parameter within a generic type or function
// This is what gets used inside the generic body (e.g., the "T" in "return x: T")
type TypeParameterType struct {
	interned
	Parameter *TypeParameter
}

func (t *TypeParameterType) String() string {
	return t.Parameter.Name
}
func (t *TypeParameterType) Equals(other Type) bool { return sameType(t, other) }
func (t *TypeParameterType) typeNode()              {}

// Ref interns the reference type for a parameter.
func (t *Table) Ref(p *TypeParameter) *TypeParameterType {
	return t.intern("P:"+strconv.FormatUint(uint64(p.serial), 10), func(id TypeID) Type {
		return &TypeParameterType{interned: interned{id}, Parameter: p}
	}).(*TypeParameterType)
}

// Substitute rebuilds typ with every reference to a parameter in subs
// replaced by its binding. Types that mention none of them are returned
// unchanged.
func (t *Table) Substitute(typ Type, subs map[*TypeParameter]Type) Type {
	if len(subs) == 0 || typ == nil {
		return typ
	}
	switch tt := typ.(type) {
	case *TypeParameterType:
		if b, ok := subs[tt.Parameter]; ok {
			return b
		}
		return tt
	case *UnionType:
		return t.Union(t.substituteAll(tt.Types, subs)...)
	case *IntersectionType:
		return t.Intersection(t.substituteAll(tt.Types, subs)...)
	case *ArrayType:
		return t.array(t.Substitute(tt.ElementType, subs), tt.Readonly)
	case *TupleType:
		return t.NewTupleType(TupleSpec{
			Elements: t.substituteAll(tt.ElementTypes, subs),
			Optional: tt.OptionalElements,
			Rest:     t.Substitute(tt.RestElementType, subs),
			Readonly: tt.Readonly,
		})
	case *ObjectType:
		fields := make([]Field, len(tt.Fields))
		for i, f := range tt.Fields {
			f.Type = t.Substitute(f.Type, subs)
			fields[i] = f
		}
		var index *IndexSignature
		if tt.Index != nil {
			index = &IndexSignature{Key: tt.Index.Key, Value: t.Substitute(tt.Index.Value, subs)}
		}
		calls := make([]*FunctionType, len(tt.Calls))
		for i, c := range tt.Calls {
			calls[i] = t.SubstituteSignature(c, subs)
		}
		return t.NewObjectType(fields, index, calls...)
	case *FunctionType:
		return t.SubstituteSignature(tt, subs)
	case *AliasType:
		if len(tt.Args) == 0 {
			return tt
		}
		return t.NewAliasRef(tt.Name, t.substituteAll(tt.Args, subs)...)
	}
	return typ
}

func (t *Table) substituteAll(ts []Type, subs map[*TypeParameter]Type) []Type {
	out := make([]Type, len(ts))
	for i, m := range ts {
		out[i] = t.Substitute(m, subs)
	}
	return out
}

// SubstituteSignature rebuilds every parameter and the return type of fn.
// Type parameters bound in subs are removed from the signature.
func (t *Table) SubstituteSignature(fn *FunctionType, subs map[*TypeParameter]Type) *FunctionType {
	sig := Signature{
		Params: make([]Param, len(fn.Params)),
		Return: t.Substitute(fn.Return, subs),
		This:   t.Substitute(fn.This, subs),
	}
	for _, p := range fn.TypeParams {
		if _, bound := subs[p]; !bound {
			sig.TypeParams = append(sig.TypeParams, p)
		}
	}
	for i, p := range fn.Params {
		p.Type = t.Substitute(p.Type, subs)
		sig.Params[i] = p
	}
	if fn.Rest != nil {
		rest := *fn.Rest
		rest.Type = t.Substitute(rest.Type, subs)
		sig.Rest = &rest
	}
	return t.NewFunctionType(sig)
}

// Erase replaces the signature's own type parameters by any, the view used
// when a generic function is compared structurally.
func (t *Table) Erase(fn *FunctionType) *FunctionType {
	if !fn.IsGeneric() {
		return fn
	}
	subs := make(map[*TypeParameter]Type, len(fn.TypeParams))
	for _, p := range fn.TypeParams {
		subs[p] = Any
	}
	return t.SubstituteSignature(fn, subs)
}

// Mentions reports whether typ refers to any parameter in params.
func Mentions(typ Type, params map[*TypeParameter]bool) bool {
	switch tt := typ.(type) {
	case *TypeParameterType:
		return params[tt.Parameter]
	case *UnionType:
		return mentionsAny(tt.Types, params)
	case *IntersectionType:
		return mentionsAny(tt.Types, params)
	case *ArrayType:
		return Mentions(tt.ElementType, params)
	case *TupleType:
		return mentionsAny(tt.ElementTypes, params) || Mentions(tt.RestElementType, params)
	case *ObjectType:
		for _, f := range tt.Fields {
			if Mentions(f.Type, params) {
				return true
			}
		}
		if tt.Index != nil && Mentions(tt.Index.Value, params) {
			return true
		}
		for _, c := range tt.Calls {
			if Mentions(c, params) {
				return true
			}
		}
	case *FunctionType:
		for _, p := range tt.Params {
			if Mentions(p.Type, params) {
				return true
			}
		}
		if tt.Rest != nil && Mentions(tt.Rest.Type, params) {
			return true
		}
		return Mentions(tt.Return, params)
	case *AliasType:
		return mentionsAny(tt.Args, params)
	}
	return false
}

func mentionsAny(ts []Type, params map[*TypeParameter]bool) bool {
	for _, m := range ts {
		if Mentions(m, params) {
			return true
		}
	}
	return false
}
