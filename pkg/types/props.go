package types

import (
	"strconv"
)

// --- Property Type Access ---

// PropertyType returns the field a property access on typ would see.
// Unions require the property on every member (optional if optional on any);
// intersections take it from every member that has it. ok is false when the
// property does not exist.
func (t *Table) PropertyType(typ Type, name string) (Field, bool) {
	switch tt := t.Resolve(typ).(type) {
	case *Primitive:
		switch tt {
		case Any, Invalid:
			return Field{Name: name, Type: Any}, true
		case String:
			if name == "length" {
				return Field{Name: name, Type: Number, Readonly: true}, true
			}
		}
	case *LiteralType:
		return t.PropertyType(tt.Base, name)
	case *EnumMemberType:
		return t.PropertyType(tt.Value, name)
	case *ObjectType:
		if f, ok := tt.Field(name); ok {
			return f, true
		}
		if tt.Index != nil && (tt.Index.Key == "string" || isNumericName(name)) {
			return Field{Name: name, Type: tt.Index.Value}, true
		}
	case *ArrayType:
		if name == "length" {
			return Field{Name: name, Type: Number}, true
		}
		if isNumericName(name) {
			return Field{Name: name, Type: tt.ElementType, Readonly: tt.Readonly}, true
		}
	case *TupleType:
		if name == "length" {
			return Field{Name: name, Type: t.tupleLength(tt), Readonly: true}, true
		}
		if i, err := strconv.Atoi(name); err == nil {
			if elem, ok := tt.ElementAt(i); ok {
				return Field{Name: name, Type: elem, Optional: tt.IsOptional(i), Readonly: tt.Readonly}, true
			}
		}
	case *FunctionType:
		switch name {
		case "length":
			return Field{Name: name, Type: Number, Readonly: true}, true
		case "name":
			return Field{Name: name, Type: String, Readonly: true}, true
		}
	case *EnumType:
		if m, ok := tt.Member(name); ok {
			return Field{Name: name, Type: m, Readonly: true}, true
		}
	case *TypeParameterType:
		if tt.Parameter.Constraint != nil {
			return t.PropertyType(tt.Parameter.Constraint, name)
		}
	case *UnionType:
		var members []Type
		optional, readonly := false, false
		for _, m := range tt.Types {
			f, ok := t.PropertyType(m, name)
			if !ok {
				return Field{}, false
			}
			members = append(members, f.Type)
			optional = optional || f.Optional
			readonly = readonly || f.Readonly
		}
		return Field{Name: name, Type: t.Union(members...), Optional: optional, Readonly: readonly}, true
	case *IntersectionType:
		var members []Type
		found, optional, readonly := false, true, false
		for _, m := range tt.Types {
			f, ok := t.PropertyType(m, name)
			if !ok {
				continue
			}
			found = true
			members = append(members, f.Type)
			optional = optional && f.Optional
			readonly = readonly || f.Readonly
		}
		if found {
			return Field{Name: name, Type: t.Intersection(members...), Optional: optional, Readonly: readonly}, true
		}
	}
	return Field{}, false
}

// tupleLength is the literal length of a fixed tuple, or number when
// optional or rest elements make it vary.
func (t *Table) tupleLength(tt *TupleType) Type {
	if tt.RestElementType != nil || tt.RequiredElements() != len(tt.ElementTypes) {
		return Number
	}
	return t.NumberLiteral(float64(len(tt.ElementTypes)))
}

// CallSignatures returns the signatures a call on typ may use, in
// declaration order.
func (t *Table) CallSignatures(typ Type) []*FunctionType {
	switch tt := t.Resolve(typ).(type) {
	case *FunctionType:
		return []*FunctionType{tt}
	case *ObjectType:
		return tt.Calls
	case *IntersectionType:
		var sigs []*FunctionType
		for _, m := range tt.Types {
			sigs = append(sigs, t.CallSignatures(m)...)
		}
		return sigs
	case *TypeParameterType:
		if tt.Parameter.Constraint != nil {
			return t.CallSignatures(tt.Parameter.Constraint)
		}
	}
	return nil
}

func isNumericName(name string) bool {
	_, err := strconv.ParseFloat(name, 64)
	return err == nil
}
