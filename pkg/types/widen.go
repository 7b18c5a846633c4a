package types

// --- Type Widening ---

// GetWidenedType converts literal types to their corresponding primitive base types.
// Enum members widen to their enum. Unions are widened member-wise.
// Other types are returned unchanged.
func (t *Table) GetWidenedType(typ Type) Type {
	switch tt := typ.(type) {
	case *LiteralType:
		return tt.Base
	case *EnumMemberType:
		return tt.Enum
	case *UnionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = t.GetWidenedType(m)
		}
		return t.Union(members...)
	}
	return typ
}

// DeeplyWidenType widens literals at the top level, in object fields and in
// array and tuple elements. It is applied to the inferred type of mutable
// bindings (`let x = { kind: "a" }` has type { kind: string }).
func (t *Table) DeeplyWidenType(typ Type) Type {
	switch tt := typ.(type) {
	case *ObjectType:
		fields := make([]Field, len(tt.Fields))
		changed := false
		for i, f := range tt.Fields {
			w := t.DeeplyWidenType(f.Type)
			changed = changed || w != f.Type
			f.Type = w
			fields[i] = f
		}
		if !changed {
			return tt
		}
		return t.NewObjectType(fields, tt.Index, tt.Calls...)
	case *ArrayType:
		return t.array(t.DeeplyWidenType(tt.ElementType), tt.Readonly)
	case *TupleType:
		elems := make([]Type, len(tt.ElementTypes))
		for i, e := range tt.ElementTypes {
			elems[i] = t.DeeplyWidenType(e)
		}
		return t.NewTupleType(TupleSpec{
			Elements: elems,
			Optional: tt.OptionalElements,
			Rest:     t.DeeplyWidenType(tt.RestElementType),
			Readonly: tt.Readonly,
		})
	}
	return t.GetWidenedType(typ)
}
