package types

// Readonly returns typ with every field marked readonly and arrays and
// tuples made readonly, the type written Readonly<T>. Readonly is shallow
// like its runtime counterpart, Object.freeze.
func (t *Table) Readonly(typ Type) Type {
	switch tt := t.Resolve(typ).(type) {
	case *ObjectType:
		fields := make([]Field, len(tt.Fields))
		for i, f := range tt.Fields {
			f.Readonly = true
			fields[i] = f
		}
		return t.NewObjectType(fields, tt.Index, tt.Calls...)
	case *ArrayType:
		return t.array(tt.ElementType, true)
	case *TupleType:
		return t.NewTupleType(TupleSpec{
			Elements: tt.ElementTypes,
			Optional: tt.OptionalElements,
			Rest:     tt.RestElementType,
			Readonly: true,
		})
	case *IntersectionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = t.Readonly(m)
		}
		return t.Intersection(members...)
	case *UnionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = t.Readonly(m)
		}
		return t.Union(members...)
	default:
		return tt
	}
}

// IsReadonlyField reports whether assigning to typ.name is forbidden.
func (t *Table) IsReadonlyField(typ Type, name string) bool {
	f, ok := t.PropertyType(typ, name)
	return ok && f.Readonly
}
