package types

// --- Narrowing Refinements ---
//
// Each refinement splits a binding's type into the type it has where a
// runtime test succeeds and the type it has where the test fails. Neither
// input is modified; an empty side is never.

// NarrowByKind refines typ by `typeof x === kind`.
func (t *Table) NarrowByKind(typ Type, kind string) (Type, Type) {
	typ = t.resolveMembers(typ)
	if typ == Any || typ == Unknown || typ == Invalid {
		if p, ok := kindPrimitive(kind); ok {
			return p, typ
		}
		return typ, typ
	}
	matches := func(m Type) bool {
		if tp, ok := m.(*TypeParameterType); ok && tp.Parameter.Constraint != nil {
			m = t.Resolve(tp.Parameter.Constraint)
		}
		return TypeofKind(m) == kind
	}
	return t.Filter(typ, matches), t.Filter(typ, func(m Type) bool { return !matches(m) })
}

// kindPrimitive maps a typeof result to the primitive it proves.
func kindPrimitive(kind string) (Type, bool) {
	switch kind {
	case "number":
		return Number, true
	case "string":
		return String, true
	case "boolean":
		return Boolean, true
	case "bigint":
		return BigInt, true
	case "symbol":
		return Symbol, true
	case "undefined":
		return Undefined, true
	}
	return nil, false
}

// NarrowByLiteral refines typ by `x === lit`, where lit is a literal type,
// null or undefined.
func (t *Table) NarrowByLiteral(typ Type, lit Type) (Type, Type) {
	typ = t.resolveMembers(typ)
	if typ == Any || typ == Unknown || typ == Invalid {
		return lit, typ
	}
	var yes []Type
	for _, m := range Members(typ) {
		switch {
		case m == lit || enumValue(m) == lit:
			yes = append(yes, m)
		case m == Boolean && (lit == True || lit == False):
			yes = append(yes, lit)
		case m == Void && lit == Undefined:
			yes = append(yes, lit)
		case !IsUnit(m) && !IsEnumMemberType(m) && t.IsAssignable(lit, m):
			yes = append(yes, lit)
		}
	}
	no := t.Filter(typ, func(m Type) bool {
		return m != lit && enumValue(m) != lit
	})
	return t.Union(yes...), no
}

func enumValue(m Type) Type {
	if em, ok := m.(*EnumMemberType); ok {
		return em.Value
	}
	return nil
}

// NarrowByDiscriminant refines a union of object types by `x.field === lit`.
// The true side keeps the variants whose field admits lit; the false side
// drops the variants whose field is exactly lit.
func (t *Table) NarrowByDiscriminant(typ Type, field string, lit Type) (Type, Type) {
	typ = t.resolveMembers(typ)
	if typ == Any || typ == Unknown || typ == Invalid {
		return typ, typ
	}
	var yes, no []Type
	for _, m := range Members(typ) {
		f, ok := t.PropertyType(m, field)
		if !ok {
			no = append(no, m)
			continue
		}
		ft := t.resolveMembers(f.Type)
		if t.IsAssignable(lit, ft) {
			yes = append(yes, m)
		}
		if ft != lit && !(IsEnumMemberType(ft) && enumValue(ft) == lit) {
			no = append(no, m)
		}
	}
	return t.Union(yes...), t.Union(no...)
}

// NarrowByTruthiness refines typ by `if (x)`. Nullish members and falsy
// literals leave the true side; only members that can be falsy stay on the
// false side.
func (t *Table) NarrowByTruthiness(typ Type) (Type, Type) {
	typ = t.resolveMembers(typ)
	if typ == Any || typ == Unknown || typ == Invalid {
		return typ, typ
	}
	truthy := t.Filter(typ, func(m Type) bool { return !alwaysFalsy(m) })
	falsy := t.Filter(typ, canBeFalsy)
	return truthy, falsy
}

func alwaysFalsy(m Type) bool {
	if IsNullish(m) || m == False {
		return true
	}
	if lit, ok := m.(*LiteralType); ok {
		switch v := lit.Value.(type) {
		case float64:
			return v == 0
		case string:
			return v == ""
		}
	}
	if em, ok := m.(*EnumMemberType); ok {
		return alwaysFalsy(em.Value)
	}
	return false
}

func canBeFalsy(m Type) bool {
	switch mt := m.(type) {
	case *Primitive:
		return mt != Symbol
	case *LiteralType:
		return alwaysFalsy(mt)
	case *EnumMemberType:
		return alwaysFalsy(mt.Value)
	case *EnumType, *TypeParameterType:
		return true
	}
	return false
}

// resolveMembers resolves typ and each of its union members so refinements
// see structural types.
func (t *Table) resolveMembers(typ Type) Type {
	typ = t.Resolve(typ)
	u, ok := typ.(*UnionType)
	if !ok {
		return typ
	}
	changed := false
	members := make([]Type, len(u.Types))
	for i, m := range u.Types {
		members[i] = t.Resolve(m)
		changed = changed || members[i] != m
	}
	if !changed {
		return typ
	}
	return t.Union(members...)
}
