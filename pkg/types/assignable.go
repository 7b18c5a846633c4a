package types

// --- Type Assignability ---

type pairKey struct {
	source TypeID
	target TypeID
}

// assignCheck carries the recursion guard for one top-level IsAssignable
// call. A pair already in progress is assumed to hold, which makes the
// relation terminate on recursive structural types.
type assignCheck struct {
	table      *Table
	inProgress map[pairKey]bool
}

// IsAssignable checks if a value of type `source` can be assigned to a variable
// of type `target`.
//
// The relation is deliberately unsound in two places: any is assignable to
// and from everything, and function parameters are compared bivariantly.
func (t *Table) IsAssignable(source, target Type) bool {
	if source == nil || target == nil {
		return false
	}
	if source == target {
		return true
	}
	key := pairKey{source.ID(), target.ID()}
	memoize := t.Frozen()
	if memoize {
		if v, ok := t.assignMemo.Load(key); ok {
			return v.(bool)
		}
	}
	c := &assignCheck{table: t, inProgress: make(map[pairKey]bool)}
	res := c.assignable(source, target)
	if memoize {
		t.assignMemo.Store(key, res)
	}
	return res
}

func (c *assignCheck) assignable(source, target Type) bool {
	t := c.table
	if source == nil || target == nil {
		return false
	}

	// Identity and the escape hatches.
	if source == target {
		return true
	}
	if source == Any || target == Any || source == Invalid || target == Invalid {
		return true
	}
	if target == Unknown {
		return true
	}
	if source == Unknown {
		return false
	}
	if source == Never {
		return true
	}
	if target == Never {
		return false
	}

	// Aliases.
	if _, ok := source.(*AliasType); ok {
		return c.guarded(source, target, func() bool {
			return c.assignable(t.Resolve(source), target)
		})
	}
	if _, ok := target.(*AliasType); ok {
		return c.guarded(source, target, func() bool {
			return c.assignable(source, t.Resolve(target))
		})
	}

	// Intersections of aliases compare by their merged shape.
	if si, ok := source.(*IntersectionType); ok && hasAliasMember(si) {
		if resolved := t.Resolve(si); resolved != source {
			return c.guarded(source, target, func() bool {
				return c.assignable(resolved, target)
			})
		}
	}

	// Source union: every member.
	if su, ok := source.(*UnionType); ok {
		for _, m := range su.Types {
			if !c.assignable(m, target) {
				return false
			}
		}
		return true
	}

	// Enums.
	if res, handled := c.enumTarget(source, target); handled {
		return res
	}

	// Target union: some member.
	if tu, ok := target.(*UnionType); ok {
		if source == Boolean && tu.ContainsType(True) && tu.ContainsType(False) {
			return true
		}
		for _, m := range tu.Types {
			if c.assignable(source, m) {
				return true
			}
		}
		return false
	}

	// Target intersection: every member.
	if ti, ok := target.(*IntersectionType); ok {
		for _, m := range ti.Types {
			if !c.assignable(source, m) {
				return false
			}
		}
		return true
	}

	// An enum behaves like the union of its member values.
	switch s := source.(type) {
	case *EnumMemberType:
		return c.assignable(s.Value, target)
	case *EnumType:
		return c.assignable(t.MemberUnion(s), target)
	}

	// Source intersection: some member.
	if si, ok := source.(*IntersectionType); ok {
		for _, m := range si.Types {
			if c.assignable(m, target) {
				return true
			}
		}
		return false
	}

	// Type parameters are opaque; a parameter satisfies whatever its
	// constraint satisfies.
	if sp, ok := source.(*TypeParameterType); ok {
		constraint := sp.Parameter.Constraint
		if constraint == nil {
			constraint = Unknown
		}
		return c.assignable(constraint, target)
	}
	if _, ok := target.(*TypeParameterType); ok {
		return false
	}

	// Primitives and literals.
	switch s := source.(type) {
	case *LiteralType:
		if tp, ok := target.(*Primitive); ok {
			return s.Base == tp
		}
		if _, ok := target.(*LiteralType); ok {
			return false
		}
	case *Primitive:
		if tp, ok := target.(*Primitive); ok {
			return s == Undefined && tp == Void
		}
		if _, ok := target.(*LiteralType); ok {
			return false
		}
	}
	if _, ok := target.(*Primitive); ok {
		return false
	}
	if _, ok := target.(*LiteralType); ok {
		return false
	}

	// The empty object accepts every non-nullish value.
	if to, ok := target.(*ObjectType); ok && to.IsEmpty() {
		return !IsNullish(source)
	}
	if IsNullish(source) {
		return false
	}

	return c.guarded(source, target, func() bool {
		return c.structural(source, target)
	})
}

// guarded runs check unless the pair is already being compared further up
// the stack, in which case it is assumed to hold.
func (c *assignCheck) guarded(source, target Type, check func() bool) bool {
	key := pairKey{source.ID(), target.ID()}
	if c.inProgress[key] {
		return true
	}
	c.inProgress[key] = true
	defer delete(c.inProgress, key)
	return check()
}

// enumTarget handles enum and enum-member targets. Numeric enums accept
// any number, as they do at runtime.
func (c *assignCheck) enumTarget(source, target Type) (result bool, handled bool) {
	switch tt := target.(type) {
	case *EnumType:
		switch s := source.(type) {
		case *EnumMemberType:
			return s.Enum == tt, true
		case *LiteralType:
			return s.Base == Number && tt.HasNumericMembers(), true
		case *Primitive:
			return s == Number && tt.HasNumericMembers(), true
		case *IntersectionType:
			return false, false
		}
		return false, true
	case *EnumMemberType:
		switch s := source.(type) {
		case *LiteralType:
			return s.Base == Number && s == tt.Value, true
		case *IntersectionType:
			return false, false
		}
		return false, true
	}
	return false, false
}

func (c *assignCheck) structural(source, target Type) bool {
	t := c.table
	switch tt := target.(type) {
	case *ObjectType:
		return c.toObject(source, tt)
	case *FunctionType:
		for _, sig := range t.CallSignatures(source) {
			if c.function(sig, tt) {
				return true
			}
		}
		return false
	case *ArrayType:
		switch s := source.(type) {
		case *ArrayType:
			return c.assignable(s.ElementType, tt.ElementType)
		case *TupleType:
			return c.assignable(t.ElementUnion(s), tt.ElementType)
		}
		return false
	case *TupleType:
		if s, ok := source.(*TupleType); ok {
			return c.tuple(s, tt)
		}
		return false
	}
	return false
}

func (c *assignCheck) toObject(source Type, target *ObjectType) bool {
	t := c.table
	so, sourceIsObject := source.(*ObjectType)

	for _, f := range target.Fields {
		var sf Field
		var ok bool
		if sourceIsObject {
			sf, ok = so.Field(f.Name)
		} else {
			sf, ok = t.PropertyType(source, f.Name)
		}
		if !ok {
			if f.Optional {
				continue
			}
			return false
		}
		if sf.Optional && !f.Optional {
			return false
		}
		if !c.assignable(sf.Type, f.Type) {
			return false
		}
	}

	if target.Index != nil {
		if !c.indexCompatible(source, target.Index) {
			return false
		}
	}

	if len(target.Calls) > 0 {
		sigs := t.CallSignatures(source)
		for _, want := range target.Calls {
			matched := false
			for _, sig := range sigs {
				if c.function(sig, want) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

// indexCompatible checks that every member a target index signature ranges
// over is assignable to its value type. A numeric index only constrains
// numerically named fields.
func (c *assignCheck) indexCompatible(source Type, index *IndexSignature) bool {
	switch s := source.(type) {
	case *ObjectType:
		for _, f := range s.Fields {
			if index.Key == "number" && !isNumericName(f.Name) {
				continue
			}
			if !c.assignable(f.Type, index.Value) {
				return false
			}
		}
		if s.Index != nil && (s.Index.Key == index.Key || index.Key == "number") {
			return c.assignable(s.Index.Value, index.Value)
		}
		return true
	case *ArrayType:
		return index.Key == "number" && c.assignable(s.ElementType, index.Value)
	case *TupleType:
		return index.Key == "number" && c.assignable(c.table.ElementUnion(s), index.Value)
	}
	return false
}

// tuple compares position-wise. The source may omit trailing positions the
// target marks optional, and its extra positions must fit the target rest.
func (c *assignCheck) tuple(source, target *TupleType) bool {
	for i, te := range target.ElementTypes {
		if i >= len(source.ElementTypes) {
			if !target.IsOptional(i) {
				return false
			}
			if source.RestElementType != nil && !c.assignable(source.RestElementType, te) {
				return false
			}
			continue
		}
		if source.IsOptional(i) && !target.IsOptional(i) {
			return false
		}
		if !c.assignable(source.ElementTypes[i], te) {
			return false
		}
	}
	for i := len(target.ElementTypes); i < len(source.ElementTypes); i++ {
		if target.RestElementType == nil || !c.assignable(source.ElementTypes[i], target.RestElementType) {
			return false
		}
	}
	if source.RestElementType != nil {
		return target.RestElementType != nil && c.assignable(source.RestElementType, target.RestElementType)
	}
	return true
}

// function compares two signatures: return types covariantly, parameters
// bivariantly. A source may ignore trailing parameters but must not require
// more than the target supplies.
func (c *assignCheck) function(source, target *FunctionType) bool {
	t := c.table
	source = t.Erase(source)
	target = t.Erase(target)

	if target.Rest == nil && source.RequiredParams() > len(target.Params) {
		return false
	}

	n := len(source.Params)
	if len(target.Params) > n {
		n = len(target.Params)
	}
	for i := 0; i < n; i++ {
		sp, okS := source.ParamAt(i)
		tp, okT := target.ParamAt(i)
		if !okS || !okT {
			continue
		}
		if !c.bivariant(sp, tp) {
			return false
		}
	}
	if source.Rest != nil && target.Rest != nil {
		if !c.bivariant(RestElement(source.Rest.Type), RestElement(target.Rest.Type)) {
			return false
		}
	}
	if source.This != nil && target.This != nil && !c.bivariant(source.This, target.This) {
		return false
	}

	if target.Return == Void {
		return true
	}
	return c.assignable(source.Return, target.Return)
}

func (c *assignCheck) bivariant(a, b Type) bool {
	return c.assignable(b, a) || c.assignable(a, b)
}
