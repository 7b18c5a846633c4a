package types

import (
	"sort"
	"strings"
)

// --- Intersection Types ---

// IntersectionType represents an intersection of multiple types (e.g., A & B).
// A value of intersection type must satisfy ALL constituent types simultaneously.
// Object members never appear alongside each other: they are merged into a
// single ObjectType when the intersection is built.
type IntersectionType struct {
	interned
	Types []Type
}

func (it *IntersectionType) String() string {
	parts := make([]string, len(it.Types))
	for i, t := range it.Types {
		parts[i] = wrapped(t)
	}
	return strings.Join(parts, " & ")
}
func (it *IntersectionType) typeNode()              {}
func (it *IntersectionType) Equals(other Type) bool { return sameType(it, other) }

// Intersection creates an intersection type from the provided types.
//   - Nested intersections are flattened and duplicates removed.
//   - unknown members drop out; an empty intersection is unknown.
//   - any absorbs; never and the error sentinel propagate.
//   - Two mutually exclusive primitive or literal members collapse to never;
//     a literal together with its own base keeps the literal.
//   - Object members are merged into one ObjectType.
//
// Unions are not distributed over; A & (B | C) stays an intersection.
func (t *Table) Intersection(ts ...Type) Type {
	var flat []Type
	seen := make(map[Type]bool)
	var add func(Type)
	add = func(m Type) {
		if m == nil {
			return
		}
		if it, ok := m.(*IntersectionType); ok {
			for _, inner := range it.Types {
				add(inner)
			}
			return
		}
		if seen[m] {
			return
		}
		seen[m] = true
		flat = append(flat, m)
	}
	for _, m := range ts {
		add(m)
	}

	switch {
	case seen[Invalid]:
		return Invalid
	case seen[Never]:
		return Never
	case seen[Any]:
		return Any
	}

	var atoms []Type // primitives and literals
	var objects []*ObjectType
	var rest []Type
	for _, m := range flat {
		switch mt := m.(type) {
		case *Primitive:
			if mt == Unknown {
				continue
			}
			atoms = append(atoms, mt)
		case *LiteralType:
			atoms = append(atoms, mt)
		case *ObjectType:
			objects = append(objects, mt)
		default:
			rest = append(rest, m)
		}
	}

	atoms, ok := reduceAtoms(atoms)
	if !ok {
		return Never
	}

	members := append([]Type(nil), atoms...)
	switch len(objects) {
	case 0:
	case 1:
		members = append(members, objects[0])
	default:
		members = append(members, t.MergeObjectTypes(objects...))
	}
	members = append(members, rest...)

	switch len(members) {
	case 0:
		return Unknown
	case 1:
		return members[0]
	}

	sort.SliceStable(members, func(i, j int) bool {
		return memberOrder(members[i], members[j])
	})
	return t.intern("I:"+idList(members, true), func(id TypeID) Type {
		return &IntersectionType{interned: interned{id}, Types: members}
	})
}

// reduceAtoms keeps the most specific of a set of primitive and literal
// members. Two atoms share a value only when they are equal or one is a
// literal of the other, so any other pair makes the intersection empty.
func reduceAtoms(atoms []Type) ([]Type, bool) {
	var out []Type
	for _, a := range atoms {
		if len(out) == 0 {
			out = append(out, a)
			continue
		}
		b := out[0]
		switch {
		case a == b, atomWithin(b, a):
		case atomWithin(a, b):
			out[0] = a
		default:
			return nil, false
		}
	}
	return out, true
}

// atomWithin reports whether a is a literal of primitive b.
func atomWithin(a, b Type) bool {
	lit, ok := a.(*LiteralType)
	return ok && lit.Base == b
}

// IsIntersectionType returns true if the type is an intersection type
func IsIntersectionType(t Type) bool {
	_, ok := t.(*IntersectionType)
	return ok
}
