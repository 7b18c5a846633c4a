package types

import (
	"sort"
	"strings"
)

// --- Union Types ---

// UnionType represents a union of multiple types (e.g., string | number).
// Members are flattened, deduplicated, never-free and kept in canonical
// order, so two unions of the same set are the same interned pointer.
type UnionType struct {
	interned
	Types []Type
}

func (ut *UnionType) String() string {
	parts := make([]string, len(ut.Types))
	for i, t := range ut.Types {
		parts[i] = wrapped(t)
	}
	return strings.Join(parts, " | ")
}
func (ut *UnionType) typeNode()              {}
func (ut *UnionType) Equals(other Type) bool { return sameType(ut, other) }

// ContainsType checks if the union contains the given type
func (ut *UnionType) ContainsType(target Type) bool {
	for _, t := range ut.Types {
		if t == target {
			return true
		}
	}
	return false
}

// Union creates a union type from the provided types.
//   - Nested unions are flattened.
//   - Duplicate members are removed.
//   - never members drop out; an empty union is never.
//   - any and unknown absorb the whole union (any wins over unknown).
//   - A literal whose base primitive is also present is dropped.
//   - true | false becomes boolean.
//   - A single remaining member is returned as-is.
func (t *Table) Union(ts ...Type) Type {
	var flat []Type
	seen := make(map[Type]bool)
	var add func(Type)
	add = func(m Type) {
		if m == nil {
			return
		}
		if u, ok := m.(*UnionType); ok {
			for _, inner := range u.Types {
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

	if seen[Invalid] {
		return Invalid
	}
	if seen[Any] {
		return Any
	}
	if seen[Unknown] {
		return Unknown
	}

	members := flat[:0:0]
	for _, m := range flat {
		if m == Never {
			continue
		}
		if lit, ok := m.(*LiteralType); ok && seen[lit.Base] {
			continue
		}
		if (m == True || m == False) && seen[True] && seen[False] && !seen[Boolean] {
			continue
		}
		members = append(members, m)
	}
	if seen[True] && seen[False] && !seen[Boolean] {
		members = append(members, Boolean)
	}

	switch len(members) {
	case 0:
		return Never
	case 1:
		return members[0]
	}

	sort.SliceStable(members, func(i, j int) bool {
		return memberOrder(members[i], members[j])
	})
	return t.intern("U:"+idList(members, true), func(id TypeID) Type {
		return &UnionType{interned: interned{id}, Types: members}
	})
}

// memberOrder is the canonical display order for union and intersection
// members: by printed form, ties broken by id.
func memberOrder(a, b Type) bool {
	as, bs := a.String(), b.String()
	if as != bs {
		return as < bs
	}
	return a.ID() < b.ID()
}

// Members returns the members of a union, or t itself as a single member.
func Members(t Type) []Type {
	if u, ok := t.(*UnionType); ok {
		return u.Types
	}
	if t == nil {
		return nil
	}
	return []Type{t}
}

// RemoveType returns from with every member equal to target removed. The
// result is never when nothing remains.
func (t *Table) RemoveType(from Type, target Type) Type {
	return t.Filter(from, func(m Type) bool { return m != target })
}

// Filter keeps the union members of from that satisfy keep. boolean is
// treated as true | false so literal filters can split it.
func (t *Table) Filter(from Type, keep func(Type) bool) Type {
	var kept []Type
	for _, m := range Members(from) {
		if m == Boolean {
			for _, b := range []Type{True, False} {
				if keep(b) {
					kept = append(kept, b)
				}
			}
			continue
		}
		if keep(m) {
			kept = append(kept, m)
		}
	}
	return t.Union(kept...)
}

// IsUnionType returns true if the type is a union type
func IsUnionType(t Type) bool {
	_, ok := t.(*UnionType)
	return ok
}
