package types

import (
	"fmt"
)

// EnumType represents an enum type (e.g., Color with members Red, Green, Blue).
// Members keep declaration order.
type EnumType struct {
	interned
	Name    string
	Members []*EnumMemberType
	IsConst bool // True for const enums
}

// EnumMemberType represents a specific enum member literal type (e.g., Color.Red)
type EnumMemberType struct {
	interned
	Enum       *EnumType
	MemberName string
	Value      *LiteralType // number or string literal
}

// EnumMember is the construction input for one enum member.
type EnumMember struct {
	Name  string
	Value *LiteralType
}

// String returns the string representation of the enum type
func (e *EnumType) String() string {
	return e.Name
}
func (e *EnumType) typeNode()              {}
func (e *EnumType) Equals(other Type) bool { return sameType(e, other) }

// Member looks up a member by name.
func (e *EnumType) Member(name string) (*EnumMemberType, bool) {
	for _, m := range e.Members {
		if m.MemberName == name {
			return m, true
		}
	}
	return nil, false
}

// IsNumeric reports whether every member has a numeric value.
func (e *EnumType) IsNumeric() bool {
	for _, m := range e.Members {
		if m.Value.Base != Number {
			return false
		}
	}
	return true
}

// IsStringEnum reports whether every member has a string value.
func (e *EnumType) IsStringEnum() bool {
	if len(e.Members) == 0 {
		return false
	}
	for _, m := range e.Members {
		if m.Value.Base != String {
			return false
		}
	}
	return true
}

// HasNumericMembers reports whether any member is numeric, which is what
// makes the enum reverse-mappable (Color[0]) and lets plain numbers in.
func (e *EnumType) HasNumericMembers() bool {
	for _, m := range e.Members {
		if m.Value.Base == Number {
			return true
		}
	}
	return false
}

// String returns the string representation of the enum member type
func (em *EnumMemberType) String() string {
	return fmt.Sprintf("%s.%s", em.Enum.Name, em.MemberName)
}
func (em *EnumMemberType) typeNode()              {}
func (em *EnumMemberType) Equals(other Type) bool { return sameType(em, other) }

// NewEnumType interns an enum by name. The first definition of a name wins;
// declaration conflicts are reported by the checker before this point.
func (t *Table) NewEnumType(name string, isConst bool, members []EnumMember) *EnumType {
	typ := t.intern("E:"+name, func(id TypeID) Type {
		return &EnumType{interned: interned{id}, Name: name, IsConst: isConst}
	}).(*EnumType)
	t.mu.Lock()
	defer t.mu.Unlock()
	if typ.Members != nil || len(members) == 0 {
		return typ
	}
	built := make([]*EnumMemberType, len(members))
	for i, m := range members {
		id := t.nextID
		t.nextID++
		mt := &EnumMemberType{interned: interned{id}, Enum: typ, MemberName: m.Name, Value: m.Value}
		t.byKey["EM:"+name+"."+m.Name] = mt
		t.all = append(t.all, mt)
		built[i] = mt
	}
	typ.Members = built
	return typ
}

// MemberUnion returns the union of the enum's member literal values.
func (t *Table) MemberUnion(e *EnumType) Type {
	values := make([]Type, len(e.Members))
	for i, m := range e.Members {
		values[i] = m.Value
	}
	return t.Union(values...)
}

// IsEnumType checks if a type is an EnumType
func IsEnumType(t Type) bool {
	_, ok := t.(*EnumType)
	return ok
}

// IsEnumMemberType checks if a type is an EnumMemberType
func IsEnumMemberType(t Type) bool {
	_, ok := t.(*EnumMemberType)
	return ok
}
