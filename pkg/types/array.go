package types

import (
	"strings"
)

// --- Array Types ---

// ArrayType represents the type of an array. Readonly arrays are assignable
// to and from mutable ones; the flag only governs element assignment.
type ArrayType struct {
	interned
	ElementType Type
	Readonly    bool
}

func (at *ArrayType) String() string {
	s := wrapped(at.ElementType) + "[]"
	if at.Readonly {
		return "readonly " + s
	}
	return s
}
func (at *ArrayType) typeNode()              {}
func (at *ArrayType) Equals(other Type) bool { return sameType(at, other) }

// NewArrayType interns T[].
func (t *Table) NewArrayType(elem Type) *ArrayType {
	return t.array(elem, false)
}

// NewReadonlyArrayType interns readonly T[].
func (t *Table) NewReadonlyArrayType(elem Type) *ArrayType {
	return t.array(elem, true)
}

func (t *Table) array(elem Type, readonly bool) *ArrayType {
	if elem == nil {
		elem = Any
	}
	key := "A:" + idOf(elem)
	if readonly {
		key = "RA:" + idOf(elem)
	}
	return t.intern(key, func(id TypeID) Type {
		return &ArrayType{interned: interned{id}, ElementType: elem, Readonly: readonly}
	}).(*ArrayType)
}

// --- Tuple Types ---

// TupleType represents a tuple type with fixed-length, ordered elements.
// RestElementType is the element type of a trailing rest ([string, ...number[]]
// has RestElementType number); it is always last.
type TupleType struct {
	interned
	ElementTypes     []Type
	OptionalElements []bool
	RestElementType  Type
	Readonly         bool
}

func (tt *TupleType) String() string {
	var parts []string
	for i, elem := range tt.ElementTypes {
		s := typeString(elem)
		if tt.IsOptional(i) {
			s += "?"
		}
		parts = append(parts, s)
	}
	if tt.RestElementType != nil {
		parts = append(parts, "..."+wrapped(tt.RestElementType)+"[]")
	}
	s := "[" + strings.Join(parts, ", ") + "]"
	if tt.Readonly {
		return "readonly " + s
	}
	return s
}
func (tt *TupleType) typeNode()              {}
func (tt *TupleType) Equals(other Type) bool { return sameType(tt, other) }

// IsOptional reports whether fixed position i may be absent.
func (tt *TupleType) IsOptional(i int) bool {
	return i < len(tt.OptionalElements) && tt.OptionalElements[i]
}

// RequiredElements counts the leading positions that must be present.
func (tt *TupleType) RequiredElements() int {
	n := 0
	for i := range tt.ElementTypes {
		if tt.IsOptional(i) {
			break
		}
		n++
	}
	return n
}

// ElementAt returns the type at position i, falling back to the rest
// element past the fixed positions.
func (tt *TupleType) ElementAt(i int) (Type, bool) {
	if i >= 0 && i < len(tt.ElementTypes) {
		return tt.ElementTypes[i], true
	}
	if tt.RestElementType != nil && i >= 0 {
		return tt.RestElementType, true
	}
	return nil, false
}

// TupleSpec is the construction input for NewTupleType.
type TupleSpec struct {
	Elements []Type
	Optional []bool
	Rest     Type
	Readonly bool
}

// NewTupleType interns a tuple. A required element after an optional one is
// treated as optional, since positions can only be omitted from the end.
func (t *Table) NewTupleType(spec TupleSpec) *TupleType {
	elems := append([]Type(nil), spec.Elements...)
	opts := make([]bool, len(elems))
	seenOptional := false
	for i := range elems {
		if elems[i] == nil {
			elems[i] = Any
		}
		if i < len(spec.Optional) && spec.Optional[i] {
			seenOptional = true
		}
		opts[i] = seenOptional
	}
	var sb strings.Builder
	if spec.Readonly {
		sb.WriteString("RT[")
	} else {
		sb.WriteString("T[")
	}
	for i, e := range elems {
		sb.WriteString(idOf(e))
		if opts[i] {
			sb.WriteByte('?')
		}
		sb.WriteByte(',')
	}
	if spec.Rest != nil {
		sb.WriteString("...")
		sb.WriteString(idOf(spec.Rest))
	}
	sb.WriteByte(']')
	return t.intern(sb.String(), func(id TypeID) Type {
		return &TupleType{
			interned:         interned{id},
			ElementTypes:     elems,
			OptionalElements: opts,
			RestElementType:  spec.Rest,
			Readonly:         spec.Readonly,
		}
	}).(*TupleType)
}

// Tuple is shorthand for a tuple of required elements.
func (t *Table) Tuple(elems ...Type) *TupleType {
	return t.NewTupleType(TupleSpec{Elements: elems})
}

// ElementUnion returns the union of every element of the tuple, the element
// type of the array a tuple widens to.
func (t *Table) ElementUnion(tt *TupleType) Type {
	members := append([]Type(nil), tt.ElementTypes...)
	if tt.RestElementType != nil {
		members = append(members, tt.RestElementType)
	}
	return t.Union(members...)
}

// IsArrayType returns true if the type is an array type
func IsArrayType(t Type) bool {
	_, ok := t.(*ArrayType)
	return ok
}
