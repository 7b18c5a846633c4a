package types

import (
	"strings"
)

// --- Object Types ---

// Field is one named member of an object type.
type Field struct {
	Name     string
	Type     Type
	Optional bool
	Readonly bool
}

// IndexSignature represents an index signature like [key: string]: Type.
// Key is "string" or "number".
type IndexSignature struct {
	Key   string
	Value Type
}

func (is *IndexSignature) String() string {
	return "[key: " + is.Key + "]: " + typeString(is.Value)
}

// ObjectType represents a structural object shape: named fields in
// declaration order, an optional index signature and zero or more call
// signatures (an object with call signatures is callable, and several of
// them form an overload set).
type ObjectType struct {
	interned
	Fields []Field
	Index  *IndexSignature
	Calls  []*FunctionType

	byName map[string]int
}

func (ot *ObjectType) typeNode()              {}
func (ot *ObjectType) Equals(other Type) bool { return sameType(ot, other) }

func (ot *ObjectType) String() string {
	var parts []string
	for _, f := range ot.Fields {
		var sb strings.Builder
		if f.Readonly {
			sb.WriteString("readonly ")
		}
		sb.WriteString(f.Name)
		if f.Optional {
			sb.WriteByte('?')
		}
		sb.WriteString(": ")
		sb.WriteString(typeString(f.Type))
		parts = append(parts, sb.String())
	}
	if ot.Index != nil {
		parts = append(parts, ot.Index.String())
	}
	for _, c := range ot.Calls {
		parts = append(parts, c.format(": "))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Field looks up a field by name.
func (ot *ObjectType) Field(name string) (Field, bool) {
	i, ok := ot.byName[name]
	if !ok {
		return Field{}, false
	}
	return ot.Fields[i], true
}

// IsEmpty reports whether the object is `{}`.
func (ot *ObjectType) IsEmpty() bool {
	return len(ot.Fields) == 0 && ot.Index == nil && len(ot.Calls) == 0
}

// IsCallable returns true if this object type has call signatures
func (ot *ObjectType) IsCallable() bool {
	return len(ot.Calls) > 0
}

// NewObjectType interns an object type. Later fields with a duplicate name
// replace earlier ones in place.
func (t *Table) NewObjectType(fields []Field, index *IndexSignature, calls ...*FunctionType) *ObjectType {
	byName := make(map[string]int, len(fields))
	var kept []Field
	for _, f := range fields {
		if f.Type == nil {
			f.Type = Any
		}
		if i, ok := byName[f.Name]; ok {
			kept[i] = f
			continue
		}
		byName[f.Name] = len(kept)
		kept = append(kept, f)
	}
	if index != nil {
		idx := *index
		index = &idx
	}
	calls = append([]*FunctionType(nil), calls...)
	return t.intern(objectKey(kept, index, calls), func(id TypeID) Type {
		return &ObjectType{interned: interned{id}, Fields: kept, Index: index, Calls: calls, byName: byName}
	}).(*ObjectType)
}

// EmptyObject returns the interned `{}` type.
func (t *Table) EmptyObject() *ObjectType {
	return t.NewObjectType(nil, nil)
}

// ObjectBuilder accumulates the members of an object type before interning.
type ObjectBuilder struct {
	table  *Table
	fields []Field
	index  *IndexSignature
	calls  []*FunctionType
}

// Object starts building an object type.
func (t *Table) Object() *ObjectBuilder {
	return &ObjectBuilder{table: t}
}

// WithProperty adds a required property.
func (b *ObjectBuilder) WithProperty(name string, typ Type) *ObjectBuilder {
	b.fields = append(b.fields, Field{Name: name, Type: typ})
	return b
}

// WithOptionalProperty adds an optional property.
func (b *ObjectBuilder) WithOptionalProperty(name string, typ Type) *ObjectBuilder {
	b.fields = append(b.fields, Field{Name: name, Type: typ, Optional: true})
	return b
}

// WithReadOnlyProperty adds a readonly property.
func (b *ObjectBuilder) WithReadOnlyProperty(name string, typ Type) *ObjectBuilder {
	b.fields = append(b.fields, Field{Name: name, Type: typ, Readonly: true})
	return b
}

// WithField adds a fully described field.
func (b *ObjectBuilder) WithField(f Field) *ObjectBuilder {
	b.fields = append(b.fields, f)
	return b
}

// WithIndex sets the index signature.
func (b *ObjectBuilder) WithIndex(key string, value Type) *ObjectBuilder {
	b.index = &IndexSignature{Key: key, Value: value}
	return b
}

// WithCallSignature adds a call signature.
func (b *ObjectBuilder) WithCallSignature(fn *FunctionType) *ObjectBuilder {
	b.calls = append(b.calls, fn)
	return b
}

// Build interns the accumulated object type.
func (b *ObjectBuilder) Build() *ObjectType {
	return b.table.NewObjectType(b.fields, b.index, b.calls...)
}

// MergeObjectTypes combines object shapes into one, as done for
// intersections of objects and for merged interface declarations. A field
// present in several inputs gets the intersection of their types; it stays
// optional only if optional everywhere. Call signatures are concatenated in
// order, index signatures intersected.
func (t *Table) MergeObjectTypes(objs ...*ObjectType) *ObjectType {
	var fields []Field
	pos := make(map[string]int)
	var index *IndexSignature
	var calls []*FunctionType
	seenCall := make(map[*FunctionType]bool)
	for _, o := range objs {
		for _, f := range o.Fields {
			if i, ok := pos[f.Name]; ok {
				prev := fields[i]
				fields[i] = Field{
					Name:     f.Name,
					Type:     t.Intersection(prev.Type, f.Type),
					Optional: prev.Optional && f.Optional,
					Readonly: prev.Readonly || f.Readonly,
				}
				continue
			}
			pos[f.Name] = len(fields)
			fields = append(fields, f)
		}
		if o.Index != nil {
			if index == nil || index.Key != o.Index.Key {
				index = o.Index
			} else {
				index = &IndexSignature{Key: index.Key, Value: t.Intersection(index.Value, o.Index.Value)}
			}
		}
		for _, c := range o.Calls {
			if !seenCall[c] {
				seenCall[c] = true
				calls = append(calls, c)
			}
		}
	}
	return t.NewObjectType(fields, index, calls...)
}

// IsObjectType returns true if the type is an object type
func IsObjectType(t Type) bool {
	_, ok := t.(*ObjectType)
	return ok
}
