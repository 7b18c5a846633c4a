package types

import (
	"math/big"
	"strconv"
)

// --- Primitive Types ---

// PrimitiveKind enumerates the fixed set of primitive types.
type PrimitiveKind uint8

const (
	KindNumber PrimitiveKind = iota + 1
	KindString
	KindBoolean
	KindBigInt
	KindSymbol
	KindNull
	KindUndefined
	KindVoid
	KindNever
	KindUnknown
	KindAny
	KindError
)

// Primitive represents a fundamental, non-composite type.
type Primitive struct {
	interned
	Name string
	Kind PrimitiveKind
}

func (p *Primitive) String() string {
	return p.Name
}
func (p *Primitive) typeNode() {}
func (p *Primitive) Equals(other Type) bool {
	// Primitives are singletons, so pointer equality is sufficient.
	return sameType(p, other)
}

func newPrimitive(name string, kind PrimitiveKind) *Primitive {
	return &Primitive{interned: interned{TypeID(kind)}, Name: name, Kind: kind}
}

// Pre-defined instances for the primitive types. They are shared by every
// Table.
var (
	Number    = newPrimitive("number", KindNumber)
	String    = newPrimitive("string", KindString)
	Boolean   = newPrimitive("boolean", KindBoolean)
	BigInt    = newPrimitive("bigint", KindBigInt)
	Symbol    = newPrimitive("symbol", KindSymbol)
	Null      = newPrimitive("null", KindNull)
	Undefined = newPrimitive("undefined", KindUndefined)
	Void      = newPrimitive("void", KindVoid)
	Never     = newPrimitive("never", KindNever)
	Unknown   = newPrimitive("unknown", KindUnknown)
	Any       = newPrimitive("any", KindAny)

	// Invalid replaces a type that failed to resolve (a cyclic alias, an
	// unknown name). It is compatible with everything in both directions so a
	// single failure is reported once instead of cascading.
	Invalid = newPrimitive("<error>", KindError)
)

// PrimitiveByName maps the source spelling of a primitive to its singleton.
func PrimitiveByName(name string) (*Primitive, bool) {
	switch name {
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
	case "null":
		return Null, true
	case "undefined":
		return Undefined, true
	case "void":
		return Void, true
	case "never":
		return Never, true
	case "unknown":
		return Unknown, true
	case "any":
		return Any, true
	}
	return nil, false
}

// IsPrimitive returns true if the type is a primitive type
func IsPrimitive(t Type) bool {
	_, ok := t.(*Primitive)
	return ok
}

// IsNullish returns true for null, undefined and void.
func IsNullish(t Type) bool {
	return t == Null || t == Undefined || t == Void
}

// IsTop reports whether t is one of the types that accept every value.
func IsTop(t Type) bool {
	return t == Any || t == Unknown || t == Invalid
}

// --- Literal Types ---

// LiteralType represents a specific literal value used as a type. Value holds
// a float64, string, bool or *big.Int depending on Base.
type LiteralType struct {
	interned
	Base  *Primitive
	Value any
}

func (lt *LiteralType) String() string         { return literalText(lt.Base, lt.Value) }
func (lt *LiteralType) typeNode()              {}
func (lt *LiteralType) Equals(other Type) bool { return sameType(lt, other) }

// The boolean literals are singletons like the primitives.
var (
	True  = &LiteralType{interned: interned{20}, Base: Boolean, Value: true}
	False = &LiteralType{interned: interned{21}, Base: Boolean, Value: false}
)

func literalText(base *Primitive, value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case *big.Int:
		return v.String() + "n"
	}
	return base.Name
}

// NumberLiteral interns the literal type of a number.
func (t *Table) NumberLiteral(v float64) *LiteralType {
	return t.literal(Number, v)
}

// StringLiteral interns the literal type of a string.
func (t *Table) StringLiteral(v string) *LiteralType {
	return t.literal(String, v)
}

// BooleanLiteral returns True or False.
func (t *Table) BooleanLiteral(v bool) *LiteralType {
	if v {
		return True
	}
	return False
}

// BigIntLiteral interns the literal type of a bigint.
func (t *Table) BigIntLiteral(v *big.Int) *LiteralType {
	return t.literal(BigInt, new(big.Int).Set(v))
}

func (t *Table) literal(base *Primitive, value any) *LiteralType {
	return t.intern(literalKey(base, value), func(id TypeID) Type {
		return &LiteralType{interned: interned{id}, Base: base, Value: value}
	}).(*LiteralType)
}

// IsLiteral returns true if the type is a literal type
func IsLiteral(t Type) bool {
	_, ok := t.(*LiteralType)
	return ok
}

// IsUnit reports whether t has exactly one inhabitant, so it can be compared
// against with === for narrowing.
func IsUnit(t Type) bool {
	return IsLiteral(t) || t == Null || t == Undefined
}

// TypeofKind returns the string the runtime `typeof` operator yields for
// values of t, or "" when t spans several kinds.
func TypeofKind(t Type) string {
	switch tt := t.(type) {
	case *Primitive:
		switch tt.Kind {
		case KindNumber:
			return "number"
		case KindString:
			return "string"
		case KindBoolean:
			return "boolean"
		case KindBigInt:
			return "bigint"
		case KindSymbol:
			return "symbol"
		case KindUndefined, KindVoid:
			return "undefined"
		case KindNull:
			return "object"
		}
		return ""
	case *LiteralType:
		return TypeofKind(tt.Base)
	case *EnumMemberType:
		return TypeofKind(tt.Value)
	case *EnumType:
		if tt.IsStringEnum() {
			return "string"
		}
		return "number"
	case *FunctionType, *ClassType:
		return "function"
	case *ObjectType:
		if len(tt.Calls) > 0 {
			return "function"
		}
		return "object"
	case *ArrayType, *TupleType:
		return "object"
	}
	return ""
}
