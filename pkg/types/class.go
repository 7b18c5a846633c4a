package types

import (
	"fmt"
)

// ClassType is the type of a class value itself (the constructor). Instances
// are plain structural ObjectTypes; the class name carries no nominal
// meaning for assignability.
type ClassType struct {
	interned
	Name        string
	Instance    *ObjectType
	Constructor *FunctionType // Returns the instance type
}

func (ct *ClassType) String() string {
	return fmt.Sprintf("typeof %s", ct.Name)
}
func (ct *ClassType) typeNode()              {}
func (ct *ClassType) Equals(other Type) bool { return sameType(ct, other) }

// NewClassType interns the constructor type of class name. A constructor
// without a return type returns instance; generic classes return a
// reference to their own alias instead.
func (t *Table) NewClassType(name string, instance *ObjectType, ctor Signature) *ClassType {
	if ctor.Return == nil {
		ctor.Return = instance
	}
	fn := t.NewFunctionType(ctor)
	return t.intern("C:"+name+":"+idOf(instance)+":"+idOf(fn), func(id TypeID) Type {
		return &ClassType{interned: interned{id}, Name: name, Instance: instance, Constructor: fn}
	}).(*ClassType)
}

// IsClassType reports whether t is a class constructor type.
func IsClassType(t Type) bool {
	_, ok := t.(*ClassType)
	return ok
}
