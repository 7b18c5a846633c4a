package checker

import (
	"fmt"
	"strings"

	"structcheck/pkg/errors"
	"structcheck/pkg/types"
)

// kinded is implemented by every checker error so the diagnostic wrapper
// can classify it.
type kinded interface {
	error
	Kind() errors.Kind
}

// Reason says where an assignability check came from; it selects the
// message wording.
type Reason int

const (
	ReasonAssignment Reason = iota
	ReasonArgument
	ReasonReturn
	ReasonImplements
	ReasonOverloadImplementation
	ReasonInitializer
	ReasonAssertion
	ReasonOverride
)

// UnassignableTypeError reports a value whose type does not fit its target.
type UnassignableTypeError struct {
	Source types.Type
	Target types.Type
	Reason Reason
	Name   string // class name for ReasonImplements and ReasonOverride
}

func (e *UnassignableTypeError) Kind() errors.Kind { return errors.KindUnassignable }
func (e *UnassignableTypeError) Error() string {
	switch e.Reason {
	case ReasonArgument:
		return fmt.Sprintf("Argument of type '%s' is not assignable to parameter of type '%s'.", e.Source, e.Target)
	case ReasonImplements:
		return fmt.Sprintf("Class '%s' incorrectly implements interface '%s'.", e.Name, e.Target)
	case ReasonOverride:
		return fmt.Sprintf("Class '%s' incorrectly extends its base class: '%s' is not assignable to '%s'.", e.Name, e.Source, e.Target)
	case ReasonOverloadImplementation:
		return "This overload signature is not compatible with its implementation signature."
	case ReasonAssertion:
		return fmt.Sprintf("Conversion of type '%s' to type '%s' may be a mistake because neither type sufficiently overlaps with the other.", e.Source, e.Target)
	}
	return fmt.Sprintf("Type '%s' is not assignable to type '%s'.", e.Source, e.Target)
}

// TypeParameterConstraintError reports a type argument, inferred or
// explicit, that violates its parameter's bound.
type TypeParameterConstraintError struct {
	Param    *types.TypeParameter
	Bound    types.Type
	Computed types.Type
}

func (e *TypeParameterConstraintError) Kind() errors.Kind { return errors.KindTypeParameterConstraint }
func (e *TypeParameterConstraintError) Error() string {
	return fmt.Sprintf("Type '%s' does not satisfy the constraint '%s' of type parameter '%s'.",
		e.Computed, e.Bound, e.Param.Name)
}

// NoMatchingOverloadError lists every signature tried for a call.
type NoMatchingOverloadError struct {
	Signatures []*types.FunctionType
	Args       []types.Type
}

func (e *NoMatchingOverloadError) Kind() errors.Kind { return errors.KindNoMatchingOverload }
func (e *NoMatchingOverloadError) Error() string {
	var sb strings.Builder
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}
	fmt.Fprintf(&sb, "No overload matches this call with arguments (%s).", strings.Join(args, ", "))
	for i, sig := range e.Signatures {
		fmt.Fprintf(&sb, "\n  Overload %d of %d, '%s'", i+1, len(e.Signatures), sig)
	}
	return sb.String()
}

// UnresolvedIdentifierError reports a name that is not in scope.
type UnresolvedIdentifierError struct {
	Name string
}

func (e *UnresolvedIdentifierError) Kind() errors.Kind { return errors.KindUnresolvedIdentifier }
func (e *UnresolvedIdentifierError) Error() string {
	return fmt.Sprintf("Cannot find name '%s'.", e.Name)
}

// ArityError reports a wrong number of arguments or type arguments.
type ArityError struct {
	What     string // "arguments" or "type arguments"
	Min, Max int    // Max < 0 means unbounded
	Got      int
}

func (e *ArityError) Kind() errors.Kind { return errors.KindArity }
func (e *ArityError) Error() string {
	switch {
	case e.Max < 0:
		return fmt.Sprintf("Expected at least %d %s, but got %d.", e.Min, e.What, e.Got)
	case e.Min == e.Max:
		return fmt.Sprintf("Expected %d %s, but got %d.", e.Min, e.What, e.Got)
	}
	return fmt.Sprintf("Expected %d-%d %s, but got %d.", e.Min, e.Max, e.What, e.Got)
}

// NotCallableError reports a call or new on a value without signatures.
type NotCallableError struct {
	Type      types.Type
	Construct bool
	Abstract  bool // new on an abstract class
}

func (e *NotCallableError) Kind() errors.Kind { return errors.KindNotCallable }
func (e *NotCallableError) Error() string {
	if e.Abstract {
		return "Cannot create an instance of an abstract class."
	}
	if e.Construct {
		return fmt.Sprintf("This expression is not constructable. Type '%s' has no construct signatures.", e.Type)
	}
	if types.IsClassType(e.Type) {
		return fmt.Sprintf("Value of type '%s' is not callable. Did you mean to include 'new'?", e.Type)
	}
	return fmt.Sprintf("This expression is not callable. Type '%s' has no call signatures.", e.Type)
}

// UnknownPropertyError reports access to a property or element that does
// not exist.
type UnknownPropertyError struct {
	Property string
	Type     types.Type
	Detail   string // replaces the default message when set
}

func (e *UnknownPropertyError) Kind() errors.Kind { return errors.KindUnknownProperty }
func (e *UnknownPropertyError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Property '%s' does not exist on type '%s'.", e.Property, e.Type)
}

// ReadonlyAssignmentError reports a write to a constant, a readonly field
// or an element of a readonly array or tuple.
type ReadonlyAssignmentError struct {
	Name string
	What string // "constant", "property" or "index"
	Type types.Type
}

func (e *ReadonlyAssignmentError) Kind() errors.Kind { return errors.KindReadonlyAssignment }
func (e *ReadonlyAssignmentError) Error() string {
	switch e.What {
	case "constant":
		return fmt.Sprintf("Cannot assign to '%s' because it is a constant.", e.Name)
	case "index":
		return fmt.Sprintf("Index signature in type '%s' only permits reading.", e.Type)
	}
	return fmt.Sprintf("Cannot assign to '%s' because it is a read-only property.", e.Name)
}

// DeclarationConflictError reports declarations that cannot coexist.
type DeclarationConflictError struct {
	Name   string
	Detail string
}

func (e *DeclarationConflictError) Kind() errors.Kind { return errors.KindDeclarationConflict }
func (e *DeclarationConflictError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Duplicate identifier '%s'.", e.Name)
}

// ImplicitAnyError reports a parameter that silently became any.
type ImplicitAnyError struct {
	Name string
}

func (e *ImplicitAnyError) Kind() errors.Kind { return errors.KindImplicitAny }
func (e *ImplicitAnyError) Error() string {
	return fmt.Sprintf("Parameter '%s' implicitly has an 'any' type.", e.Name)
}

// InvalidOperatorError reports operands an operator cannot combine.
type InvalidOperatorError struct {
	Operator    string
	Left, Right types.Type // Left is nil for prefix operators
}

func (e *InvalidOperatorError) Kind() errors.Kind { return errors.KindInvalidOperator }
func (e *InvalidOperatorError) Error() string {
	if e.Left == nil {
		return fmt.Sprintf("Operator '%s' cannot be applied to type '%s'.", e.Operator, e.Right)
	}
	return fmt.Sprintf("Operator '%s' cannot be applied to types '%s' and '%s'.", e.Operator, e.Left, e.Right)
}

// InvalidDeclarationError reports a declaration the checker cannot give a
// meaning to, such as an enum member without a constant value.
type InvalidDeclarationError struct {
	Msg string
}

func (e *InvalidDeclarationError) Kind() errors.Kind { return errors.KindInvalidDeclaration }
func (e *InvalidDeclarationError) Error() string     { return e.Msg }

// InternalError reports a checker failure confined to one declaration.
type InternalError struct {
	Declaration string
	Panic       any
}

func (e *InternalError) Kind() errors.Kind { return errors.KindInternal }
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal checker error in '%s': %v", e.Declaration, e.Panic)
}

// kindOf classifies err for its diagnostic.
func kindOf(err error) errors.Kind {
	switch e := err.(type) {
	case kinded:
		return e.Kind()
	case *types.CyclicAliasError:
		return errors.KindCyclicAlias
	}
	return errors.KindInternal
}
