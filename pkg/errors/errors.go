package errors

import (
	"fmt"
	"sort"

	"structcheck/pkg/source"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindCyclicAlias             Kind = "CyclicAlias"
	KindUnassignable            Kind = "Unassignable"
	KindTypeParameterConstraint Kind = "TypeParameterConstraint"
	KindNoMatchingOverload      Kind = "NoMatchingOverload"
	KindUnresolvedIdentifier    Kind = "UnresolvedIdentifier"
	KindArity                   Kind = "Arity"
	KindNotCallable             Kind = "NotCallable"
	KindUnknownProperty         Kind = "UnknownProperty"
	KindReadonlyAssignment      Kind = "ReadonlyAssignment"
	KindDeclarationConflict     Kind = "DeclarationConflict"
	KindImplicitAny             Kind = "ImplicitAny"
	KindInvalidOperator         Kind = "InvalidOperator"
	KindInvalidDeclaration      Kind = "InvalidDeclaration"
	KindInternal                Kind = "Internal"
)

// CheckError is implemented by every error the checker reports, so callers
// can render them uniformly.
type CheckError interface {
	error
	Pos() source.Position
	Kind() Kind
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error
}

// Diagnostic is one reported problem, attached to the declaration being
// checked when it was found.
type Diagnostic struct {
	source.Position
	Category    Kind
	Msg         string
	Declaration string // Name of the enclosing top-level declaration, if any
	Cause       error  // The typed error, usable with errors.As
}

func (d *Diagnostic) Error() string {
	if d.Position.IsValid() {
		return fmt.Sprintf("%s: %s Error: %s", d.Position, d.Category, d.Msg)
	}
	return fmt.Sprintf("%s Error: %s", d.Category, d.Msg)
}
func (d *Diagnostic) Pos() source.Position { return d.Position }
func (d *Diagnostic) Kind() Kind           { return d.Category }
func (d *Diagnostic) Message() string      { return d.Msg }
func (d *Diagnostic) Unwrap() error        { return d.Cause }

// New wraps cause in a diagnostic at pos. The message is the cause's text.
func New(pos source.Position, kind Kind, cause error) *Diagnostic {
	return &Diagnostic{Position: pos, Category: kind, Msg: cause.Error(), Cause: cause}
}

// In returns a copy of d attributed to declaration name.
func (d *Diagnostic) In(name string) *Diagnostic {
	cp := *d
	cp.Declaration = name
	return &cp
}

// SortByPosition orders diagnostics by file, line and column, keeping the
// original order for ties.
func SortByPosition(diags []*Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Position, diags[j].Position
		ap, bp := a.File(), b.File()
		if ap != bp {
			return ap < bp
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// CountByKind tallies diagnostics per kind.
func CountByKind(diags []*Diagnostic) map[Kind]int {
	counts := make(map[Kind]int)
	for _, d := range diags {
		counts[d.Category]++
	}
	return counts
}
