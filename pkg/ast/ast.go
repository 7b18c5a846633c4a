// Package ast is the declaration tree the checker consumes. Trees are built
// by an external front end (see pkg/loader) and are never modified by the
// checker; resolved types are reported in a separate node→type map.
package ast

import (
	"structcheck/pkg/source"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() source.Position
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	String() string
	expressionNode()
}

// TypeNode is a type annotation written in the source.
type TypeNode interface {
	Node
	String() string
	typeNode()
}

// Declaration is a top-level declaration. Name may be empty for top-level
// statements.
type Declaration interface {
	Node
	DeclName() string
	declarationNode()
}

// Span carries the position of a node.
type Span struct {
	Position source.Position
}

func (s Span) Pos() source.Position { return s.Position }

// At is shorthand for a Span at line:column of src.
func At(src *source.SourceFile, line, column int) Span {
	return Span{Position: source.Position{Line: line, Column: column, Source: src}}
}

// --- Program Node ---

// Program is the root node of the tree: one compilation unit.
type Program struct {
	Source       *source.SourceFile
	Declarations []Declaration
}
