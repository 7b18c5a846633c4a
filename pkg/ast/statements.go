package ast

// --- Statement Nodes ---

// VarKind distinguishes let, const and var bindings.
type VarKind int

const (
	Let VarKind = iota
	Const
	Var
)

func (k VarKind) String() string {
	switch k {
	case Const:
		return "const"
	case Var:
		return "var"
	default:
		return "let"
	}
}

// VarStatement declares a binding: let/const/var Name: Type = Value. At top
// level it is also a Declaration.
type VarStatement struct {
	Span
	Kind  VarKind
	Name  string
	Type  TypeNode
	Value Expression
}

func (s *VarStatement) statementNode()   {}
func (s *VarStatement) DeclName() string { return s.Name }
func (s *VarStatement) declarationNode() {}

// ExpressionStatement evaluates an expression for its effects.
type ExpressionStatement struct {
	Span
	Expression Expression
}

func (s *ExpressionStatement) statementNode() {}

// BlockStatement is a braced list of statements and opens a scope.
type BlockStatement struct {
	Span
	Statements []Statement
}

func (s *BlockStatement) statementNode() {}

// IfStatement is if (Condition) Consequence else Alternative; Alternative
// may be nil.
type IfStatement struct {
	Span
	Condition   Expression
	Consequence Statement
	Alternative Statement
}

func (s *IfStatement) statementNode() {}

// ReturnStatement returns from the enclosing function; Value may be nil.
type ReturnStatement struct {
	Span
	Value Expression
}

func (s *ReturnStatement) statementNode() {}

// ThrowStatement throws Value.
type ThrowStatement struct {
	Span
	Value Expression
}

func (s *ThrowStatement) statementNode() {}
