package ast

// --- Declarations ---

// TypeParam declares a generic type parameter: T extends Bound = Default.
type TypeParam struct {
	Span
	Name       string
	Constraint TypeNode
	Default    TypeNode
}

// Parameter is a function parameter. Type is nil when unannotated. A
// parameter with a Default may be omitted by callers.
type Parameter struct {
	Span
	Name     string
	Type     TypeNode
	Optional bool
	Default  Expression
}

// TypeAliasStatement declares `type Name<T> = Type`.
type TypeAliasStatement struct {
	Span
	Name       string
	TypeParams []*TypeParam
	Type       TypeNode
}

func (d *TypeAliasStatement) DeclName() string { return d.Name }
func (d *TypeAliasStatement) declarationNode() {}
func (d *TypeAliasStatement) statementNode()   {}

// InterfaceDeclaration declares an interface. Several declarations with the
// same name merge into one shape.
type InterfaceDeclaration struct {
	Span
	Name       string
	TypeParams []*TypeParam
	Extends    []TypeNode
	Properties []*ObjectTypeProperty
	Index      *IndexSignature
	Calls      []*FunctionTypeExpression
}

func (d *InterfaceDeclaration) DeclName() string { return d.Name }
func (d *InterfaceDeclaration) declarationNode() {}

// EnumMember is one enum member; Value is nil for auto-numbered members.
type EnumMember struct {
	Span
	Name  string
	Value Expression
}

// EnumDeclaration declares an enum.
type EnumDeclaration struct {
	Span
	Name    string
	Const   bool
	Members []*EnumMember
}

func (d *EnumDeclaration) DeclName() string { return d.Name }
func (d *EnumDeclaration) declarationNode() {}

// FunctionDeclaration declares a named function. A declaration without a
// body is an overload signature for the following implementation. Abstract
// is only set on class methods.
type FunctionDeclaration struct {
	Span
	Name       string
	Abstract   bool
	TypeParams []*TypeParam
	Params     []*Parameter
	Rest       *Parameter
	This       TypeNode
	ReturnType TypeNode
	Body       *BlockStatement
}

func (d *FunctionDeclaration) DeclName() string { return d.Name }
func (d *FunctionDeclaration) declarationNode() {}

// ClassField declares an instance field.
type ClassField struct {
	Span
	Name     string
	Type     TypeNode
	Optional bool
	Readonly bool
	Value    Expression
}

// ClassDeclaration declares a class. Only its structural shape matters:
// inherited members, fields and methods form the instance type.
type ClassDeclaration struct {
	Span
	Name        string
	Abstract    bool
	TypeParams  []*TypeParam
	Extends     *TypeReference
	Implements  []TypeNode
	Fields      []*ClassField
	Constructor *FunctionDeclaration
	Methods     []*FunctionDeclaration
}

func (d *ClassDeclaration) DeclName() string { return d.Name }
func (d *ClassDeclaration) declarationNode() {}

// StatementDeclaration wraps a top-level statement other than a variable
// declaration.
type StatementDeclaration struct {
	Span
	Statement Statement
}

func (d *StatementDeclaration) DeclName() string { return "" }
func (d *StatementDeclaration) declarationNode() {}
