package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/internal/testutil"
	"structcheck/pkg/ast"
	"structcheck/pkg/checker"
	"structcheck/pkg/errors"
	"structcheck/pkg/types"
)

func check(t *testing.T, src string) (*ast.Program, *checker.Result) {
	t.Helper()
	return checkWith(t, src, checker.Options{})
}

func checkWith(t *testing.T, src string, opts checker.Options) (*ast.Program, *checker.Result) {
	t.Helper()
	program := testutil.MustLoad(t, src)
	opts.Logger = testutil.NewTestLogger(t)
	if opts.Workers == 0 {
		opts.Workers = 4
	}
	return program, checker.Check(program, opts)
}

func kinds(res *checker.Result) []errors.Kind {
	out := make([]errors.Kind, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Kind()
	}
	return out
}

func messages(res *checker.Result) []string {
	out := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Message()
	}
	return out
}

// varType is the type recorded for the variable declaration called name.
func varType(t *testing.T, program *ast.Program, res *checker.Result, name string) types.Type {
	t.Helper()
	v := testutil.FindVar(program, name)
	require.NotNil(t, v, "no variable %s", name)
	typ, ok := res.Types[v]
	require.True(t, ok, "no type recorded for %s", name)
	return typ
}

func TestCleanProgram(t *testing.T) {
	_, res := check(t, `declarations:
  - type: Point
    is: "{ x: number, y: number }"
  - function: norm
    signature: "(p: Point): number"
    body:
      - return: "p.x * p.x + p.y * p.y"
  - const: origin
    type: Point
    value: "{ x: 0, y: 0 }"
  - const: n
    value: "norm({ x: 3, y: 4, z: 5 })"
`)
	assert.Empty(t, messages(res))
	assert.Same(t, types.Number, res.Symbols["n"])
}

func TestTypeofNarrowing(t *testing.T) {
	program, res := check(t, `declarations:
  - function: describe
    signature: "(x: number | string): void"
    body:
      - if: "typeof x === 'number'"
        then:
          - const: inThen
            value: "x"
        else:
          - const: inElse
            value: "x"
      - const: after
        value: "x"
`)
	require.Empty(t, messages(res))
	assert.Same(t, types.Number, varType(t, program, res, "inThen"))
	assert.Same(t, types.String, varType(t, program, res, "inElse"))
	assert.Same(t, res.Table.Union(types.Number, types.String), varType(t, program, res, "after"))
}

func TestNarrowingAfterExit(t *testing.T) {
	program, res := check(t, `declarations:
  - type: Shape
    is: "{ kind: 'circle', r: number } | { kind: 'square', side: number }"
  - function: area
    signature: "(s: Shape): number"
    body:
      - if: "s.kind === 'circle'"
        then:
          - return: "s.r * s.r"
      - return: "s.side * s.side"
  - function: size
    signature: "(s: string | undefined): number"
    body:
      - if: "s === undefined"
        then:
          - return: "0"
      - const: present
        value: "s"
      - return: "s.length"
`)
	assert.Empty(t, messages(res))
	assert.Same(t, types.String, varType(t, program, res, "present"))
}

func TestNarrowingCompoundConditions(t *testing.T) {
	program, res := check(t, `declarations:
  - function: pick
    signature: "(a: string | number | undefined): void"
    body:
      - if: "typeof a === 'string' || typeof a === 'number'"
        then:
          - const: defined
            value: "a"
      - if: "a !== undefined && typeof a !== 'string'"
        then:
          - const: numeric
            value: "a"
      - if: "!a"
        then:
          - const: falsy
            value: "a"
`)
	require.Empty(t, messages(res))
	table := res.Table
	assert.Same(t, table.Union(types.String, types.Number), varType(t, program, res, "defined"))
	assert.Same(t, types.Number, varType(t, program, res, "numeric"))
	falsy := varType(t, program, res, "falsy")
	assert.True(t, table.IsAssignable(types.Undefined, falsy))
	assert.True(t, table.IsAssignable(falsy, table.Union(types.String, types.Number, types.Undefined)))
}

func TestAssignmentNarrowing(t *testing.T) {
	program, res := check(t, `declarations:
  - function: reset
    signature: "(v: string | number): void"
    body:
      - expr: "v = 'text'"
      - const: afterString
        value: "v"
      - expr: "v = 1"
      - const: afterNumber
        value: "v"
      - expr: "v = 2"
      - const: afterAnotherNumber
        value: "v"
  - function: guarded
    signature: "(x: string | number): void"
    body:
      - if: "typeof x === 'string'"
        then:
          - const: before
            value: "x"
          - expr: "x = 5"
          - const: after
            value: "x"
`)
	require.Empty(t, messages(res))
	table := res.Table
	assert.Same(t, types.String, varType(t, program, res, "afterString"))
	// 1 is not a narrowing of string, so the narrowing is dropped.
	assert.Same(t, table.Union(types.String, types.Number), varType(t, program, res, "afterNumber"))
	assert.Same(t, types.Number, varType(t, program, res, "afterAnotherNumber"))
	assert.Same(t, types.String, varType(t, program, res, "before"))
	assert.Same(t, table.Union(types.String, types.Number), varType(t, program, res, "after"))
}

func TestGenericInference(t *testing.T) {
	_, res := check(t, `declarations:
  - function: first
    signature: "<T>(xs: T[]): T"
    body:
      - return: "xs[0]"
  - function: both
    signature: "<T>(a: T, b: T): T"
    body:
      - return: "a"
  - const: a
    value: "first([1, 2, 3])"
  - const: b
    value: "first([1, 'a'])"
  - const: c
    value: "both(1, 'x')"
  - const: d
    value: "first<string>(['s'])"
`)
	require.Empty(t, messages(res))
	table := res.Table
	assert.Same(t, types.Number, res.Symbols["a"])
	assert.Same(t, table.Union(types.Number, types.String), res.Symbols["b"])
	assert.Same(t, table.Union(types.Number, types.String), res.Symbols["c"])
	assert.Same(t, types.String, res.Symbols["d"])
}

func TestGenericCallbackInference(t *testing.T) {
	_, res := check(t, `declarations:
  - function: map
    signature: "<T, U>(xs: T[], f: (x: T) => U): U[]"
    body:
      - return: "[]"
  - const: lengths
    value: "map(['a', 'bb'], (s) => s.length)"
`)
	require.Empty(t, messages(res))
	assert.Same(t, res.Table.NewArrayType(types.Number), res.Symbols["lengths"])
}

func TestGenericConstraints(t *testing.T) {
	_, res := check(t, `declarations:
  - function: longest
    signature: "<T extends { length: number }>(a: T, b: T): T"
    body:
      - return: "a"
  - const: ok
    value: "longest('ab', 'c')"
  - const: bad
    value: "longest(1, 2)"
  - const: tooMany
    value: "longest<string, number>('a', 'b')"
`)
	assert.Equal(t, []errors.Kind{errors.KindTypeParameterConstraint, errors.KindArity}, kinds(res))
	assert.Same(t, types.String, res.Symbols["ok"])
	assert.Same(t, types.Invalid, res.Symbols["bad"])

	var cerr *checker.TypeParameterConstraintError
	require.ErrorAs(t, res.Diagnostics[0], &cerr)
	assert.Equal(t, "T", cerr.Param.Name)
	assert.Same(t, types.Number, cerr.Computed)
}

func TestOverloadResolution(t *testing.T) {
	_, res := check(t, `declarations:
  - function: travel
    signature: "(from: string, to: string, when: Date): void"
  - function: travel
    signature: "(from: string, to: string): void"
  - function: travel
    signature: "(from: string, to: string, when?: any): void"
    body: []
  - expr: "travel('a', 'b')"
  - expr: "travel('a', 'b', new Date())"
  - expr: "travel('a', 'b', 42)"
`)
	require.Equal(t, []errors.Kind{errors.KindNoMatchingOverload}, kinds(res))

	var nerr *checker.NoMatchingOverloadError
	require.ErrorAs(t, res.Diagnostics[0], &nerr)
	assert.Len(t, nerr.Signatures, 2)
	assert.Contains(t, nerr.Error(), "(from: string, to: string) => void")
}

func TestOverloadImplementationCompatibility(t *testing.T) {
	_, res := check(t, `declarations:
  - function: parse
    signature: "(s: string): number"
  - function: parse
    signature: "(s: boolean): number"
  - function: parse
    signature: "(s: string): number"
    body:
      - return: "0"
  - function: orphan
    signature: "(s: string): void"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable, errors.KindInvalidDeclaration}, kinds(res))
	var uerr *checker.UnassignableTypeError
	require.ErrorAs(t, res.Diagnostics[0], &uerr)
	assert.Equal(t, checker.ReasonOverloadImplementation, uerr.Reason)
}

func TestReturnInference(t *testing.T) {
	_, res := check(t, `declarations:
  - const: answer
    value: "compute()"
  - function: compute
    signature: "()"
    body:
      - return: "42"
  - function: maybe
    signature: "(flag: boolean)"
    body:
      - if: "flag"
        then:
          - return: "'yes'"
  - function: nothing
    signature: "()"
    body: []
`)
	require.Empty(t, messages(res))
	table := res.Table
	assert.Same(t, types.Number, res.Symbols["answer"])
	maybe := res.Symbols["maybe"].(*types.FunctionType)
	assert.Same(t, table.Union(types.String, types.Undefined), maybe.Return)
	nothing := res.Symbols["nothing"].(*types.FunctionType)
	assert.Same(t, types.Void, nothing.Return)
}

func TestCyclicAlias(t *testing.T) {
	_, res := check(t, `declarations:
  - type: Loop
    is: "Loop"
  - type: Fine
    is: "{ n: number }"
  - let: user
    type: Loop
    value: "1"
  - const: wrong
    type: Fine
    value: "{ n: 'no' }"
`)
	assert.Equal(t, []errors.Kind{errors.KindCyclicAlias, errors.KindUnassignable}, kinds(res))
	assert.Equal(t, "Loop", res.Diagnostics[0].Declaration)
	assert.Equal(t, "wrong", res.Diagnostics[1].Declaration)

	first, err := res.Table.ResolveAlias("Fine")
	require.NoError(t, err)
	second, err := res.Table.ResolveAlias("Fine")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestRecursiveAlias(t *testing.T) {
	_, res := check(t, `declarations:
  - type: List
    params: ["T"]
    is: "{ value: T, next: List<T> | null }"
  - const: list
    type: "List<number>"
    value: "{ value: 1, next: { value: 2, next: null } }"
  - const: broken
    type: "List<number>"
    value: "{ value: 1, next: { value: 'two', next: null } }"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable}, kinds(res))
	assert.Equal(t, "broken", res.Diagnostics[0].Declaration)
}

func TestInterfaceMerging(t *testing.T) {
	_, res := check(t, `declarations:
  - interface: Box
    members: ["width: number"]
  - interface: Box
    members: ["height: number"]
  - const: full
    type: Box
    value: "{ width: 1, height: 2 }"
  - const: partial
    type: Box
    value: "{ width: 1 }"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable}, kinds(res))
	assert.Equal(t, "partial", res.Diagnostics[0].Declaration)
}

func TestInlineIntersectionOfInterfaces(t *testing.T) {
	_, res := check(t, `declarations:
  - interface: A
    members: ["a: number"]
  - interface: B
    members: ["b: string"]
  - function: join
    signature: "(x: A & B): number"
    body:
      - const: whole
        type: "{ a: number, b: string }"
        value: "x"
      - const: bad
        type: "{ a: string }"
        value: "x"
      - return: "x.a"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable}, kinds(res))
	assert.Equal(t, "join", res.Diagnostics[0].Declaration)
}

func TestInterfaceMergeConflicts(t *testing.T) {
	_, res := check(t, `declarations:
  - interface: Box
    members: ["width: number"]
  - interface: Box
    members: ["width: string"]
  - interface: Pair
    params: ["T"]
    members: ["left: T"]
  - interface: Pair
    params: ["T", "U"]
    members: ["right: U"]
`)
	assert.Equal(t, []errors.Kind{errors.KindDeclarationConflict, errors.KindDeclarationConflict}, kinds(res))
	assert.Contains(t, res.Diagnostics[0].Message(), "Subsequent property declarations must have the same type")
	assert.Contains(t, res.Diagnostics[1].Message(), "identical type parameters")
}

func TestDeclarationConflicts(t *testing.T) {
	_, res := check(t, `declarations:
  - type: Name
    is: "string"
  - interface: Name
    members: ["value: string"]
  - const: x
    value: "1"
  - let: x
    value: "2"
`)
	assert.Equal(t, []errors.Kind{errors.KindDeclarationConflict, errors.KindDeclarationConflict}, kinds(res))
	assert.Contains(t, res.Diagnostics[0].Message(), "Duplicate identifier 'Name'")
}

func TestEnums(t *testing.T) {
	_, res := check(t, `declarations:
  - enum: Color
    members: ["Red", "Green = 5", "Blue"]
  - enum: Flags
    const: true
    members: ["A = 1", "B = A * 2", "C = compute()"]
  - const: blue
    value: "Color.Blue"
  - const: name
    value: "Color[6]"
  - let: c
    type: Color
    value: "Color.Red"
  - let: n
    type: number
    value: "Color.Green"
  - const: wrong
    type: Color
    value: "'Red'"
`)
	// A call is not a constant initializer.
	assert.Equal(t, []errors.Kind{errors.KindInvalidDeclaration, errors.KindUnassignable}, kinds(res))

	blue, ok := res.Symbols["blue"].(*types.EnumMemberType)
	require.True(t, ok)
	assert.Equal(t, "Blue", blue.MemberName)
	assert.Equal(t, float64(6), blue.Value.Value)
	assert.Same(t, types.String, res.Symbols["name"])
}

func TestEnumInitializers(t *testing.T) {
	_, res := check(t, `declarations:
  - enum: Mixed
    members: ["A = 'a'", "B"]
  - enum: Shade
    const: true
    members: ["Dark"]
  - const: reverse
    value: "Shade[0]"
`)
	assert.Equal(t, []errors.Kind{errors.KindInvalidDeclaration, errors.KindUnknownProperty}, kinds(res))
	assert.Equal(t, "Enum member must have initializer.", res.Diagnostics[0].Message())
	assert.Contains(t, res.Diagnostics[1].Message(), "const enum member")
}

func TestClasses(t *testing.T) {
	_, res := check(t, `declarations:
  - interface: Named
    members: ["name: string"]
  - class: Dog
    implements: ["Named"]
    fields: ["readonly name: string", "age = 3"]
    constructor:
      signature: "(name: string)"
      body:
        - expr: "this.name = name"
    methods:
      - method: bark
        signature: "(): string"
        body:
          - return: "this.name"
  - class: Rock
    implements: ["Named"]
    fields: ["weight: number"]
  - const: d
    value: "new Dog('rex')"
  - expr: "d.name = 'max'"
  - expr: "d.age = 4"
  - const: s
    value: "d.bark()"
  - expr: "new Dog()"
  - expr: "Dog('rex')"
`)
	assert.Equal(t, []errors.Kind{
		errors.KindUnassignable,
		errors.KindReadonlyAssignment,
		errors.KindArity,
		errors.KindNotCallable,
	}, kinds(res))

	var uerr *checker.UnassignableTypeError
	require.ErrorAs(t, res.Diagnostics[0], &uerr)
	assert.Equal(t, checker.ReasonImplements, uerr.Reason)
	assert.Equal(t, "Rock", res.Diagnostics[0].Declaration)
	assert.Same(t, types.String, res.Symbols["s"])
}

func TestDefaultParameters(t *testing.T) {
	program, res := check(t, `declarations:
  - function: greet
    signature: "(name: string, greeting = 'hello', times: number = 1): string"
    body:
      - const: inside
        value: "greeting"
      - return: "greeting + name"
  - const: short
    value: "greet('ann')"
  - const: full
    value: "greet('bob', 'hi', 2)"
  - expr: "greet('cy', 3)"
  - function: bad
    signature: "(n: number = 'x'): number"
    body:
      - return: "n"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable, errors.KindUnassignable}, kinds(res))
	assert.Equal(t, "", res.Diagnostics[0].Declaration)
	assert.Equal(t, "bad", res.Diagnostics[1].Declaration)
	var uerr *checker.UnassignableTypeError
	require.ErrorAs(t, res.Diagnostics[1], &uerr)
	assert.Equal(t, checker.ReasonInitializer, uerr.Reason)

	greet, ok := res.Symbols["greet"].(*types.FunctionType)
	require.True(t, ok)
	assert.Equal(t, 1, greet.RequiredParams())
	assert.Same(t, types.String, greet.Params[1].Type)
	assert.True(t, greet.Params[2].Optional)
	// The initializer fills in a missing argument, so the body never sees undefined.
	assert.Same(t, types.String, varType(t, program, res, "inside"))
	assert.Same(t, types.String, res.Symbols["short"])
}

func TestClassInheritance(t *testing.T) {
	_, res := check(t, `declarations:
  - class: Dog
    extends: Animal
    fields: ["good = true"]
    methods:
      - method: bark
        signature: "(): string"
        body:
          - return: "this.describe()"
  - class: Animal
    fields: ["name: string"]
    constructor:
      signature: "(name: string)"
      body:
        - expr: "this.name = name"
    methods:
      - method: describe
        signature: "(): string"
        body:
          - return: "this.name"
  - class: Cat
    extends: Animal
    fields: ["name: number"]
  - const: d
    value: "new Dog('rex')"
  - const: label
    value: "d.describe()"
  - const: pet
    type: Animal
    value: "d"
  - expr: "new Dog()"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable, errors.KindArity}, kinds(res))
	assert.Equal(t, "Cat", res.Diagnostics[0].Declaration)
	var uerr *checker.UnassignableTypeError
	require.ErrorAs(t, res.Diagnostics[0], &uerr)
	assert.Equal(t, checker.ReasonOverride, uerr.Reason)
	assert.Same(t, types.String, res.Symbols["label"])

	dog := res.Table.Resolve(res.Table.NewAliasRef("Dog")).(*types.ObjectType)
	for _, name := range []string{"name", "describe", "good", "bark"} {
		_, ok := dog.Field(name)
		assert.True(t, ok, "Dog should have %s", name)
	}
}

func TestClassInheritanceCycle(t *testing.T) {
	_, res := check(t, `declarations:
  - class: A
    extends: B
  - class: B
    extends: A
  - class: C
    extends: Named
  - interface: Named
    members: ["name: string"]
`)
	assert.Equal(t, []errors.Kind{errors.KindInvalidDeclaration, errors.KindInvalidDeclaration}, kinds(res))
	assert.Equal(t, "A", res.Diagnostics[0].Declaration)
	assert.Contains(t, res.Diagnostics[0].Message(), "its own base expression")
	assert.Equal(t, "C", res.Diagnostics[1].Declaration)
}

func TestAbstractClasses(t *testing.T) {
	_, res := check(t, `declarations:
  - class: Shape
    abstract: true
    methods:
      - method: area
        signature: "(): number"
        abstract: true
      - method: describe
        signature: "(): string"
        body:
          - return: "'shape'"
  - class: Square
    extends: Shape
    fields: ["side: number"]
    methods:
      - method: area
        signature: "(): number"
        body:
          - return: "this.side * this.side"
  - class: Blob
    extends: Shape
  - class: Odd
    abstract: true
    methods:
      - method: size
        signature: "(): void"
        abstract: true
        body: []
  - const: sq
    type: Shape
    value: "new Square()"
  - const: s
    value: "new Shape()"
`)
	assert.Equal(t, []errors.Kind{
		errors.KindInvalidDeclaration,
		errors.KindInvalidDeclaration,
		errors.KindNotCallable,
	}, kinds(res))
	msgs := messages(res)
	assert.Equal(t, "Non-abstract class 'Blob' does not implement inherited abstract member 'area' from class 'Shape'.", msgs[0])
	assert.Equal(t, "Method 'size' cannot have an implementation because it is marked abstract.", msgs[1])
	assert.Equal(t, "Cannot create an instance of an abstract class.", msgs[2])
	assert.Equal(t, "s", res.Diagnostics[2].Declaration)
}

func TestGenericClasses(t *testing.T) {
	_, res := check(t, `declarations:
  - class: Box
    params: ["T"]
    fields: ["value: T"]
    constructor:
      signature: "(value: T)"
      body:
        - expr: "this.value = value"
    methods:
      - method: get
        signature: "(): T"
        body:
          - return: "this.value"
  - class: NumberBox
    extends: "Box<number>"
  - const: inferred
    value: "new Box('a')"
  - const: explicit
    value: "new Box<number>(1)"
  - const: got
    value: "explicit.get()"
  - const: nb
    value: "new NumberBox(2)"
  - const: inner
    value: "nb.value"
  - const: wrong
    value: "new Box<number>('x')"
  - const: bad
    type: "Box<string>"
    value: "nb"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable, errors.KindUnassignable}, kinds(res))
	assert.Equal(t, "wrong", res.Diagnostics[0].Declaration)
	assert.Equal(t, "bad", res.Diagnostics[1].Declaration)

	table := res.Table
	assert.Same(t, table.NewAliasRef("Box", types.String), res.Symbols["inferred"])
	assert.Same(t, table.NewAliasRef("Box", types.Number), res.Symbols["explicit"])
	assert.Same(t, types.Number, res.Symbols["got"])
	assert.Same(t, types.Number, res.Symbols["inner"])
}

func TestReadonly(t *testing.T) {
	_, res := check(t, `declarations:
  - const: xs
    type: "readonly number[]"
    value: "[1, 2]"
  - const: frozen
    type: "Readonly<{ a: number }>"
    value: "{ a: 1 }"
  - const: limit
    value: "10"
  - expr: "xs[0] = 3"
  - expr: "frozen.a = 2"
  - expr: "limit = 11"
  - let: mutable
    type: "number[]"
    value: "xs"
`)
	// Readonly only restricts writes; the last declaration is fine.
	assert.Equal(t, []errors.Kind{
		errors.KindReadonlyAssignment,
		errors.KindReadonlyAssignment,
		errors.KindReadonlyAssignment,
	}, kinds(res))
	assert.Contains(t, res.Diagnostics[2].Message(), "because it is a constant")
}

func TestCallErrors(t *testing.T) {
	_, res := check(t, `declarations:
  - function: add
    signature: "(a: number, b?: number): number"
    body:
      - return: "a"
  - const: one
    value: "add(1)"
  - const: three
    value: "add(1, 2, 3)"
  - const: text
    value: "add('1')"
  - const: num
    value: "one()"
  - const: ghost
    value: "missing(1)"
`)
	assert.Equal(t, []errors.Kind{
		errors.KindArity,
		errors.KindUnassignable,
		errors.KindNotCallable,
		errors.KindUnresolvedIdentifier,
	}, kinds(res))

	var aerr *checker.ArityError
	require.ErrorAs(t, res.Diagnostics[0], &aerr)
	assert.Equal(t, 1, aerr.Min)
	assert.Equal(t, 2, aerr.Max)
	assert.Equal(t, 3, aerr.Got)
	assert.Same(t, types.Number, res.Symbols["one"])
}

func TestPropertyAccess(t *testing.T) {
	_, res := check(t, `declarations:
  - type: User
    is: "{ name: string, nick?: string, address: { city: string } | undefined }"
  - function: show
    signature: "(u: User): void"
    body:
      - const: n
        value: "u.name"
      - const: nick
        value: "u.nick"
      - const: city
        value: "u.address?.city"
      - const: bad
        value: "u.address.city"
      - const: missing
        value: "u.age"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnknownProperty, errors.KindUnknownProperty}, kinds(res))
	assert.Contains(t, res.Diagnostics[0].Message(), "possibly 'undefined'")
}

func TestImplicitAny(t *testing.T) {
	src := `declarations:
  - function: loose
    signature: "(x): void"
    body: []
  - const: typed
    value: "[1].length"
`
	_, res := check(t, src)
	assert.Empty(t, kinds(res))

	_, strict := checkWith(t, src, checker.Options{NoImplicitAny: true})
	assert.Equal(t, []errors.Kind{errors.KindImplicitAny}, kinds(strict))
}

func TestOperators(t *testing.T) {
	_, res := check(t, `declarations:
  - const: sum
    value: "1 + 2"
  - const: text
    value: "'a' + 1"
  - const: big
    value: "1n + 2n"
  - const: mixed
    value: "1 + 1n"
  - const: cmp
    value: "1 === 'a'"
  - const: fallback
    value: "undefined ?? 'x'"
`)
	assert.Equal(t, []errors.Kind{errors.KindInvalidOperator, errors.KindInvalidOperator}, kinds(res))
	assert.Same(t, types.Number, res.Symbols["sum"])
	assert.Same(t, types.String, res.Symbols["text"])
	assert.Same(t, types.BigInt, res.Symbols["big"])
}

func TestTypeAssertion(t *testing.T) {
	_, res := check(t, `declarations:
  - const: wide
    type: "string | number"
    value: "'x'"
  - const: narrow
    value: "wide as string"
  - const: nonsense
    value: "'x' as number"
`)
	assert.Equal(t, []errors.Kind{errors.KindUnassignable}, kinds(res))
	assert.Same(t, types.String, res.Symbols["narrow"])
}

func TestLiteralWidening(t *testing.T) {
	_, res := check(t, `declarations:
  - const: exact
    value: "'a'"
  - let: loose
    value: "'a'"
  - const: obj
    value: "{ k: 'a' }"
  - const: tagged
    type: "{ k: 'a' | 'b' }"
    value: "{ k: 'a' }"
`)
	require.Empty(t, messages(res))
	table := res.Table
	assert.Same(t, table.StringLiteral("a"), res.Symbols["exact"])
	assert.Same(t, types.String, res.Symbols["loose"])
	field, ok := table.PropertyType(res.Symbols["obj"], "k")
	require.True(t, ok)
	assert.Same(t, types.String, field.Type)
}

func TestMissingReturn(t *testing.T) {
	_, res := check(t, `declarations:
  - function: f
    signature: "(x: number): string"
    body:
      - if: "x > 0"
        then:
          - return: "'pos'"
  - function: g
    signature: "(x: number): string | undefined"
    body:
      - if: "x > 0"
        then:
          - return: "'pos'"
  - function: h
    signature: "(): number"
    body:
      - return: "'no'"
`)
	assert.Equal(t, []errors.Kind{errors.KindInvalidDeclaration, errors.KindUnassignable}, kinds(res))
	var uerr *checker.UnassignableTypeError
	require.ErrorAs(t, res.Diagnostics[1], &uerr)
	assert.Equal(t, checker.ReasonReturn, uerr.Reason)
}

func TestDiagnosticsDeterministic(t *testing.T) {
	src := `declarations:
  - const: a
    type: number
    value: "'a'"
  - function: f
    signature: "(): string"
    body:
      - return: "1"
  - function: g
    signature: "(): string"
    body:
      - return: "missing"
  - expr: "f(1)"
  - expr: "g() * 2"
`
	_, sequential := checkWith(t, src, checker.Options{Workers: 1})
	for range 5 {
		_, parallel := checkWith(t, src, checker.Options{Workers: 8})
		assert.Equal(t, messages(sequential), messages(parallel))
	}
	assert.Len(t, sequential.ByDeclaration["f"], 1)
	assert.Len(t, sequential.ByDeclaration[""], 2)
}
