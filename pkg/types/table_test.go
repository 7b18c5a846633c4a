package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitivesAreSharedAcrossTables(t *testing.T) {
	a, b := NewTable(nil), NewTable(nil)
	assert.Same(t, a.Union(Number, String), a.Union(String, Number))
	assert.Equal(t, Number.ID(), TypeID(KindNumber))
	assert.Less(t, uint32(Invalid.ID()), uint32(firstDynamicID))
	assert.Less(t, uint32(True.ID()), uint32(firstDynamicID))
	assert.Same(t, a.BooleanLiteral(true), b.BooleanLiteral(true))
}

func TestObjectInterningIgnoresFieldOrder(t *testing.T) {
	tbl := NewTable(nil)
	xy := tbl.Object().WithProperty("x", Number).WithProperty("y", String).Build()
	yx := tbl.Object().WithProperty("y", String).WithProperty("x", Number).Build()

	assert.Same(t, xy, yx)
	assert.True(t, xy.Equals(yx))
	assert.Equal(t, "{ x: number; y: string }", xy.String())

	optional := tbl.Object().WithOptionalProperty("x", Number).WithProperty("y", String).Build()
	assert.NotSame(t, xy, optional)
}

func TestUnionNormalization(t *testing.T) {
	tbl := NewTable(nil)
	a := tbl.StringLiteral("a")

	tests := []struct {
		name string
		got  Type
		want Type
	}{
		{"flattens nested unions", tbl.Union(Number, tbl.Union(String, Number)), tbl.Union(String, Number)},
		{"drops never", tbl.Union(Never, Number), Number},
		{"empty is never", tbl.Union(), Never},
		{"literal absorbed by base", tbl.Union(a, String), String},
		{"true and false make boolean", tbl.Union(True, False), Boolean},
		{"any absorbs", tbl.Union(Number, Any), Any},
		{"unknown absorbs", tbl.Union(Number, Unknown), Unknown},
		{"single member", tbl.Union(a, a), a},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, tt.got)
		})
	}

	u := tbl.Union(String, Null, Number).(*UnionType)
	assert.Equal(t, "null | number | string", u.String())
	assert.Len(t, u.Types, 3)
}

func TestIntersectionNormalization(t *testing.T) {
	tbl := NewTable(nil)
	a := tbl.StringLiteral("a")

	assert.Same(t, Never, tbl.Intersection(Number, String))
	assert.Same(t, Never, tbl.Intersection(a, tbl.StringLiteral("b")))
	assert.Same(t, a, tbl.Intersection(String, a))
	assert.Same(t, Number, tbl.Intersection(Unknown, Number))
	assert.Same(t, Unknown, tbl.Intersection())
	assert.Same(t, Any, tbl.Intersection(Any, Number))

	left := tbl.Object().WithProperty("a", Number).Build()
	right := tbl.Object().WithProperty("b", String).Build()
	merged := tbl.Intersection(left, right)
	want := tbl.Object().WithProperty("a", Number).WithProperty("b", String).Build()
	assert.Same(t, want, merged)

	conflict := tbl.Intersection(
		tbl.Object().WithProperty("k", Number).Build(),
		tbl.Object().WithProperty("k", String).Build(),
	).(*ObjectType)
	f, ok := conflict.Field("k")
	require.True(t, ok)
	assert.Same(t, Never, f.Type)
}

func TestFunctionTypeString(t *testing.T) {
	tbl := NewTable(nil)
	fn := tbl.NewFunctionType(Signature{
		Params: []Param{{Name: "a", Type: String}, {Name: "b", Type: Number, Optional: true}},
		Rest:   &Param{Name: "rest", Type: tbl.NewArrayType(Boolean)},
		Return: Void,
	})
	assert.Equal(t, "(a: string, b?: number, ...rest: boolean[]) => void", fn.String())
	assert.Equal(t, 1, fn.RequiredParams())
	assert.True(t, fn.AcceptsArity(1))
	assert.True(t, fn.AcceptsArity(5))
	assert.False(t, fn.AcceptsArity(0))

	elem, ok := fn.ParamAt(4)
	require.True(t, ok)
	assert.Same(t, Boolean, elem)
}

func TestFunctionInterningIgnoresParameterNames(t *testing.T) {
	tbl := NewTable(nil)
	first := tbl.NewFunctionType(Signature{Params: []Param{{Name: "a", Type: Number}}, Return: Void})
	renamed := tbl.NewFunctionType(Signature{Params: []Param{{Name: "b", Type: Number}}, Return: Void})
	assert.Same(t, first, renamed)
	assert.Equal(t, "(a: number) => void", renamed.String())

	restA := tbl.NewFunctionType(Signature{Rest: &Param{Name: "xs", Type: tbl.NewArrayType(Number)}, Return: Void})
	restB := tbl.NewFunctionType(Signature{Rest: &Param{Name: "ys", Type: tbl.NewArrayType(Number)}, Return: Void})
	assert.Same(t, restA, restB)

	optional := tbl.NewFunctionType(Signature{Params: []Param{{Name: "a", Type: Number, Optional: true}}, Return: Void})
	assert.NotSame(t, first, optional)
	other := tbl.NewFunctionType(Signature{Params: []Param{{Name: "a", Type: String}}, Return: Void})
	assert.NotSame(t, first, other)
}

func TestTupleConstruction(t *testing.T) {
	tbl := NewTable(nil)
	tup := tbl.NewTupleType(TupleSpec{
		Elements: []Type{String, Number},
		Optional: []bool{false, true},
		Rest:     Boolean,
	})
	assert.Equal(t, "[string, number?, ...boolean[]]", tup.String())
	assert.Equal(t, 1, tup.RequiredElements())
	assert.Same(t, tup, tbl.NewTupleType(TupleSpec{
		Elements: []Type{String, Number},
		Optional: []bool{false, true},
		Rest:     Boolean,
	}))
	assert.Same(t, tbl.Union(String, Number, Boolean), tbl.ElementUnion(tup))
}

func TestConcurrentInterning(t *testing.T) {
	tbl := NewTable(nil)
	var wg sync.WaitGroup
	results := make([]Type, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tbl.Object().
				WithProperty("id", Number).
				WithProperty("tags", tbl.NewArrayType(String)).
				Build()
		}(i)
	}
	wg.Wait()
	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestWidening(t *testing.T) {
	tbl := NewTable(nil)
	assert.Same(t, Number, tbl.GetWidenedType(tbl.NumberLiteral(1)))
	assert.Same(t, tbl.Union(Number, String), tbl.GetWidenedType(tbl.Union(tbl.NumberLiteral(1), tbl.StringLiteral("a"))))

	obj := tbl.Object().WithProperty("kind", tbl.StringLiteral("a")).Build()
	want := tbl.Object().WithProperty("kind", String).Build()
	assert.Same(t, want, tbl.DeeplyWidenType(obj))
}

func TestSubstitute(t *testing.T) {
	tbl := NewTable(nil)
	p := tbl.NewTypeParameter("T", 0, nil, nil)
	box := tbl.Object().WithProperty("value", tbl.Ref(p)).Build()
	fn := tbl.NewFunctionType(Signature{
		TypeParams: []*TypeParameter{p},
		Params:     []Param{{Name: "x", Type: tbl.NewArrayType(tbl.Ref(p))}},
		Return:     box,
	})

	got := tbl.SubstituteSignature(fn, map[*TypeParameter]Type{p: Number})
	assert.False(t, got.IsGeneric())
	assert.Same(t, tbl.NewArrayType(Number), got.Params[0].Type)
	assert.Same(t, tbl.Object().WithProperty("value", Number).Build(), got.Return)
	assert.True(t, Mentions(fn.Return, map[*TypeParameter]bool{p: true}))
	assert.False(t, Mentions(got.Return, map[*TypeParameter]bool{p: true}))
}
