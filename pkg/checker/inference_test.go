package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/internal/testutil"
	"structcheck/pkg/types"
)

func newBinder(t *testing.T) (*types.Table, *Binder) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	table := types.NewTable(logger)
	return table, NewBinder(table, logger)
}

// identity builds <T>(a: T, b: T): T, with T bounded by bound when not nil.
func identity(table *types.Table, bound, def types.Type) *types.FunctionType {
	p := table.NewTypeParameter("T", 0, bound, def)
	ref := table.Ref(p)
	return table.NewFunctionType(types.Signature{
		TypeParams: []*types.TypeParameter{p},
		Params:     []types.Param{{Name: "a", Type: ref}, {Name: "b", Type: ref, Optional: true}},
		Return:     ref,
	})
}

func TestInferWidensLiterals(t *testing.T) {
	table, b := newBinder(t)
	sig := identity(table, nil, nil)

	tests := []struct {
		name string
		args StaticArguments
		want types.Type
	}{
		{"single literal", StaticArguments{table.NumberLiteral(1)}, types.Number},
		{"same base", StaticArguments{table.NumberLiteral(1), table.NumberLiteral(2)}, types.Number},
		{"divergent", StaticArguments{table.NumberLiteral(1), table.StringLiteral("a")}, table.Union(types.Number, types.String)},
		{"no observation", StaticArguments{}, types.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := b.Infer(sig, tt.args, nil)
			require.NoError(t, err)
			assert.Same(t, tt.want, inst.Return)
			assert.False(t, inst.IsGeneric())
		})
	}
}

func TestInferKeepsLiteralsTheBoundNeeds(t *testing.T) {
	table, b := newBinder(t)
	bound := table.Union(table.StringLiteral("a"), table.StringLiteral("b"))
	sig := identity(table, bound, nil)

	inst, err := b.Infer(sig, StaticArguments{table.StringLiteral("a")}, nil)
	require.NoError(t, err)
	assert.Same(t, table.StringLiteral("a"), inst.Return)

	_, err = b.Infer(sig, StaticArguments{table.StringLiteral("c")}, nil)
	var cerr *TypeParameterConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Same(t, bound, cerr.Bound)
}

func TestInferDefaultsAndUnknown(t *testing.T) {
	table, b := newBinder(t)
	withDefault := identity(table, nil, types.String)
	inst, err := b.Infer(withDefault, StaticArguments{}, nil)
	require.NoError(t, err)
	assert.Same(t, types.String, inst.Return)

	// An unobserved parameter becomes unknown, which must still meet the bound.
	bounded := identity(table, types.Number, nil)
	_, err = b.Infer(bounded, StaticArguments{}, nil)
	var cerr *TypeParameterConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Same(t, types.Unknown, cerr.Computed)
}

func TestInferThroughStructure(t *testing.T) {
	table, b := newBinder(t)
	p := table.NewTypeParameter("T", 0, nil, nil)
	ref := table.Ref(p)
	box := table.Object().WithProperty("value", ref).Build()
	sig := table.NewFunctionType(types.Signature{
		TypeParams: []*types.TypeParameter{p},
		Params: []types.Param{
			{Name: "xs", Type: table.NewArrayType(ref)},
			{Name: "box", Type: box},
			{Name: "opt", Type: table.Union(ref, types.Undefined)},
		},
		Return: ref,
	})

	arg := table.Object().WithProperty("value", types.Boolean).WithProperty("extra", types.Number).Build()
	inst, err := b.Infer(sig, StaticArguments{
		table.NewArrayType(types.String),
		arg,
		table.Union(types.Null, types.Undefined),
	}, nil)
	require.NoError(t, err)
	assert.Same(t, table.Union(types.String, types.Boolean, types.Null), inst.Return)
}

func TestInferFromCallback(t *testing.T) {
	table, b := newBinder(t)
	tp := table.NewTypeParameter("T", 0, nil, nil)
	up := table.NewTypeParameter("U", 1, nil, nil)
	callback := table.NewFunctionType(types.Signature{
		Params: []types.Param{{Name: "x", Type: table.Ref(tp)}},
		Return: table.Ref(up),
	})
	sig := table.NewFunctionType(types.Signature{
		TypeParams: []*types.TypeParameter{tp, up},
		Params:     []types.Param{{Name: "x", Type: table.Ref(tp)}, {Name: "f", Type: callback}},
		Return:     table.Ref(up),
	})
	fn := table.NewFunctionType(types.Signature{
		Params: []types.Param{{Name: "s", Type: types.String}},
		Return: types.Number,
	})

	inst, err := b.Infer(sig, StaticArguments{types.String, fn}, nil)
	require.NoError(t, err)
	assert.Same(t, types.Number, inst.Return)
	assert.Same(t, types.String, inst.Params[0].Type)
}

func TestInstantiateExplicit(t *testing.T) {
	table, b := newBinder(t)
	tp := table.NewTypeParameter("T", 0, nil, nil)
	up := table.NewTypeParameter("U", 1, nil, types.Boolean)
	pair := table.NewFunctionType(types.Signature{
		TypeParams: []*types.TypeParameter{tp, up},
		Params:     []types.Param{{Name: "a", Type: table.Ref(tp)}},
		Return:     table.Tuple(table.Ref(tp), table.Ref(up)),
	})

	inst, err := b.Infer(pair, StaticArguments{types.String}, []types.Type{types.String})
	require.NoError(t, err)
	assert.Same(t, table.Tuple(types.String, types.Boolean), inst.Return)

	_, err = b.Infer(pair, StaticArguments{}, []types.Type{types.String, types.Number, types.Null})
	var aerr *ArityError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, 1, aerr.Min)
	assert.Equal(t, 2, aerr.Max)

	plain := table.NewFunctionType(types.Signature{Return: types.Void})
	_, err = b.Infer(plain, StaticArguments{}, []types.Type{types.String})
	require.ErrorAs(t, err, &aerr)
}
