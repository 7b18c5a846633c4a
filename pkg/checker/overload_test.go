package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/internal/testutil"
	"structcheck/pkg/types"
)

func newResolver(t *testing.T) (*types.Table, *Resolver) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	table := types.NewTable(logger)
	return table, NewResolver(table, NewBinder(table, logger), logger)
}

func signature(table *types.Table, ret types.Type, params ...types.Type) *types.FunctionType {
	sig := types.Signature{Return: ret}
	for i, p := range params {
		sig.Params = append(sig.Params, types.Param{Name: string(rune('a' + i)), Type: p})
	}
	return table.NewFunctionType(sig)
}

func TestResolveFirstMatchWins(t *testing.T) {
	table, r := newResolver(t)
	wide := signature(table, types.String, types.Any)
	narrow := signature(table, types.Number, types.Number)

	sig, err := r.Resolve([]*types.FunctionType{wide, narrow}, StaticArguments{types.Number}, nil)
	require.NoError(t, err)
	assert.Same(t, wide, sig)

	sig, err = r.Resolve([]*types.FunctionType{narrow, wide}, StaticArguments{types.Number}, nil)
	require.NoError(t, err)
	assert.Same(t, narrow, sig)
}

func TestResolveByArityAndType(t *testing.T) {
	table, r := newResolver(t)
	date := table.Object().WithProperty("getTime", signature(table, types.Number)).Build()
	three := signature(table, types.Void, types.String, types.String, date)
	two := signature(table, types.Void, types.String, types.String)
	sigs := []*types.FunctionType{three, two}

	sig, err := r.Resolve(sigs, StaticArguments{types.String, types.String}, nil)
	require.NoError(t, err)
	assert.Same(t, two, sig)

	sig, err = r.Resolve(sigs, StaticArguments{types.String, types.String, date}, nil)
	require.NoError(t, err)
	assert.Same(t, three, sig)

	_, err = r.Resolve(sigs, StaticArguments{types.String, types.String, types.Number}, nil)
	var nerr *NoMatchingOverloadError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, sigs, nerr.Signatures)
	assert.Equal(t, []types.Type{types.String, types.String, types.Number}, nerr.Args)
	assert.Contains(t, nerr.Error(), "Overload 2 of 2")
}

func TestResolveOptionalAcceptsUndefined(t *testing.T) {
	table, r := newResolver(t)
	opt := table.NewFunctionType(types.Signature{
		Params: []types.Param{{Name: "n", Type: types.Number, Optional: true}},
		Return: types.Void,
	})

	_, err := r.Resolve([]*types.FunctionType{opt}, StaticArguments{types.Undefined}, nil)
	assert.NoError(t, err)
	_, err = r.Resolve([]*types.FunctionType{opt}, StaticArguments{}, nil)
	assert.NoError(t, err)
	_, err = r.Resolve([]*types.FunctionType{opt}, StaticArguments{types.String}, nil)
	assert.Error(t, err)
}

func TestResolveGenericCandidates(t *testing.T) {
	table, r := newResolver(t)
	p := table.NewTypeParameter("T", 0, types.String, nil)
	generic := table.NewFunctionType(types.Signature{
		TypeParams: []*types.TypeParameter{p},
		Params:     []types.Param{{Name: "v", Type: table.Ref(p)}},
		Return:     table.Ref(p),
	})
	fallback := signature(table, types.Unknown, types.Unknown)
	sigs := []*types.FunctionType{generic, fallback}

	// A bound violation skips the generic signature.
	sig, err := r.Resolve(sigs, StaticArguments{table.NumberLiteral(1)}, nil)
	require.NoError(t, err)
	assert.Same(t, fallback, sig)

	sig, err = r.Resolve(sigs, StaticArguments{table.StringLiteral("x")}, nil)
	require.NoError(t, err)
	assert.Same(t, types.String, sig.Return)
}
