package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAliasIdempotent(t *testing.T) {
	tbl := NewTable(nil)
	require.NoError(t, tbl.DefineAlias("ID", nil, tbl.Union(Number, String)))
	require.NoError(t, tbl.DefineAlias("Key", nil, tbl.NewAliasRef("ID")))

	first, err := tbl.ResolveAlias("Key")
	require.NoError(t, err)
	second, err := tbl.ResolveAlias("Key")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Same(t, tbl.Union(Number, String), first)
	assert.Same(t, first, tbl.Resolve(tbl.NewAliasRef("Key")))
}

func TestCyclicSelfAlias(t *testing.T) {
	tbl := NewTable(nil)
	require.NoError(t, tbl.DefineAlias("A", nil, tbl.NewAliasRef("A")))
	require.NoError(t, tbl.DefineAlias("Fine", nil, String))

	errs := tbl.ResolveAll()
	require.Len(t, errs, 1)

	var cyclic *CyclicAliasError
	require.True(t, errors.As(errs[0], &cyclic))
	assert.Equal(t, "A", cyclic.Alias)
	assert.Equal(t, "type alias 'A' circularly references itself", cyclic.Error())

	a, err := tbl.ResolveAlias("A")
	assert.Same(t, Invalid, a)
	assert.Error(t, err)

	fine, err := tbl.ResolveAlias("Fine")
	require.NoError(t, err)
	assert.Same(t, String, fine)
}

func TestCyclicMutualAliases(t *testing.T) {
	tbl := NewTable(nil)
	require.NoError(t, tbl.DefineAlias("User", nil, tbl.NewAliasRef("A")))
	require.NoError(t, tbl.DefineAlias("A", nil, tbl.Union(tbl.NewAliasRef("B"), String)))
	require.NoError(t, tbl.DefineAlias("B", nil, tbl.Intersection(tbl.NewAliasRef("A"), tbl.Object().Build())))

	errs := tbl.ResolveAll()
	require.Len(t, errs, 2, "each alias on the cycle is reported once")

	var names []string
	for _, err := range errs {
		var cyclic *CyclicAliasError
		require.True(t, errors.As(err, &cyclic))
		names = append(names, cyclic.Alias)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, names)

	// A reference to a failed alias becomes the error sentinel without a
	// second report.
	user, err := tbl.ResolveAlias("User")
	assert.NoError(t, err)
	assert.Same(t, Invalid, user)
}

func TestRecursiveAliasThroughObjectIsLegal(t *testing.T) {
	tbl := NewTable(nil)
	tree := tbl.Object().
		WithProperty("value", Number).
		WithProperty("children", tbl.NewArrayType(tbl.NewAliasRef("Tree"))).
		Build()
	require.NoError(t, tbl.DefineAlias("Tree", nil, tree))
	require.Empty(t, tbl.ResolveAll())

	resolved, err := tbl.ResolveAlias("Tree")
	require.NoError(t, err)
	assert.Same(t, tree, resolved)
}

func TestGenericAliasInstantiation(t *testing.T) {
	tbl := NewTable(nil)
	p := tbl.NewTypeParameter("T", 0, nil, String)
	require.NoError(t, tbl.DefineAlias("Box", []*TypeParameter{p},
		tbl.Object().WithProperty("value", tbl.Ref(p)).Build()))
	require.Empty(t, tbl.ResolveAll())
	tbl.Freeze()

	boxed := tbl.Resolve(tbl.NewAliasRef("Box", Number))
	assert.Same(t, tbl.Object().WithProperty("value", Number).Build(), boxed)
	assert.Same(t, boxed, tbl.Resolve(tbl.NewAliasRef("Box", Number)))

	defaulted := tbl.Resolve(tbl.NewAliasRef("Box"))
	assert.Same(t, tbl.Object().WithProperty("value", String).Build(), defaulted)
	assert.Equal(t, "Box<number>", tbl.NewAliasRef("Box", Number).String())
}

func TestDefineAliasAfterFreeze(t *testing.T) {
	tbl := NewTable(nil)
	require.NoError(t, tbl.DefineAlias("A", nil, Number))
	assert.Error(t, tbl.DefineAlias("A", nil, String))

	tbl.Freeze()
	err := tbl.DefineAlias("B", nil, Number)
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestUnknownAlias(t *testing.T) {
	tbl := NewTable(nil)
	_, err := tbl.ResolveAlias("Missing")
	assert.ErrorIs(t, err, ErrUnknownAlias)
	assert.Same(t, Invalid, tbl.Resolve(tbl.NewAliasRef("Missing")))
}

func TestGenericAliasGrowingArgumentsIsCyclic(t *testing.T) {
	tbl := NewTable(nil)
	p := tbl.NewTypeParameter("T", 0, nil, nil)
	require.NoError(t, tbl.DefineAlias("G", []*TypeParameter{p},
		tbl.NewAliasRef("G", tbl.NewArrayType(tbl.Ref(p)))))
	require.NoError(t, tbl.DefineAlias("Fine", nil, Number))

	errs := tbl.ResolveAll()
	require.Len(t, errs, 1)
	var cyclic *CyclicAliasError
	require.True(t, errors.As(errs[0], &cyclic))
	assert.Equal(t, "G", cyclic.Alias)

	assert.Same(t, Invalid, tbl.Resolve(tbl.NewAliasRef("G", String)))
	fine, err := tbl.ResolveAlias("Fine")
	require.NoError(t, err)
	assert.Same(t, Number, fine)
}

func TestGenericAliasGrowingArgumentsThroughUse(t *testing.T) {
	tbl := NewTable(nil)
	p := tbl.NewTypeParameter("T", 0, nil, nil)
	require.NoError(t, tbl.DefineAlias("G", []*TypeParameter{p},
		tbl.Union(tbl.NewAliasRef("G", tbl.NewArrayType(tbl.Ref(p))), Null)))

	// Resolving an instance first still terminates and poisons the alias.
	assert.Same(t, Invalid, tbl.Resolve(tbl.NewAliasRef("G", Number)))
	_, err := tbl.ResolveAlias("G")
	var cyclic *CyclicAliasError
	require.ErrorAs(t, err, &cyclic)
}

func TestNestedGenericAliasIsNotCyclic(t *testing.T) {
	tbl := NewTable(nil)
	p := tbl.NewTypeParameter("T", 0, nil, nil)
	require.NoError(t, tbl.DefineAlias("Id", []*TypeParameter{p}, tbl.Ref(p)))
	require.Empty(t, tbl.ResolveAll())

	nested := tbl.NewAliasRef("Id", tbl.NewAliasRef("Id", tbl.NewAliasRef("Id", String)))
	assert.Same(t, String, tbl.Resolve(nested))
}
