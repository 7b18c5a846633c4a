package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/internal/testutil"
	"structcheck/pkg/ast"
	"structcheck/pkg/errors"
	"structcheck/pkg/types"
)

func TestGuardConfinesPanics(t *testing.T) {
	program := testutil.MustLoad(t, `declarations:
  - const: x
    value: "1"
  - const: y
    type: string
    value: "2"
`)
	c := New(Options{Logger: testutil.NewTestLogger(t), Workers: 2})
	res := c.Check(program)
	require.Len(t, res.Diagnostics, 1)

	u := &unit{decl: program.Declarations[0], name: "x", types: make(map[ast.Node]types.Type)}
	c.guard(u, func() { panic("boom") })
	require.Len(t, u.diags, 1)
	d := u.diags[0]
	assert.Equal(t, errors.KindInternal, d.Kind())
	assert.Equal(t, "x", d.Declaration)
	assert.Contains(t, d.Message(), "boom")

	var ierr *InternalError
	require.ErrorAs(t, d, &ierr)
	assert.Equal(t, "boom", ierr.Panic)
}
