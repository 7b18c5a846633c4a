package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/pkg/source"
)

func sampleDiagnostics() []*Diagnostic {
	src := source.NewSourceFile("prog.yaml", "prog.yaml", "decls:\n  - alias: A\n    type: A\n")
	return []*Diagnostic{
		New(source.Position{Line: 3, Column: 11, Source: src}, KindCyclicAlias,
			stderrors.New("type alias 'A' circularly references itself")).In("A"),
		New(source.Position{Line: 2, Column: 5, Source: src}, KindUnassignable,
			stderrors.New("type 'string' is not assignable to type 'number'")).In("x"),
	}
}

func TestDiagnosticUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	d := New(source.Position{}, KindInternal, cause)
	assert.ErrorIs(t, d, cause)
	assert.Equal(t, "Internal Error: boom", d.Error())

	var ce CheckError = d
	assert.Equal(t, KindInternal, ce.Kind())
}

func TestSortByPosition(t *testing.T) {
	diags := sampleDiagnostics()
	SortByPosition(diags)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, 3, diags[1].Line)
}

func TestPrintText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText, false).Print(sampleDiagnostics()[:1]))
	assert.Equal(t,
		"prog.yaml:3:11: CyclicAlias Error: type alias 'A' circularly references itself\n"+
			"      type: A\n"+
			"            ^\n\n",
		buf.String())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(sampleDiagnostics()))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "CyclicAlias", out[0]["kind"])
	assert.Equal(t, "A", out[0]["declaration"])
	assert.EqualValues(t, 3, out[0]["line"])
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(sampleDiagnostics()))
	assert.Contains(t, buf.String(), "Unassignable")
	assert.Contains(t, buf.String(), "prog.yaml:2:5")
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestSuppressor(t *testing.T) {
	s, err := NewSuppressor([]string{`^Unassignable: (?!.*'any')`})
	require.NoError(t, err)

	kept := s.Filter(sampleDiagnostics())
	require.Len(t, kept, 1)
	assert.Equal(t, KindCyclicAlias, kept[0].Category)

	_, err = NewSuppressor([]string{"("})
	assert.Error(t, err)

	var none *Suppressor
	assert.Len(t, none.Filter(sampleDiagnostics()), 2)
}
