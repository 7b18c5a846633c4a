package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/internal/testutil"
	"structcheck/pkg/checker"
	"structcheck/pkg/errors"
)

const cleanProgram = `declarations:
  - function: double
    signature: "(n: number): number"
    body:
      - return: "n * 2"
  - const: n
    value: "double(21)"
`

const brokenProgram = `declarations:
  - const: a
    type: number
    value: "'text'"
  - const: b
    type: string
    value: "true"
`

func newDriver(t *testing.T, opts Options) *Driver {
	t.Helper()
	opts.Logger = testutil.NewTestLogger(t)
	opts.Checker.Workers = 2
	d, err := New(opts)
	require.NoError(t, err)
	return d
}

func TestCheckFileClean(t *testing.T) {
	d := newDriver(t, Options{})
	path := testutil.WriteProgram(t, "clean.yaml", cleanProgram)

	r, err := d.CheckFile(path)
	require.NoError(t, err)
	assert.True(t, r.OK())
	assert.Equal(t, path, r.Path)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, "number", r.Result.Symbols["n"].String())
}

func TestEveryPassHasItsOwnID(t *testing.T) {
	d := newDriver(t, Options{})
	first, err := d.CheckString("a.yaml", cleanProgram)
	require.NoError(t, err)
	second, err := d.CheckString("a.yaml", cleanProgram)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSuppression(t *testing.T) {
	d := newDriver(t, Options{})
	r, err := d.CheckString("broken.yaml", brokenProgram)
	require.NoError(t, err)
	require.Len(t, r.Diagnostics, 2)
	assert.Zero(t, r.Suppressed)

	d = newDriver(t, Options{Suppress: []string{`^Unassignable: .*to type 'string'\.$`}})
	r, err = d.CheckString("broken.yaml", brokenProgram)
	require.NoError(t, err)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, 1, r.Suppressed)
	assert.Equal(t, "a", r.Diagnostics[0].Declaration)
	assert.Len(t, r.Result.Diagnostics, 2)
}

func TestNewRejectsBadPattern(t *testing.T) {
	_, err := New(Options{Suppress: []string{"(unclosed"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestSyntaxErrorsAreReturned(t *testing.T) {
	d := newDriver(t, Options{})
	path := testutil.WriteProgram(t, "bad.yaml", `declarations:
  - const: x
    type: "number |"
    value: "1"
`)
	r, err := d.CheckFile(path)
	require.Error(t, err)
	assert.Nil(t, r)

	_, err = d.CheckFile(path + ".missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrintJSON(t *testing.T) {
	d := newDriver(t, Options{Format: errors.FormatJSON})
	r, err := d.CheckString("broken.yaml", brokenProgram)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.Print(&buf, r))

	var out []struct {
		Kind        string `json:"kind"`
		Declaration string `json:"declaration"`
		Line        int    `json:"line"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "Unassignable", out[0].Kind)
	assert.Equal(t, "a", out[0].Declaration)
	assert.Equal(t, "b", out[1].Declaration)
	assert.Less(t, out[0].Line, out[1].Line)
}

func TestPrintTextWithoutColor(t *testing.T) {
	d := newDriver(t, Options{})
	r, err := d.CheckString("broken.yaml", brokenProgram)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, d.Print(&buf, r))
	text := buf.String()
	assert.Contains(t, text, "Unassignable Error: Type ")
	assert.Contains(t, text, "is not assignable to type 'number'.")
	assert.NotContains(t, text, "\x1b[")
}

func TestDumpTypes(t *testing.T) {
	d := newDriver(t, Options{})
	r, err := d.CheckString("clean.yaml", cleanProgram)
	require.NoError(t, err)

	var buf bytes.Buffer
	DumpTypes(&buf, r)
	out := buf.String()
	assert.Contains(t, out, `"double"`)
	assert.Contains(t, out, `"(n: number) => number"`)
	assert.Contains(t, out, `"n"`)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"double"`)), bytes.Index(buf.Bytes(), []byte(`"n"`)))
}

func TestWatchRechecksOnWrite(t *testing.T) {
	d := newDriver(t, Options{Checker: checker.Options{}})
	path := testutil.WriteProgram(t, "watched.yaml", cleanProgram)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reports := make(chan *Report, 8)
	done := make(chan error, 1)
	go func() {
		done <- d.Watch(ctx, path, func(r *Report, err error) {
			if err == nil {
				reports <- r
			}
		})
	}()

	next := func() *Report {
		t.Helper()
		select {
		case r := <-reports:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("no pass within 5s")
			return nil
		}
	}

	assert.True(t, next().OK())
	require.NoError(t, os.WriteFile(path, []byte(brokenProgram), 0o644))
	for {
		r := next()
		if !r.OK() {
			assert.Len(t, r.Diagnostics, 2)
			break
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestCheckFilesKeepsOrder(t *testing.T) {
	d := newDriver(t, Options{Jobs: 3})
	clean := testutil.WriteProgram(t, "clean.yaml", cleanProgram)
	broken := testutil.WriteProgram(t, "broken.yaml", brokenProgram)
	missing := clean + ".missing"

	results, stats := d.CheckFiles(context.Background(), []string{broken, missing, clean, broken})
	require.Len(t, results, 4)
	assert.Equal(t, broken, results[0].Path)
	assert.Len(t, results[0].Report.Diagnostics, 2)
	require.Error(t, results[1].Err)
	assert.Nil(t, results[1].Report)
	assert.True(t, results[2].Report.OK())
	assert.Len(t, results[3].Report.Diagnostics, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.WorkerID, 0)
		assert.Less(t, r.WorkerID, 3)
	}

	assert.Equal(t, 4, stats.TotalJobs)
	assert.Equal(t, 3, stats.CompletedJobs)
	assert.Equal(t, 1, stats.FailedJobs)
	assert.Equal(t, 3, stats.WorkerCount)
}

func TestCheckFilesCancelled(t *testing.T) {
	d := newDriver(t, Options{Jobs: 1})
	clean := testutil.WriteProgram(t, "clean.yaml", cleanProgram)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, stats := d.CheckFiles(ctx, []string{clean, clean})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Nil(t, r.Report)
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Equal(t, -1, r.WorkerID)
	}
	assert.Zero(t, stats.CompletedJobs)
}
