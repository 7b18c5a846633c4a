package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/internal/testutil"
)

const broken = `declarations:
  - const: a
    type: number
    value: "'text'"
  - const: ok
    type: string
    value: "'fine'"
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "structcheck v"+Version)
}

func TestCheckClean(t *testing.T) {
	path := testutil.WriteProgram(t, "clean.yaml", `declarations:
  - const: n
    type: number
    value: "1"
`)
	out, errOut, err := run(t, "check", "--color", "never", path)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "0 diagnostics")
}

func TestCheckReportsDiagnostics(t *testing.T) {
	path := testutil.WriteProgram(t, "broken.yaml", broken)
	out, errOut, err := run(t, "check", "--color", "never", path)
	require.ErrorIs(t, err, errDiagnostics)
	assert.Contains(t, out, "Unassignable Error:")
	assert.Contains(t, errOut, "1 diagnostic\n")
	assert.NotContains(t, errOut, "1 diagnostics")
}

func TestCheckSuppressFlag(t *testing.T) {
	path := testutil.WriteProgram(t, "broken.yaml", broken)
	_, errOut, err := run(t, "check", "--suppress", "^Unassignable:", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "0 diagnostics (1 suppressed)")
}

func TestCheckJSONFromConfigFile(t *testing.T) {
	path := testutil.WriteProgram(t, "broken.yaml", broken)
	cfgPath := filepath.Join(filepath.Dir(path), "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: json\nworkers: 1\n"), 0o644))

	out, _, err := run(t, "check", "--config", cfgPath, path)
	require.ErrorIs(t, err, errDiagnostics)
	var diags []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "Unassignable", diags[0]["kind"])
	assert.Equal(t, "a", diags[0]["declaration"])
}

func TestCheckDumpTypes(t *testing.T) {
	path := testutil.WriteProgram(t, "clean.yaml", `declarations:
  - function: id
    signature: "<T>(x: T): T"
    body:
      - return: "x"
`)
	out, _, err := run(t, "check", "--dump-types", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"id"`)
}

func TestCheckErrors(t *testing.T) {
	_, _, err := run(t, "check")
	require.Error(t, err)

	path := testutil.WriteProgram(t, "clean.yaml", "declarations: []\n")
	_, _, err = run(t, "check", "--format", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")

	_, _, err = run(t, "check", "--watch", path, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one file")
}

func TestSummaryPluralForms(t *testing.T) {
	p := printer()
	assert.Equal(t, "a.yaml: 0 diagnostics", p.Sprintf(msgFileSummary, "a.yaml", 0))
	assert.Equal(t, "a.yaml: 1 diagnostic", p.Sprintf(msgFileSummary, "a.yaml", 1))
	assert.Equal(t, "a.yaml: 2 diagnostics", p.Sprintf(msgFileSummary, "a.yaml", 2))
	assert.Equal(t, "checked 1 file in 2s", p.Sprintf(msgBatchSummary, 1, 2*time.Second))
	assert.Equal(t, "checked 3 files in 2s", p.Sprintf(msgBatchSummary, 3, 2*time.Second))
}
