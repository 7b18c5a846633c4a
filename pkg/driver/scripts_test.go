package driver

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"structcheck/pkg/errors"
)

// expectation is what a script under testdata/scripts should produce,
// read from its leading comments:
//
//	# expect: clean
//	# expect_error: Kind: message substring
//	# expect_syntax_error: message substring
//
// expect_error lines are matched against the diagnostics in order.
type expectation struct {
	clean       bool
	syntaxError string
	diagnostics []expectedDiagnostic
}

type expectedDiagnostic struct {
	kind errors.Kind
	text string
}

var expectRegex = regexp.MustCompile(`^#\s*(expect(?:_error|_syntax_error)?):\s*(.*)$`)

func parseExpectation(path string) (*expectation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	exp := &expectation{}
	found := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := expectRegex.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		found = true
		value := strings.TrimSpace(m[2])
		switch m[1] {
		case "expect":
			if value != "clean" {
				return nil, fmt.Errorf("unknown expectation %q", value)
			}
			exp.clean = true
		case "expect_syntax_error":
			exp.syntaxError = value
		case "expect_error":
			kind, text, _ := strings.Cut(value, ":")
			exp.diagnostics = append(exp.diagnostics, expectedDiagnostic{
				kind: errors.Kind(strings.TrimSpace(kind)),
				text: strings.TrimSpace(text),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no expectation comment found (e.g. # expect: clean)")
	}
	return exp, nil
}

func TestScripts(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scripts", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	d := newDriver(t, Options{})
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			exp, err := parseExpectation(path)
			require.NoError(t, err)

			r, err := d.CheckFile(path)
			if exp.syntaxError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), exp.syntaxError)
				return
			}
			require.NoError(t, err)

			if exp.clean {
				for _, diag := range r.Diagnostics {
					t.Errorf("unexpected diagnostic: %s", diag)
				}
				return
			}
			require.Len(t, r.Diagnostics, len(exp.diagnostics), "diagnostics: %v", r.Diagnostics)
			for i, want := range exp.diagnostics {
				got := r.Diagnostics[i]
				assert.Equal(t, want.kind, got.Category, "diagnostic %d: %s", i, got)
				assert.Contains(t, got.Msg, want.text, "diagnostic %d", i)
			}
		})
	}
}
