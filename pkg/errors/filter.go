package errors

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single suppression match; backtracking patterns
// with lookarounds can otherwise run away on long messages.
const matchTimeout = 100 * time.Millisecond

// Suppressor drops diagnostics whose "Kind: message" text matches one of a
// set of patterns. Patterns use .NET regular expression syntax, so
// lookarounds such as `Unassignable: (?!.*'any')` are available.
type Suppressor struct {
	patterns []*regexp2.Regexp
}

// NewSuppressor compiles patterns. An empty list suppresses nothing.
func NewSuppressor(patterns []string) (*Suppressor, error) {
	s := &Suppressor{}
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("invalid suppress pattern %q: %w", p, err)
		}
		re.MatchTimeout = matchTimeout
		s.patterns = append(s.patterns, re)
	}
	return s, nil
}

// Suppressed reports whether d matches any pattern. A pattern that times out
// does not match.
func (s *Suppressor) Suppressed(d *Diagnostic) bool {
	text := string(d.Category) + ": " + d.Msg
	for _, re := range s.patterns {
		if ok, err := re.MatchString(text); err == nil && ok {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics that are not suppressed, in order.
func (s *Suppressor) Filter(diags []*Diagnostic) []*Diagnostic {
	if s == nil || len(s.patterns) == 0 {
		return diags
	}
	kept := make([]*Diagnostic, 0, len(diags))
	for _, d := range diags {
		if !s.Suppressed(d) {
			kept = append(kept, d)
		}
	}
	return kept
}
