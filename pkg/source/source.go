package source

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// SourceFile is a declaration file handed to the checker, kept around so
// diagnostics can quote the offending line.
type SourceFile struct {
	Name    string // Display name (e.g., "program.yaml", "<stdin>")
	Path    string // Full file path (empty for in-memory input)
	Content string

	once  sync.Once
	lines []string
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewStdinSource creates a source file for stdin input
func NewStdinSource(content string) *SourceFile {
	return &SourceFile{Name: "<stdin>", Content: content}
}

// NewMemorySource creates a source file for programs built in memory (tests, embedders).
func NewMemorySource(name string) *SourceFile {
	return &SourceFile{Name: name}
}

// FromFile creates a SourceFile from a file path and content
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	sf.once.Do(func() {
		sf.lines = strings.Split(sf.Content, "\n")
	})
	return sf.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file (has a path)
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}

// Position is a location in a source file. Line and Column are 1-based;
// the zero Position means "unknown".
type Position struct {
	Line   int
	Column int
	Source *SourceFile
}

// IsValid reports whether the position points at a real line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// File returns the display path of the position's source, or "" when unknown.
func (p Position) File() string {
	if p.Source == nil {
		return ""
	}
	return p.Source.DisplayPath()
}

func (p Position) String() string {
	name := p.File()
	if name == "" {
		name = "<unknown>"
	}
	if !p.IsValid() {
		return name
	}
	return fmt.Sprintf("%s:%d:%d", name, p.Line, p.Column)
}
