package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"structcheck/pkg/ast"
	"structcheck/pkg/loader"
)

// MustLoad parses a YAML program or fails the test.
func MustLoad(t testing.TB, content string) *ast.Program {
	t.Helper()
	program, err := loader.LoadString(t.Name()+".yaml", content)
	require.NoError(t, err)
	return program
}

// WriteProgram writes content to name inside a fresh temporary directory
// and returns the file's path.
func WriteProgram(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// FindVar returns the first variable declaration named name anywhere in
// program, including inside function and method bodies.
func FindVar(program *ast.Program, name string) *ast.VarStatement {
	var found *ast.VarStatement
	var visit func(ast.Statement)
	visitBlock := func(b *ast.BlockStatement) {
		if b == nil {
			return
		}
		for _, s := range b.Statements {
			visit(s)
		}
	}
	visit = func(s ast.Statement) {
		if found != nil || s == nil {
			return
		}
		switch st := s.(type) {
		case *ast.VarStatement:
			if st.Name == name {
				found = st
			}
		case *ast.BlockStatement:
			visitBlock(st)
		case *ast.IfStatement:
			visit(st.Consequence)
			visit(st.Alternative)
		}
	}
	for _, d := range program.Declarations {
		switch decl := d.(type) {
		case *ast.VarStatement:
			visit(decl)
		case *ast.FunctionDeclaration:
			visitBlock(decl.Body)
		case *ast.ClassDeclaration:
			if decl.Constructor != nil {
				visitBlock(decl.Constructor.Body)
			}
			for _, m := range decl.Methods {
				visitBlock(m.Body)
			}
		case *ast.StatementDeclaration:
			visit(decl.Statement)
		}
		if found != nil {
			break
		}
	}
	return found
}
