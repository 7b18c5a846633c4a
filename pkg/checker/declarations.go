package checker

import (
	"structcheck/pkg/ast"
)

// --- Type Registration ---

// registerTypes declares every type name and then defines enums, aliases,
// interfaces and classes. Names are declared up front so definitions may
// refer to each other in any order.
func (c *Checker) registerTypes(interfaces []*mergedInterface) {
	firstOf := make(map[*unit]*mergedInterface, len(interfaces))
	for _, mi := range interfaces {
		firstOf[mi.units[0]] = mi
	}

	registered := make(map[*unit]bool)
	for _, u := range c.units {
		var ok bool
		switch d := u.decl.(type) {
		case *ast.TypeAliasStatement:
			ok = c.declareTypeName(u, d.Name, "alias", d.TypeParams)
		case *ast.InterfaceDeclaration:
			if mi, first := firstOf[u]; first {
				ok = c.declareTypeName(u, mi.name, "interface", d.TypeParams)
			}
		case *ast.EnumDeclaration:
			ok = c.declareTypeName(u, d.Name, "enum", nil)
		case *ast.ClassDeclaration:
			ok = c.declareTypeName(u, d.Name, "class", d.TypeParams)
		}
		registered[u] = ok
	}
	c.declarePrelude()

	// Enum values may appear in any other definition.
	for _, u := range c.units {
		if d, ok := u.decl.(*ast.EnumDeclaration); ok && registered[u] {
			c.registerEnum(u, d)
		}
	}
	for _, u := range c.units {
		if !registered[u] {
			continue
		}
		switch d := u.decl.(type) {
		case *ast.TypeAliasStatement:
			c.registerAlias(u, d)
		case *ast.InterfaceDeclaration:
			c.registerInterface(firstOf[u])
		}
	}
	// Classes come last: unannotated fields are typed from their
	// initializers, which may mention any other type.
	for _, u := range c.units {
		if d, ok := u.decl.(*ast.ClassDeclaration); ok && registered[u] {
			c.registerClass(u, d)
		}
	}
	c.logger.Debug("types registered", "names", len(c.typeDecls), "enums", len(c.enums), "classes", len(c.classes))
}

// declareTypeName reserves name for a declaration of kind. A name declared
// twice is reported at the second declaration, which is then skipped.
func (c *Checker) declareTypeName(u *unit, name, kind string, tps []*ast.TypeParam) bool {
	if prev, exists := c.typeDecls[name]; exists {
		detail := ""
		if prev.kind != kind {
			detail = "Duplicate identifier '" + name + "'. It is already declared as " + article(prev.kind) + "."
		}
		c.walkerFor(u).report(u.decl, &DeclarationConflictError{Name: name, Detail: detail})
		return false
	}
	decl := &typeDecl{kind: kind, params: len(tps), unit: u}
	for _, tp := range tps {
		if tp.Default != nil {
			break
		}
		decl.required++
	}
	c.typeDecls[name] = decl
	return true
}

func article(kind string) string {
	switch kind {
	case "alias":
		return "a type alias"
	case "interface":
		return "an interface"
	case "enum":
		return "an enum"
	}
	return "a " + kind
}

func (c *Checker) registerAlias(u *unit, d *ast.TypeAliasStatement) {
	w := c.walkerFor(u)
	params, restore := w.declareTypeParams(d.TypeParams)
	target := w.resolveType(d.Type)
	restore()
	if err := c.table.DefineAlias(d.Name, params, target); err != nil {
		w.report(d, &DeclarationConflictError{Name: d.Name, Detail: err.Error()})
	}
}
