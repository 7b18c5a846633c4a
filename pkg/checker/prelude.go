package checker

import (
	"structcheck/pkg/types"
)

// declarePrelude defines the ambient classes every program may use. A
// program that declares one of these names itself shadows it.
func (c *Checker) declarePrelude() {
	t := c.table

	date := t.Object().
		WithProperty("getTime", t.NewFunctionType(types.Signature{Return: types.Number})).
		WithProperty("toISOString", t.NewFunctionType(types.Signature{Return: types.String})).
		Build()
	c.declareBuiltinClass("Date", date, types.Signature{
		Params: []types.Param{{Name: "value", Type: t.Union(types.Number, types.String), Optional: true}},
	})

	errorShape := t.Object().
		WithProperty("name", types.String).
		WithProperty("message", types.String).
		Build()
	c.declareBuiltinClass("Error", errorShape, types.Signature{
		Params: []types.Param{{Name: "message", Type: types.String, Optional: true}},
	})
}

func (c *Checker) declareBuiltinClass(name string, instance *types.ObjectType, ctor types.Signature) {
	if _, exists := c.typeDecls[name]; exists {
		return
	}
	if err := c.table.DefineAlias(name, nil, instance); err != nil {
		c.logger.Warn("prelude alias", "name", name, "error", err)
		return
	}
	c.typeDecls[name] = &typeDecl{kind: "builtin"}
	ref := c.table.NewAliasRef(name)
	ctor.Return = ref
	ct := c.table.NewClassType(name, instance, ctor)
	c.classes[name] = &classInfo{typ: ct, ref: ref}
	c.globals.Define(name, ct, true)
}
