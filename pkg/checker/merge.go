package checker

import (
	"fmt"

	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// --- Interface Merging ---

// mergedInterface collects every declaration of one interface name. The
// declarations contribute to a single shape.
type mergedInterface struct {
	name  string
	decls []*ast.InterfaceDeclaration
	units []*unit
}

// mergeInterfaces groups interface declarations by name, in order of first
// appearance.
func (c *Checker) mergeInterfaces() []*mergedInterface {
	var order []*mergedInterface
	byName := make(map[string]*mergedInterface)
	for _, u := range c.units {
		d, ok := u.decl.(*ast.InterfaceDeclaration)
		if !ok {
			continue
		}
		mi, ok := byName[d.Name]
		if !ok {
			mi = &mergedInterface{name: d.Name}
			byName[d.Name] = mi
			order = append(order, mi)
		}
		mi.decls = append(mi.decls, d)
		mi.units = append(mi.units, u)
	}
	for _, mi := range order {
		if len(mi.decls) > 1 {
			c.logger.Debug("merging interface", "interface", mi.name, "declarations", len(mi.decls))
		}
	}
	return order
}

// registerInterface builds the merged shape and defines it as an alias.
// Properties declared more than once must agree on their type; extends
// clauses of every declaration become an intersection with the shape.
func (c *Checker) registerInterface(mi *mergedInterface) {
	first := c.walkerFor(mi.units[0])
	params, restore := first.declareTypeParams(mi.decls[0].TypeParams)
	restore()

	type seenField struct {
		field types.Field
		decl  int
	}
	fields := make(map[string]*seenField)
	var order []string
	var index *types.IndexSignature
	var calls []*types.FunctionType
	var bases []types.Type

	for i, d := range mi.decls {
		w := c.walkerFor(mi.units[i])
		if len(d.TypeParams) != len(params) {
			w.report(d, &DeclarationConflictError{
				Name:   d.Name,
				Detail: fmt.Sprintf("All declarations of '%s' must have identical type parameters.", d.Name),
			})
			continue
		}
		// Every declaration names the shared parameters in its own words.
		scope := &typeScope{params: make(map[string]*types.TypeParameter, len(params))}
		for j, tp := range d.TypeParams {
			scope.params[tp.Name] = params[j]
		}
		w.tscope = scope

		for _, base := range d.Extends {
			bases = append(bases, w.resolveType(base))
		}
		for _, p := range d.Properties {
			f := types.Field{Name: p.Name, Type: w.resolveType(p.Type), Optional: p.Optional, Readonly: p.Readonly}
			if prev, ok := fields[p.Name]; ok {
				if prev.field.Type != f.Type {
					w.report(p, &DeclarationConflictError{
						Name: p.Name,
						Detail: fmt.Sprintf("Subsequent property declarations must have the same type. Property '%s' must be of type '%s', but here has type '%s'.",
							p.Name, prev.field.Type, f.Type),
					})
				} else if prev.decl == i {
					w.report(p, &DeclarationConflictError{Name: p.Name})
				}
				continue
			}
			fields[p.Name] = &seenField{field: f, decl: i}
			order = append(order, p.Name)
		}
		if d.Index != nil {
			idx := &types.IndexSignature{Key: d.Index.KeyType, Value: w.resolveType(d.Index.ValueType)}
			if index != nil && (index.Key != idx.Key || index.Value != idx.Value) {
				w.report(d.Index, &DeclarationConflictError{
					Name:   d.Name,
					Detail: fmt.Sprintf("Duplicate index signature for type '%s'.", idx.Key),
				})
			} else {
				index = idx
			}
		}
		for _, call := range d.Calls {
			calls = append(calls, w.resolveSignature(call.TypeParams, call.Params, call.Rest, call.This, call.ReturnType, nil))
		}
	}

	list := make([]types.Field, len(order))
	for i, name := range order {
		list[i] = fields[name].field
	}
	var target types.Type = c.table.NewObjectType(list, index, calls...)
	if len(bases) > 0 {
		target = c.table.Intersection(append(bases, target)...)
	}
	if err := c.table.DefineAlias(mi.name, params, target); err != nil {
		first.report(mi.decls[0], &DeclarationConflictError{Name: mi.name, Detail: err.Error()})
	}
}
