package checker

import (
	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// classInfo ties a class value to the alias naming its instances.
type classInfo struct {
	typ    *types.ClassType
	ref    types.Type // Instance type as written: an alias reference to the class name
	decl   *ast.ClassDeclaration
	params []*types.TypeParameter

	base      *types.ObjectType // Inherited instance shape, base type arguments applied
	abstracts []abstractMember  // Abstract methods nothing in the chain implements
}

type abstractMember struct {
	name  string
	owner string
}

// classFor returns the class info for a constructor type.
func (c *Checker) classFor(ct *types.ClassType) (*classInfo, bool) {
	info, ok := c.classes[ct.Name]
	if !ok || info.typ != ct {
		return nil, false
	}
	return info, true
}

// registerClass builds the instance shape of d from its base class, fields
// and methods, defines it as an alias named after the class and declares
// the constructor value. A base declared later is registered first.
func (c *Checker) registerClass(u *unit, d *ast.ClassDeclaration) *classInfo {
	if info, ok := c.classes[d.Name]; ok && info.decl == d {
		return info
	}
	w := c.walkerFor(u)
	if c.registering[d] {
		w.report(d, &InvalidDeclarationError{
			Msg: "Class '" + d.Name + "' is referenced directly or indirectly in its own base expression.",
		})
		return nil
	}
	c.registering[d] = true
	defer delete(c.registering, d)

	params, restore := w.declareTypeParams(d.TypeParams)
	defer restore()
	refs := make([]types.Type, len(params))
	for i, p := range params {
		refs[i] = c.table.Ref(p)
	}
	ref := c.table.NewAliasRef(d.Name, refs...)
	w.env.Define("this", ref, true)
	info := &classInfo{ref: ref, decl: d, params: params}

	b := c.table.Object()
	var base *classInfo
	var subs map[*types.TypeParameter]types.Type
	if d.Extends != nil {
		if base = w.baseClass(d.Extends); base != nil {
			subs = w.baseBindings(d.Extends, base)
			info.base = c.table.Substitute(base.typ.Instance, subs).(*types.ObjectType)
			for _, f := range info.base.Fields {
				b.WithField(f)
			}
		}
	}

	seen := make(map[string]bool)
	for _, f := range d.Fields {
		if seen[f.Name] {
			w.report(f, &DeclarationConflictError{Name: f.Name})
			continue
		}
		seen[f.Name] = true
		b.WithField(types.Field{
			Name:     f.Name,
			Type:     w.fieldType(f),
			Optional: f.Optional,
			Readonly: f.Readonly,
		})
	}
	for _, m := range d.Methods {
		if seen[m.Name] {
			w.report(m, &DeclarationConflictError{Name: m.Name})
			continue
		}
		seen[m.Name] = true
		if m.Abstract {
			info.abstracts = append(info.abstracts, abstractMember{name: m.Name, owner: d.Name})
		}
		b.WithField(types.Field{Name: m.Name, Type: w.methodType(m)})
	}
	if base != nil {
		for _, a := range base.abstracts {
			if !seen[a.name] {
				info.abstracts = append(info.abstracts, a)
			}
		}
	}
	instance := b.Build()

	var ctor types.Signature
	switch {
	case d.Constructor != nil:
		ctor = w.resolveSignature(d.Constructor.TypeParams, d.Constructor.Params, d.Constructor.Rest, nil, nil, nil).Signature
	case base != nil:
		ctor = c.table.SubstituteSignature(base.typ.Constructor, subs).Signature
	}
	// Construction binds the class's own parameters like a generic call.
	ctor.TypeParams = append(append([]*types.TypeParameter(nil), params...), ctor.TypeParams...)
	ctor.Return = ref
	info.typ = c.table.NewClassType(d.Name, instance, ctor)
	if err := c.table.DefineAlias(d.Name, params, instance); err != nil {
		w.report(d, &DeclarationConflictError{Name: d.Name, Detail: err.Error()})
	}
	c.classes[d.Name] = info
	if !c.globals.Define(d.Name, info.typ, true) {
		w.report(d, &DeclarationConflictError{Name: d.Name})
	}
	return info
}

// baseClass finds the class an extends clause names.
func (w *walker) baseClass(ref *ast.TypeReference) *classInfo {
	c := w.c
	decl, ok := c.typeDecls[ref.Name]
	if !ok {
		w.report(ref, &UnresolvedIdentifierError{Name: ref.Name})
		return nil
	}
	if decl.kind == "class" && decl.unit != nil {
		if cd, ok := decl.unit.decl.(*ast.ClassDeclaration); ok {
			return c.registerClass(decl.unit, cd)
		}
	}
	if info, ok := c.classes[ref.Name]; ok {
		return info
	}
	w.report(ref, &InvalidDeclarationError{Msg: "A class can only extend a class; '" + ref.Name + "' is " + article(decl.kind) + "."})
	return nil
}

// baseBindings maps the base class's type parameters to the arguments of
// the extends clause. Missing arguments take their defaults.
func (w *walker) baseBindings(ref *ast.TypeReference, base *classInfo) map[*types.TypeParameter]types.Type {
	table := w.c.table
	args := make([]types.Type, len(ref.TypeArguments))
	for i, a := range ref.TypeArguments {
		args[i] = w.resolveType(a)
	}
	required := 0
	for _, p := range base.params {
		if p.Default != nil {
			break
		}
		required++
	}
	if len(args) < required || len(args) > len(base.params) {
		w.report(ref, &ArityError{What: "type arguments", Min: required, Max: len(base.params), Got: len(args)})
	}
	subs := make(map[*types.TypeParameter]types.Type, len(base.params))
	for i, p := range base.params {
		switch {
		case i < len(args):
			subs[p] = args[i]
		case p.Default != nil:
			subs[p] = table.Substitute(p.Default, subs)
		default:
			subs[p] = types.Any
		}
	}
	return subs
}

// fieldType is the annotation of f, or the widened type of its
// initializer. Readonly fields keep literal initializer types.
func (w *walker) fieldType(f *ast.ClassField) types.Type {
	if f.Type != nil {
		return w.resolveType(f.Type)
	}
	if f.Value == nil {
		if w.c.opts.NoImplicitAny {
			w.report(f, &ImplicitAnyError{Name: f.Name})
		}
		return types.Any
	}
	var typ types.Type
	w.speculate(func() {
		typ = w.checkExpression(f.Value, nil)
	})
	if f.Readonly {
		return typ
	}
	return w.c.table.DeeplyWidenType(typ)
}

// methodType resolves a method signature. An unannotated return is any:
// method bodies are checked after every class shape is fixed.
func (w *walker) methodType(m *ast.FunctionDeclaration) *types.FunctionType {
	fn := w.resolveSignature(m.TypeParams, m.Params, m.Rest, m.This, m.ReturnType, nil)
	if m.ReturnType != nil {
		return fn
	}
	sig := fn.Signature
	sig.Return = types.Any
	return w.c.table.NewFunctionType(sig)
}

// checkClass checks implements clauses, overrides, abstract members,
// field initializers, the constructor and every method body.
func (w *walker) checkClass(d *ast.ClassDeclaration) {
	info, ok := w.c.classes[d.Name]
	if !ok || info.decl != d {
		return
	}
	table := w.c.table
	instance := info.typ.Instance

	if len(info.params) > 0 {
		scope := &typeScope{params: make(map[string]*types.TypeParameter, len(info.params)), outer: w.tscope}
		for _, tp := range info.params {
			scope.params[tp.Name] = tp
		}
		prev := w.tscope
		w.tscope = scope
		defer func() { w.tscope = prev }()
	}

	w.checkOverrides(d, info)
	w.checkAbstracts(d, info)

	for _, impl := range d.Implements {
		target := w.resolveType(impl)
		if !table.IsAssignable(info.ref, target) {
			w.report(impl, &UnassignableTypeError{Source: info.ref, Target: target, Reason: ReasonImplements, Name: d.Name})
		}
	}

	w.env.Define("this", info.ref, true)
	for _, f := range d.Fields {
		if f.Value == nil {
			continue
		}
		field, ok := instance.Field(f.Name)
		if !ok {
			continue
		}
		vt := w.checkExpression(f.Value, field.Type)
		w.checkAssignable(f.Value, vt, field.Type, ReasonInitializer)
	}

	if ctor := d.Constructor; ctor != nil && ctor.Body != nil {
		fn := table.NewFunctionType(types.Signature{
			TypeParams: info.typ.Constructor.TypeParams,
			Params:     info.typ.Constructor.Params,
			Rest:       info.typ.Constructor.Rest,
			Return:     types.Void,
		})
		w.checkBody(&bodySpec{
			node:          ctor,
			fn:            fn,
			params:        ctor.Params,
			rest:          ctor.Rest,
			block:         ctor.Body,
			declared:      true,
			isConstructor: true,
		})
	}
	for _, m := range d.Methods {
		field, ok := instance.Field(m.Name)
		if !ok || m.Body == nil {
			continue
		}
		fn, ok := field.Type.(*types.FunctionType)
		if !ok {
			continue
		}
		w.checkBody(&bodySpec{
			node:     m,
			fn:       fn,
			params:   m.Params,
			rest:     m.Rest,
			block:    m.Body,
			declared: m.ReturnType != nil,
		})
	}
}

// checkOverrides reports fields and methods whose type does not fit the
// member they replace in the base class.
func (w *walker) checkOverrides(d *ast.ClassDeclaration, info *classInfo) {
	if info.base == nil {
		return
	}
	table := w.c.table
	check := func(node ast.Node, name string) {
		inherited, ok := info.base.Field(name)
		if !ok {
			return
		}
		own, ok := info.typ.Instance.Field(name)
		if !ok || table.IsAssignable(own.Type, inherited.Type) {
			return
		}
		w.report(node, &UnassignableTypeError{Source: own.Type, Target: inherited.Type, Reason: ReasonOverride, Name: d.Name})
	}
	for _, f := range d.Fields {
		check(f, f.Name)
	}
	for _, m := range d.Methods {
		check(m, m.Name)
	}
}

// checkAbstracts reports abstract methods with a body, abstract methods of
// a concrete class and inherited abstract methods it leaves unimplemented.
func (w *walker) checkAbstracts(d *ast.ClassDeclaration, info *classInfo) {
	for _, m := range d.Methods {
		if m.Abstract && m.Body != nil {
			w.report(m, &InvalidDeclarationError{
				Msg: "Method '" + m.Name + "' cannot have an implementation because it is marked abstract.",
			})
		}
	}
	if d.Abstract {
		return
	}
	for _, a := range info.abstracts {
		if a.owner == d.Name {
			w.report(d, &InvalidDeclarationError{
				Msg: "Abstract method '" + a.name + "' can only appear within an abstract class.",
			})
			continue
		}
		w.report(d, &InvalidDeclarationError{
			Msg: "Non-abstract class '" + d.Name + "' does not implement inherited abstract member '" + a.name + "' from class '" + a.owner + "'.",
		})
	}
}
