package checker

import (
	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// functionGroup is every declaration of one function name: overload
// signatures followed by at most one implementation.
type functionGroup struct {
	name  string
	decls []*ast.FunctionDeclaration
	units []*unit
}

// pendingReturn tracks an implementation whose return type is inferred from
// its body.
type pendingReturn struct {
	unit  *unit
	decl  *ast.FunctionDeclaration
	state int // 0 pending, 1 inferring, 2 done
}

// declareFunctions declares every function name in the global environment.
// Callers of an overloaded function see only its overload signatures; the
// implementation signature must be compatible with each of them.
func (c *Checker) declareFunctions() {
	var groups []*functionGroup
	byName := make(map[string]*functionGroup)
	for _, u := range c.units {
		d, ok := u.decl.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		g, ok := byName[d.Name]
		if !ok {
			g = &functionGroup{name: d.Name}
			byName[d.Name] = g
			groups = append(groups, g)
		}
		g.decls = append(g.decls, d)
		g.units = append(g.units, u)
	}

	for _, g := range groups {
		c.declareFunctionGroup(g)
	}
	c.logger.Debug("functions declared", "count", len(groups), "inferred", len(c.pending))
}

func (c *Checker) declareFunctionGroup(g *functionGroup) {
	var overloads []*types.FunctionType
	var overloadDecls []*ast.FunctionDeclaration
	var overloadUnits []*unit
	var impl *ast.FunctionDeclaration
	var implUnit *unit

	for i, d := range g.decls {
		w := c.walkerFor(g.units[i])
		if d.Body == nil {
			overloads = append(overloads, w.resolveSignature(d.TypeParams, d.Params, d.Rest, d.This, d.ReturnType, nil))
			overloadDecls = append(overloadDecls, d)
			overloadUnits = append(overloadUnits, g.units[i])
			continue
		}
		if impl != nil {
			w.report(d, &DeclarationConflictError{Name: d.Name, Detail: "Duplicate function implementation."})
			continue
		}
		impl, implUnit = d, g.units[i]
	}

	var implType *types.FunctionType
	if impl != nil {
		w := c.walkerFor(implUnit)
		implType = w.resolveSignature(impl.TypeParams, impl.Params, impl.Rest, impl.This, impl.ReturnType, nil)
		if impl.ReturnType == nil {
			// Provisional until the body is inspected; recursive calls see any.
			sig := implType.Signature
			sig.Return = types.Any
			implType = c.table.NewFunctionType(sig)
			c.pending[impl] = &pendingReturn{unit: implUnit, decl: impl}
			c.pendingByName[g.name] = c.pending[impl]
		}
		c.implementations[impl] = implType
	}

	var symbol types.Type
	switch {
	case len(overloads) == 0:
		symbol = implType
	case len(overloads) == 1:
		symbol = overloads[0]
	default:
		b := c.table.Object()
		for _, o := range overloads {
			b.WithCallSignature(o)
		}
		symbol = b.Build()
	}

	if len(overloads) > 0 {
		if impl == nil {
			last := len(overloadDecls) - 1
			c.walkerFor(overloadUnits[last]).report(overloadDecls[last], &InvalidDeclarationError{
				Msg: "Function implementation is missing or not immediately following the declaration.",
			})
		} else {
			c.overloadGroups[impl] = &overloadGroup{sigs: overloads, decls: overloadDecls, units: overloadUnits}
		}
	}

	first := g.units[0]
	if !c.globals.Define(g.name, symbol, true) {
		c.walkerFor(first).report(g.decls[0], &DeclarationConflictError{Name: g.name})
	}
}

// overloadGroup keeps the overloads of an implementation for the
// compatibility check, which waits until its return type is known.
type overloadGroup struct {
	sigs  []*types.FunctionType
	decls []*ast.FunctionDeclaration
	units []*unit
}

// inferReturns infers every pending return type and then checks overload
// compatibility. Inference triggered earlier by a lookup is not repeated.
func (c *Checker) inferReturns() {
	for _, u := range c.units {
		if d, ok := u.decl.(*ast.FunctionDeclaration); ok {
			if p, ok := c.pending[d]; ok {
				c.inferReturn(p)
			}
		}
	}
	for _, u := range c.units {
		d, ok := u.decl.(*ast.FunctionDeclaration)
		if !ok {
			continue
		}
		if og, ok := c.overloadGroups[d]; ok {
			c.checkOverloadCompatibility(c.implementations[d], og)
		}
	}
}

// inferReturn checks the body of p quietly and records the union of its
// returned types. A recursive reference during inference keeps seeing any.
func (c *Checker) inferReturn(p *pendingReturn) {
	if p.state != 0 {
		return
	}
	p.state = 1
	impl := c.implementations[p.decl]
	var ret types.Type
	c.guard(p.unit, func() {
		w := c.walkerFor(p.unit)
		w.speculate(func() {
			ret = w.checkBody(&bodySpec{
				node:   p.decl,
				fn:     impl,
				params: p.decl.Params,
				rest:   p.decl.Rest,
				block:  p.decl.Body,
			})
		})
	})
	if ret == nil {
		ret = types.Any
	}
	sig := impl.Signature
	sig.Return = ret
	inferred := c.table.NewFunctionType(sig)
	c.implementations[p.decl] = inferred
	if _, overloaded := c.overloadGroups[p.decl]; !overloaded {
		c.globals.Redefine(p.decl.Name, inferred)
	}
	p.state = 2
	c.logger.Debug("return type inferred", "function", p.decl.Name, "type", ret.String())
}

// checkOverloadCompatibility requires the implementation to accept every
// overload's parameters and to return something related to each overload's
// return type, in either direction.
func (c *Checker) checkOverloadCompatibility(impl *types.FunctionType, og *overloadGroup) {
	table := c.table
	erased := table.Erase(impl)
	for i, o := range og.sigs {
		candidate := erased
		target := table.Erase(o)
		if table.IsAssignable(target.Return, erased.Return) {
			sig := erased.Signature
			sig.Return = target.Return
			candidate = table.NewFunctionType(sig)
		}
		if !table.IsAssignable(candidate, target) {
			c.walkerFor(og.units[i]).report(og.decls[i], &UnassignableTypeError{
				Source: impl,
				Target: o,
				Reason: ReasonOverloadImplementation,
			})
		}
	}
}

// checkFunctionBody checks the body of a function implementation.
func (w *walker) checkFunctionBody(d *ast.FunctionDeclaration) {
	fn, ok := w.c.implementations[d]
	if !ok {
		return
	}
	w.checkBody(&bodySpec{
		node:     d,
		fn:       fn,
		params:   d.Params,
		rest:     d.Rest,
		block:    d.Body,
		declared: d.ReturnType != nil,
	})
}

// bodySpec describes a function body to check against its signature.
type bodySpec struct {
	node          ast.Node
	fn            *types.FunctionType
	params        []*ast.Parameter
	rest          *ast.Parameter
	block         *ast.BlockStatement
	expr          ast.Expression // Expression body of an arrow function
	declared      bool           // The return type was written
	contextual    types.Type     // Expected return type when not declared
	isConstructor bool
}

// checkBody checks a body with the signature's parameters in scope and
// returns its return type: the declared one, or the widened union of
// everything returned.
func (w *walker) checkBody(b *bodySpec) types.Type {
	table := w.c.table
	fn := b.fn

	prevScope, prevFn := w.tscope, w.fn
	defer func() { w.tscope, w.fn = prevScope, prevFn }()
	if len(fn.TypeParams) > 0 {
		scope := &typeScope{params: make(map[string]*types.TypeParameter, len(fn.TypeParams)), outer: w.tscope}
		for _, tp := range fn.TypeParams {
			scope.params[tp.Name] = tp
		}
		w.tscope = scope
	}

	w.env.Enter()
	defer w.env.Exit()
	for i, p := range b.params {
		if i >= len(fn.Params) {
			break
		}
		typ := fn.Params[i].Type
		if p.Default != nil {
			dt := w.checkExpression(p.Default, typ)
			w.checkAssignable(p.Default, dt, typ, ReasonInitializer)
		} else if fn.Params[i].Optional {
			typ = table.Union(typ, types.Undefined)
		}
		if !w.env.Define(p.Name, typ, false) {
			w.report(p, &DeclarationConflictError{Name: p.Name})
		}
	}
	if b.rest != nil && fn.Rest != nil {
		w.env.Define(b.rest.Name, fn.Rest.Type, false)
	}
	if fn.This != nil {
		w.env.Define("this", fn.This, true)
	}

	ctx := &funcContext{isConstructor: b.isConstructor}
	if b.declared {
		ctx.returnType = fn.Return
	}
	w.fn = ctx

	if b.expr != nil {
		expected := ctx.returnType
		if expected == nil {
			expected = b.contextual
		}
		rt := w.checkExpression(b.expr, expected)
		if b.declared {
			w.checkAssignable(b.expr, rt, fn.Return, ReasonReturn)
			return fn.Return
		}
		return w.widenReturn(rt, b.contextual)
	}

	exits := w.checkStatements(b.block.Statements)
	if b.declared {
		ret := table.Resolve(fn.Return)
		if !exits && !types.IsTop(ret) && ret != types.Void && !table.IsAssignable(types.Undefined, ret) {
			w.report(b.node, &InvalidDeclarationError{
				Msg: "Function lacks ending return statement and return type does not include 'undefined'.",
			})
		}
		return fn.Return
	}
	if len(ctx.returns) == 0 {
		return types.Void
	}
	returns := ctx.returns
	if !exits {
		returns = append(returns, types.Undefined)
	}
	return w.widenReturn(table.Union(returns...), b.contextual)
}

// widenReturn widens an inferred return type unless the context asks for
// literal types.
func (w *walker) widenReturn(typ, contextual types.Type) types.Type {
	table := w.c.table
	if contextual != nil && hasLiteralMembers(table.Resolve(contextual)) && table.IsAssignable(typ, contextual) {
		return typ
	}
	return table.DeeplyWidenType(typ)
}

func hasLiteralMembers(t types.Type) bool {
	for _, m := range types.Members(t) {
		if types.IsLiteral(m) || types.IsEnumMemberType(m) {
			return true
		}
	}
	return false
}

// checkFunctionLiteral types a function expression. Unannotated parameters
// take their types from the contextual signature, if any.
func (w *walker) checkFunctionLiteral(fl *ast.FunctionLiteral, ctx types.Type) types.Type {
	table := w.c.table
	contextual := w.contextualSignature(ctx)
	fn := w.resolveSignature(fl.TypeParams, fl.Params, fl.Rest, nil, fl.ReturnType, contextual)

	var expected types.Type
	if contextual != nil {
		expected = contextual.Return
	}
	ret := w.checkBody(&bodySpec{
		node:       fl,
		fn:         fn,
		params:     fl.Params,
		rest:       fl.Rest,
		block:      fl.Body,
		expr:       fl.ExpressionBody,
		declared:   fl.ReturnType != nil,
		contextual: expected,
	})
	if fl.ReturnType == nil {
		sig := fn.Signature
		sig.Return = ret
		fn = table.NewFunctionType(sig)
	}
	return fn
}

// contextualSignature finds the single signature a function expression is
// expected to have.
func (w *walker) contextualSignature(ctx types.Type) *types.FunctionType {
	if ctx == nil {
		return nil
	}
	table := w.c.table
	var found *types.FunctionType
	for _, m := range types.Members(table.Resolve(ctx)) {
		sigs := table.CallSignatures(m)
		if len(sigs) != 1 {
			continue
		}
		if found != nil {
			return nil
		}
		found = sigs[0]
	}
	return found
}

// isContextSensitive reports whether typing expr depends on its contextual
// type: a function expression with an unannotated parameter.
func isContextSensitive(expr ast.Expression) bool {
	fl, ok := expr.(*ast.FunctionLiteral)
	if !ok {
		return false
	}
	for _, p := range fl.Params {
		if p.Type == nil && p.Default == nil {
			return true
		}
	}
	return fl.Rest != nil && fl.Rest.Type == nil
}
