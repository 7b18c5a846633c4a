package checker

import (
	"fmt"
	"math/big"

	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// --- Expressions ---

// checkExpression computes and records the type of expr. ctx is the type
// the surrounding code expects, or nil; it decides how literals in array
// and object literals are widened and how function expressions are typed.
func (w *walker) checkExpression(expr ast.Expression, ctx types.Type) types.Type {
	typ := w.expressionType(expr, ctx)
	if typ == nil {
		typ = types.Invalid
	}
	return w.record(expr, typ)
}

func (w *walker) expressionType(expr ast.Expression, ctx types.Type) types.Type {
	table := w.c.table
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return table.NumberLiteral(e.Value)
	case *ast.StringLiteral:
		return table.StringLiteral(e.Value)
	case *ast.BooleanLiteral:
		return table.BooleanLiteral(e.Value)
	case *ast.BigIntLiteral:
		v, ok := new(big.Int).SetString(e.Digits, 10)
		if !ok {
			w.report(e, &InvalidDeclarationError{Msg: "Invalid bigint literal '" + e.Digits + "n'."})
			return types.Invalid
		}
		return table.BigIntLiteral(v)
	case *ast.NullLiteral:
		return types.Null
	case *ast.UndefinedLiteral:
		return types.Undefined
	case *ast.ThisExpression:
		if t, ok := w.env.Lookup("this"); ok {
			return t
		}
		return types.Any
	case *ast.Identifier:
		t, ok := w.lookup(e.Value)
		if !ok {
			w.report(e, &UnresolvedIdentifierError{Name: e.Value})
			return types.Invalid
		}
		return t
	case *ast.ArrayLiteral:
		return w.checkArrayLiteral(e, ctx)
	case *ast.ObjectLiteral:
		return w.checkObjectLiteral(e, ctx)
	case *ast.FunctionLiteral:
		return w.checkFunctionLiteral(e, ctx)
	case *ast.CallExpression:
		return w.checkCall(e)
	case *ast.NewExpression:
		return w.checkNew(e)
	case *ast.MemberExpression:
		return w.checkMember(e)
	case *ast.IndexExpression:
		return w.checkIndex(e)
	case *ast.TypeofExpression:
		w.checkExpression(e.Operand, nil)
		return w.typeofResult()
	case *ast.PrefixExpression:
		return w.checkPrefix(e)
	case *ast.InfixExpression:
		return w.checkInfix(e)
	case *ast.AssignmentExpression:
		return w.checkAssignment(e)
	case *ast.TypeAssertionExpression:
		return w.checkTypeAssertion(e)
	case nil:
		return types.Invalid
	}
	w.report(expr, &InvalidDeclarationError{Msg: fmt.Sprintf("Unsupported expression %T.", expr)})
	return types.Invalid
}

// lookup finds the type of name in scope. A function whose return type is
// still inferred from its body is settled first.
func (w *walker) lookup(name string) (types.Type, bool) {
	if p, ok := w.c.pendingByName[name]; ok && p.state == 0 {
		w.c.inferReturn(p)
	}
	return w.env.Lookup(name)
}

var typeofResults = []string{"string", "number", "bigint", "boolean", "symbol", "undefined", "object", "function"}

func (w *walker) typeofResult() types.Type {
	members := make([]types.Type, len(typeofResults))
	for i, s := range typeofResults {
		members[i] = w.c.table.StringLiteral(s)
	}
	return w.c.table.Union(members...)
}

// --- Literals ---

// checkArrayLiteral types an array literal. Under a tuple context it is a
// tuple; otherwise an array of the union of its elements, widened unless
// the context's element type asks for literals.
func (w *walker) checkArrayLiteral(e *ast.ArrayLiteral, ctx types.Type) types.Type {
	table := w.c.table
	if tuple := w.contextualTuple(ctx, len(e.Elements)); tuple != nil {
		elems := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			ectx, _ := tuple.ElementAt(i)
			elems[i] = w.checkExpression(el, ectx)
		}
		return table.NewTupleType(types.TupleSpec{Elements: elems})
	}

	elemCtx := w.contextualElement(ctx)
	if len(e.Elements) == 0 {
		return table.NewArrayType(types.Never)
	}
	elems := make([]types.Type, len(e.Elements))
	for i, el := range e.Elements {
		elems[i] = w.checkExpression(el, elemCtx)
	}
	u := table.Union(elems...)
	if elemCtx == nil || !table.IsAssignable(u, elemCtx) || !hasLiteralMembers(table.Resolve(elemCtx)) {
		u = table.DeeplyWidenType(u)
	}
	return table.NewArrayType(u)
}

// contextualTuple returns the tuple type ctx expects, if it expects one
// that can hold n elements.
func (w *walker) contextualTuple(ctx types.Type, n int) *types.TupleType {
	if ctx == nil {
		return nil
	}
	table := w.c.table
	var found *types.TupleType
	for _, m := range types.Members(table.Resolve(ctx)) {
		if tt, ok := table.Resolve(m).(*types.TupleType); ok {
			if n < tt.RequiredElements() || (tt.RestElementType == nil && n > len(tt.ElementTypes)) {
				continue
			}
			if found != nil {
				return nil
			}
			found = tt
		}
	}
	return found
}

// contextualElement returns the element type of the array type ctx
// expects.
func (w *walker) contextualElement(ctx types.Type) types.Type {
	if ctx == nil {
		return nil
	}
	table := w.c.table
	var elems []types.Type
	for _, m := range types.Members(table.Resolve(ctx)) {
		if at, ok := table.Resolve(m).(*types.ArrayType); ok {
			elems = append(elems, at.ElementType)
		}
	}
	if len(elems) == 0 {
		return nil
	}
	return table.Union(elems...)
}

// checkObjectLiteral types an object literal. Property types are widened
// unless the contextual property type asks for literals.
func (w *walker) checkObjectLiteral(e *ast.ObjectLiteral, ctx types.Type) types.Type {
	table := w.c.table
	seen := make(map[string]bool, len(e.Properties))
	fields := make([]types.Field, 0, len(e.Properties))
	for _, p := range e.Properties {
		var pctx types.Type
		if ctx != nil {
			if f, ok := table.PropertyType(ctx, p.Key); ok {
				pctx = f.Type
			}
		}
		vt := w.checkExpression(p.Value, pctx)
		if seen[p.Key] {
			w.report(p, &DeclarationConflictError{
				Name:   p.Key,
				Detail: "An object literal cannot have multiple properties with the same name.",
			})
			continue
		}
		seen[p.Key] = true
		if pctx == nil || !table.IsAssignable(vt, pctx) || !hasLiteralMembers(table.Resolve(pctx)) {
			vt = table.DeeplyWidenType(vt)
		}
		fields = append(fields, types.Field{Name: p.Key, Type: vt})
	}
	return table.NewObjectType(fields, nil)
}

// --- Access ---

func (w *walker) checkMember(e *ast.MemberExpression) types.Type {
	table := w.c.table
	objType := w.checkExpression(e.Object, nil)
	resolved := table.Resolve(objType)
	if types.IsTop(resolved) && resolved != types.Unknown {
		return types.Any
	}

	members := types.Members(resolved)
	var nullish []types.Type
	for _, m := range members {
		if types.IsNullish(m) {
			nullish = append(nullish, m)
		}
	}
	subject := resolved
	if len(nullish) > 0 {
		subject = table.Filter(resolved, func(m types.Type) bool { return !types.IsNullish(m) })
		if !e.Optional {
			w.report(e, &UnknownPropertyError{
				Property: e.Property,
				Type:     objType,
				Detail:   fmt.Sprintf("Object is possibly '%s'.", table.Union(nullish...)),
			})
		}
		if subject == types.Never {
			return types.Undefined
		}
	}

	f, ok := table.PropertyType(subject, e.Property)
	if !ok {
		w.report(e, &UnknownPropertyError{Property: e.Property, Type: objType})
		return types.Invalid
	}
	typ := f.Type
	if f.Optional || (e.Optional && len(nullish) > 0) {
		typ = table.Union(typ, types.Undefined)
	}
	return typ
}

func (w *walker) checkIndex(e *ast.IndexExpression) types.Type {
	objType := w.checkExpression(e.Left, nil)
	idxType := w.checkExpression(e.Index, nil)
	typ, err := w.indexAccess(objType, idxType)
	if err != nil {
		w.report(e, err)
	}
	return typ
}

// indexAccess returns the type of obj[idx].
func (w *walker) indexAccess(objType, idxType types.Type) (types.Type, error) {
	table := w.c.table
	resolved := table.Resolve(objType)
	if types.IsTop(resolved) && resolved != types.Unknown {
		return types.Any, nil
	}

	if e, ok := resolved.(*types.EnumType); ok {
		return w.enumIndex(e, idxType)
	}

	if lit, ok := unwrapLiteral(idxType); ok {
		key := literalString(lit)
		if f, ok := table.PropertyType(resolved, key); ok {
			if f.Optional {
				return table.Union(f.Type, types.Undefined), nil
			}
			return f.Type, nil
		}
		if tt, ok := resolved.(*types.TupleType); ok {
			return types.Invalid, &UnknownPropertyError{
				Property: key,
				Type:     objType,
				Detail: fmt.Sprintf("Tuple type '%s' of length '%d' has no element at index '%s'.",
					objType, len(tt.ElementTypes), key),
			}
		}
		if _, numeric := lit.Value.(float64); !numeric {
			return types.Invalid, &UnknownPropertyError{Property: key, Type: objType}
		}
	}

	idx := table.GetWidenedType(idxType)
	if types.IsEnumType(idx) {
		idx = table.GetWidenedType(table.MemberUnion(idx.(*types.EnumType)))
	}
	var results []types.Type
	for _, m := range types.Members(resolved) {
		t, ok := w.elementOf(table.Resolve(m), idx)
		if !ok {
			return types.Invalid, &UnknownPropertyError{
				Type: objType,
				Detail: fmt.Sprintf("Element implicitly has an 'any' type because expression of type '%s' can't be used to index type '%s'.",
					idxType, objType),
			}
		}
		results = append(results, t)
	}
	return table.Union(results...), nil
}

// elementOf is the type read by indexing m with a non-constant key.
func (w *walker) elementOf(m types.Type, idx types.Type) (types.Type, bool) {
	table := w.c.table
	numeric := table.IsAssignable(idx, types.Number)
	switch mt := m.(type) {
	case *types.ArrayType:
		if numeric {
			return mt.ElementType, true
		}
	case *types.TupleType:
		if numeric {
			return table.ElementUnion(mt), true
		}
	case *types.ObjectType:
		if mt.Index != nil && (mt.Index.Key == "string" || numeric) {
			return mt.Index.Value, true
		}
	case *types.Primitive:
		if mt == types.String && numeric {
			return types.String, true
		}
		if types.IsTop(mt) {
			return types.Any, true
		}
	case *types.LiteralType:
		if mt.Base == types.String && numeric {
			return types.String, true
		}
	}
	return nil, false
}

// enumIndex handles E["Member"] and the reverse mapping E[n] of numeric
// enums. Const enums have no runtime object to reverse-map.
func (w *walker) enumIndex(e *types.EnumType, idxType types.Type) (types.Type, error) {
	table := w.c.table
	if lit, ok := unwrapLiteral(idxType); ok {
		if name, isString := lit.Value.(string); isString {
			if m, ok := e.Member(name); ok {
				return m, nil
			}
			return types.Invalid, &UnknownPropertyError{Property: name, Type: e}
		}
	}
	if !table.IsAssignable(table.GetWidenedType(idxType), types.Number) || !e.HasNumericMembers() {
		return types.Invalid, &UnknownPropertyError{
			Type: e,
			Detail: fmt.Sprintf("Element implicitly has an 'any' type because expression of type '%s' can't be used to index type '%s'.",
				idxType, e),
		}
	}
	if e.IsConst {
		return types.Invalid, &UnknownPropertyError{
			Type:   e,
			Detail: "A const enum member can only be accessed using a string literal.",
		}
	}
	return types.String, nil
}

// unwrapLiteral returns the literal value of a literal or enum member type.
func unwrapLiteral(t types.Type) (*types.LiteralType, bool) {
	switch tt := t.(type) {
	case *types.LiteralType:
		return tt, true
	case *types.EnumMemberType:
		return tt.Value, true
	}
	return nil, false
}

// --- Operators ---

func (w *walker) checkPrefix(e *ast.PrefixExpression) types.Type {
	table := w.c.table
	rt := w.checkExpression(e.Right, nil)
	switch e.Operator {
	case "!":
		return types.Boolean
	case "-", "+":
		if types.IsTop(rt) {
			return types.Number
		}
		if lit, ok := rt.(*types.LiteralType); ok && e.Operator == "-" {
			switch v := lit.Value.(type) {
			case float64:
				return table.NumberLiteral(-v)
			case *big.Int:
				return table.BigIntLiteral(new(big.Int).Neg(v))
			}
		}
		switch {
		case table.IsAssignable(rt, types.Number):
			return types.Number
		case e.Operator == "-" && table.IsAssignable(rt, types.BigInt):
			return types.BigInt
		}
	}
	w.report(e, &InvalidOperatorError{Operator: e.Operator, Right: rt})
	return types.Invalid
}

func (w *walker) checkInfix(e *ast.InfixExpression) types.Type {
	table := w.c.table
	switch e.Operator {
	case "&&", "||":
		lt := w.checkExpression(e.Left, nil)
		r := w.refine(e.Left)
		guard := r.whenTrue
		if e.Operator == "||" {
			guard = r.whenFalse
		}
		w.env.Enter()
		w.apply(guard)
		rt := w.checkExpression(e.Right, nil)
		w.env.Exit()
		truthy, falsy := table.NarrowByTruthiness(lt)
		if e.Operator == "&&" {
			return table.Union(falsy, rt)
		}
		return table.Union(truthy, rt)
	case "??":
		lt := w.checkExpression(e.Left, nil)
		rt := w.checkExpression(e.Right, nil)
		present := table.Filter(table.Resolve(lt), func(m types.Type) bool { return !types.IsNullish(m) })
		return table.Union(present, rt)
	}

	lt := w.checkExpression(e.Left, nil)
	rt := w.checkExpression(e.Right, nil)
	invalid := func(result types.Type) types.Type {
		w.report(e, &InvalidOperatorError{Operator: e.Operator, Left: lt, Right: rt})
		return result
	}

	switch e.Operator {
	case "===", "!==", "==", "!=":
		if !w.comparable(lt, rt) {
			return invalid(types.Boolean)
		}
		return types.Boolean
	case "<", ">", "<=", ">=":
		if types.IsTop(lt) || types.IsTop(rt) {
			return types.Boolean
		}
		for _, base := range []types.Type{types.Number, types.BigInt, types.String} {
			if table.IsAssignable(lt, base) && table.IsAssignable(rt, base) {
				return types.Boolean
			}
		}
		return invalid(types.Boolean)
	case "+":
		if lt == types.Any || rt == types.Any || lt == types.Invalid || rt == types.Invalid {
			return types.Any
		}
		if table.IsAssignable(lt, types.String) || table.IsAssignable(rt, types.String) {
			return types.String
		}
		fallthrough
	case "-", "*", "/", "%":
		if types.IsTop(lt) || types.IsTop(rt) {
			if lt == types.Unknown || rt == types.Unknown {
				return invalid(types.Number)
			}
			return types.Number
		}
		if table.IsAssignable(lt, types.Number) && table.IsAssignable(rt, types.Number) {
			return types.Number
		}
		if table.IsAssignable(lt, types.BigInt) && table.IsAssignable(rt, types.BigInt) {
			return types.BigInt
		}
		return invalid(types.Invalid)
	}
	return invalid(types.Invalid)
}

// comparable reports whether values of a and b could ever be equal.
// Comparisons with null and undefined are always allowed.
func (w *walker) comparable(a, b types.Type) bool {
	table := w.c.table
	if types.IsTop(a) || types.IsTop(b) || types.IsNullish(a) || types.IsNullish(b) {
		return true
	}
	if table.IsAssignable(a, b) || table.IsAssignable(b, a) {
		return true
	}
	wa, wb := table.GetWidenedType(a), table.GetWidenedType(b)
	return table.IsAssignable(wa, wb) || table.IsAssignable(wb, wa)
}

// --- Assignment ---

func (w *walker) checkAssignment(e *ast.AssignmentExpression) types.Type {
	table := w.c.table
	switch target := e.Target.(type) {
	case *ast.Identifier:
		info, ok := w.env.Symbol(target.Value)
		if !ok {
			w.report(target, &UnresolvedIdentifierError{Name: target.Value})
			return w.checkExpression(e.Value, nil)
		}
		w.record(target, info.Type)
		if info.IsConst {
			w.report(target, &ReadonlyAssignmentError{Name: target.Value, What: "constant"})
			return w.checkExpression(e.Value, info.Type)
		}
		vt := w.checkExpression(e.Value, info.Type)
		if w.checkAssignable(e.Value, vt, info.Type, ReasonAssignment) {
			w.narrowAfterAssignment(target.Value, vt)
		}
		return vt

	case *ast.MemberExpression:
		objType := w.checkExpression(target.Object, nil)
		f, ok := table.PropertyType(objType, target.Property)
		if !ok {
			w.report(target, &UnknownPropertyError{Property: target.Property, Type: objType})
			return w.checkExpression(e.Value, nil)
		}
		w.record(target, f.Type)
		if f.Readonly && !w.initializingThis(target.Object) {
			w.report(target, &ReadonlyAssignmentError{Name: target.Property, What: "property"})
		}
		vt := w.checkExpression(e.Value, f.Type)
		w.checkAssignable(e.Value, vt, f.Type, ReasonAssignment)
		return vt

	case *ast.IndexExpression:
		objType := w.checkExpression(target.Left, nil)
		idxType := w.checkExpression(target.Index, nil)
		elem, err := w.indexAccess(objType, idxType)
		if err != nil {
			w.report(target, err)
			return w.checkExpression(e.Value, nil)
		}
		w.record(target, elem)
		if w.readonlyIndexed(objType, idxType) {
			w.report(target, &ReadonlyAssignmentError{What: "index", Type: objType})
		}
		vt := w.checkExpression(e.Value, elem)
		w.checkAssignable(e.Value, vt, elem, ReasonAssignment)
		return vt
	}
	w.report(e.Target, &InvalidDeclarationError{
		Msg: "The left-hand side of an assignment expression must be a variable or a property access.",
	})
	return w.checkExpression(e.Value, nil)
}

// initializingThis reports whether obj is `this` inside a constructor,
// where readonly fields may be assigned.
func (w *walker) initializingThis(obj ast.Expression) bool {
	_, isThis := obj.(*ast.ThisExpression)
	return isThis && w.fn != nil && w.fn.isConstructor
}

// readonlyIndexed reports whether writing obj[idx] is forbidden.
func (w *walker) readonlyIndexed(objType, idxType types.Type) bool {
	table := w.c.table
	for _, m := range types.Members(table.Resolve(objType)) {
		switch mt := table.Resolve(m).(type) {
		case *types.ArrayType:
			if mt.Readonly {
				return true
			}
		case *types.TupleType:
			if mt.Readonly {
				return true
			}
		case *types.ObjectType:
			if lit, ok := unwrapLiteral(idxType); ok && table.IsReadonlyField(mt, literalString(lit)) {
				return true
			}
		}
	}
	return false
}

func (w *walker) checkTypeAssertion(e *ast.TypeAssertionExpression) types.Type {
	table := w.c.table
	target := w.resolveType(e.Type)
	vt := w.checkExpression(e.Expression, target)
	if !table.IsAssignable(vt, target) && !table.IsAssignable(target, table.GetWidenedType(vt)) {
		w.report(e, &UnassignableTypeError{Source: vt, Target: target, Reason: ReasonAssertion})
	}
	return target
}
