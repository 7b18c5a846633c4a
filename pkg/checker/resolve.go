package checker

import (
	"math/big"
	"strings"

	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// typeDecl records a declared type name before its definition is built, so
// references resolve independently of declaration order.
type typeDecl struct {
	kind     string // "alias", "interface", "class", "enum" or "builtin"
	params   int
	required int
	unit     *unit
}

// typeScope maps type parameter names to their definitions.
type typeScope struct {
	params map[string]*types.TypeParameter
	outer  *typeScope
}

func (s *typeScope) lookup(name string) (*types.TypeParameter, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if p, ok := sc.params[name]; ok {
			return p, true
		}
	}
	return nil, false
}

// declareTypeParams creates type parameters for tps and makes them visible
// to the walker. The returned function restores the previous scope.
func (w *walker) declareTypeParams(tps []*ast.TypeParam) ([]*types.TypeParameter, func()) {
	prev := w.tscope
	if len(tps) == 0 {
		return nil, func() {}
	}
	scope := &typeScope{params: make(map[string]*types.TypeParameter, len(tps)), outer: prev}
	params := make([]*types.TypeParameter, len(tps))
	for i, tp := range tps {
		params[i] = w.c.table.NewTypeParameter(tp.Name, i, nil, nil)
		if _, dup := scope.params[tp.Name]; dup {
			w.report(tp, &DeclarationConflictError{Name: tp.Name})
		}
		scope.params[tp.Name] = params[i]
	}
	w.tscope = scope
	for i, tp := range tps {
		if tp.Constraint != nil {
			params[i].Constraint = w.resolveType(tp.Constraint)
		}
		if tp.Default != nil {
			params[i].Default = w.resolveType(tp.Default)
		}
	}
	return params, func() { w.tscope = prev }
}

// resolveType converts an annotation into a type. Problems are reported and
// the failing part becomes types.Invalid.
func (w *walker) resolveType(node ast.TypeNode) types.Type {
	table := w.c.table
	switch n := node.(type) {
	case nil:
		return types.Any
	case *ast.TypeReference:
		return w.resolveTypeReference(n)
	case *ast.LiteralTypeExpression:
		switch v := n.Value.(type) {
		case string:
			return table.StringLiteral(v)
		case float64:
			return table.NumberLiteral(v)
		case bool:
			return table.BooleanLiteral(v)
		}
		value, ok := new(big.Int).SetString(n.BigInt, 10)
		if !ok {
			w.report(n, &InvalidDeclarationError{Msg: "Invalid bigint literal '" + n.BigInt + "n'."})
			return types.Invalid
		}
		return table.BigIntLiteral(value)
	case *ast.UnionTypeExpression:
		members := make([]types.Type, len(n.Types))
		for i, m := range n.Types {
			members[i] = w.resolveType(m)
		}
		return table.Union(members...)
	case *ast.IntersectionTypeExpression:
		members := make([]types.Type, len(n.Types))
		for i, m := range n.Types {
			members[i] = w.resolveType(m)
		}
		return table.Intersection(members...)
	case *ast.ArrayTypeExpression:
		elem := w.resolveType(n.ElementType)
		if n.Readonly {
			return table.NewReadonlyArrayType(elem)
		}
		return table.NewArrayType(elem)
	case *ast.TupleTypeExpression:
		spec := types.TupleSpec{Readonly: n.Readonly}
		for _, e := range n.Elements {
			spec.Elements = append(spec.Elements, w.resolveType(e.Type))
			spec.Optional = append(spec.Optional, e.Optional)
		}
		if n.Rest != nil {
			spec.Rest = w.resolveType(n.Rest)
		}
		return table.NewTupleType(spec)
	case *ast.ObjectTypeExpression:
		return w.resolveObjectType(n.Properties, n.Index, n.Calls)
	case *ast.FunctionTypeExpression:
		return w.resolveSignature(n.TypeParams, n.Params, n.Rest, n.This, n.ReturnType, nil)
	}
	w.report(node, &InvalidDeclarationError{Msg: "Unsupported type annotation '" + node.String() + "'."})
	return types.Invalid
}

func (w *walker) resolveTypeReference(ref *ast.TypeReference) types.Type {
	table := w.c.table
	args := make([]types.Type, len(ref.TypeArguments))
	for i, a := range ref.TypeArguments {
		args[i] = w.resolveType(a)
	}
	name := ref.Name

	if tp, ok := w.tscope.lookup(name); ok {
		if len(args) > 0 {
			w.report(ref, &ArityError{What: "type arguments", Got: len(args)})
		}
		return table.Ref(tp)
	}
	if p, ok := types.PrimitiveByName(name); ok {
		if len(args) > 0 {
			w.report(ref, &ArityError{What: "type arguments", Got: len(args)})
		}
		return p
	}
	if dot := strings.IndexByte(name, '.'); dot > 0 {
		return w.resolveEnumMemberType(ref, name[:dot], name[dot+1:])
	}

	decl, declared := w.c.typeDecls[name]
	if !declared {
		switch name {
		case "Array", "ReadonlyArray":
			if len(args) != 1 {
				w.report(ref, &ArityError{What: "type arguments", Min: 1, Max: 1, Got: len(args)})
				return types.Invalid
			}
			if name == "ReadonlyArray" {
				return table.NewReadonlyArrayType(args[0])
			}
			return table.NewArrayType(args[0])
		case types.ReadonlyAlias:
			if len(args) != 1 {
				w.report(ref, &ArityError{What: "type arguments", Min: 1, Max: 1, Got: len(args)})
				return types.Invalid
			}
			return table.NewAliasRef(name, args...)
		case "object":
			return table.EmptyObject()
		}
		w.report(ref, &UnresolvedIdentifierError{Name: name})
		return types.Invalid
	}

	if decl.kind == "enum" {
		if len(args) > 0 {
			w.report(ref, &ArityError{What: "type arguments", Got: len(args)})
		}
		if e, ok := w.c.enums[name]; ok {
			return e
		}
		return types.Invalid
	}
	if len(args) > decl.params || (len(args) < decl.required) {
		w.report(ref, &ArityError{What: "type arguments", Min: decl.required, Max: decl.params, Got: len(args)})
		if len(args) > decl.params {
			args = args[:decl.params]
		}
	}
	return table.NewAliasRef(name, args...)
}

func (w *walker) resolveEnumMemberType(ref *ast.TypeReference, enumName, member string) types.Type {
	e, ok := w.c.enums[enumName]
	if !ok {
		w.report(ref, &UnresolvedIdentifierError{Name: enumName})
		return types.Invalid
	}
	m, ok := e.Member(member)
	if !ok {
		w.report(ref, &UnknownPropertyError{Property: member, Type: e})
		return types.Invalid
	}
	return m
}

// resolveObjectType builds an object type from members written in the
// source. A repeated property keeps its last declaration.
func (w *walker) resolveObjectType(props []*ast.ObjectTypeProperty, index *ast.IndexSignature, calls []*ast.FunctionTypeExpression) *types.ObjectType {
	b := w.c.table.Object()
	for _, p := range props {
		b.WithField(types.Field{
			Name:     p.Name,
			Type:     w.resolveType(p.Type),
			Optional: p.Optional,
			Readonly: p.Readonly,
		})
	}
	if index != nil {
		b.WithIndex(index.KeyType, w.resolveType(index.ValueType))
	}
	for _, c := range calls {
		b.WithCallSignature(w.resolveSignature(c.TypeParams, c.Params, c.Rest, c.This, c.ReturnType, nil))
	}
	return b.Build()
}

// resolveSignature builds a function type from a written signature.
// Unannotated parameters take their type from contextual when it is given,
// then from their initializer, and are any otherwise. A parameter with an
// initializer is optional. A missing return annotation yields void.
func (w *walker) resolveSignature(tps []*ast.TypeParam, params []*ast.Parameter, rest *ast.Parameter, this ast.TypeNode, ret ast.TypeNode, contextual *types.FunctionType) *types.FunctionType {
	typeParams, restore := w.declareTypeParams(tps)
	defer restore()

	// Initializers may read the parameters before them.
	w.env.Enter()
	defer w.env.Exit()

	sig := types.Signature{TypeParams: typeParams}
	for i, p := range params {
		typ := w.paramType(p, contextualParam(contextual, i))
		sig.Params = append(sig.Params, types.Param{
			Name:     p.Name,
			Type:     typ,
			Optional: p.Optional || p.Default != nil,
		})
		w.env.Define(p.Name, typ, false)
	}
	if rest != nil {
		var ctx types.Type
		if contextual != nil && contextual.Rest != nil {
			ctx = contextual.Rest.Type
		}
		restType := w.paramType(rest, ctx)
		if restType == types.Any {
			restType = w.c.table.NewArrayType(types.Any)
		}
		sig.Rest = &types.Param{Name: rest.Name, Type: restType}
	}
	if this != nil {
		sig.This = w.resolveType(this)
	}
	sig.Return = types.Void
	if ret != nil {
		sig.Return = w.resolveType(ret)
	}
	return w.c.table.NewFunctionType(sig)
}

func contextualParam(fn *types.FunctionType, i int) types.Type {
	if fn == nil {
		return nil
	}
	t, _ := fn.ParamAt(i)
	return t
}

// paramType resolves a parameter annotation, falling back to the
// contextual type, the widened type of the initializer and then to any.
func (w *walker) paramType(p *ast.Parameter, contextual types.Type) types.Type {
	if p.Type != nil {
		return w.resolveType(p.Type)
	}
	if contextual != nil {
		return contextual
	}
	if p.Default != nil {
		var typ types.Type
		w.speculate(func() {
			typ = w.checkExpression(p.Default, nil)
		})
		return w.c.table.DeeplyWidenType(typ)
	}
	if w.c.opts.NoImplicitAny {
		w.report(p, &ImplicitAnyError{Name: p.Name})
	}
	return types.Any
}
