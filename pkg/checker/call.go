package checker

import (
	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// --- Calls ---

// argList types call arguments on demand. Types are computed quietly and
// cached per contextual type; the final check against the chosen signature
// records them.
type argList struct {
	w     *walker
	exprs []ast.Expression
	cache map[argKey]types.Type
}

type argKey struct {
	index      int
	contextual types.Type
}

var _ Arguments = (*argList)(nil)

func (w *walker) arguments(exprs []ast.Expression) *argList {
	return &argList{w: w, exprs: exprs, cache: make(map[argKey]types.Type)}
}

func (a *argList) Len() int { return len(a.exprs) }

func (a *argList) Type(i int, contextual types.Type) types.Type {
	key := argKey{index: i, contextual: contextual}
	if t, ok := a.cache[key]; ok {
		return t
	}
	var t types.Type
	a.w.speculate(func() {
		t = a.w.checkExpression(a.exprs[i], contextual)
	})
	a.cache[key] = t
	return t
}

func (a *argList) ContextSensitive(i int) bool {
	return isContextSensitive(a.exprs[i])
}

func (w *walker) checkCall(e *ast.CallExpression) types.Type {
	table := w.c.table
	calleeType := w.checkExpression(e.Callee, nil)
	resolved := table.Resolve(calleeType)

	if resolved == types.Any || resolved == types.Invalid {
		w.checkUntypedArguments(e.Arguments)
		return types.Any
	}
	sigs := table.CallSignatures(resolved)
	if len(sigs) == 0 {
		w.report(e.Callee, &NotCallableError{Type: calleeType})
		w.checkUntypedArguments(e.Arguments)
		return types.Invalid
	}
	return w.invoke(e, sigs, e.Arguments, e.TypeArguments)
}

func (w *walker) checkNew(e *ast.NewExpression) types.Type {
	table := w.c.table
	calleeType := w.checkExpression(e.Callee, nil)
	resolved := table.Resolve(calleeType)

	if resolved == types.Any || resolved == types.Invalid {
		w.checkUntypedArguments(e.Arguments)
		return types.Any
	}
	class, ok := resolved.(*types.ClassType)
	if !ok {
		w.report(e.Callee, &NotCallableError{Type: calleeType, Construct: true})
		w.checkUntypedArguments(e.Arguments)
		return types.Invalid
	}
	if info, ok := w.c.classFor(class); ok && info.decl != nil && info.decl.Abstract {
		w.report(e, &NotCallableError{Type: calleeType, Construct: true, Abstract: true})
	}
	instance := w.invoke(e, []*types.FunctionType{class.Constructor}, e.Arguments, e.TypeArguments)
	if instance == types.Invalid && !class.Constructor.IsGeneric() {
		return class.Constructor.Return
	}
	return instance
}

// invoke checks a call against sigs and returns its result type. A single
// signature reports argument problems directly; several go through the
// overload resolver.
func (w *walker) invoke(node ast.Node, sigs []*types.FunctionType, exprs []ast.Expression, typeArgs []ast.TypeNode) types.Type {
	explicit := make([]types.Type, len(typeArgs))
	for i, ta := range typeArgs {
		explicit[i] = w.resolveType(ta)
	}
	args := w.arguments(exprs)

	if len(sigs) > 1 {
		sig, err := w.c.resolver.Resolve(sigs, args, explicit)
		if err != nil {
			w.report(node, err)
			w.checkUntypedArguments(exprs)
			return types.Invalid
		}
		return w.applySignature(node, sig, exprs)
	}

	sig := sigs[0]
	if sig.IsGeneric() || len(explicit) > 0 {
		inst, err := w.c.binder.Infer(sig, args, explicit)
		if err != nil {
			w.report(node, err)
			w.checkUntypedArguments(exprs)
			return types.Invalid
		}
		sig = inst
	}
	return w.applySignature(node, sig, exprs)
}

// applySignature checks every argument against sig and returns the
// signature's return type.
func (w *walker) applySignature(node ast.Node, sig *types.FunctionType, exprs []ast.Expression) types.Type {
	if !sig.AcceptsArity(len(exprs)) {
		most := len(sig.Params)
		if sig.Rest != nil {
			most = -1
		}
		w.report(node, &ArityError{What: "arguments", Min: sig.RequiredParams(), Max: most, Got: len(exprs)})
	}
	for i, arg := range exprs {
		target, ok := parameterTarget(w.c.table, sig, i)
		if !ok {
			w.checkExpression(arg, nil)
			continue
		}
		at := w.checkExpression(arg, target)
		w.checkAssignable(arg, at, target, ReasonArgument)
	}
	return sig.Return
}

func (w *walker) checkUntypedArguments(exprs []ast.Expression) {
	for _, arg := range exprs {
		w.checkExpression(arg, nil)
	}
}
