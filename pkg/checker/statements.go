package checker

import (
	"fmt"

	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// --- Statements ---

// checkStatement checks s and reports whether it always exits the
// enclosing function (return, throw, or an if whose branches both exit).
func (w *walker) checkStatement(s ast.Statement) bool {
	switch st := s.(type) {
	case *ast.VarStatement:
		w.checkVarStatement(st)
	case *ast.ExpressionStatement:
		w.checkExpression(st.Expression, nil)
	case *ast.BlockStatement:
		return w.checkBlock(st)
	case *ast.IfStatement:
		return w.checkIf(st)
	case *ast.ReturnStatement:
		w.checkReturn(st)
		return true
	case *ast.ThrowStatement:
		w.checkExpression(st.Value, nil)
		return true
	case nil:
	default:
		w.report(s, &InvalidDeclarationError{Msg: fmt.Sprintf("Unsupported statement %T.", s)})
	}
	return false
}

func (w *walker) checkStatements(list []ast.Statement) bool {
	exits := false
	for _, s := range list {
		if w.checkStatement(s) {
			exits = true
		}
	}
	return exits
}

// checkBlock checks a block in its own scope. Narrowings of outer names
// made inside the block survive it unless the block exits.
func (w *walker) checkBlock(b *ast.BlockStatement) bool {
	w.env.Enter()
	exits := w.checkStatements(b.Statements)
	narrowed := w.env.Narrowed()
	w.env.Exit()
	if !exits {
		for name, t := range narrowed {
			w.env.Bind(name, t)
		}
	}
	return exits
}

// checkVarStatement declares a binding. An annotated binding has its
// annotation as type; otherwise const keeps the initializer's literal type
// and let/var widen it.
func (w *walker) checkVarStatement(v *ast.VarStatement) {
	table := w.c.table
	var declared types.Type
	if v.Type != nil {
		declared = w.resolveType(v.Type)
	}

	var typ types.Type
	switch {
	case v.Value == nil:
		if v.Kind == ast.Const {
			w.report(v, &InvalidDeclarationError{Msg: "'const' declarations must be initialized."})
		}
		typ = declared
		if typ == nil {
			typ = types.Any
		}
	case declared != nil:
		vt := w.checkExpression(v.Value, declared)
		w.checkAssignable(v.Value, vt, declared, ReasonAssignment)
		typ = declared
	default:
		typ = w.checkExpression(v.Value, nil)
		if v.Kind != ast.Const {
			typ = table.DeeplyWidenType(typ)
		}
	}

	if !w.env.Define(v.Name, typ, v.Kind == ast.Const) {
		w.report(v, &DeclarationConflictError{
			Name:   v.Name,
			Detail: fmt.Sprintf("Cannot redeclare block-scoped variable '%s'.", v.Name),
		})
		return
	}
	w.record(v, typ)
}

// checkIf checks both branches under the condition's refinements and joins
// their narrowings. A branch that exits contributes nothing to the join.
func (w *walker) checkIf(s *ast.IfStatement) bool {
	w.checkExpression(s.Condition, nil)
	r := w.refine(s.Condition)

	thenNarrowed, thenExits := w.checkBranch(s.Consequence, r.whenTrue)
	var elseNarrowed map[string]types.Type
	elseExits := false
	if s.Alternative != nil {
		elseNarrowed, elseExits = w.checkBranch(s.Alternative, r.whenFalse)
	} else {
		elseNarrowed = r.whenFalse
	}

	switch {
	case thenExits && elseExits:
		return true
	case thenExits:
		w.apply(elseNarrowed)
	case elseExits:
		w.apply(thenNarrowed)
	default:
		w.apply(w.join(thenNarrowed, elseNarrowed))
	}
	return false
}

// checkBranch checks one branch in a frame holding the guard's bindings
// and returns the narrowings in effect at its end.
func (w *walker) checkBranch(s ast.Statement, guard map[string]types.Type) (map[string]types.Type, bool) {
	w.env.Enter()
	defer w.env.Exit()
	w.apply(guard)
	exits := w.checkStatement(s)
	return w.env.Narrowed(), exits
}

func (w *walker) apply(bindings map[string]types.Type) {
	for name, t := range bindings {
		w.env.Bind(name, t)
	}
}

// join unions two branch-end narrowings. A name narrowed on one side only
// takes its current type for the other side.
func (w *walker) join(a, b map[string]types.Type) map[string]types.Type {
	out := make(map[string]types.Type, len(a)+len(b))
	side := func(m map[string]types.Type, name string) types.Type {
		if t, ok := m[name]; ok {
			return t
		}
		t, _ := w.env.Lookup(name)
		return t
	}
	for _, m := range []map[string]types.Type{a, b} {
		for name := range m {
			if _, done := out[name]; done {
				continue
			}
			ta, tb := side(a, name), side(b, name)
			if ta == nil || tb == nil {
				continue
			}
			out[name] = w.c.table.Union(ta, tb)
		}
	}
	return out
}

func (w *walker) checkReturn(s *ast.ReturnStatement) {
	if w.fn == nil {
		w.report(s, &InvalidDeclarationError{Msg: "A 'return' statement can only be used within a function body."})
		if s.Value != nil {
			w.checkExpression(s.Value, nil)
		}
		return
	}
	if s.Value == nil {
		if rt := w.fn.returnType; rt != nil && !w.fn.isConstructor {
			w.checkAssignable(s, types.Undefined, rt, ReasonReturn)
		}
		w.fn.returns = append(w.fn.returns, types.Undefined)
		return
	}
	vt := w.checkExpression(s.Value, w.fn.returnType)
	if rt := w.fn.returnType; rt != nil {
		w.checkAssignable(s.Value, vt, rt, ReasonReturn)
	}
	w.fn.returns = append(w.fn.returns, vt)
}
