package checker

import (
	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// --- Narrowing Engine ---

// refinement is what a condition proves about bindings: their types where
// it holds and where it does not. Names missing from a side keep their
// current type on that side.
type refinement struct {
	whenTrue  map[string]types.Type
	whenFalse map[string]types.Type
}

func newRefinement() refinement {
	return refinement{whenTrue: map[string]types.Type{}, whenFalse: map[string]types.Type{}}
}

func single(name string, yes, no types.Type) refinement {
	r := newRefinement()
	r.whenTrue[name] = yes
	r.whenFalse[name] = no
	return r
}

// refine detects the guards in cond. Supported guards are typeof tests,
// equality with a literal, equality of a discriminant field with a literal,
// truthiness of a binding, and !, && and || over those.
func (w *walker) refine(cond ast.Expression) refinement {
	switch e := cond.(type) {
	case *ast.Identifier:
		typ, ok := w.lookup(e.Value)
		if !ok {
			break
		}
		yes, no := w.c.table.NarrowByTruthiness(typ)
		return single(e.Value, yes, no)
	case *ast.PrefixExpression:
		if e.Operator == "!" {
			r := w.refine(e.Right)
			return refinement{whenTrue: r.whenFalse, whenFalse: r.whenTrue}
		}
	case *ast.InfixExpression:
		switch e.Operator {
		case "&&":
			return w.refineAnd(e)
		case "||":
			return w.refineOr(e)
		case "===", "!==", "==", "!=":
			r, ok := w.refineEquality(e)
			if !ok {
				break
			}
			if e.Operator == "!==" || e.Operator == "!=" {
				return refinement{whenTrue: r.whenFalse, whenFalse: r.whenTrue}
			}
			return r
		}
	}
	return newRefinement()
}

// refineEquality handles a comparison whose one side is a typeof test or a
// reference and whose other side is a constant.
func (w *walker) refineEquality(e *ast.InfixExpression) (refinement, bool) {
	loose := e.Operator == "==" || e.Operator == "!="
	for _, pair := range [2][2]ast.Expression{{e.Left, e.Right}, {e.Right, e.Left}} {
		subject, other := pair[0], pair[1]
		if t, ok := subject.(*ast.TypeofExpression); ok {
			kind, ok := other.(*ast.StringLiteral)
			if !ok {
				continue
			}
			name, ok := t.Operand.(*ast.Identifier)
			if !ok {
				continue
			}
			typ, ok := w.lookup(name.Value)
			if !ok {
				continue
			}
			yes, no := w.c.table.NarrowByKind(typ, kind.Value)
			return single(name.Value, yes, no), true
		}

		lit := w.constantOf(other)
		if lit == nil {
			continue
		}
		switch s := subject.(type) {
		case *ast.Identifier:
			typ, ok := w.lookup(s.Value)
			if !ok {
				continue
			}
			yes, no := w.narrowByValue(typ, lit, loose)
			return single(s.Value, yes, no), true
		case *ast.MemberExpression:
			obj, ok := s.Object.(*ast.Identifier)
			if !ok || s.Optional {
				continue
			}
			typ, ok := w.lookup(obj.Value)
			if !ok {
				continue
			}
			yes, no := w.c.table.NarrowByDiscriminant(typ, s.Property, lit)
			return single(obj.Value, yes, no), true
		}
	}
	return refinement{}, false
}

// narrowByValue refines typ by equality with lit. Loose equality with null
// or undefined matches both.
func (w *walker) narrowByValue(typ, lit types.Type, loose bool) (types.Type, types.Type) {
	table := w.c.table
	if loose && types.IsNullish(lit) {
		yesNull, _ := table.NarrowByLiteral(typ, types.Null)
		yesUndef, _ := table.NarrowByLiteral(typ, types.Undefined)
		resolved := table.Resolve(typ)
		if types.IsTop(resolved) {
			return table.Union(types.Null, types.Undefined), typ
		}
		no := table.Filter(resolved, func(m types.Type) bool { return !types.IsNullish(m) })
		return table.Union(yesNull, yesUndef), no
	}
	return table.NarrowByLiteral(typ, lit)
}

// constantOf returns the unit type of expr when it denotes a single value:
// a literal, null, undefined or an enum member.
func (w *walker) constantOf(expr ast.Expression) types.Type {
	switch expr.(type) {
	case *ast.NullLiteral:
		return types.Null
	case *ast.UndefinedLiteral:
		return types.Undefined
	}
	var typ types.Type
	w.speculate(func() {
		typ = w.checkExpression(expr, nil)
	})
	if types.IsUnit(typ) || types.IsEnumMemberType(typ) {
		return typ
	}
	return nil
}

// refineAnd: a && b holds where both hold; it fails where a fails or where
// a holds and b fails.
func (w *walker) refineAnd(e *ast.InfixExpression) refinement {
	left := w.refine(e.Left)
	w.env.Enter()
	w.apply(left.whenTrue)
	right := w.refine(e.Right)
	w.env.Exit()

	out := newRefinement()
	for name, t := range left.whenTrue {
		out.whenTrue[name] = t
	}
	for name, t := range right.whenTrue {
		out.whenTrue[name] = t
	}
	for _, name := range keys(left.whenFalse, right.whenFalse) {
		failsLeft := w.sideOf(name, left.whenFalse)
		failsRight := w.sideOf(name, right.whenFalse, left.whenTrue)
		out.whenFalse[name] = w.c.table.Union(failsLeft, failsRight)
	}
	return out
}

// refineOr: a || b holds where a holds or where a fails and b holds; it
// fails where both fail.
func (w *walker) refineOr(e *ast.InfixExpression) refinement {
	left := w.refine(e.Left)
	w.env.Enter()
	w.apply(left.whenFalse)
	right := w.refine(e.Right)
	w.env.Exit()

	out := newRefinement()
	for name, t := range left.whenFalse {
		out.whenFalse[name] = t
	}
	for name, t := range right.whenFalse {
		out.whenFalse[name] = t
	}
	for _, name := range keys(left.whenTrue, right.whenTrue) {
		holdsLeft := w.sideOf(name, left.whenTrue)
		holdsRight := w.sideOf(name, right.whenTrue, left.whenFalse)
		out.whenTrue[name] = w.c.table.Union(holdsLeft, holdsRight)
	}
	return out
}

// sideOf returns the type of name in the first map holding it, or its
// current type.
func (w *walker) sideOf(name string, layers ...map[string]types.Type) types.Type {
	for _, m := range layers {
		if t, ok := m[name]; ok {
			return t
		}
	}
	t, ok := w.lookup(name)
	if !ok {
		return types.Invalid
	}
	return t
}

func keys(maps ...map[string]types.Type) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range maps {
		for name := range m {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// narrowAfterAssignment narrows name after it is assigned a value of type
// assigned. A value that fits the current narrowing narrows it further to
// the members the value fits; any other value drops the narrowing and the
// binding is back to its declared type.
func (w *walker) narrowAfterAssignment(name string, assigned types.Type) {
	info, ok := w.env.Symbol(name)
	if !ok {
		return
	}
	table := w.c.table
	current, ok := w.env.Lookup(name)
	if !ok {
		current = info.Type
	}
	resolved := table.Resolve(current)
	if types.IsTop(resolved) || types.IsTop(assigned) || !table.IsAssignable(assigned, current) {
		w.env.Bind(name, info.Type)
		return
	}
	parts := types.Members(table.Resolve(assigned))
	fits := table.Filter(resolved, func(m types.Type) bool {
		for _, p := range parts {
			if table.IsAssignable(p, m) {
				return true
			}
		}
		return false
	})
	if fits == types.Never {
		fits = current
	}
	w.env.Bind(name, fits)
}
