package checker

import (
	"fmt"
	"math"
	"strconv"

	"structcheck/pkg/ast"
	"structcheck/pkg/types"
)

// registerEnum computes member values and defines the enum both as a type
// and as a constant value.
//
// Members without an initializer continue numbering from the previous
// numeric member, starting at 0. After a string member every member needs
// an initializer.
func (c *Checker) registerEnum(u *unit, d *ast.EnumDeclaration) {
	w := c.walkerFor(u)
	values := make(map[string]*types.LiteralType, len(d.Members))
	members := make([]types.EnumMember, 0, len(d.Members))
	next, numbered := 0.0, true

	for _, m := range d.Members {
		if _, dup := values[m.Name]; dup {
			w.report(m, &DeclarationConflictError{Name: m.Name})
			continue
		}
		var lit *types.LiteralType
		if m.Value == nil {
			if !numbered {
				w.report(m, &InvalidDeclarationError{Msg: "Enum member must have initializer."})
				continue
			}
			lit = c.table.NumberLiteral(next)
		} else {
			v, err := c.enumConstant(d.Name, m.Value, values)
			if err != nil {
				w.report(m.Value, &InvalidDeclarationError{Msg: err.Error()})
				continue
			}
			lit = v
		}
		if n, ok := lit.Value.(float64); ok {
			next, numbered = n+1, true
		} else {
			numbered = false
		}
		values[m.Name] = lit
		members = append(members, types.EnumMember{Name: m.Name, Value: lit})
	}

	e := c.table.NewEnumType(d.Name, d.Const, members)
	c.enums[d.Name] = e
	if !c.globals.Define(d.Name, e, true) {
		w.report(d, &DeclarationConflictError{Name: d.Name})
	}
	c.logger.Debug("enum registered", "enum", d.Name, "members", len(members), "const", d.Const)
}

// enumConstant folds an enum initializer. It accepts literals, negation,
// references to earlier members and arithmetic over those.
func (c *Checker) enumConstant(enum string, expr ast.Expression, earlier map[string]*types.LiteralType) (*types.LiteralType, error) {
	t := c.table
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return t.NumberLiteral(e.Value), nil
	case *ast.StringLiteral:
		return t.StringLiteral(e.Value), nil
	case *ast.Identifier:
		if v, ok := earlier[e.Value]; ok {
			return v, nil
		}
	case *ast.MemberExpression:
		obj, ok := e.Object.(*ast.Identifier)
		if !ok {
			break
		}
		if obj.Value == enum {
			if v, ok := earlier[e.Property]; ok {
				return v, nil
			}
			break
		}
		if other, ok := c.enums[obj.Value]; ok {
			if m, ok := other.Member(e.Property); ok {
				return m.Value, nil
			}
		}
	case *ast.PrefixExpression:
		v, err := c.enumConstant(enum, e.Right, earlier)
		if err != nil {
			return nil, err
		}
		n, ok := v.Value.(float64)
		if !ok {
			break
		}
		switch e.Operator {
		case "-":
			return t.NumberLiteral(-n), nil
		case "+":
			return v, nil
		}
	case *ast.InfixExpression:
		l, err := c.enumConstant(enum, e.Left, earlier)
		if err != nil {
			return nil, err
		}
		r, err := c.enumConstant(enum, e.Right, earlier)
		if err != nil {
			return nil, err
		}
		if v, ok := foldEnumArithmetic(t, e.Operator, l, r); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("Enum initializer '%s' is not a constant expression.", expr)
}

func foldEnumArithmetic(t *types.Table, op string, l, r *types.LiteralType) (*types.LiteralType, bool) {
	_, lstr := l.Value.(string)
	_, rstr := r.Value.(string)
	if lstr || rstr {
		if op != "+" {
			return nil, false
		}
		return t.StringLiteral(literalString(l) + literalString(r)), true
	}
	a, aok := l.Value.(float64)
	b, bok := r.Value.(float64)
	if !aok || !bok {
		return nil, false
	}
	switch op {
	case "+":
		return t.NumberLiteral(a + b), true
	case "-":
		return t.NumberLiteral(a - b), true
	case "*":
		return t.NumberLiteral(a * b), true
	case "/":
		return t.NumberLiteral(a / b), true
	case "%":
		return t.NumberLiteral(math.Mod(a, b)), true
	}
	return nil, false
}

func literalString(l *types.LiteralType) string {
	switch v := l.Value.(type) {
	case string:
		return v
	case float64:
		return formatNumber(v)
	}
	return fmt.Sprint(l.Value)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
