package checker

import (
	"log/slog"

	"structcheck/pkg/types"
)

// --- Generic Binder ---

// Arguments gives the binder and the overload resolver access to the
// arguments of one call.
type Arguments interface {
	Len() int
	// Type returns the type of argument i when checked against contextual,
	// which may be nil.
	Type(i int, contextual types.Type) types.Type
	// ContextSensitive reports whether the type of argument i depends on
	// its contextual type, as for a function expression with unannotated
	// parameters.
	ContextSensitive(i int) bool
}

// StaticArguments are arguments whose types are already known.
type StaticArguments []types.Type

func (a StaticArguments) Len() int                            { return len(a) }
func (a StaticArguments) Type(i int, _ types.Type) types.Type { return a[i] }
func (a StaticArguments) ContextSensitive(int) bool           { return false }

// Binder infers type arguments of generic signatures at call sites.
type Binder struct {
	table  *types.Table
	logger *slog.Logger
}

// NewBinder creates a binder over table.
func NewBinder(table *types.Table, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Binder{table: table, logger: logger}
}

// inference collects the candidate types observed for each type parameter
// of one signature.
type inference struct {
	params     map[*types.TypeParameter]bool
	candidates map[*types.TypeParameter][]types.Type
	visited    map[[2]types.Type]bool
}

func (s *inference) add(p *types.TypeParameter, t types.Type) {
	s.candidates[p] = append(s.candidates[p], t)
}

// Infer returns sig instantiated for a call with args. explicit, when not
// empty, supplies the type arguments instead of inference; trailing
// parameters with defaults may be omitted.
//
// Each type parameter is bound to the union of the types observed at its
// occurrences, with literals widened unless that breaks the bound. A
// parameter without observations takes its default, or unknown. A binding
// that violates its bound is a *TypeParameterConstraintError.
func (b *Binder) Infer(sig *types.FunctionType, args Arguments, explicit []types.Type) (*types.FunctionType, error) {
	if !sig.IsGeneric() {
		if len(explicit) > 0 {
			return nil, &ArityError{What: "type arguments", Min: 0, Max: 0, Got: len(explicit)}
		}
		return sig, nil
	}
	if len(explicit) > 0 {
		return b.instantiate(sig, explicit)
	}

	s := &inference{
		params:     make(map[*types.TypeParameter]bool, len(sig.TypeParams)),
		candidates: make(map[*types.TypeParameter][]types.Type),
		visited:    make(map[[2]types.Type]bool),
	}
	for _, p := range sig.TypeParams {
		s.params[p] = true
	}

	var sensitive []int
	for i := 0; i < args.Len(); i++ {
		pt, ok := sig.ParamAt(i)
		if !ok {
			continue
		}
		if args.ContextSensitive(i) {
			sensitive = append(sensitive, i)
			continue
		}
		b.unify(s, pt, args.Type(i, pt))
	}

	// Function expressions see the parameters bound so far.
	if len(sensitive) > 0 {
		partial := make(map[*types.TypeParameter]types.Type)
		for _, p := range sig.TypeParams {
			if cands := s.candidates[p]; len(cands) > 0 {
				partial[p] = b.widen(p, b.table.Union(cands...), nil)
			}
		}
		for _, i := range sensitive {
			pt, _ := sig.ParamAt(i)
			b.unify(s, pt, args.Type(i, b.table.Substitute(pt, partial)))
		}
	}

	subs := make(map[*types.TypeParameter]types.Type, len(sig.TypeParams))
	for _, p := range sig.TypeParams {
		cands := s.candidates[p]
		switch {
		case len(cands) > 0:
			subs[p] = b.widen(p, b.table.Union(cands...), subs)
		case p.Default != nil:
			subs[p] = b.table.Substitute(p.Default, subs)
		default:
			subs[p] = types.Unknown
		}
	}
	if err := b.checkBounds(sig, subs); err != nil {
		return nil, err
	}
	inst := b.table.SubstituteSignature(sig, subs)
	b.logger.Debug("type arguments inferred", "signature", sig.String(), "instance", inst.String())
	return inst, nil
}

// instantiate applies explicit type arguments.
func (b *Binder) instantiate(sig *types.FunctionType, explicit []types.Type) (*types.FunctionType, error) {
	required := 0
	for _, p := range sig.TypeParams {
		if p.Default != nil {
			break
		}
		required++
	}
	if len(explicit) < required || len(explicit) > len(sig.TypeParams) {
		return nil, &ArityError{What: "type arguments", Min: required, Max: len(sig.TypeParams), Got: len(explicit)}
	}
	subs := make(map[*types.TypeParameter]types.Type, len(sig.TypeParams))
	for i, p := range sig.TypeParams {
		if i < len(explicit) {
			subs[p] = explicit[i]
		} else {
			subs[p] = b.table.Substitute(p.Default, subs)
		}
	}
	if err := b.checkBounds(sig, subs); err != nil {
		return nil, err
	}
	return b.table.SubstituteSignature(sig, subs), nil
}

// widen drops literal types from a binding unless the bound needs them.
func (b *Binder) widen(p *types.TypeParameter, typ types.Type, subs map[*types.TypeParameter]types.Type) types.Type {
	widened := b.table.GetWidenedType(typ)
	if widened == typ || p.Constraint == nil {
		return widened
	}
	bound := b.table.Substitute(p.Constraint, subs)
	if !b.table.IsAssignable(widened, bound) && b.table.IsAssignable(typ, bound) {
		return typ
	}
	return widened
}

func (b *Binder) checkBounds(sig *types.FunctionType, subs map[*types.TypeParameter]types.Type) error {
	for _, p := range sig.TypeParams {
		if p.Constraint == nil {
			continue
		}
		bound := b.table.Substitute(p.Constraint, subs)
		if !b.table.IsAssignable(subs[p], bound) {
			return &TypeParameterConstraintError{Param: p, Bound: bound, Computed: subs[p]}
		}
	}
	return nil
}

// unify walks a declared parameter type and an argument type in parallel
// and records what each type parameter occurrence lines up with.
func (b *Binder) unify(s *inference, param, arg types.Type) {
	if param == nil || arg == nil || !types.Mentions(param, s.params) {
		return
	}
	key := [2]types.Type{param, arg}
	if s.visited[key] {
		return
	}
	s.visited[key] = true

	table := b.table
	switch p := param.(type) {
	case *types.TypeParameterType:
		s.add(p.Parameter, arg)
	case *types.AliasType:
		if a, ok := arg.(*types.AliasType); ok && a.Name == p.Name && len(a.Args) == len(p.Args) {
			for i := range p.Args {
				b.unify(s, p.Args[i], a.Args[i])
			}
			return
		}
		if resolved := table.Resolve(p); resolved != p {
			b.unify(s, resolved, arg)
		}
	case *types.ArrayType:
		switch a := table.Resolve(arg).(type) {
		case *types.ArrayType:
			b.unify(s, p.ElementType, a.ElementType)
		case *types.TupleType:
			b.unify(s, p.ElementType, table.ElementUnion(a))
		}
	case *types.TupleType:
		switch a := table.Resolve(arg).(type) {
		case *types.TupleType:
			for i, e := range p.ElementTypes {
				if at, ok := a.ElementAt(i); ok {
					b.unify(s, e, at)
				}
			}
			if p.RestElementType != nil {
				for i := len(p.ElementTypes); i < len(a.ElementTypes); i++ {
					b.unify(s, p.RestElementType, a.ElementTypes[i])
				}
				if a.RestElementType != nil {
					b.unify(s, p.RestElementType, a.RestElementType)
				}
			}
		case *types.ArrayType:
			for _, e := range p.ElementTypes {
				b.unify(s, e, a.ElementType)
			}
			b.unify(s, p.RestElementType, a.ElementType)
		}
	case *types.ObjectType:
		a := table.Resolve(arg)
		for _, f := range p.Fields {
			if af, ok := table.PropertyType(a, f.Name); ok {
				b.unify(s, f.Type, af.Type)
			}
		}
		if p.Index != nil {
			if ao, ok := a.(*types.ObjectType); ok {
				if ao.Index != nil {
					b.unify(s, p.Index.Value, ao.Index.Value)
				}
				for _, f := range ao.Fields {
					b.unify(s, p.Index.Value, f.Type)
				}
			}
		}
		sigs := table.CallSignatures(a)
		for i, c := range p.Calls {
			if i < len(sigs) {
				b.unify(s, c, sigs[i])
			}
		}
	case *types.FunctionType:
		sigs := table.CallSignatures(table.Resolve(arg))
		if len(sigs) == 0 {
			return
		}
		af := table.Erase(sigs[0])
		for i, pp := range p.Params {
			if at, ok := af.ParamAt(i); ok {
				b.unify(s, pp.Type, at)
			}
		}
		if p.Rest != nil && af.Rest != nil {
			b.unify(s, p.Rest.Type, af.Rest.Type)
		}
		b.unify(s, p.Return, af.Return)
	case *types.UnionType:
		var generic, fixed []types.Type
		for _, m := range p.Types {
			if types.Mentions(m, s.params) {
				generic = append(generic, m)
			} else {
				fixed = append(fixed, m)
			}
		}
		if len(generic) != 1 {
			for _, g := range generic {
				b.unify(s, g, arg)
			}
			return
		}
		// Argument members matched by the fixed part say nothing about
		// the generic member: T | undefined against string | undefined.
		rest := arg
		if len(fixed) > 0 {
			fixedUnion := table.Union(fixed...)
			rest = table.Filter(table.Resolve(arg), func(m types.Type) bool {
				return !table.IsAssignable(m, fixedUnion)
			})
		}
		if rest != types.Never {
			b.unify(s, generic[0], rest)
		}
	case *types.IntersectionType:
		for _, m := range p.Types {
			b.unify(s, m, arg)
		}
	}
}
