package types

import (
	"errors"
	"fmt"
	"strings"
)

// --- Alias Types ---

// AliasType is a reference to a named alias, optionally applied to type
// arguments (Tree, Box<number>). References are interned by name and
// arguments; the alias target is only looked up when the reference is
// resolved, so an object field may refer to the alias that contains it.
type AliasType struct {
	interned
	Name string
	Args []Type
}

func (at *AliasType) String() string {
	if len(at.Args) == 0 {
		return at.Name
	}
	args := make([]string, len(at.Args))
	for i, a := range at.Args {
		args[i] = typeString(a)
	}
	return at.Name + "<" + strings.Join(args, ", ") + ">"
}
func (at *AliasType) typeNode()              {}
func (at *AliasType) Equals(other Type) bool { return sameType(at, other) }

// NewAliasRef interns a reference to the alias name.
func (t *Table) NewAliasRef(name string, args ...Type) *AliasType {
	args = append([]Type(nil), args...)
	return t.intern("R:"+name+"<"+idList(args, false)+">", func(id TypeID) Type {
		return &AliasType{interned: interned{id}, Name: name, Args: args}
	}).(*AliasType)
}

// ReadonlyAlias names the intrinsic Readonly<T> alias. A reference to it
// expands to Table.Readonly of its argument unless a user alias of the same
// name is defined.
const ReadonlyAlias = "Readonly"

// ErrUnknownAlias is returned when resolving a name that was never defined.
var ErrUnknownAlias = errors.New("unknown type alias")

// CyclicAliasError reports an alias whose resolution revisits itself before
// reaching a structural type.
type CyclicAliasError struct {
	Alias string
	Chain []string // The cycle, starting and ending at Alias
}

func (e *CyclicAliasError) Error() string {
	if len(e.Chain) <= 2 {
		return fmt.Sprintf("type alias '%s' circularly references itself", e.Alias)
	}
	return fmt.Sprintf("type alias '%s' circularly references itself (%s)", e.Alias, strings.Join(e.Chain, " -> "))
}

type aliasEntry struct {
	name     string
	params   []*TypeParameter
	target   Type
	resolved Type
	err      error
	done     bool
}

// DefineAlias registers name = target. params are the alias's own type
// parameters; target may refer to them through Ref.
func (t *Table) DefineAlias(name string, params []*TypeParameter, target Type) error {
	t.aliasMu.Lock()
	defer t.aliasMu.Unlock()
	if t.frozen.Load() {
		return fmt.Errorf("define alias %q: %w", name, ErrFrozen)
	}
	if _, exists := t.aliases[name]; exists {
		return fmt.Errorf("type alias %q is already defined", name)
	}
	t.aliases[name] = &aliasEntry{name: name, params: params, target: target}
	t.order = append(t.order, name)
	return nil
}

// HasAlias reports whether name has been defined.
func (t *Table) HasAlias(name string) bool {
	t.aliasMu.Lock()
	defer t.aliasMu.Unlock()
	_, ok := t.aliases[name]
	return ok
}

// AliasParams returns the type parameters declared by alias name.
func (t *Table) AliasParams(name string) []*TypeParameter {
	t.aliasMu.Lock()
	defer t.aliasMu.Unlock()
	if e, ok := t.aliases[name]; ok {
		return e.params
	}
	return nil
}

// ResolveAlias returns the type alias name stands for. A cyclic alias yields
// Invalid together with its CyclicAliasError; the result is memoized, so a
// second call returns the same pointer and the same error.
func (t *Table) ResolveAlias(name string) (Type, error) {
	t.aliasMu.Lock()
	defer t.aliasMu.Unlock()
	r := &resolver{table: t, onChain: make(map[string]bool)}
	return r.resolveName(name)
}

// ResolveAll resolves every defined alias in definition order and returns
// one error per alias that failed.
func (t *Table) ResolveAll() []error {
	t.aliasMu.Lock()
	names := append([]string(nil), t.order...)
	t.aliasMu.Unlock()

	var errs []error
	for _, name := range names {
		if _, err := t.ResolveAlias(name); err != nil {
			errs = append(errs, err)
		}
	}
	t.logger.Debug("aliases resolved", "count", len(names), "failed", len(errs))
	return errs
}

// Resolve expands alias references at the top of typ, and inside the
// members of an intersection, until a structural type is reached. An
// intersection whose members resolve to objects becomes their merged
// object. Unknown or failed aliases become Invalid.
func (t *Table) Resolve(typ Type) Type {
	switch tt := typ.(type) {
	case *AliasType:
	case *IntersectionType:
		if !hasAliasMember(tt) {
			return typ
		}
	default:
		return typ
	}
	if cached, ok := t.instances.Load(typ); ok {
		return cached.(Type)
	}
	t.aliasMu.Lock()
	defer t.aliasMu.Unlock()
	r := &resolver{table: t, onChain: make(map[string]bool)}
	res := r.expand(typ)
	if _, ok := typ.(*IntersectionType); ok && t.frozen.Load() {
		t.instances.Store(typ, res)
	}
	return res
}

func hasAliasMember(it *IntersectionType) bool {
	for _, m := range it.Types {
		if _, ok := m.(*AliasType); ok {
			return true
		}
	}
	return false
}

// maxInstantiationDepth bounds how often one alias may be instantiated
// inside its own expansion. Nesting written out in a program
// (Id<Id<number>>) stays far below it.
const maxInstantiationDepth = 32

// resolver walks one resolution chain. Callers hold aliasMu.
type resolver struct {
	table   *Table
	chain   []chainLink
	onChain map[string]bool
}

// chainLink is one step of a resolution chain: the alias (or alias
// instance) being expanded and the alias name it belongs to.
type chainLink struct {
	key   string
	alias string
}

func (r *resolver) push(key, alias string) {
	r.onChain[key] = true
	r.chain = append(r.chain, chainLink{key: key, alias: alias})
}

// occurrences returns the key of the first link on the chain belonging to
// alias and how many links belong to it.
func (r *resolver) occurrences(alias string) (string, int) {
	first, n := "", 0
	for _, link := range r.chain {
		if link.alias != alias {
			continue
		}
		if n == 0 {
			first = link.key
		}
		n++
	}
	return first, n
}

func (r *resolver) pop() {
	last := r.chain[len(r.chain)-1]
	r.chain = r.chain[:len(r.chain)-1]
	delete(r.onChain, last.key)
}

func (r *resolver) resolveName(name string) (Type, error) {
	t := r.table
	e, ok := t.aliases[name]
	if !ok {
		return Invalid, fmt.Errorf("%w %q", ErrUnknownAlias, name)
	}
	if e.done {
		return e.resolved, e.err
	}
	if r.onChain[name] {
		r.markCycle(name)
		return Invalid, e.err
	}

	r.push(name, name)
	res := r.expand(e.target)
	r.pop()

	if e.done { // marked by markCycle while expanding
		return e.resolved, e.err
	}
	e.resolved, e.done = res, true
	if len(e.params) == 0 {
		t.instances.Store(t.NewAliasRef(name), res)
	}
	t.logger.Debug("alias resolved", "alias", name, "type", res.String())
	return res, nil
}

// markCycle poisons every alias on the chain from the first occurrence of
// key onwards.
func (r *resolver) markCycle(key string) {
	start := 0
	for i, link := range r.chain {
		if link.key == key {
			start = i
			break
		}
	}
	var names []string
	for _, link := range r.chain[start:] {
		if len(names) == 0 || names[len(names)-1] != link.alias {
			names = append(names, link.alias)
		}
	}
	for i, n := range names {
		e := r.table.aliases[n]
		if e == nil || e.done {
			continue
		}
		chain := append(append([]string(nil), names[i:]...), names[:i]...)
		chain = append(chain, n)
		e.resolved, e.done = Invalid, true
		e.err = &CyclicAliasError{Alias: n, Chain: chain}
		r.table.instances.Store(r.table.NewAliasRef(n), Invalid)
		r.table.logger.Debug("cyclic alias", "alias", n, "chain", chain)
	}
}

func (r *resolver) expand(typ Type) Type {
	t := r.table
	switch tt := typ.(type) {
	case *AliasType:
		e, ok := t.aliases[tt.Name]
		if !ok && tt.Name == ReadonlyAlias && len(tt.Args) == 1 {
			return t.Readonly(r.expand(tt.Args[0]))
		}
		if ok && len(tt.Args) == 0 && len(e.params) == 0 {
			res, _ := r.resolveName(tt.Name)
			return res
		}
		return r.instantiate(tt)
	case *UnionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = r.expand(m)
		}
		return t.Union(members...)
	case *IntersectionType:
		members := make([]Type, len(tt.Types))
		for i, m := range tt.Types {
			members[i] = r.expand(m)
		}
		return t.Intersection(members...)
	}
	return typ
}

// instantiate resolves a generic alias reference by substituting its
// arguments into the alias target. Missing trailing arguments take the
// parameter defaults.
func (r *resolver) instantiate(ref *AliasType) Type {
	t := r.table
	if cached, ok := t.instances.Load(ref); ok {
		return cached.(Type)
	}
	e, ok := t.aliases[ref.Name]
	if !ok {
		return Invalid
	}
	if e.done && e.resolved == Invalid {
		return Invalid
	}
	key := ref.String()
	if r.onChain[key] {
		r.markCycle(key)
		return Invalid
	}
	// Expansion never crosses a structural type, so an alias that keeps
	// coming back on the chain with new arguments (G<T> = G<T[]>) never
	// reaches one.
	if first, depth := r.occurrences(ref.Name); depth >= maxInstantiationDepth {
		r.markCycle(first)
		return Invalid
	}

	subs := make(map[*TypeParameter]Type, len(e.params))
	for i, p := range e.params {
		switch {
		case i < len(ref.Args):
			subs[p] = ref.Args[i]
		case p.Default != nil:
			subs[p] = t.Substitute(p.Default, subs)
		default:
			subs[p] = Unknown
		}
	}

	r.push(key, ref.Name)
	res := r.expand(t.Substitute(e.target, subs))
	r.pop()

	t.instances.Store(ref, res)
	return res
}
