package types

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrFrozen is returned when an alias is defined after the table was frozen.
var ErrFrozen = errors.New("type table is frozen")

// firstDynamicID is the first id handed out by a Table; lower ids belong to
// the process-wide singletons (primitives, boolean literals, Invalid).
const firstDynamicID TypeID = 64

// Table is the interning arena for one checking pass. Every composite type is
// built through it, so two structurally equal types are the same pointer and
// Equals is an identity comparison.
//
// The table is append-only. Construction is safe for concurrent use; alias
// definitions are not accepted once Freeze has been called.
type Table struct {
	mu     sync.Mutex
	byKey  map[string]Type
	all    []Type
	nextID TypeID
	params uint32

	aliasMu   sync.Mutex
	aliases   map[string]*aliasEntry
	order     []string
	instances sync.Map // *AliasType or *IntersectionType -> Type
	frozen    atomic.Bool

	assignMemo sync.Map // pairKey -> bool

	logger *slog.Logger
}

// NewTable creates an empty table. A nil logger discards log output.
func NewTable(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Table{
		byKey:   make(map[string]Type),
		nextID:  firstDynamicID,
		aliases: make(map[string]*aliasEntry),
		logger:  logger,
	}
}

// Len returns the number of interned types (singletons excluded).
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.all)
}

// Freeze marks the end of alias registration. It is called once every alias
// has been resolved, before declarations are checked in parallel.
func (t *Table) Freeze() {
	t.frozen.Store(true)
	t.logger.Debug("type table frozen", "types", t.Len())
}

// Frozen reports whether Freeze has been called.
func (t *Table) Frozen() bool {
	return t.frozen.Load()
}

// intern returns the canonical type for key, calling build (with a fresh id)
// only when the key has not been seen.
func (t *Table) intern(key string, build func(id TypeID) Type) Type {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.byKey[key]; ok {
		return existing
	}
	id := t.nextID
	t.nextID++
	typ := build(id)
	t.byKey[key] = typ
	t.all = append(t.all, typ)
	return typ
}

func (t *Table) nextParamSerial() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.params++
	return t.params
}

// --- structural keys ---

func idOf(typ Type) string {
	if typ == nil {
		return "_"
	}
	return strconv.FormatUint(uint64(typ.ID()), 10)
}

func idList(ts []Type, sorted bool) string {
	ids := make([]string, len(ts))
	for i, typ := range ts {
		ids[i] = idOf(typ)
	}
	if sorted {
		sort.Strings(ids)
	}
	return strings.Join(ids, ",")
}

func literalKey(base *Primitive, value any) string {
	return fmt.Sprintf("L:%s:%s", base.Name, literalText(base, value))
}

func objectKey(fields []Field, index *IndexSignature, calls []*FunctionType) string {
	var sb strings.Builder
	sb.WriteString("O{")
	sorted := make([]Field, len(fields))
	copy(sorted, fields)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, f := range sorted {
		sb.WriteString(strconv.Quote(f.Name))
		if f.Optional {
			sb.WriteByte('?')
		}
		if f.Readonly {
			sb.WriteByte('!')
		}
		sb.WriteByte(':')
		sb.WriteString(idOf(f.Type))
		sb.WriteByte(';')
	}
	if index != nil {
		fmt.Fprintf(&sb, "[%s:%s]", index.Key, idOf(index.Value))
	}
	for _, c := range calls {
		sb.WriteString("()")
		sb.WriteString(idOf(c))
	}
	sb.WriteByte('}')
	return sb.String()
}

// signatureKey identifies a signature by shape. Parameter names are left
// out, so equal signatures share one type named by its first spelling.
func signatureKey(sig Signature) string {
	var sb strings.Builder
	sb.WriteString("F<")
	for _, p := range sig.TypeParams {
		fmt.Fprintf(&sb, "%d,", p.serial)
	}
	sb.WriteString(">(")
	for _, p := range sig.Params {
		sb.WriteString(idOf(p.Type))
		if p.Optional {
			sb.WriteByte('?')
		}
		sb.WriteByte(',')
	}
	if sig.Rest != nil {
		sb.WriteString("...")
		sb.WriteString(idOf(sig.Rest.Type))
	}
	sb.WriteString(")")
	if sig.This != nil {
		sb.WriteString("this:")
		sb.WriteString(idOf(sig.This))
	}
	sb.WriteString("=>")
	sb.WriteString(idOf(sig.Return))
	return sb.String()
}
