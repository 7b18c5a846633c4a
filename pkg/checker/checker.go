// Package checker type-checks a declaration tree. A pass registers every
// type declaration, resolves aliases, declares functions and top-level
// variables in order and then checks the remaining declarations
// independently, optionally in parallel.
//
// Everything the parallel phase reads (aliases, globals, inferred return
// types) is settled before it starts.
package checker

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"structcheck/pkg/ast"
	"structcheck/pkg/errors"
	"structcheck/pkg/types"
)

// Options configures a pass.
type Options struct {
	Logger        *slog.Logger
	Workers       int  // Parallel workers for the body phase; <= 0 means GOMAXPROCS
	NoImplicitAny bool // Report parameters that silently become any
}

// Result is everything a pass produced. It is complete even when
// diagnostics were reported: failed parts resolve to types.Invalid.
type Result struct {
	Diagnostics   []*errors.Diagnostic
	ByDeclaration map[string][]*errors.Diagnostic // Keyed by declaration name; "" holds top-level statements
	Types         map[ast.Node]types.Type         // Type of every checked expression
	Symbols       map[string]types.Type           // Declared type of every top-level value
	Table         *types.Table
}

// Checker runs one pass over one program.
type Checker struct {
	opts     Options
	logger   *slog.Logger
	table    *types.Table
	binder   *Binder
	resolver *Resolver
	globals  *Environment

	typeDecls map[string]*typeDecl
	enums     map[string]*types.EnumType
	classes   map[string]*classInfo
	units     []*unit

	registering map[*ast.ClassDeclaration]bool // Classes whose shape is being built

	implementations map[*ast.FunctionDeclaration]*types.FunctionType
	overloadGroups  map[*ast.FunctionDeclaration]*overloadGroup
	pending         map[*ast.FunctionDeclaration]*pendingReturn
	pendingByName   map[string]*pendingReturn
}

// unit is one top-level declaration with the diagnostics and expression
// types found while checking it. Units never share these, so they can be
// checked concurrently.
type unit struct {
	decl  ast.Declaration
	name  string
	diags []*errors.Diagnostic
	types map[ast.Node]types.Type
}

// New creates a checker with a fresh type table.
func New(opts Options) *Checker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	table := types.NewTable(logger)
	binder := NewBinder(table, logger)
	return &Checker{
		opts:      opts,
		logger:    logger,
		table:     table,
		binder:    binder,
		resolver:  NewResolver(table, binder, logger),
		globals:   NewEnvironment(),
		typeDecls: make(map[string]*typeDecl),
		enums:     make(map[string]*types.EnumType),
		classes:   make(map[string]*classInfo),

		registering: make(map[*ast.ClassDeclaration]bool),

		implementations: make(map[*ast.FunctionDeclaration]*types.FunctionType),
		overloadGroups:  make(map[*ast.FunctionDeclaration]*overloadGroup),
		pending:         make(map[*ast.FunctionDeclaration]*pendingReturn),
		pendingByName:   make(map[string]*pendingReturn),
	}
}

// Check runs a pass over program with a new checker.
func Check(program *ast.Program, opts Options) *Result {
	return New(opts).Check(program)
}

// Check runs the pass. A Checker checks one program.
func (c *Checker) Check(program *ast.Program) *Result {
	start := time.Now()
	c.units = make([]*unit, len(program.Declarations))
	for i, d := range program.Declarations {
		c.units[i] = &unit{decl: d, name: d.DeclName(), types: make(map[ast.Node]types.Type)}
	}

	interfaces := c.mergeInterfaces()
	c.registerTypes(interfaces)
	c.resolveAliases()
	c.declareFunctions()
	c.declareVariables()
	c.inferReturns()
	c.checkBodies()

	result := c.result()
	c.logger.Debug("check finished",
		"declarations", len(c.units),
		"diagnostics", len(result.Diagnostics),
		"types", c.table.Len(),
		"elapsed", time.Since(start))
	return result
}

// walkerFor returns a walker for u reading the global environment.
func (c *Checker) walkerFor(u *unit) *walker {
	return &walker{c: c, u: u, env: NewEnclosedEnvironment(c.globals)}
}

// guard runs fn, turning a panic into an internal diagnostic for u.
func (c *Checker) guard(u *unit, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("checker panic", "declaration", u.name, "panic", r)
			err := &InternalError{Declaration: u.name, Panic: r}
			u.diags = append(u.diags, errors.New(u.decl.Pos(), err.Kind(), err).In(u.name))
		}
	}()
	fn()
}

// resolveAliases resolves every alias once, reporting each cyclic alias at
// its declaration, and freezes the table.
func (c *Checker) resolveAliases() {
	for _, err := range c.table.ResolveAll() {
		name := ""
		if cyc, ok := err.(*types.CyclicAliasError); ok {
			name = cyc.Alias
		}
		decl, ok := c.typeDecls[name]
		if !ok || decl.unit == nil {
			c.logger.Warn("alias error without declaration", "error", err)
			continue
		}
		c.walkerFor(decl.unit).report(decl.unit.decl, err)
	}
	c.table.Freeze()
}

// declareVariables checks top-level variable declarations in order. Later
// declarations see earlier ones.
func (c *Checker) declareVariables() {
	for _, u := range c.units {
		v, ok := u.decl.(*ast.VarStatement)
		if !ok {
			continue
		}
		c.guard(u, func() {
			w := &walker{c: c, u: u, env: c.globals}
			w.checkVarStatement(v)
		})
	}
}

// checkBodies checks function bodies, classes and top-level statements,
// each unit on its own walker.
func (c *Checker) checkBodies() {
	var g errgroup.Group
	g.SetLimit(c.opts.Workers)
	for _, u := range c.units {
		switch d := u.decl.(type) {
		case *ast.FunctionDeclaration:
			if d.Body == nil {
				continue
			}
		case *ast.ClassDeclaration, *ast.StatementDeclaration:
		default:
			continue
		}
		g.Go(func() error {
			c.guard(u, func() {
				c.walkerFor(u).checkDeclaration(u.decl)
			})
			return nil
		})
	}
	// Units report through diagnostics, so no worker returns an error.
	_ = g.Wait()
	c.logger.Debug("bodies checked", "workers", c.opts.Workers)
}

func (w *walker) checkDeclaration(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.FunctionDeclaration:
		w.checkFunctionBody(d)
	case *ast.ClassDeclaration:
		w.checkClass(d)
	case *ast.StatementDeclaration:
		w.checkStatement(d.Statement)
	}
}

// result merges the units in declaration order.
func (c *Checker) result() *Result {
	res := &Result{
		ByDeclaration: make(map[string][]*errors.Diagnostic),
		Types:         make(map[ast.Node]types.Type),
		Symbols:       make(map[string]types.Type),
		Table:         c.table,
	}
	for _, u := range c.units {
		res.Diagnostics = append(res.Diagnostics, u.diags...)
		if len(u.diags) > 0 {
			res.ByDeclaration[u.name] = append(res.ByDeclaration[u.name], u.diags...)
		}
		for n, t := range u.types {
			res.Types[n] = t
		}
	}
	for _, name := range c.globals.Names() {
		if info, ok := c.globals.Symbol(name); ok {
			res.Symbols[name] = info.Type
		}
	}
	return res
}

// --- Walker ---

// walker checks the inside of one unit.
type walker struct {
	c      *Checker
	u      *unit
	env    *Environment
	tscope *typeScope
	fn     *funcContext
	quiet  int // Diagnostics and types are dropped while > 0
}

// funcContext describes the function whose body is being checked.
type funcContext struct {
	returnType    types.Type // Declared return type; nil when inferred
	returns       []types.Type
	isConstructor bool
}

func (w *walker) report(node ast.Node, err error) {
	if w.quiet > 0 {
		return
	}
	d := errors.New(node.Pos(), kindOf(err), err).In(w.u.name)
	w.u.diags = append(w.u.diags, d)
}

func (w *walker) record(node ast.Node, typ types.Type) types.Type {
	if w.quiet == 0 {
		w.u.types[node] = typ
	}
	return typ
}

// speculate runs fn with diagnostics and type recording suppressed.
func (w *walker) speculate(fn func()) {
	w.quiet++
	defer func() { w.quiet-- }()
	fn()
}

// checkAssignable reports an UnassignableTypeError at node when source
// does not fit target.
func (w *walker) checkAssignable(node ast.Node, source, target types.Type, reason Reason) bool {
	if w.c.table.IsAssignable(source, target) {
		return true
	}
	w.report(node, &UnassignableTypeError{Source: source, Target: target, Reason: reason})
	return false
}
