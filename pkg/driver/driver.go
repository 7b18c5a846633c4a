// Package driver runs checker passes over declaration files: it loads a
// file, checks it, drops suppressed diagnostics and renders the rest.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"structcheck/pkg/ast"
	"structcheck/pkg/checker"
	"structcheck/pkg/errors"
	"structcheck/pkg/loader"
)

// Options configures a driver.
type Options struct {
	Checker  checker.Options
	Suppress []string // Patterns, see errors.NewSuppressor
	Format   errors.Format
	Color    bool
	Jobs     int // Files checked concurrently by CheckFiles; <= 0 means one per CPU
	Logger   *slog.Logger
}

// Driver checks declaration files with one set of options. Every pass gets
// a fresh checker, so a driver may run passes concurrently.
type Driver struct {
	opts       Options
	logger     *slog.Logger
	suppressor *errors.Suppressor
}

// Report is the outcome of one pass.
type Report struct {
	ID          uuid.UUID
	Path        string
	Program     *ast.Program
	Result      *checker.Result
	Diagnostics []*errors.Diagnostic // Result.Diagnostics minus suppressed ones
	Suppressed  int
	Elapsed     time.Duration
}

// OK reports whether the pass left no diagnostics.
func (r *Report) OK() bool { return len(r.Diagnostics) == 0 }

// New creates a driver. It fails when a suppress pattern does not compile.
func New(opts Options) (*Driver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	suppressor, err := errors.NewSuppressor(opts.Suppress)
	if err != nil {
		return nil, err
	}
	if opts.Format == "" {
		opts.Format = errors.FormatText
	}
	if opts.Checker.Logger == nil {
		opts.Checker.Logger = logger
	}
	return &Driver{opts: opts, logger: logger, suppressor: suppressor}, nil
}

// CheckFile loads and checks the declaration file at path. The error is
// non-nil only when the file cannot be read or has syntax errors; type
// errors are in the report.
func (d *Driver) CheckFile(path string) (*Report, error) {
	program, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return d.run(path, program), nil
}

// CheckString checks in-memory declaration file content under name.
func (d *Driver) CheckString(name, content string) (*Report, error) {
	program, err := loader.LoadString(name, content)
	if err != nil {
		return nil, err
	}
	return d.run(name, program), nil
}

func (d *Driver) run(path string, program *ast.Program) *Report {
	id := uuid.New()
	logger := d.logger.With("pass", id.String(), "path", path)
	logger.Debug("pass started", "declarations", len(program.Declarations))

	start := time.Now()
	opts := d.opts.Checker
	opts.Logger = logger
	result := checker.Check(program, opts)
	kept := d.suppressor.Filter(result.Diagnostics)

	r := &Report{
		ID:          id,
		Path:        path,
		Program:     program,
		Result:      result,
		Diagnostics: kept,
		Suppressed:  len(result.Diagnostics) - len(kept),
		Elapsed:     time.Since(start),
	}
	logger.Info("pass finished",
		"diagnostics", len(kept),
		"suppressed", r.Suppressed,
		"elapsed", r.Elapsed)
	return r
}

// Print renders the report's diagnostics to w.
func (d *Driver) Print(w io.Writer, r *Report) error {
	return errors.NewPrinter(w, d.opts.Format, d.opts.Color).Print(r.Diagnostics)
}

// DumpTypes writes the declared type of every top-level value in r, sorted
// by name.
func DumpTypes(w io.Writer, r *Report) {
	names := make([]string, 0, len(r.Result.Symbols))
	for name := range r.Result.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	symbols := make(map[string]string, len(names))
	for _, name := range names {
		symbols[name] = r.Result.Symbols[name].String()
	}
	cfg := spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	cfg.Fdump(w, symbols)
}

// Watch checks path, then checks it again every time it is written, until
// ctx is done. Each outcome is passed to fn; a syntax error is passed as
// err with a nil report and does not stop watching. The directory is
// watched rather than the file so editors that replace the file on save
// keep triggering passes.
func (d *Driver) Watch(ctx context.Context, path string, fn func(*Report, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("driver: watch %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("driver: create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("driver: watch %s: %w", filepath.Dir(abs), err)
	}

	fn(d.CheckFile(abs))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			d.logger.Debug("file changed", "path", abs, "op", event.Op.String())
			fn(d.CheckFile(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("watch error", "error", err)
		}
	}
}
