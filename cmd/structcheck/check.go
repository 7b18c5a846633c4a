package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"structcheck/pkg/checker"
	"structcheck/pkg/config"
	"structcheck/pkg/driver"
	checkerrors "structcheck/pkg/errors"
)

// errDiagnostics makes the process exit non-zero without printing an error;
// the diagnostics were already rendered.
var errDiagnostics = errors.New("diagnostics reported")

func newCheckCmd() *cobra.Command {
	var (
		watch     bool
		dumpTypes bool
	)
	cmd := &cobra.Command{
		Use:   "check <file.yaml>...",
		Short: "Type-check declaration files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFrom(cmd)
			d, err := newDriver(cmd, cfg)
			if err != nil {
				return err
			}
			if watch {
				if len(args) != 1 {
					return fmt.Errorf("--watch takes exactly one file, got %d", len(args))
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
				defer stop()
				return d.Watch(ctx, args[0], func(r *driver.Report, err error) {
					if err != nil {
						cmd.PrintErrln(err)
						return
					}
					_ = report(cmd, d, r, dumpTypes)
				})
			}

			results, stats := d.CheckFiles(cmd.Context(), args)
			var loadErrs []error
			failed := false
			for _, res := range results {
				if res.Err != nil {
					loadErrs = append(loadErrs, res.Err)
					continue
				}
				if err := report(cmd, d, res.Report, dumpTypes); err != nil {
					return err
				}
				failed = failed || !res.Report.OK()
			}
			if len(args) > 1 {
				cmd.PrintErrln(printer().Sprintf(msgBatchSummary, stats.TotalJobs, stats.TotalTime))
			}
			if len(loadErrs) > 0 {
				return errors.Join(loadErrs...)
			}
			if failed {
				return errDiagnostics
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "check again whenever the file changes")
	cmd.Flags().BoolVar(&dumpTypes, "dump-types", false, "print the type of every top-level declaration")
	return cmd
}

func newDriver(cmd *cobra.Command, cfg *config.Config) (*driver.Driver, error) {
	format, err := checkerrors.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd, cfg)
	if cfg.File != "" {
		logger.Debug("using config file", "path", cfg.File)
	}
	return driver.New(driver.Options{
		Checker: checker.Options{
			Workers:       cfg.Workers,
			NoImplicitAny: cfg.NoImplicitAny,
		},
		Suppress: cfg.Suppress,
		Format:   format,
		Jobs:     cfg.Jobs,
		Color:    cfg.UseColor(isTerminal(cmd.OutOrStdout())),
		Logger:   logger,
	})
}

// report prints r's diagnostics and, for text output, a summary line.
func report(cmd *cobra.Command, d *driver.Driver, r *driver.Report, dumpTypes bool) error {
	out := cmd.OutOrStdout()
	if dumpTypes {
		driver.DumpTypes(out, r)
	}
	if err := d.Print(out, r); err != nil {
		return err
	}
	if f, _ := checkerrors.ParseFormat(configFrom(cmd).Format); f == checkerrors.FormatJSON {
		return nil
	}
	p := printer()
	summary := p.Sprintf(msgFileSummary, r.Path, len(r.Diagnostics))
	if r.Suppressed > 0 {
		summary += p.Sprintf(msgSuppressed, r.Suppressed)
	}
	cmd.PrintErrln(summary)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
