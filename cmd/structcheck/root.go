package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"structcheck/pkg/config"
)

// Version is set at build time.
var Version = "0.1.0"

type configKey struct{}

func newRootCmd() *cobra.Command {
	var cfgFile string
	rootCmd := &cobra.Command{
		Use:   "structcheck",
		Short: "Structural type checker for declaration files",
		Long: `structcheck checks YAML declaration files written with TypeScript-like
type annotations: aliases, interfaces, enums, classes, generic functions
and overloads.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.FileName+")")
	flags.Int("workers", 0, "parallel workers for checking bodies (0: one per CPU)")
	flags.IntP("jobs", "j", 0, "files checked at once (0: one per CPU)")
	flags.StringP("format", "f", "", "output format (text|table|json)")
	flags.Bool("no-implicit-any", false, "report parameters that silently become any")
	flags.StringSlice("suppress", nil, "drop diagnostics matching this pattern (repeatable)")
	flags.BoolP("verbose", "v", false, "debug logging")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.String("color", "", "colored output (auto|always|never)")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "structcheck v%s\n", Version)
		},
	}
}
