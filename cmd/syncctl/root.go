package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/light-bringer/syncable/internal/config"
	"github.com/light-bringer/syncable/internal/services"
)

type rootFlags struct {
	configPath string
	store      string
	sqlitePath string
	logLevel   string
	logFormat  string
	metrics    bool
}

// app carries what every subcommand needs once the root has loaded config.
type app struct {
	flags rootFlags
	svc   *services.ServiceOptions
}

// run executes one command line. Services opened by the command are closed
// even when it fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, a.close(stderr))
}

func newRootCmd(a *app) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "syncctl",
		Short: "Edit tracked records and sync them to a store",
		Long: `syncctl loads products from the configured store, applies tracked edits
and persists only the fields that changed.

Configuration comes from --config (YAML), SYNCABLE_* environment variables
and the flags below, in increasing priority.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "path to a YAML config file")
	f.StringVar(&a.flags.store, "store", "", "store backend: memory, sqlite, postgres, spanner, s3")
	f.StringVar(&a.flags.sqlitePath, "sqlite-path", "", "SQLite database file")
	f.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.flags.logFormat, "log-format", "", "log format: text, json")
	f.BoolVar(&a.flags.metrics, "metrics", false, "print tracker counters to stderr on exit")

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newCreateCmd(a),
		newShowCmd(a),
		newSetCmd(a),
		newRemoveCmd(a),
		newOutboxCmd(a),
	)
	return rootCmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.store != "" {
		cfg.Store = a.flags.store
	}
	if a.flags.sqlitePath != "" {
		cfg.SQL.Path = a.flags.sqlitePath
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}
	if a.flags.logFormat != "" {
		cfg.Log.Format = a.flags.logFormat
	}
	if a.flags.metrics {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := services.NewLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	svc, err := services.NewServiceOptions(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	a.svc = svc
	return nil
}

func (a *app) close(w io.Writer) error {
	if a.svc == nil {
		return nil
	}
	defer func() { a.svc = nil }()

	if a.svc.Registry != nil {
		families, err := a.svc.Registry.Gather()
		if err != nil {
			return err
		}
		enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				return err
			}
		}
	}
	return a.svc.Close()
}

func (a *app) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
