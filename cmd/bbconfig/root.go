package main

import (
	"io"
	"log"
	"log/slog"

	"github.com/banshee-data/beambeam/internal/config"
	"github.com/banshee-data/beambeam/internal/monitoring"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	dbPath     string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "bbconfig",
		Short: "Configure beam-beam interactions in collider lattices",
		Long: `bbconfig places head-on and long-range beam-beam lenses around the
interaction points of two counter-rotating beams, resolves the geometry of
every encounter from the optics and survey of both lines, and stores the
result for later plotting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			out := cmd.ErrOrStderr()
			if opts.quiet {
				out = io.Discard
			}
			monitoring.SetLogger(log.New(out, "", log.LstdFlags).Printf)
			monitoring.SetWarnLogger(slog.New(slog.NewTextHandler(out, nil)))
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "JSON configuration file (defaults are used when empty)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "run history database (overrides database_path)")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress progress logging")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newConfigureCmd(opts),
		newHistoryCmd(opts),
		newPlotCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newWakeCmd(),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(o.configPath)
}

func (o *rootOptions) databasePath(cfg *config.Config) string {
	if o.dbPath != "" {
		return o.dbPath
	}
	return cfg.GetDatabasePath()
}
