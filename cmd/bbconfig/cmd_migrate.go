package main

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/beambeam/internal/store"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Maintain the schema of the run history database",
	}

	withStore := func(fn func(cmd *cobra.Command, s *store.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			s, err := store.OpenUnmigrated(root.databasePath(cfg))
			if err != nil {
				return err
			}
			defer s.Close()
			return fn(cmd, s, args)
		}
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the schema version",
		Args:  cobra.NoArgs,
		RunE: withStore(func(cmd *cobra.Command, s *store.Store, _ []string) error {
			version, dirty, err := s.MigrateVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d", version)
			if dirty {
				fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}),
	}
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withStore(func(_ *cobra.Command, s *store.Store, _ []string) error {
			return s.MigrateUp()
		}),
	}
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withStore(func(_ *cobra.Command, s *store.Store, _ []string) error {
			return s.MigrateDown()
		}),
	}
	force := &cobra.Command{
		Use:   "force VERSION",
		Short: "Record VERSION as applied without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(_ *cobra.Command, s *store.Store, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q: %w", args[0], err)
			}
			return s.MigrateForce(v)
		}),
	}
	cmd.AddCommand(status, up, down, force)
	return cmd
}
