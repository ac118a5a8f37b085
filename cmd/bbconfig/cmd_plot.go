package main

import (
	"fmt"
	"os"

	"github.com/banshee-data/beambeam/internal/report"
	"github.com/banshee-data/beambeam/internal/security"
	"github.com/banshee-data/beambeam/internal/units"
	"github.com/spf13/cobra"
)

func newPlotCmd(root *rootOptions) *cobra.Command {
	var (
		unit string
		html bool
	)
	cmd := &cobra.Command{
		Use:   "plot RUN_ID",
		Short: "Plot the separations of a stored run",
		Long:  "Writes one PNG per beam, and optionally an HTML page, into plot_dir.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			s, err := root.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			id := args[0]
			sums, err := s.LoadSummaries(id, "")
			if err != nil {
				return err
			}
			dir := cfg.GetPlotDir()
			paths, err := report.WritePNG(dir, unit, sums)
			if err != nil {
				return err
			}
			if html {
				path, err := security.OutputPath(dir, id, ".html")
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := report.WriteHTML(f, "Run "+id, unit, sums); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				paths = append(paths, path)
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&unit, "unit", units.Millimeter, fmt.Sprintf("length unit %v", units.ValidLengthUnits))
	cmd.Flags().BoolVar(&html, "html", false, "also write an interactive HTML page")
	return cmd
}
