package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/beambeam/internal/pipeline"
	"github.com/banshee-data/beambeam/internal/resolve"
	"github.com/banshee-data/beambeam/internal/store"
	"github.com/banshee-data/beambeam/internal/version"
	"github.com/spf13/cobra"
)

func newConfigureCmd(root *rootOptions) *cobra.Command {
	var (
		lat     latticeFlags
		notes   string
		noStore bool
	)
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Install, resolve and bind the beam-beam lenses of both lines",
		Long: `Installs the lenses, resolves the geometry of every encounter from the
optics and survey of the lines and binds the result to the lenses. With
use_antisymmetry set, a single beam is enough. The run is stored in the
history database unless --no-store is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			in, err := install(lat, cfg)
			if err != nil {
				return err
			}
			cw, err := in.cwLine.beamLine(in.cw)
			if err != nil {
				return err
			}
			acw, err := in.acwLine.beamLine(in.acw)
			if err != nil {
				return err
			}
			res, err := pipeline.Configure(cw, acw, cfg.ConfigureParams())
			if err != nil {
				return err
			}

			var sums []resolve.Summary
			var beams []string
			for _, bt := range []*resolve.BeamTable{res.CW, res.ACW} {
				if bt != nil {
					sums = append(sums, bt.Summaries()...)
					beams = append(beams, bt.Beam())
				}
			}
			if err := printSummaries(cmd.OutOrStdout(), sums); err != nil {
				return err
			}
			if noStore {
				return nil
			}

			cfgJSON, err := json.Marshal(cfg)
			if err != nil {
				return err
			}
			s, err := store.Open(root.databasePath(cfg))
			if err != nil {
				return err
			}
			defer s.Close()
			id, err := s.SaveRun(store.Run{
				Version:    version.String(),
				ConfigJSON: string(cfgJSON),
				Beams:      strings.Join(beams, ","),
				Notes:      notes,
			}, in.keepRows(), sums)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&lat.cw, "cw", "", "lattice file of the clockwise beam")
	cmd.Flags().StringVar(&lat.acw, "acw", "", "lattice file of the anticlockwise beam, in its own direction of motion")
	cmd.Flags().StringVar(&notes, "notes", "", "free text stored with the run")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record the run in the history database")
	return cmd
}

func printSummaries(w io.Writer, sums []resolve.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BEAM\tELEMENT\tIP\tS-S_IP [m]\tSEP_X [m]\tSEP_Y [m]\tPHI [rad]\tALPHA [rad]")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4e\t%.4e\t%.4e\t%.4f\n",
			s.Beam, s.ElementName, s.IPName, s.S-s.SIP, s.SeparationX, s.SeparationY, s.Phi, s.Alpha)
	}
	return tw.Flush()
}
