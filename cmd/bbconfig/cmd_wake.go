package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/banshee-data/beambeam/internal/wake"
	"github.com/spf13/cobra"
)

func newWakeCmd() *cobra.Command {
	var (
		columns, use []string
		zetas        []float64
		q0, p0c      float64
	)
	cmd := &cobra.Command{
		Use:   "wake FILE",
		Short: "Evaluate a tabulated wake function",
		Long: `Loads the selected components of a wake table (time in ns, wakes in
V/pC/mm) and prints the kick per unit dipole moment at each requested zeta.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := wake.LoadTable(args[0], columns, use, wake.ScalingConstant(q0, p0c))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprint(tw, "ZETA [m]")
			for _, c := range t.Components {
				fmt.Fprintf(tw, "\t%s", c.Name)
			}
			fmt.Fprintln(tw)
			for _, z := range zetas {
				fmt.Fprintf(tw, "%.6g", z)
				for _, c := range t.Components {
					fmt.Fprintf(tw, "\t%.6e", c.At(z))
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&columns, "columns", []string{"time", "dipole_x", "dipole_y", "quadrupole_x", "quadrupole_y", "dipole_xy", "dipole_yx"}, "columns of the wake file")
	cmd.Flags().StringSliceVar(&use, "use", []string{"dipole_x", "dipole_y"}, "components to evaluate")
	cmd.Flags().Float64SliceVar(&zetas, "zeta", []float64{-0.1, -0.5, -1}, "zeta values in m")
	cmd.Flags().Float64Var(&q0, "q0", 1, "charge of the particles in units of e")
	cmd.Flags().Float64Var(&p0c, "p0c", 7e12, "reference momentum in eV")
	return cmd
}
