package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		lat    latticeFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the encounter tables and print them",
		Long:  "Installs placeholder lenses in the given lines and prints the encounter table of each beam.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			in, err := install(lat, cfg)
			if err != nil {
				return err
			}
			rows := in.keepRows()
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case "yaml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(rows)
			default:
				return fmt.Errorf("unknown format %q (json or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVar(&lat.cw, "cw", "", "lattice file of the clockwise beam")
	cmd.Flags().StringVar(&lat.acw, "acw", "", "lattice file of the anticlockwise beam, in its own direction of motion")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	return cmd
}
