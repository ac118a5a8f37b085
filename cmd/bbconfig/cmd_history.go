package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/beambeam/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored configuration runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			runs, err := s.ListRuns(limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tBEAMS\tNOTES")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.CreatedAt.Format(time.RFC3339), r.Beams, r.Notes)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")

	show := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print the resolved encounters of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			sums, err := s.LoadSummaries(args[0], "")
			if err != nil {
				return err
			}
			return printSummaries(cmd.OutOrStdout(), sums)
		},
	}
	del := &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Remove a run from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			return s.DeleteRun(args[0])
		},
	}
	cmd.AddCommand(show, del)
	return cmd
}

func (o *rootOptions) openStore() (*store.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(o.databasePath(cfg))
}
