package main

import (
	"github.com/spf13/cobra"

	"github.com/ritzau/mindmap/pkg/dataset"
	"github.com/ritzau/mindmap/pkg/output"
)

func newTreeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the dataset hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(a.cfg.Dataset)
			if err != nil {
				return err
			}
			output.PrintTree(cmd.OutOrStdout(), ds)
			return nil
		},
	}
}
