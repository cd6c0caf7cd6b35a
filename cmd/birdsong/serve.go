package main

import (
	"birdsong/internal/di"
	"birdsong/internal/structures"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, cleanup, err := di.InitApp(flags)
			if cleanup != nil {
				defer cleanup()
			}
			return err
		},
	}
}
