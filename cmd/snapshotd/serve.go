package main

import (
	"snapshotd/internal/di"
	"snapshotd/internal/structures"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}
}

func runServe(flags *structures.CliFlags) error {
	app, err := di.InitApp(flags)
	if err != nil {
		return err
	}
	return app.Run()
}
