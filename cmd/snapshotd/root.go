package main

import (
	"context"
	"time"

	"snapshotd/internal/structures"

	"github.com/spf13/cobra"
)

const (
	defaultConfigPath = "config/config.yaml"
	cliTimeout        = 30 * time.Second
)

func newRootCmd() *cobra.Command {
	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:           "snapshotd",
		Short:         "Per-address snapshot storage daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(flags)
		},
	}

	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "mirror logs to stdout")

	root.AddCommand(
		newServeCmd(flags),
		newShowCmd(flags),
		newPurgeCmd(flags),
	)
	return root
}

func cliContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cliTimeout)
}
