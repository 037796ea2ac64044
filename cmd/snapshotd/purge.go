package main

import (
	"fmt"

	"snapshotd/internal/di"
	"snapshotd/internal/structures"

	"github.com/spf13/cobra"
)

func newPurgeCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <address>",
		Short: "Delete every stored object of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := di.InitSyncService(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := cliContext()
			defer cancel()

			result, err := service.Purge(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "listed %d, deleted %d, failed %d\n", result.Listed, result.Deleted, result.Failed)
			return err
		},
	}
}
