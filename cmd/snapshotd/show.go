package main

import (
	"fmt"

	"snapshotd/internal/di"
	"snapshotd/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newShowCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Print the stored snapshot of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := di.InitSyncService(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := cliContext()
			defer cancel()

			snap, err := service.Read(ctx, args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(map[string]any{"data": snap}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}
