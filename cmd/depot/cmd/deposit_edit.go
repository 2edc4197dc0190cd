// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Turn a published deposit back into a draft",
	Long: `Turn a published deposit back into a draft.

The published revisions stay as they are, files can be added to the live bucket again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			deposit, err := rt.Edit(ctx, depotFlags.deposit.ID)
			if err != nil {
				return errors.Wrap(err, "edit deposit")
			}
			return errors.Wrap(print(cmd, deposit), "print deposit")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositEditCmd)
	addDepositIDFlag(depositEditCmd)
	mustAddFormatFlag(depositEditCmd, "table", depositTable)
}
