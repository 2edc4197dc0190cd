// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard the changes made to an edited deposit",
	Long: `Discard the metadata changes made to a deposit since its latest revision.

The deposit is published again, files added to its live bucket are kept.
Deposits that were never published can't be discarded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			deposit, err := rt.Discard(ctx, depotFlags.deposit.ID)
			if err != nil {
				return errors.Wrap(err, "discard deposit")
			}
			return errors.Wrap(print(cmd, deposit), "print deposit")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositDiscardCmd)
	addDepositIDFlag(depositDiscardCmd)
	mustAddFormatFlag(depositDiscardCmd, "table", depositTable)
}
