// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change the title of a draft deposit",
	Long: `Change the title of a draft deposit.

Published deposits need to be edited first, the change shows in the next revision.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			deposit, err := rt.UpdateDeposit(ctx, depotFlags.deposit.ID, depotFlags.deposit.Title)
			if err != nil {
				return errors.Wrap(err, "update deposit")
			}
			return errors.Wrap(print(cmd, deposit), "print deposit")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositUpdateCmd)
	addDepositIDFlag(depositUpdateCmd)
	depositUpdateCmd.Flags().StringVar(&depotFlags.deposit.Title, "title", "", "The new title of the deposit")
	_ = depositUpdateCmd.MarkFlagRequired("title")
	mustAddFormatFlag(depositUpdateCmd, "table", depositTable)
}
