// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Get a deposit",
	Long:  `Get a deposit by id, with its revisions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			deposit, err := rt.GetDeposit(ctx, depotFlags.deposit.ID)
			if err != nil {
				return errors.Wrap(err, "get deposit")
			}
			return errors.Wrap(print(cmd, deposit), "print deposit")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositGetCmd)
	addDepositIDFlag(depositGetCmd)
	mustAddFormatFlag(depositGetCmd, "yaml", depositTable)
}
