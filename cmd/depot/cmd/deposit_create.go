// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft deposit",
	Long: `Create a draft deposit, along with an empty live bucket for its files.

With --parent the deposit is created inside a draft project,
publishing the project publishes its draft videos along with it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			var (
				deposit *store.Deposit
				err     error
			)
			if depotFlags.deposit.Parent != "" {
				deposit, err = rt.CreateChild(ctx, depotFlags.deposit.Parent, depotFlags.deposit.Type, depotFlags.deposit.Title)
			} else {
				deposit, err = rt.CreateDeposit(ctx, depotFlags.deposit.Type, depotFlags.deposit.Title)
			}
			if err != nil {
				return errors.Wrap(err, "create deposit")
			}
			return errors.Wrap(print(cmd, deposit), "print deposit")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositCreateCmd)
	fls := depositCreateCmd.Flags()
	fls.StringVar(&depotFlags.deposit.Type, "type", "", "The type of the deposit, like video or image")
	fls.StringVar(&depotFlags.deposit.Title, "title", "", "The title of the deposit")
	fls.StringVar(&depotFlags.deposit.Parent, "parent", "", "The id of the project the deposit belongs to")
	mustAddFormatFlag(depositCreateCmd, "table", depositTable)
}
