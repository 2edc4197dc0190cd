// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the deposits",
	Long:    `List the known deposits, drafts and published ones.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			deposits, err := rt.ListDeposits(ctx)
			if err != nil {
				return errors.Wrap(err, "list deposits")
			}
			return errors.Wrap(print(cmd, deposits), "print deposits")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositListCmd)
	mustAddFormatFlag(depositListCmd, "table", depositTable)
}
