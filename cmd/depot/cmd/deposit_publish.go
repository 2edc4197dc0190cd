// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/oneconcern/depot/pkg/snapshot"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var depositPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a draft deposit",
	Long: `Publish a draft deposit.

The files of the live bucket are copied into a new, read-only bucket.
Slave files tagged with a master are re-pointed at the copy of their master.
Publishing fails without changes when a master tag points outside of the bucket
or at a file that is a slave itself.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			rev, err := rt.Publish(ctx, depotFlags.deposit.ID)
			if err != nil {
				var integrity *snapshot.IntegrityError
				if errors.As(err, &integrity) {
					infoLogger.Printf("object %s (%s) has master %q: %s",
						integrity.Object, integrity.Key, integrity.Master, integrity.Reason)
				}
				return errors.Wrap(err, "publish deposit")
			}
			return errors.Wrap(print(cmd, rev), "print revision")
		})
	},
}

func init() {
	depositCmd.AddCommand(depositPublishCmd)
	addDepositIDFlag(depositPublishCmd)
	mustAddFormatFlag(depositPublishCmd, "table", revisionTable)
}
