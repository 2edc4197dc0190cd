// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fileListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the objects of a bucket",
	Long:    `List the objects of a bucket with their tags, by default the live bucket of the deposit.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if depotFlags.bucket.ID == "" && depotFlags.deposit.ID == "" {
			return errors.New("either a deposit or a bucket is required")
		}
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			bucket := depotFlags.bucket.ID
			if bucket == "" {
				deposit, err := rt.GetDeposit(ctx, depotFlags.deposit.ID)
				if err != nil {
					return errors.Wrap(err, "get deposit")
				}
				bucket = deposit.BucketID
			}

			objects, err := rt.ListObjects(ctx, bucket)
			if err != nil {
				return errors.Wrap(err, "list objects")
			}
			return errors.Wrap(print(cmd, objects), "print objects")
		})
	},
}

func init() {
	fileCmd.AddCommand(fileListCmd)
	fls := fileListCmd.Flags()
	fls.StringVarP(&depotFlags.deposit.ID, "deposit", "d", "", "The id of the deposit")
	fls.StringVar(&depotFlags.bucket.ID, "bucket", "", "The id of the bucket, takes precedence over the deposit")
	mustAddFormatFlag(fileListCmd, "table", objectTable)
}
