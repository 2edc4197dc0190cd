// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"os"

	"github.com/docker/go-units"
	"github.com/oneconcern/depot/pkg/engine"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fileAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Add a file to a draft deposit",
	Long: `Add a file to the live bucket of a draft deposit.

The content is fingerprinted and stored once, adding the same content again
only creates a new object version. Use - as path to read from stdin.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-" && depotFlags.file.Key == "" {
			return errors.New("a key is required when reading from stdin")
		}
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			var upload engine.Upload
			if args[0] == "-" {
				upload = engine.UploadStream(depotFlags.file.Key, os.Stdin)
			} else {
				fi, err := os.Stat(args[0])
				if err != nil {
					return errors.Wrap(err, "add file")
				}
				infoLogger.Printf("adding %s (%s)", args[0], units.HumanSize(float64(fi.Size())))
				if upload, err = engine.UploadFilePath(depotFlags.file.Key, args[0]); err != nil {
					return errors.Wrap(err, "add file")
				}
			}

			obj, err := rt.AddFile(ctx, depotFlags.deposit.ID, upload)
			if err != nil {
				return errors.Wrap(err, "add file")
			}
			return errors.Wrap(print(cmd, obj), "print object")
		})
	},
}

func init() {
	fileCmd.AddCommand(fileAddCmd)
	addDepositIDFlag(fileAddCmd)
	fileAddCmd.Flags().StringVar(&depotFlags.file.Key, "key", "", "The key of the object, defaults to the file name")
	mustAddFormatFlag(fileAddCmd, "table", objectTable)
}
