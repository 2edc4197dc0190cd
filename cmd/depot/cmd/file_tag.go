// Copyright © 2018 One Concern

package cmd

import (
	"context"

	"github.com/oneconcern/depot/pkg/engine"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var fileTagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Tag an object version",
	Long: `Set a tag on an object version of a live bucket.

To mark a transcoded file as a slave, set its master tag to the version id of the original.`,
	Example: `% depot file tag --version 12 --tag master --value 11`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			version := store.VersionID(depotFlags.file.Version)
			if err := rt.TagObject(ctx, version, depotFlags.file.Tag, depotFlags.file.Value); err != nil {
				return errors.Wrap(err, "tag object")
			}
			infoLogger.Printf("tagged %s with %s=%s", version, depotFlags.file.Tag, depotFlags.file.Value)
			return nil
		})
	},
}

func init() {
	fileCmd.AddCommand(fileTagCmd)
	addVersionFlag(fileTagCmd)
	fls := fileTagCmd.Flags()
	fls.StringVar(&depotFlags.file.Tag, "tag", "", "The tag key: "+store.TagMaster+", "+store.TagMediaType+", "+store.TagContextType+" or any other")
	fls.StringVar(&depotFlags.file.Value, "value", "", "The tag value")
	_ = fileTagCmd.MarkFlagRequired("tag")
}
