// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/oneconcern/depot/pkg/engine"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// bucketCmd represents the bucket command
var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Commands to inspect buckets",
}

var bucketListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the buckets",
	Long:    `List every bucket, live buckets of deposits and published snapshots.`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, rt *engine.Runtime) error {
			buckets, err := rt.Buckets(ctx)
			if err != nil {
				return errors.Wrap(err, "list buckets")
			}
			return errors.Wrap(print(cmd, buckets), "print buckets")
		})
	},
}

func init() {
	rootCmd.AddCommand(bucketCmd)
	bucketCmd.AddCommand(bucketListCmd)
	mustAddFormatFlag(bucketListCmd, "table", map[string]Formatter{
		"table": FormatterFunc(func(w io.Writer, data interface{}) error {
			buckets, ok := data.([]store.Bucket)
			if !ok {
				return fmt.Errorf("can't format %T as a bucket table", data)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tSOURCE\tCREATED")
			for _, b := range buckets {
				kind := color.GreenString("live")
				if b.Snapshot {
					kind = color.BlueString("snapshot")
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, kind, b.Source, b.Created.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		}),
	})
}
