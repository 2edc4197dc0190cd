// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/oneconcern/depot/pkg/engine"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/spf13/cobra"
)

// fileCmd represents the file command
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Commands to manage the files of a deposit",
	Long: `Commands to manage the files of a deposit.

Every file added to a deposit becomes a new object version in its live bucket.
Objects can be tagged, a slave object points at its master with the master tag.
`,
}

func init() {
	rootCmd.AddCommand(fileCmd)
}

func tagsString(tags store.Tags) string {
	var s string
	for i, t := range tags {
		if i > 0 {
			s += " "
		}
		s += color.HiBlackString(t.Key+"=") + t.Value
	}
	return s
}

var objectTable = map[string]Formatter{
	"table": FormatterFunc(func(w io.Writer, data interface{}) error {
		var objects []engine.ObjectInfo
		switch d := data.(type) {
		case []engine.ObjectInfo:
			objects = d
		case *store.Object:
			objects = []engine.ObjectInfo{{Object: *d}}
		default:
			return fmt.Errorf("can't format %T as an object table", data)
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "VERSION\tKEY\tSIZE\tTAGS")
		for _, o := range objects {
			size := "-"
			if o.Checksum != "" {
				size = units.HumanSize(float64(o.Size))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", color.CyanString(o.VersionID.String()), o.Key, size, tagsString(o.Tags))
		}
		return tw.Flush()
	}),
}
