// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/oneconcern/depot/pkg/store"
	"github.com/spf13/cobra"
)

// depositCmd represents the deposit command
var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Commands to manage deposits",
	Long: `Commands to manage deposits.

A deposit is a record with a live bucket of files.
Every publish of a deposit freezes the live bucket into a new revision.
`,
}

func init() {
	rootCmd.AddCommand(depositCmd)
}

func statusString(status store.Status) string {
	if status == store.StatusPublished {
		return color.GreenString(string(status))
	}
	return color.YellowString(string(status))
}

var depositTable = map[string]Formatter{
	"table": FormatterFunc(func(w io.Writer, data interface{}) error {
		var deposits []store.Deposit
		switch d := data.(type) {
		case []store.Deposit:
			deposits = d
		case *store.Deposit:
			deposits = []store.Deposit{*d}
		default:
			return fmt.Errorf("can't format %T as a deposit table", data)
		}

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tREVISIONS\tPARENT\tTITLE")
		for _, d := range deposits {
			parent := d.Parent
			if parent == "" {
				parent = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n", d.ID, d.Type, statusString(d.Status), len(d.Revisions), parent, color.HiBlackString(d.Title))
		}
		return tw.Flush()
	}),
}

var revisionTable = map[string]Formatter{
	"table": FormatterFunc(func(w io.Writer, data interface{}) error {
		rev, ok := data.(store.Revision)
		if !ok {
			return fmt.Errorf("can't format %T as a revision", data)
		}
		bucket := rev.BucketID
		if bucket == "" {
			bucket = color.HiBlackString("(no files)")
		}
		if _, err := fmt.Fprintf(w, "revision %s published at %s in bucket %s\n",
			color.CyanString("%d", rev.Number), rev.Timestamp.Format("2006-01-02 15:04:05"), bucket); err != nil {
			return err
		}
		for _, child := range rev.Children {
			if _, err := fmt.Fprintf(w, "  %s revision %d\n", child.DepositID, child.Number); err != nil {
				return err
			}
		}
		return nil
	}),
}
