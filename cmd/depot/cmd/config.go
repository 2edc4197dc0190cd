// Copyright © 2018 One Concern

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage the config of depot",
	Long:  `The namespace for managing config settings of depot`,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the config used",
	Long:  `Print the config used by the invocation of the depot command`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		return errors.Wrap(print(cmd, cfg), "print config")
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configDumpCmd)
	mustAddFormatFlag(configDumpCmd, "yaml")
}
