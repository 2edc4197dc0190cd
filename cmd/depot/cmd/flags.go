package cmd

import "github.com/spf13/cobra"

type flagsT struct {
	deposit struct {
		ID     string
		Type   string
		Title  string
		Parent string
	}
	file struct {
		Key     string
		Version uint64
		Tag     string
		Value   string
	}
	bucket struct {
		ID string
	}
}

var depotFlags = flagsT{}

func addDepositIDFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&depotFlags.deposit.ID, "deposit", "d", "", "The id of the deposit")
	_ = cmd.MarkFlagRequired("deposit")
}

func addVersionFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&depotFlags.file.Version, "version", 0, "The version id of the object")
	_ = cmd.MarkFlagRequired("version")
}
