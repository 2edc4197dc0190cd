// Copyright © 2018 One Concern

package cmd

import (
	"log"
	"os"
	"strings"

	"github.com/oneconcern/depot/pkg/dlogger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "depot",
	Short: "Depot keeps the files of deposits",
	Long: `Depot keeps the files of deposits.

Files are added to the live bucket of a draft deposit.
Publishing a deposit freezes its live bucket into a read-only snapshot,
slave files (like transcoded videos) keep pointing at their master in the copy.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if perr := pushMetrics(); perr != nil {
		infoLogger.Println("push metrics:", perr)
	}
	if err != nil {
		infoLogger.Println("Error:", err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	fls := rootCmd.PersistentFlags()
	fls.String("metadata", "", "The directory for the metadata database")
	fls.String("blobs", "", "The directory to store file contents in")
	fls.String("log-level", dlogger.LogLevelInfo, "The logging level: debug, info or none")
	fls.String("push-gateway", "", "The prometheus push gateway to send the publish metrics to")
	_ = viper.BindPFlag("metadata", fls.Lookup("metadata"))
	_ = viper.BindPFlag("blobs", fls.Lookup("blobs"))
	_ = viper.BindPFlag("log_level", fls.Lookup("log-level"))
	_ = viper.BindPFlag("metrics.push_gateway", fls.Lookup("push-gateway"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("metadata", ".depot")
	viper.SetDefault("blobs", ".depot/blobs")
	viper.SetDefault("tracing.service", "depot")
	viper.SetDefault("tracing.agent", "localhost:6831")
	viper.SetDefault("metrics.job", "depot")

	if os.Getenv("DEPOT_CONFIG") != "" {
		// Use config file from the env.
		viper.SetConfigFile(os.Getenv("DEPOT_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.depot")
		viper.SetConfigName("depot")
	}

	viper.SetEnvPrefix("depot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		infoLogger.Println("Using config file:", viper.ConfigFileUsed())
	}
}
