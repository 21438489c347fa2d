package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pgctl",
	Short: "Privacy Guard installation control",
	Long: `Inspect and manage a Privacy Guard installation from the command line.

The commands work against the same database the server uses, as selected by
the config file and the PRIVACY_GUARD_* environment variables.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "Path to config file")

	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newInstallCommand())
	rootCmd.AddCommand(newRemoveSampleDataCommand())
	rootCmd.AddCommand(newResetCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
