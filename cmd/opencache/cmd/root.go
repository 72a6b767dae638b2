// Package cmd provides the command-line interface for OpenCache.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "opencache",
	Short: "OpenCache CLI tool inspects cache configurations and verifies " +
		"the cache controller.",
	Long: `OpenCache CLI tool inspects cache configurations and verifies ` +
		`the cache controller. It derives geometries from configurations, ` +
		`generates golden test vectors, and replays them against the ` +
		`controller model.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
