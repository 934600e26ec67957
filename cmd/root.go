// Package cmd implements the spog command line: the gateway server, a client for
// its package endpoints and VEX document management.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	cfgFile   string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "spog",
	Short: "Single pane of glass gateway for SBOM package search",
	Long: `Searches packages in the SBOM backend, merges duplicate occurrences
into one record per package URL and lists the vulnerabilities the VEX
index reports for each package.`,
	SilenceUsage: true,
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3000", "spog API server URL")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
