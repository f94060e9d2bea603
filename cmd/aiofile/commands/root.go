// Package commands implements the aiofile CLI.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "aiofile",
	Short: "aiofile - asynchronous file I/O tooling",
	Long: `aiofile drives the asynchronous, offset-addressable file I/O runtime
from the command line. File operations are submitted non-blocking against a
completion-port style backend and stream through the file using tracked
sequential positions.

Use "aiofile [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(copyCmd)
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}
