package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitSuggestions  = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "redline",
	Short: "LLM-assisted review of clinical prose",
	Long:  "Redline segments clinical documents, asks an LLM provider for localized improvements, and applies them on request.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print redline version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "redline version %s\n", version)
	},
}
