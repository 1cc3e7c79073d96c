package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/dshills/redline/internal/analysis"
	"github.com/dshills/redline/internal/output"
	"github.com/spf13/cobra"
)

var (
	flagReport  string
	flagID      string
	flagIndex   int
	flagInPlace bool
)

// applyFromReport applies one improvement of the suggestion id, taken from
// the JSON report at reportPath, to document.
func applyFromReport(document, reportPath, id string, index int) (string, error) {
	f, err := os.Open(reportPath)
	if err != nil {
		return "", fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	report, err := output.ReadReport(f)
	if err != nil {
		return "", err
	}

	s, ok := analysis.FindSuggestion(report.Suggestions, id)
	if !ok {
		return "", fmt.Errorf("suggestion %s not found in %s", id, reportPath)
	}
	return analysis.Apply(document, s, index)
}

var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply one suggestion from a JSON report",
	Long: "Apply replaces the span of a reported suggestion with one of its improvements. " +
		"Spans refer to the document the report was produced from; apply suggestions one at a time and re-analyze between edits.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagReport == "" || flagID == "" {
			return errors.New("--report and --id are required")
		}

		document, _, err := readDocument(args[0], cmd.InOrStdin())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		updated, err := applyFromReport(document, flagReport, flagID, flagIndex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return nil
		}

		dest := flagOut
		if flagInPlace {
			dest = args[0]
		}
		if dest == "" {
			fmt.Fprint(cmd.OutOrStdout(), updated)
			return nil
		}
		if err := os.WriteFile(dest, []byte(updated), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVar(&flagReport, "report", "", "JSON report produced by 'redline analyze --format json'")
	applyCmd.Flags().StringVar(&flagID, "id", "", "Suggestion ID")
	applyCmd.Flags().IntVar(&flagIndex, "index", 0, "Improvement index (0-based)")
	applyCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	applyCmd.Flags().BoolVar(&flagInPlace, "in-place", false, "Overwrite the input file")
}
