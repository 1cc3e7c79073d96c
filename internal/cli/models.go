package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/providers"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models suited to clinical prose and check provider access",
}

type modelInfo struct {
	Provider string
	Models   []string
}

var knownModels = []modelInfo{
	{
		Provider: "openai",
		Models: []string{
			"gpt-4",
			"gpt-4o",
			"gpt-4.1",
			"gpt-4.1-mini",
		},
	},
	{
		Provider: "anthropic",
		Models: []string{
			"claude-sonnet-4-5",
			"claude-opus-4-1",
			"claude-haiku-4-5",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.5-pro",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.3",
			"llama3.1",
			"meditron",
			"qwen2.5",
		},
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers and the models redline is tuned for",
	Run: func(cmd *cobra.Command, args []string) {
		for _, info := range knownModels {
			fmt.Fprintf(os.Stdout, "%s:\n", info.Provider)
			for _, m := range info.Models {
				fmt.Fprintf(os.Stdout, "  - %s\n", m)
			}
			fmt.Fprintln(os.Stdout)
		}
	},
}

// doctorPassage is a short clinical sentence with a known agreement error.
const doctorPassage = "The patients was randomised to placebo and followed for 12 week."

var modelsDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured provider returns usable suggestions",
	Long: `Doctor sends one short clinical sentence through the same prompt,
parsing and validation path that analyze uses. It fails when credentials are
missing or rejected, or when the model's reply cannot be turned into
suggestions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		cfg.Cache.Enabled = false

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		exitCode = runDoctor(ctx, cfg, os.Stdout, os.Stderr)
		return nil
	},
}

// runDoctor analyzes doctorPassage with cfg and returns the exit code.
func runDoctor(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) int {
	fmt.Fprintf(stdout, "Checking %s (%s)...\n", cfg.Provider, cfg.Model)

	capability, err := newCapability(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		return ExitAuthError
	}

	drafts, err := capability.Generate(ctx, doctorPassage)
	if err != nil {
		fmt.Fprintf(stderr, "FAIL: %v\n", err)
		if providers.IsAuthError(err) {
			return ExitAuthError
		}
		return ExitRuntimeError
	}

	fmt.Fprintf(stdout, "OK: %s returned %d suggestion(s) for the sample passage\n", cfg.Provider, len(drafts))
	return ExitSuccess
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsDoctorCmd)
	modelsDoctorCmd.Flags().StringVar(&flagProvider, "provider", "", "Provider to check")
	modelsDoctorCmd.Flags().StringVar(&flagModel, "model", "", "Model to check")
}
