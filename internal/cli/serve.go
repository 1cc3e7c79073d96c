package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/redline/internal/analysis"
	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/server"
	"github.com/dshills/redline/internal/suggest"
	"github.com/spf13/cobra"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		applyToggles(&cfg)

		capability, err := newCapability(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		// Failures are logged per request by the server.
		analyzer := analysis.New(capability, suggest.AnalyzerOptions(cfg, nil))
		srv := server.New(analyzer, server.Options{
			Provider:       cfg.Provider,
			Model:          cfg.Model,
			MaxSuggestions: cfg.MaxSuggestions,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "redline listening on %s (provider: %s, model: %s)\n", cfg.Server.Addr, cfg.Provider, cfg.Model)
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, :8000)")
	serveCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	serveCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	serveCmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (YAML)")
	serveCmd.Flags().IntVar(&flagSegmentSize, "segment-size", 0, "Maximum segment length in characters")
	serveCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum concurrent provider calls per request")
	serveCmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable PHI redaction (use with caution)")
	serveCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}
