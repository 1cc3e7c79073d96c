package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/dshills/redline/internal/analysis"
	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/output"
	"github.com/dshills/redline/internal/providers"
	"github.com/dshills/redline/internal/redact"
	"github.com/dshills/redline/internal/suggest"
	"github.com/spf13/cobra"
)

// Shared analysis flags
var (
	flagProvider       string
	flagModel          string
	flagFormat         string
	flagOut            string
	flagFailOn         string
	flagMaxSuggestions int
	flagRules          string
	flagSegmentSize    int
	flagConcurrency    int
	flagNoRedact       bool
	flagNoCache        bool
)

// newCapability builds the generation capability for cfg. Tests replace it.
var newCapability = func(cfg config.Config) (analysis.Capability, error) {
	return suggest.FromConfig(cfg)
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit 1 when suggestions match: none, any, or categories (comma-separated)")
	cmd.Flags().IntVar(&flagMaxSuggestions, "max-suggestions", 0, "Maximum number of suggestions to report")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (YAML)")
	cmd.Flags().IntVar(&flagSegmentSize, "segment-size", 0, "Maximum segment length in characters")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum concurrent provider calls")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable PHI redaction (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxSuggestions > 0 {
		m["maxSuggestions"] = strconv.Itoa(flagMaxSuggestions)
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagSegmentSize > 0 {
		m["segmentSize"] = strconv.Itoa(flagSegmentSize)
	}
	if flagConcurrency > 0 {
		m["concurrency"] = strconv.Itoa(flagConcurrency)
	}
	if flagAddr != "" {
		m["server.addr"] = flagAddr
	}
	return m
}

// applyToggles applies boolean flags that can only turn features off.
func applyToggles(cfg *config.Config) {
	if flagNoRedact {
		cfg.Privacy.RedactPHI = false
		fmt.Fprintln(os.Stderr, "WARNING: PHI redaction is disabled")
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}
}

// warnUnredacted warns on w when document looks like it carries PHI that
// will reach the provider unmasked. It reports whether a warning was written.
func warnUnredacted(w io.Writer, cfg config.Config, document string) bool {
	if cfg.Privacy.RedactPHI || !redact.Detect(document) {
		return false
	}
	fmt.Fprintf(w, "WARNING: input appears to contain PHI and will be sent to %s unmasked\n", cfg.Provider)
	return true
}

// readDocument reads the named file, or stdin for "" and "-".
func readDocument(path string, stdin io.Reader) (string, string, error) {
	var data []byte
	var err error
	source := path
	if path == "" || path == "-" {
		source = ""
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", "", fmt.Errorf("reading input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", "", errors.New("input is not valid UTF-8")
	}
	return string(data), source, nil
}

// warnFailure reports a skipped segment on stderr.
func warnFailure(f analysis.SegmentFailure) {
	fmt.Fprintf(os.Stderr, "WARNING: segment %d (offset %d) skipped: %v\n", f.Index, f.Offset, f.Err)
}

// runAnalysis analyzes document and builds its report. The raw result is
// returned alongside so callers can inspect failure causes.
func runAnalysis(ctx context.Context, document, source string, cfg config.Config) (*analysis.Report, *analysis.Result, error) {
	start := time.Now()

	capability, err := newCapability(cfg)
	if err != nil {
		return nil, nil, err
	}

	analyzer := analysis.New(capability, suggest.AnalyzerOptions(cfg, warnFailure))
	res, err := analyzer.Analyze(ctx, document)
	if err != nil {
		return nil, nil, err
	}

	if cfg.MaxSuggestions > 0 && len(res.Suggestions) > cfg.MaxSuggestions {
		res.Suggestions = res.Suggestions[:cfg.MaxSuggestions]
	}

	report := analysis.BuildReport(document, res, analysis.InputInfo{
		Source:   source,
		Provider: cfg.Provider,
		Model:    cfg.Model,
	}, time.Since(start).Milliseconds())
	return report, res, nil
}

// totalFailure returns an error when no segment succeeded.
func totalFailure(res *analysis.Result) error {
	if res.Segments == 0 || len(res.Failures) < res.Segments {
		return nil
	}
	for _, f := range res.Failures {
		if providers.IsAuthError(f.Err) {
			return &f
		}
	}
	return fmt.Errorf("all %d segments failed: %w", res.Segments, &res.Failures[0])
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return err
	}
	applyToggles(&cfg)

	if _, err := output.GetWriter(cfg.Format); err != nil {
		return err
	}
	failOn, err := analysis.ParseFailOn(cfg.FailOn)
	if err != nil {
		return err
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	document, source, err := readDocument(path, cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}
	if err := analysis.ValidateDocument(document); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return nil
	}
	warnUnredacted(os.Stderr, cfg, document)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, res, err := runAnalysis(ctx, document, source, cfg)
	if err == nil {
		err = totalFailure(res)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return nil
	}

	if err := output.WriteReport(report, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return nil
	}

	if failOn.Matches(report.Suggestions) {
		exitCode = ExitSuggestions
	}
	return nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze a document and report suggestions",
	Long:  "Analyze reads a document from a file, or from stdin when the argument is omitted or '-', and reports localized suggestions.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	addAnalyzeFlags(analyzeCmd)
}
