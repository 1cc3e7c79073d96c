package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/redline/internal/analysis"
)

// TextWriter outputs a human-readable text report.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}

	ew.printf("Redline Analysis: %s\n", sourceName(report))
	ew.printf("Characters: %d | Segments: %d", report.Input.Characters, report.Input.Segments)
	if report.Input.Provider != "" {
		ew.printf(" | Provider: %s", report.Input.Provider)
		if report.Input.Model != "" {
			ew.printf(" (%s)", report.Input.Model)
		}
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))
	ew.printf("Suggestions: %d total", report.Summary.Total)
	if counts := countsLine(report.Summary); counts != "" {
		ew.printf(" (%s)", counts)
	}
	ew.println("")
	if report.Summary.FailedSegments > 0 {
		ew.printf("Skipped segments: %d\n", report.Summary.FailedSegments)
	}
	ew.println(strings.Repeat("─", 60))

	if report.Summary.Total == 0 {
		ew.println("\nNo suggestions. The text reads well.")
	}

	for _, s := range report.Suggestions {
		ew.printf("\n[%s] %d-%d  %s\n", s.Category, s.Span.Start, s.Span.End, s.ID)
		if s.Excerpt != "" {
			ew.printf("  Text: %q\n", s.Excerpt)
		}
		for _, line := range wrapText(s.Rationale, 70) {
			ew.printf("    %s\n", line)
		}
		for i, imp := range s.Improvements {
			ew.printf("  %d) %s\n", i+1, imp.Text)
			if imp.Explanation != "" {
				for _, line := range wrapText(imp.Explanation, 66) {
					ew.printf("       %s\n", line)
				}
			}
		}
	}

	if len(report.Failures) > 0 {
		ew.println("\nSkipped segments:")
		for _, f := range report.Failures {
			ew.printf("  segment %d (offset %d): %s\n", f.Segment, f.Offset, f.Error)
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (LLM: %dms)\n", report.Timing.TotalMs, report.Timing.LLMMs)

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func sourceName(report *analysis.Report) string {
	if report.Input.Source == "" {
		return "stdin"
	}
	return report.Input.Source
}

// countsLine renders non-zero category counts in presentation order.
func countsLine(s analysis.Summary) string {
	var parts []string
	for _, c := range analysis.Categories() {
		if n := s.Counts[c]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(c))))
		}
	}
	return strings.Join(parts, ", ")
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
