package output

import (
	"io"
	"strings"

	"github.com/dshills/redline/internal/analysis"
)

// MarkdownWriter outputs a markdown report grouped by category.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *analysis.Report) error {
	ew := &errWriter{w: w}

	ew.printf("## Redline Analysis: %s\n\n", sourceName(report))

	ew.printf("| Category | Count |\n")
	ew.printf("|----------|-------|\n")
	for _, c := range analysis.Categories() {
		ew.printf("| %s | %d |\n", mdLabel(c), report.Summary.Counts[c])
	}
	ew.printf("| **Total** | **%d** |\n\n", report.Summary.Total)

	if report.Summary.FailedSegments > 0 {
		ew.printf("> :warning: %d segment(s) could not be analyzed.\n\n", report.Summary.FailedSegments)
	}

	if report.Summary.Total == 0 {
		ew.println("No suggestions. :white_check_mark:")
		return ew.err
	}

	grouped := groupByCategory(report.Suggestions)
	for _, c := range analysis.Categories() {
		suggestions := grouped[c]
		if len(suggestions) == 0 {
			continue
		}

		ew.printf("<details>\n<summary>%s (%d)</summary>\n\n", mdLabel(c), len(suggestions))

		for _, s := range suggestions {
			ew.printf("### Characters %d-%d\n\n", s.Span.Start, s.Span.End)
			if s.Excerpt != "" {
				ew.printf("> %s\n\n", strings.ReplaceAll(s.Excerpt, "\n", "\n> "))
			}
			ew.printf("%s\n\n", s.Rationale)
			ew.printf("**Improvements:**\n\n")
			for i, imp := range s.Improvements {
				ew.printf("%d. %s", i+1, imp.Text)
				if imp.Explanation != "" {
					ew.printf(" _(%s)_", imp.Explanation)
				}
				ew.printf("\n")
			}
			ew.printf("\n`%s`\n\n---\n\n", s.ID)
		}

		ew.printf("</details>\n\n")
	}

	ew.printf("*Analyzed in %dms (LLM: %dms)*\n", report.Timing.TotalMs, report.Timing.LLMMs)

	return ew.err
}

func groupByCategory(suggestions []analysis.Suggestion) map[analysis.Category][]analysis.Suggestion {
	m := make(map[analysis.Category][]analysis.Suggestion)
	for _, s := range suggestions {
		m[s.Category] = append(m[s.Category], s)
	}
	return m
}

func mdLabel(c analysis.Category) string {
	s := strings.ToLower(string(c))
	return strings.ToUpper(s[:1]) + s[1:]
}
