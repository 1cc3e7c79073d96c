// Package output formats analysis reports for display or machine consumption.
//
// Four formats are supported:
//   - text: human-readable terminal output (default)
//   - json: full structured JSON report, readable by redline apply
//   - markdown: review-comment friendly with collapsible sections per category
//   - sarif: SARIF v2.1.0 with character-offset regions
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*analysis.Report]. [WriteReport]
// handles destination selection.
package output
