package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dshills/redline/internal/analysis"
)

// SARIFWriter outputs suggestions in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *analysis.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
	// Properties carries the suggestion ID so results can be applied later.
	Properties map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

// sarifRegion uses character offsets, which SARIF counts in Unicode code
// points like the rest of redline.
type sarifRegion struct {
	CharOffset int          `json:"charOffset"`
	CharLength int          `json:"charLength"`
	Snippet    *sarifString `json:"snippet,omitempty"`
}

type sarifString struct {
	Text string `json:"text"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

var categoryDescriptions = map[analysis.Category]string{
	analysis.CategoryStyle:       "Issues with writing style, tone, or flow",
	analysis.CategoryContent:     "Inaccurate or missing clinical information",
	analysis.CategoryTerminology: "Incorrect or inconsistent medical terminology",
	analysis.CategoryClarity:     "Unclear or ambiguous statements",
	analysis.CategoryRegulatory:  "Non-compliance with regulatory guidelines",
	analysis.CategoryConsistency: "Inconsistencies within the document",
}

func buildSARIF(report *analysis.Report) sarifLog {
	uri := sourceName(report)
	results := make([]sarifResult, 0, len(report.Suggestions))
	seen := make(map[analysis.Category]bool)
	var rules []sarifRule

	for _, s := range report.Suggestions {
		ruleID := ruleIDFor(s.Category)
		if !seen[s.Category] {
			seen[s.Category] = true
			rules = append(rules, sarifRule{
				ID:               ruleID,
				Name:             string(s.Category),
				ShortDescription: sarifMessage{Text: categoryDescriptions[s.Category]},
				DefaultConfig:    sarifDefaultConfig{Level: categoryToLevel(s.Category)},
			})
		}

		region := sarifRegion{CharOffset: s.Span.Start, CharLength: s.Span.Len()}
		if s.Excerpt != "" {
			region.Snippet = &sarifString{Text: s.Excerpt}
		}

		result := sarifResult{
			RuleID:  ruleID,
			Level:   categoryToLevel(s.Category),
			Message: sarifMessage{Text: s.Rationale},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           region,
				},
			}},
			Properties: map[string]string{"suggestionId": s.ID},
		}
		for _, imp := range s.Improvements {
			text := imp.Text
			if imp.Explanation != "" {
				text += " (" + imp.Explanation + ")"
			}
			result.Fixes = append(result.Fixes, sarifFix{Description: sarifMessage{Text: text}})
		}

		results = append(results, result)
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "redline",
						Version: report.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}
}

func ruleIDFor(c analysis.Category) string {
	return "redline/" + strings.ToLower(string(c))
}

// categoryToLevel maps a category to a SARIF level. Content and regulatory
// issues can change the meaning or acceptability of a report.
func categoryToLevel(c analysis.Category) string {
	switch c {
	case analysis.CategoryContent, analysis.CategoryRegulatory:
		return "warning"
	default:
		return "note"
	}
}
