package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/redline/internal/analysis"
)

// rawSuggestion is the JSON structure returned by the LLM.
type rawSuggestion struct {
	Type         string           `json:"type"`
	Category     string           `json:"category"`
	Span         []int            `json:"span"`
	Rationale    string           `json:"rationale"`
	Improvements []rawImprovement `json:"improvements"`
}

type rawImprovement struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

// ParseDrafts decodes an LLM reply into drafts for a passage of n runes.
// The reply may be a single object or an array, optionally wrapped in a
// markdown code fence. A suggestion without a span covers the whole
// passage.
func ParseDrafts(content string, n int) ([]analysis.Draft, error) {
	content = stripFences(content)
	if content == "" {
		return nil, errors.New("empty response")
	}

	var raw []rawSuggestion
	if strings.HasPrefix(content, "{") {
		var one rawSuggestion
		if err := json.Unmarshal([]byte(content), &one); err != nil {
			return nil, fmt.Errorf("invalid JSON object: %w", err)
		}
		raw = []rawSuggestion{one}
	} else if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	drafts := make([]analysis.Draft, 0, len(raw))
	for i, r := range raw {
		d, err := r.draft(n)
		if err != nil {
			return nil, fmt.Errorf("suggestion %d: %w", i, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

func (r rawSuggestion) draft(n int) (analysis.Draft, error) {
	name := r.Type
	if name == "" {
		name = r.Category
	}
	category, err := analysis.ParseCategory(name)
	if err != nil {
		return analysis.Draft{}, err
	}

	span := analysis.Span{Start: 0, End: n}
	switch len(r.Span) {
	case 0:
	case 2:
		span = analysis.Span{Start: r.Span[0], End: r.Span[1]}
	default:
		return analysis.Draft{}, fmt.Errorf("span must have 2 offsets, got %d", len(r.Span))
	}
	if !span.Valid(n) {
		return analysis.Draft{}, fmt.Errorf("span [%d,%d) outside passage of %d characters", span.Start, span.End, n)
	}

	if len(r.Improvements) == 0 {
		return analysis.Draft{}, errors.New("no improvements")
	}
	improvements := make([]analysis.Improvement, 0, len(r.Improvements))
	for j, imp := range r.Improvements {
		if strings.TrimSpace(imp.Text) == "" {
			return analysis.Draft{}, fmt.Errorf("improvement %d has empty text", j)
		}
		improvements = append(improvements, analysis.Improvement{
			Text:        imp.Text,
			Explanation: imp.Explanation,
		})
	}

	return analysis.Draft{
		Category:     category,
		Span:         span,
		Rationale:    r.Rationale,
		Improvements: improvements,
	}, nil
}

// stripFences removes a surrounding markdown code fence.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
