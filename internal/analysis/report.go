package analysis

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// InputInfo describes what was analyzed.
type InputInfo struct {
	Source     string `json:"source"`
	Characters int    `json:"characters"`
	Segments   int    `json:"segments"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
}

// Summary provides an overview of suggestions.
type Summary struct {
	Counts         map[Category]int `json:"counts"`
	Total          int              `json:"total"`
	FailedSegments int              `json:"failedSegments"`
}

// FailureInfo is the serializable form of a SegmentFailure.
type FailureInfo struct {
	Segment int    `json:"segment"`
	Offset  int    `json:"offset"`
	Error   string `json:"error"`
}

// Timing contains performance metrics.
type Timing struct {
	LLMMs   int64 `json:"llmMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool        string        `json:"tool"`
	Version     string        `json:"version"`
	RunID       string        `json:"runId"`
	Input       InputInfo     `json:"input"`
	Summary     Summary       `json:"summary"`
	Suggestions []Suggestion  `json:"suggestions"`
	Failures    []FailureInfo `json:"failures,omitempty"`
	Timing      Timing        `json:"timing"`
}

// BuildReport assembles a report for document from an analysis result.
func BuildReport(document string, res *Result, input InputInfo, totalMs int64) *Report {
	input.Characters = utf8.RuneCountInString(document)
	input.Segments = res.Segments

	failures := make([]FailureInfo, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, FailureInfo{
			Segment: f.Index,
			Offset:  f.Offset,
			Error:   f.Err.Error(),
		})
	}

	suggestions := res.Suggestions
	if suggestions == nil {
		suggestions = []Suggestion{}
	}

	return &Report{
		Tool:        "redline",
		Version:     "1.0",
		RunID:       uuid.NewString(),
		Input:       input,
		Summary:     ComputeSummary(suggestions, len(res.Failures)),
		Suggestions: suggestions,
		Failures:    failures,
		Timing: Timing{
			LLMMs:   res.LLMMs,
			TotalMs: totalMs,
		},
	}
}

// ComputeSummary calculates the summary from suggestions.
func ComputeSummary(suggestions []Suggestion, failedSegments int) Summary {
	s := Summary{
		Counts:         make(map[Category]int),
		Total:          len(suggestions),
		FailedSegments: failedSegments,
	}
	for _, sg := range suggestions {
		s.Counts[sg.Category]++
	}
	return s
}

// FailOn is a policy deciding whether a set of suggestions should fail a run.
type FailOn struct {
	all        bool
	categories []Category
}

// ParseFailOn parses "none", "any", or a comma-separated list of categories.
func ParseFailOn(policy string) (FailOn, error) {
	policy = strings.TrimSpace(policy)
	switch strings.ToLower(policy) {
	case "", "none":
		return FailOn{}, nil
	case "any":
		return FailOn{all: true}, nil
	}
	var f FailOn
	for _, part := range strings.Split(policy, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCategory(part)
		if err != nil {
			return FailOn{}, fmt.Errorf("fail-on: %w", err)
		}
		f.categories = append(f.categories, c)
	}
	return f, nil
}

// Matches reports whether any suggestion meets the policy.
func (f FailOn) Matches(suggestions []Suggestion) bool {
	if f.all {
		return len(suggestions) > 0
	}
	for _, s := range suggestions {
		if slices.Contains(f.categories, s.Category) {
			return true
		}
	}
	return false
}
