package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category represents the kind of improvement a suggestion proposes.
type Category string

const (
	CategoryStyle       Category = "STYLE"
	CategoryContent     Category = "CONTENT"
	CategoryTerminology Category = "TERMINOLOGY"
	CategoryClarity     Category = "CLARITY"
	CategoryRegulatory  Category = "REGULATORY"
	CategoryConsistency Category = "CONSISTENCY"
)

// Categories returns every known category in presentation order.
func Categories() []Category {
	return []Category{
		CategoryStyle,
		CategoryContent,
		CategoryTerminology,
		CategoryClarity,
		CategoryRegulatory,
		CategoryConsistency,
	}
}

// ParseCategory normalizes s and returns the matching category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Segment is a contiguous piece of a document sized for one generation call.
type Segment struct {
	Text   string `json:"text"`
	Offset int    `json:"offset"`
}

// Span is a half-open [Start, End) range of rune offsets.
// It is encoded in JSON as a two-element array.
type Span struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Valid reports whether the span fits in a text of n runes.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start <= s.End && s.End <= n
}

// Shift returns the span moved right by offset.
func (s Span) Shift(offset int) Span {
	return Span{Start: s.Start + offset, End: s.End + offset}
}

func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

func (s *Span) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("span: want 2 offsets, got %d", len(pair))
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// Improvement is one candidate replacement for the text of a span.
type Improvement struct {
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

// Draft is a suggestion as returned by a Capability, with its span relative
// to the segment it was generated from.
type Draft struct {
	Category     Category
	Span         Span
	Rationale    string
	Improvements []Improvement
}

// Suggestion is a localized recommendation against the original document.
// Excerpt holds the document text covered by Span when the suggestion was
// produced.
type Suggestion struct {
	ID           string        `json:"id"`
	Category     Category      `json:"category"`
	Span         Span          `json:"span"`
	Rationale    string        `json:"rationale"`
	Improvements []Improvement `json:"improvements"`
	Excerpt      string        `json:"excerpt,omitempty"`
}

// Result is the outcome of analyzing one document.
type Result struct {
	Suggestions []Suggestion
	Failures    []SegmentFailure
	Segments    int
	LLMMs       int64
}
