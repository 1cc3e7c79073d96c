package analysis

import (
	"fmt"
	"strings"
)

// Apply returns document with the span of s replaced by the improvement at
// improvementIndex. Neither document nor s is modified.
//
// The span must still describe the text s was produced against. When s
// carries an Excerpt that no longer matches, ErrStaleSpan is returned.
// Applying several suggestions in sequence is the caller's responsibility:
// once one replacement changes the document length, the spans of later
// suggestions are stale unless they are re-derived.
func Apply(document string, s Suggestion, improvementIndex int) (string, error) {
	if improvementIndex < 0 || improvementIndex >= len(s.Improvements) {
		return "", fmt.Errorf("%w: index %d, suggestion has %d improvements",
			ErrIndexOutOfRange, improvementIndex, len(s.Improvements))
	}

	runes := []rune(document)
	if !s.Span.Valid(len(runes)) {
		return "", fmt.Errorf("%w: [%d,%d) in document of %d characters",
			ErrSpanOutOfRange, s.Span.Start, s.Span.End, len(runes))
	}

	current := string(runes[s.Span.Start:s.Span.End])
	if s.Excerpt != "" && current != s.Excerpt {
		return "", fmt.Errorf("%w: expected %q, found %q", ErrStaleSpan, s.Excerpt, current)
	}

	var b strings.Builder
	b.Grow(len(document) + len(s.Improvements[improvementIndex].Text))
	b.WriteString(string(runes[:s.Span.Start]))
	b.WriteString(s.Improvements[improvementIndex].Text)
	b.WriteString(string(runes[s.Span.End:]))
	return b.String(), nil
}

// FindSuggestion returns the suggestion with the given ID.
func FindSuggestion(suggestions []Suggestion, id string) (Suggestion, bool) {
	for _, s := range suggestions {
		if s.ID == id {
			return s, true
		}
	}
	return Suggestion{}, false
}
