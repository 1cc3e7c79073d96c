package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDocument is returned by ValidateDocument for empty input.
	ErrEmptyDocument = errors.New("no text provided")
	// ErrIndexOutOfRange means the requested improvement does not exist.
	ErrIndexOutOfRange = errors.New("improvement index out of range")
	// ErrSpanOutOfRange means the suggestion span does not fit the document.
	ErrSpanOutOfRange = errors.New("span out of range")
	// ErrStaleSpan means the document text at the span changed since the
	// suggestion was produced.
	ErrStaleSpan = errors.New("span no longer matches document")
)

// ValidateDocument rejects input that callers should not analyze.
func ValidateDocument(document string) error {
	if document == "" {
		return ErrEmptyDocument
	}
	return nil
}

// SegmentFailure records a segment whose generation call or result failed.
type SegmentFailure struct {
	Index  int
	Offset int
	Err    error
}

func (f *SegmentFailure) Error() string {
	return fmt.Sprintf("segment %d (offset %d): %v", f.Index, f.Offset, f.Err)
}

func (f *SegmentFailure) Unwrap() error { return f.Err }
