package analysis

// DefaultSegmentSize is the maximum segment length in runes used when no
// size is configured.
const DefaultSegmentSize = 1000

// SplitIntoSegments splits document into ordered segments of at most maxSize runes.
//
// A document that fits in maxSize is returned as a single segment, even
// when it is empty. Longer documents are cut after the last sentence
// terminator ('.', '!' or '?') inside each window; a window without a
// terminator is emitted whole. Concatenating the segment texts in order
// always reproduces document.
func SplitIntoSegments(document string, maxSize int) []Segment {
	if maxSize <= 0 {
		maxSize = DefaultSegmentSize
	}

	runes := []rune(document)
	if len(runes) <= maxSize {
		return []Segment{{Text: document, Offset: 0}}
	}

	segments := make([]Segment, 0, len(runes)/maxSize+1)
	for cursor := 0; cursor < len(runes); {
		end := min(cursor+maxSize, len(runes))
		if end < len(runes) {
			if cut := lastTerminator(runes[cursor:end]); cut > 0 {
				end = cursor + cut
			}
		}
		segments = append(segments, Segment{
			Text:   string(runes[cursor:end]),
			Offset: cursor,
		})
		cursor = end
	}
	return segments
}

// lastTerminator returns the length of the longest prefix of window that
// ends in a sentence terminator, or 0 if there is none.
func lastTerminator(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if isTerminator(window[i]) {
			return i + 1
		}
	}
	return 0
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
