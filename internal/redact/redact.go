package redact

import (
	"regexp"
	"strings"
)

// MaskRune replaces every rune of a detected identifier.
const MaskRune = '█'

// phiPatterns are regex heuristics for direct identifiers common in clinical
// report text. Each match is masked in full.
var phiPatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	// US social security numbers
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	// Phone numbers such as (555) 123-4567, 555-123-4567, +1 555 123 4567
	regexp.MustCompile(`(?:\+\d{1,2}[\s.-]?)?(?:\(\d{3}\)|\d{3})[\s.-]\d{3}[\s.-]\d{4}\b`),
	// Medical record numbers with an explicit label
	regexp.MustCompile(`(?i)\b(?:MRN|medical record (?:number|no\.?))\s*[:#]?\s*[A-Z0-9-]{4,}`),
	// Dates of birth with an explicit label
	regexp.MustCompile(`(?i)\b(?:DOB|date of birth)\s*[:#]?\s*\d{1,4}[./-]\d{1,2}[./-]\d{1,4}`),
	// Provider API keys pasted into notes
	regexp.MustCompile(`sk-(?:ant-)?[A-Za-z0-9_-]{20,}`),
}

// PHI masks detected identifiers in text. The result has the same number of
// runes as text.
func PHI(text string) string {
	result := text
	for _, pat := range phiPatterns {
		result = pat.ReplaceAllStringFunc(result, mask)
	}
	return result
}

// Detect reports whether text contains anything PHI would mask.
func Detect(text string) bool {
	for _, pat := range phiPatterns {
		if pat.MatchString(text) {
			return true
		}
	}
	return false
}

func mask(match string) string {
	var b strings.Builder
	for range match {
		b.WriteRune(MaskRune)
	}
	return b.String()
}
