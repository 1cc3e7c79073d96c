// Package redact masks protected health information in text before it is
// sent to an LLM provider.
//
// Masking is length-preserving: every rune of a match is replaced by a
// single mask rune, so character offsets computed on the masked text are
// valid offsets into the original text.
package redact
