// Package suggest turns an LLM provider into an analysis.Capability.
//
// For each segment it builds the medical-writer prompt, consults the
// response cache, calls the provider, and parses the reply into drafts.
// A reply that cannot be parsed gets one repair pass before the segment
// is reported as failed. Protected health information is masked before
// the text leaves the process; masking preserves length so spans stay
// valid against the original segment.
package suggest
