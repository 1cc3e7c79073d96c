// Package analysis contains the core types and engine for segment-based
// prose analysis.
//
// A document is split by [Segment] into ordered, sentence-aware segments of
// at most a configured number of characters, each tagged with its offset in
// the original document. The [Analyzer] sends every segment to a
// [Capability], translates the spans of the returned drafts from segment
// coordinates into document coordinates, and collects the resulting
// suggestions in segment order. A failing segment is recorded and skipped;
// it never aborts the analysis of the rest of the document.
//
// [Apply] replaces the span of a suggestion with one of its improvements.
//
// All offsets are counted in runes (Unicode code points), not bytes.
package analysis
