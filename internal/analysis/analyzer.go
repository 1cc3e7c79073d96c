package analysis

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// defaultConcurrency limits parallel generation calls.
const defaultConcurrency = 4

// Capability turns the text of one segment into suggestion drafts whose
// spans are relative to that text.
type Capability interface {
	Generate(ctx context.Context, text string) ([]Draft, error)
}

// CapabilityFunc adapts a function to the Capability interface.
type CapabilityFunc func(ctx context.Context, text string) ([]Draft, error)

func (f CapabilityFunc) Generate(ctx context.Context, text string) ([]Draft, error) {
	return f(ctx, text)
}

// Options controls how an Analyzer segments and dispatches a document.
type Options struct {
	// SegmentSize is the maximum segment length in runes.
	SegmentSize int
	// Concurrency is the maximum number of in-flight generation calls.
	Concurrency int
	// SegmentTimeout bounds each generation call when positive.
	SegmentTimeout time.Duration
	// OnFailure is called once per failed segment, in segment order,
	// after all segments have been processed.
	OnFailure func(SegmentFailure)
}

// Analyzer runs a Capability over the segments of a document.
// An Analyzer holds no per-document state and may be shared.
type Analyzer struct {
	capability Capability
	opts       Options
}

// New creates an Analyzer. Zero option values select defaults.
func New(capability Capability, opts Options) *Analyzer {
	if opts.SegmentSize <= 0 {
		opts.SegmentSize = DefaultSegmentSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return &Analyzer{capability: capability, opts: opts}
}

// outcome is the result of one segment: either suggestions or a failure.
type outcome struct {
	suggestions []Suggestion
	failure     *SegmentFailure
}

// Analyze segments document, generates suggestions for every segment and
// returns them in segment order with spans in document coordinates.
//
// Segment failures are collected in Result.Failures and do not produce an
// error. The only error returned is the context's, in which case any
// partial result is discarded.
func (a *Analyzer) Analyze(ctx context.Context, document string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Suggestions: []Suggestion{}}
	if document == "" {
		return result, nil
	}

	segments := SplitIntoSegments(document, a.opts.SegmentSize)
	result.Segments = len(segments)

	outcomes := make([]outcome, len(segments))
	var llmNanos atomic.Int64

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)
	for i, seg := range segments {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			start := time.Now()
			outcomes[i] = a.analyzeSegment(ctx, i, seg)
			llmNanos.Add(int64(time.Since(start)))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, o := range outcomes {
		if o.failure != nil {
			result.Failures = append(result.Failures, *o.failure)
			if a.opts.OnFailure != nil {
				a.opts.OnFailure(*o.failure)
			}
			continue
		}
		result.Suggestions = append(result.Suggestions, o.suggestions...)
	}
	result.LLMMs = time.Duration(llmNanos.Load()).Milliseconds()

	return result, nil
}

func (a *Analyzer) analyzeSegment(ctx context.Context, index int, seg Segment) outcome {
	if a.opts.SegmentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.SegmentTimeout)
		defer cancel()
	}

	fail := func(err error) outcome {
		return outcome{failure: &SegmentFailure{Index: index, Offset: seg.Offset, Err: err}}
	}

	drafts, err := a.capability.Generate(ctx, seg.Text)
	if err != nil {
		return fail(err)
	}

	local := []rune(seg.Text)
	suggestions := make([]Suggestion, 0, len(drafts))
	for _, d := range drafts {
		s, err := Translate(d, seg, local)
		if err != nil {
			return fail(err)
		}
		suggestions = append(suggestions, s)
	}
	return outcome{suggestions: suggestions}
}

// Translate builds a new Suggestion from d with its span moved from the
// coordinates of seg into document coordinates. local must be the runes of
// seg.Text. d is not modified.
func Translate(d Draft, seg Segment, local []rune) (Suggestion, error) {
	if !d.Span.Valid(len(local)) {
		return Suggestion{}, fmt.Errorf("%w: [%d,%d) in segment of %d characters",
			ErrSpanOutOfRange, d.Span.Start, d.Span.End, len(local))
	}
	if len(d.Improvements) == 0 {
		return Suggestion{}, fmt.Errorf("suggestion has no improvements")
	}

	improvements := make([]Improvement, len(d.Improvements))
	copy(improvements, d.Improvements)

	return Suggestion{
		ID:           uuid.NewString(),
		Category:     d.Category,
		Span:         d.Span.Shift(seg.Offset),
		Rationale:    d.Rationale,
		Improvements: improvements,
		Excerpt:      string(local[d.Span.Start:d.Span.End]),
	}, nil
}
