package suggest

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/redline/internal/analysis"
	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider replies with canned contents in order.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []providers.Request
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, req providers.Request) (providers.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	if p.err != nil {
		return providers.Response{}, p.err
	}
	if len(p.replies) == 0 {
		return providers.Response{}, errors.New("no reply scripted")
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return providers.Response{Content: reply}, nil
}

const feverReply = `{"type":"terminology","span":[12,17],"rationale":"Use clinical terms.","improvements":[{"text":"pyrexia","explanation":"Clinical term"},{"text":"elevated temperature","explanation":"Descriptive"}]}`

func TestEngine_Generate(t *testing.T) {
	p := &scriptedProvider{replies: []string{feverReply}}
	e := NewEngine(p, Options{Model: "m", MaxTokens: 500, Temperature: 0.3})

	drafts, err := e.Generate(context.Background(), "Patient had fever.")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	d := drafts[0]
	assert.Equal(t, analysis.CategoryTerminology, d.Category)
	assert.Equal(t, analysis.Span{Start: 12, End: 17}, d.Span)
	assert.Len(t, d.Improvements, 2)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, SystemPrompt(), req.SystemPrompt)
	assert.Contains(t, req.UserPrompt, "Patient had fever.")
	assert.Equal(t, 500, req.MaxTokens)
	assert.Equal(t, 0.3, req.Temperature)
}

func TestEngine_RepairPass(t *testing.T) {
	p := &scriptedProvider{replies: []string{"not json at all", feverReply}}
	e := NewEngine(p, Options{})

	drafts, err := e.Generate(context.Background(), "Patient had fever.")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	require.Len(t, p.requests, 2)
	assert.Contains(t, p.requests[1].UserPrompt, "not json at all")
}

func TestEngine_RepairFails(t *testing.T) {
	p := &scriptedProvider{replies: []string{"nope", "still nope"}}
	e := NewEngine(p, Options{})

	_, err := e.Generate(context.Background(), "Patient had fever.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after repair")
}

func TestEngine_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	p := &scriptedProvider{err: boom}
	e := NewEngine(p, Options{})

	_, err := e.Generate(context.Background(), "Patient had fever.")
	require.ErrorIs(t, err, boom)
	assert.Len(t, p.requests, 1, "provider errors are not repaired")
}

func TestEngine_BlankPassageSkipsProvider(t *testing.T) {
	p := &scriptedProvider{}
	e := NewEngine(p, Options{})

	drafts, err := e.Generate(context.Background(), "   \n ")
	require.NoError(t, err)
	assert.Empty(t, drafts)
	assert.Empty(t, p.requests)
}

func TestEngine_RedactsPHI(t *testing.T) {
	text := "Contact jane.doe@example.com today."
	p := &scriptedProvider{replies: []string{"[]"}}
	e := NewEngine(p, Options{RedactPHI: true})

	_, err := e.Generate(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, p.requests, 1)
	prompt := p.requests[0].UserPrompt
	assert.NotContains(t, prompt, "jane.doe@example.com")
	assert.Contains(t, prompt, "passage is 35 characters long")
}

func TestEngine_Cache(t *testing.T) {
	c, err := cache.New(true, t.TempDir(), 3600)
	require.NoError(t, err)

	p := &scriptedProvider{replies: []string{feverReply}}
	e := NewEngine(p, Options{Model: "m", Cache: c})

	first, err := e.Generate(context.Background(), "Patient had fever.")
	require.NoError(t, err)
	second, err := e.Generate(context.Background(), "Patient had fever.")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, p.requests, 1, "second call should be served from cache")
}

func TestEngine_RulesFilterCategories(t *testing.T) {
	reply := `[` + feverReply + `,{"type":"STYLE","rationale":"Flow.","improvements":[{"text":"x","explanation":"y"}]}]`
	p := &scriptedProvider{replies: []string{reply}}
	rules := &Rules{Categories: []string{"style"}}
	e := NewEngine(p, Options{Rules: rules})

	drafts, err := e.Generate(context.Background(), "Patient had fever.")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, analysis.CategoryStyle, drafts[0].Category)
	assert.True(t, strings.Contains(p.requests[0].UserPrompt, "Only report suggestions of type: style"))
}

func TestEngine_WithAnalyzer(t *testing.T) {
	p := &scriptedProvider{replies: []string{
		`{"type":"CLARITY","span":[0,3],"rationale":"r","improvements":[{"text":"Uno","explanation":"e"}]}`,
		`{"type":"CLARITY","span":[1,4],"rationale":"r","improvements":[{"text":"Dos","explanation":"e"}]}`,
	}}
	a := analysis.New(NewEngine(p, Options{}), analysis.Options{SegmentSize: 5, Concurrency: 1})

	res, err := a.Analyze(context.Background(), "One. Two.")
	require.NoError(t, err)
	require.Len(t, res.Suggestions, 2)
	assert.Equal(t, analysis.Span{Start: 0, End: 3}, res.Suggestions[0].Span)
	assert.Equal(t, analysis.Span{Start: 5, End: 8}, res.Suggestions[1].Span)
	assert.Equal(t, "Two", res.Suggestions[1].Excerpt)
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := config.Default()
	cfg.SegmentTimeoutSeconds = 5

	called := false
	opts := AnalyzerOptions(cfg, func(analysis.SegmentFailure) { called = true })
	assert.Equal(t, 1000, opts.SegmentSize)
	assert.Equal(t, 4, opts.Concurrency)
	assert.Equal(t, 5*time.Second, opts.SegmentTimeout)
	opts.OnFailure(analysis.SegmentFailure{})
	assert.True(t, called)
}

func TestFromConfig_UnknownProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "nope"
	_, err := FromConfig(cfg)
	assert.ErrorContains(t, err, "unknown provider")
}

func TestFromConfig_Ollama(t *testing.T) {
	cfg := config.Default()
	cfg.Provider = "ollama"
	cfg.Model = "llama3"
	cfg.Cache.Dir = t.TempDir()

	e, err := FromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama", e.provider.Name())
	assert.NotNil(t, e.opts.Cache)
	assert.True(t, e.opts.RedactPHI)
}
