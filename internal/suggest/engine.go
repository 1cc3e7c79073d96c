package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/redline/internal/analysis"
	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/providers"
	"github.com/dshills/redline/internal/redact"
)

// Options configures an Engine.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	RedactPHI   bool
	Rules       *Rules
	// Cache may be nil.
	Cache *cache.Cache
}

// Engine generates suggestion drafts with an LLM provider.
// It implements analysis.Capability.
type Engine struct {
	provider providers.Generator
	opts     Options
}

var _ analysis.Capability = (*Engine)(nil)

// NewEngine creates an Engine that calls provider.
func NewEngine(provider providers.Generator, opts Options) *Engine {
	return &Engine{provider: provider, opts: opts}
}

// Generate returns drafts for one passage with spans relative to text.
func (e *Engine) Generate(ctx context.Context, text string) ([]analysis.Draft, error) {
	passage := text
	if e.opts.RedactPHI {
		passage = redact.PHI(passage)
	}
	if strings.TrimSpace(passage) == "" {
		return nil, nil
	}
	n := len([]rune(text))

	req := providers.Request{
		SystemPrompt: SystemPrompt(),
		UserPrompt:   BuildUserPrompt(passage, e.opts.Rules),
		MaxTokens:    e.opts.MaxTokens,
		Temperature:  e.opts.Temperature,
	}
	key := cache.BuildCacheKey(e.provider.Name(), e.opts.Model, req.SystemPrompt, req.UserPrompt)

	if cached, ok := e.cacheGet(key); ok {
		if drafts, err := ParseDrafts(cached, n); err == nil {
			return filterDrafts(drafts, e.opts.Rules), nil
		}
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.provider.Name(), err)
	}

	content := resp.Content
	drafts, err := ParseDrafts(content, n)
	if err != nil {
		// Attempt one repair pass
		repair := req
		repair.UserPrompt = buildRepairPrompt(content, err)
		resp2, err2 := e.provider.Generate(ctx, repair)
		if err2 != nil {
			return nil, fmt.Errorf("repair pass failed: %w (original error: %w)", err2, err)
		}
		content = resp2.Content
		drafts, err = ParseDrafts(content, n)
		if err != nil {
			return nil, fmt.Errorf("response validation failed after repair: %w", err)
		}
	}

	e.cachePut(key, content)
	return filterDrafts(drafts, e.opts.Rules), nil
}

func (e *Engine) cacheGet(key string) (string, bool) {
	if e.opts.Cache == nil {
		return "", false
	}
	return e.opts.Cache.Get(key)
}

// cachePut stores a reply that parsed. Write failures only cost a future miss.
func (e *Engine) cachePut(key, content string) {
	if e.opts.Cache == nil {
		return
	}
	_ = e.opts.Cache.Put(key, content)
}
