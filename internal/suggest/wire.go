package suggest

import (
	"fmt"
	"time"

	"github.com/dshills/redline/internal/analysis"
	"github.com/dshills/redline/internal/cache"
	"github.com/dshills/redline/internal/config"
	"github.com/dshills/redline/internal/providers"
)

// FromConfig builds an Engine for the provider, cache and rules named in cfg.
func FromConfig(cfg config.Config) (*Engine, error) {
	provider, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}

	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	return NewEngine(provider, Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		RedactPHI:   cfg.Privacy.RedactPHI,
		Rules:       rules,
		Cache:       c,
	}), nil
}

// AnalyzerOptions maps cfg onto analysis options. onFailure may be nil.
func AnalyzerOptions(cfg config.Config, onFailure func(analysis.SegmentFailure)) analysis.Options {
	return analysis.Options{
		SegmentSize:    cfg.SegmentSize,
		Concurrency:    cfg.Concurrency,
		SegmentTimeout: time.Duration(cfg.SegmentTimeoutSeconds) * time.Second,
		OnFailure:      onFailure,
	}
}
