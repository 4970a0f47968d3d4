package service

import (
	"context"
	"log/slog"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/port"
)

// CacheObserver receives one call per cache lookup with outcome "hit",
// "miss" or "error".
type CacheObserver interface {
	ObserveCacheLookup(outcome string)
}

// CachingScorer serves repeated texts from a ResultCache and falls back to
// the wrapped Scorer on a miss. Cache failures never fail a call.
type CachingScorer struct {
	next     Scorer
	cache    port.ResultCache
	observer CacheObserver
	logger   *slog.Logger
}

// NewCachingScorer wraps next. observer may be nil.
func NewCachingScorer(next Scorer, cache port.ResultCache, observer CacheObserver, logger *slog.Logger) *CachingScorer {
	return &CachingScorer{next: next, cache: cache, observer: observer, logger: logger}
}

// Score returns the cached result for text or computes and stores it.
func (c *CachingScorer) Score(ctx context.Context, text string) (model.MessageRiskResult, error) {
	key := model.HashText(text)

	cached, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.observe("error")
		c.logger.Warn("result cache lookup failed, scoring directly", "error", err)
	case ok:
		c.observe("hit")
		return cached, nil
	default:
		c.observe("miss")
	}

	result, err := c.next.Score(ctx, text)
	if err != nil {
		return model.MessageRiskResult{}, err
	}

	if err := c.cache.Set(ctx, key, result); err != nil {
		c.logger.Warn("result cache store failed", "error", err)
	}
	return result, nil
}

func (c *CachingScorer) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveCacheLookup(outcome)
	}
}
