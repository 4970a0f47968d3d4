// Package cache stores scoring results in Redis keyed by text hash.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

const keyPrefix = "msgrisk:result:"

// RedisResultCache implements port.ResultCache.
type RedisResultCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	// modelTag scopes keys so a model rollout does not serve stale results.
	modelTag string
}

// NewRedisResultCache creates a cache over client. ttl <= 0 keeps entries forever.
func NewRedisResultCache(client redis.UniversalClient, modelTag string, ttl time.Duration) *RedisResultCache {
	return &RedisResultCache{client: client, ttl: ttl, modelTag: modelTag}
}

type cachedResult struct {
	Predictions []valueobject.Prediction   `json:"predictions"`
	RiskLevel   valueobject.RiskLevel      `json:"risk_level"`
	Keywords    []string                   `json:"keywords"`
	Features    valueobject.RiskFeatureSet `json:"features"`
}

func (c *RedisResultCache) key(textHash string) string {
	return keyPrefix + c.modelTag + ":" + textHash
}

// Get returns the cached result for textHash.
func (c *RedisResultCache) Get(ctx context.Context, textHash string) (model.MessageRiskResult, bool, error) {
	raw, err := c.client.Get(ctx, c.key(textHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.MessageRiskResult{}, false, nil
	}
	if err != nil {
		return model.MessageRiskResult{}, false, fmt.Errorf("redis get: %w", err)
	}

	var cr cachedResult
	if err := json.Unmarshal(raw, &cr); err != nil {
		return model.MessageRiskResult{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	if len(cr.Predictions) == 0 || cr.RiskLevel.IsZero() {
		return model.MessageRiskResult{}, false, nil
	}

	return model.MessageRiskResult{
		Classification: valueobject.ReconstructClassificationResult(cr.Predictions),
		RiskLevel:      cr.RiskLevel,
		Keywords:       cr.Keywords,
		Features:       cr.Features,
	}, true, nil
}

// Set stores result under textHash.
func (c *RedisResultCache) Set(ctx context.Context, textHash string, result model.MessageRiskResult) error {
	raw, err := json.Marshal(cachedResult{
		Predictions: result.Classification.Predictions(),
		RiskLevel:   result.RiskLevel,
		Keywords:    result.Keywords,
		Features:    result.Features,
	})
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, c.key(textHash), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (c *RedisResultCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
