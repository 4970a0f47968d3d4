// Package bootstrap wires configuration into running components.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/service"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	"github.com/antifraud/msgrisk/internal/infrastructure/cache"
	"github.com/antifraud/msgrisk/internal/infrastructure/config"
	"github.com/antifraud/msgrisk/internal/infrastructure/ml"
	"github.com/antifraud/msgrisk/internal/infrastructure/segmenter"
	"github.com/antifraud/msgrisk/internal/infrastructure/vocabulary"
	"github.com/antifraud/msgrisk/pkg/observability"
)

// StubInferenceURL selects the in-process stub model instead of a server.
const StubInferenceURL = "stub"

// ScoringStack is the shared, read-only scoring pipeline.
type ScoringStack struct {
	Scorer    service.Scorer
	Extractor *service.KeywordExtractor
	// Ready probes the inference backend.
	Ready func(ctx context.Context) error
	redis *redis.Client
}

// Close releases the result cache connection, if any.
func (s *ScoringStack) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

type readyLogitsSource interface {
	ml.LogitsSource
	Ready(ctx context.Context) error
}

// NewKeywordExtractor loads the keyword vocabulary and segmenter. It needs
// no model and backs the keywords CLI command.
func NewKeywordExtractor(cfg config.KeywordsConfig) (*service.KeywordExtractor, error) {
	seg, vocab, err := loadKeywordResources(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewKeywordExtractor(seg, vocab, cfg.TopK), nil
}

// NewScoringStack builds the scorer. A missing vocabulary, tokenizer or
// model is fatal here rather than on the first call. metrics may be nil.
func NewScoringStack(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*ScoringStack, error) {
	seg, vocab, err := loadKeywordResources(cfg.Keywords)
	if err != nil {
		return nil, err
	}
	logger.Info("keyword vocabulary loaded", "path", cfg.Keywords.VocabularyPath, "entries", vocab.Len())

	tokenizer, err := ml.LoadTokenizer(cfg.Model.VocabPath, cfg.Model.MaxLength)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	source, err := newLogitsSource(cfg.Model, metrics, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Model.SkipReadiness {
		if err := source.Ready(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", port.ErrModelNotReady, cfg.Model.Name, err)
		}
	}

	stack := &ScoringStack{
		Extractor: service.NewKeywordExtractor(seg, vocab, cfg.Keywords.TopK),
		Ready:     source.Ready,
	}

	var scorer service.Scorer = service.NewRiskScorer(ml.NewBertClassifier(tokenizer, source), seg, vocab, cfg.Keywords.TopK)

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		resultCache := cache.NewRedisResultCache(client, modelTag(cfg.Model), cfg.Redis.TTL)
		if err := resultCache.Ping(ctx); err != nil {
			logger.Warn("result cache unreachable, continuing", "addr", cfg.Redis.Addr, "error", err)
		}
		var observer service.CacheObserver
		if metrics != nil {
			observer = metrics
		}
		scorer = service.NewCachingScorer(scorer, resultCache, observer, logger)
		stack.redis = client
	}

	stack.Scorer = scorer
	return stack, nil
}

func loadKeywordResources(cfg config.KeywordsConfig) (*segmenter.GSE, *valueobject.KeywordVocabulary, error) {
	vocab, err := vocabulary.LoadFile(cfg.VocabularyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load keyword vocabulary: %w", err)
	}
	seg, err := segmenter.New(cfg.DictPath)
	if err != nil {
		return nil, nil, err
	}
	return seg, vocab, nil
}

func newLogitsSource(cfg config.ModelConfig, metrics *observability.Metrics, logger *slog.Logger) (readyLogitsSource, error) {
	if strings.EqualFold(cfg.InferenceURL, StubInferenceURL) {
		logger.Warn("using stub model client; predictions are not meaningful")
		return ml.NewStubModelClient(logger), nil
	}

	var observer ml.InferenceObserver
	if metrics != nil {
		observer = metrics
	}
	client, err := ml.NewInferenceClient(ml.InferenceConfig{
		BaseURL:         cfg.InferenceURL,
		ModelName:       cfg.Name,
		ModelVersion:    cfg.Version,
		Timeout:         cfg.Timeout,
		BreakerFailures: cfg.BreakerFailures,
		BreakerOpenFor:  cfg.BreakerOpenFor,
	}, observer)
	if err != nil {
		return nil, fmt.Errorf("create inference client: %w", err)
	}
	return client, nil
}

func modelTag(cfg config.ModelConfig) string {
	if cfg.Version == "" {
		return cfg.Name
	}
	return cfg.Name + "@" + cfg.Version
}
