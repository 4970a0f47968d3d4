package service

import (
	"context"

	"github.com/antifraud/msgrisk/internal/domain/model"
)

// Scorer produces a MessageRiskResult for a piece of text.
// Both RiskScorer and CachingScorer implement this.
type Scorer interface {
	Score(ctx context.Context, text string) (model.MessageRiskResult, error)
}
