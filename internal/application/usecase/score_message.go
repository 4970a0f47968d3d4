package usecase

import (
	"context"
	"fmt"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/domain/service"
)

// ScoreMessage scores text without persisting anything.
type ScoreMessage struct {
	scorer   service.Scorer
	observer AssessmentObserver
}

// NewScoreMessage creates a new ScoreMessage use case. observer may be nil.
func NewScoreMessage(scorer service.Scorer, observer AssessmentObserver) *ScoreMessage {
	return &ScoreMessage{scorer: scorer, observer: observer}
}

// Execute validates and scores the text.
func (uc *ScoreMessage) Execute(ctx context.Context, req dto.ScoreMessageRequest) (dto.ScoreResponse, error) {
	ctx, span := tracer.Start(ctx, "ScoreMessage")
	defer span.End()

	if err := validateText(ctx, req.Text); err != nil {
		return dto.ScoreResponse{}, err
	}

	result, err := uc.scorer.Score(ctx, req.Text)
	if err != nil {
		span.RecordError(err)
		return dto.ScoreResponse{}, fmt.Errorf("failed to score message: %w", err)
	}

	if uc.observer != nil {
		uc.observer.ObserveAssessment(result.Prediction().String(), result.RiskLevel.String())
	}
	return dto.ScoreFromResult(result), nil
}
