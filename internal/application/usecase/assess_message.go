package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/service"
)

var tracer = otel.Tracer("msgrisk/usecase")

// AssessmentObserver records completed assessments.
type AssessmentObserver interface {
	ObserveAssessment(category, riskLevel string)
}

// AssessMessage is the use case for scoring and persisting a message.
type AssessMessage struct {
	repo      port.AssessmentRepository
	publisher port.EventPublisher
	scorer    service.Scorer
	observer  AssessmentObserver
	logger    *slog.Logger
}

// NewAssessMessage creates a new AssessMessage use case. observer may be nil.
func NewAssessMessage(
	repo port.AssessmentRepository,
	publisher port.EventPublisher,
	scorer service.Scorer,
	observer AssessmentObserver,
	logger *slog.Logger,
) *AssessMessage {
	return &AssessMessage{
		repo:      repo,
		publisher: publisher,
		scorer:    scorer,
		observer:  observer,
		logger:    logger,
	}
}

// Execute scores a message, saves the assessment and publishes its events.
func (uc *AssessMessage) Execute(ctx context.Context, req dto.AssessMessageRequest) (dto.AssessmentResponse, error) {
	ctx, span := tracer.Start(ctx, "AssessMessage")
	defer span.End()

	if err := validateText(ctx, req.Text); err != nil {
		span.SetStatus(codes.Error, "invalid text")
		return dto.AssessmentResponse{}, err
	}

	// 1. Create the assessment aggregate.
	assessment, err := model.NewMessageAssessment(req.TenantID, req.Text, req.Channel, req.Sender)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %v", ErrInvalidText, err)
	}

	// 2. Score the text.
	result, err := uc.scorer.Score(ctx, req.Text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scoring failed")
		return dto.AssessmentResponse{}, fmt.Errorf("failed to score message: %w", err)
	}

	// 3. Apply the result to the aggregate.
	if err := assessment.Assess(result); err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to apply assessment: %w", err)
	}

	// 4. Persist.
	if err := uc.repo.Save(ctx, assessment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		return dto.AssessmentResponse{}, fmt.Errorf("failed to save assessment: %w", err)
	}

	// 5. Publish domain events. The assessment is already durable.
	if assessment.Pending() > 0 {
		if err := uc.publisher.Publish(ctx, assessment.Events()...); err != nil {
			uc.logger.Error("failed to publish assessment events",
				"assessment_id", assessment.ID(),
				"tenant_id", assessment.TenantID(),
				"error", err,
			)
		}
		assessment.ClearEvents()
	}

	if uc.observer != nil {
		uc.observer.ObserveAssessment(result.Prediction().String(), result.RiskLevel.String())
	}

	span.SetAttributes(
		attribute.String("msgrisk.assessment_id", assessment.ID().String()),
		attribute.String("msgrisk.prediction", result.Prediction().String()),
		attribute.String("msgrisk.risk_level", result.RiskLevel.String()),
	)

	uc.logger.Info("message assessed",
		"assessment_id", assessment.ID(),
		"tenant_id", assessment.TenantID(),
		"prediction", result.Prediction().String(),
		"probability", result.Probability(),
		"risk_level", result.RiskLevel.String(),
	)

	return dto.FromModel(assessment), nil
}
