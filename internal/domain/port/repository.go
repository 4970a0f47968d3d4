package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	"github.com/antifraud/msgrisk/pkg/events"
)

// ListFilter narrows ListByTenant.
type ListFilter struct {
	// MinRiskLevel keeps assessments at or above this level; zero keeps all.
	MinRiskLevel valueobject.RiskLevel
	Limit        int
	Offset       int
}

// AssessmentRepository defines the persistence port for message assessments.
type AssessmentRepository interface {
	// Save persists a scored assessment with its keywords and predictions.
	Save(ctx context.Context, assessment *model.MessageAssessment) error

	// FindByID retrieves an assessment. Returns ErrAssessmentNotFound when absent.
	FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.MessageAssessment, error)

	// ListByTenant returns a tenant's assessments, newest first.
	ListByTenant(ctx context.Context, tenantID string, filter ListFilter) ([]*model.MessageAssessment, int, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
