package usecase

import (
	"context"
	"fmt"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// Page size bounds for ListAssessments.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListAssessments returns a tenant's assessments, newest first.
type ListAssessments struct {
	repo port.AssessmentRepository
}

// NewListAssessments creates a new ListAssessments use case.
func NewListAssessments(repo port.AssessmentRepository) *ListAssessments {
	return &ListAssessments{repo: repo}
}

// Execute lists assessments, optionally at or above a minimum risk level.
func (uc *ListAssessments) Execute(ctx context.Context, req dto.ListAssessmentsRequest) (dto.ListAssessmentsResponse, error) {
	filter := port.ListFilter{Limit: req.Limit, Offset: max(req.Offset, 0)}
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	filter.Limit = min(filter.Limit, MaxPageSize)

	if req.MinRiskLevel != "" {
		level, err := valueobject.RiskLevelFromString(req.MinRiskLevel)
		if err != nil {
			return dto.ListAssessmentsResponse{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		filter.MinRiskLevel = level
	}

	assessments, total, err := uc.repo.ListByTenant(ctx, req.TenantID, filter)
	if err != nil {
		return dto.ListAssessmentsResponse{}, fmt.Errorf("failed to list assessments: %w", err)
	}
	return dto.FromModels(assessments, total), nil
}
