package usecase

import (
	"context"
	"fmt"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/domain/port"
)

// GetAssessment is the use case for retrieving an existing assessment.
type GetAssessment struct {
	repo port.AssessmentRepository
}

// NewGetAssessment creates a new GetAssessment use case.
func NewGetAssessment(repo port.AssessmentRepository) *GetAssessment {
	return &GetAssessment{repo: repo}
}

// Execute retrieves a message assessment by ID within the caller's tenant.
func (uc *GetAssessment) Execute(ctx context.Context, req dto.GetAssessmentRequest) (dto.AssessmentResponse, error) {
	assessment, err := uc.repo.FindByID(ctx, req.TenantID, req.AssessmentID)
	if err != nil {
		return dto.AssessmentResponse{}, fmt.Errorf("failed to find assessment: %w", err)
	}
	if assessment == nil {
		return dto.AssessmentResponse{}, fmt.Errorf("%w: %s", port.ErrAssessmentNotFound, req.AssessmentID)
	}

	return dto.FromModel(assessment), nil
}
