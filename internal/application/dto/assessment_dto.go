package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/service"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
)

// Labels shown next to the semantic score.
const (
	SemanticLabelSafe    = "安全置信度"
	SemanticLabelAnomaly = "语义异常度"
)

// AssessMessageRequest is the input DTO for the AssessMessage use case.
type AssessMessageRequest struct {
	TenantID string `json:"tenant_id"`
	Text     string `json:"text"`
	Channel  string `json:"channel"`
	Sender   string `json:"sender"`
}

// ScoreMessageRequest is the input DTO for stateless scoring.
type ScoreMessageRequest struct {
	Text string `json:"text"`
}

// PredictionDTO is one (category, probability) pair.
type PredictionDTO struct {
	Category    string  `json:"category"`
	Probability float64 `json:"probability"`
}

// RiskResultDTO mirrors model.MessageRiskResult on the wire.
type RiskResultDTO struct {
	Prediction      string          `json:"prediction"`
	RiskLevel       string          `json:"risk_level"`
	Keywords        []string        `json:"keywords"`
	FullPredictions []PredictionDTO `json:"full_predictions"`
	Probability     float64         `json:"probability"`
	SemanticAnomaly float64         `json:"semantic_anomaly"`
	KeywordRisk     int             `json:"keyword_risk"`
	LinkRisk        int             `json:"link_risk"`
	UrgencyIndex    int             `json:"urgency_index"`
}

// ScoreResponse is the stateless scoring output with its display fields.
type ScoreResponse struct {
	SemanticLabel   string   `json:"semantic_label"`
	DisplayKeywords []string `json:"display_keywords"`
	RiskResultDTO
}

// AssessmentResponse is the output DTO returned after an assessment.
type AssessmentResponse struct {
	AssessedAt time.Time     `json:"assessed_at"`
	CreatedAt  time.Time     `json:"created_at"`
	TenantID   string        `json:"tenant_id"`
	TextHash   string        `json:"text_hash"`
	Channel    string        `json:"channel,omitempty"`
	Sender     string        `json:"sender,omitempty"`
	Result     RiskResultDTO `json:"result"`
	Version    int           `json:"version"`
	ID         uuid.UUID     `json:"id"`
}

// GetAssessmentRequest is the input DTO for retrieving an assessment.
type GetAssessmentRequest struct {
	TenantID     string    `json:"tenant_id"`
	AssessmentID uuid.UUID `json:"assessment_id"`
}

// ListAssessmentsRequest is the input DTO for listing a tenant's assessments.
type ListAssessmentsRequest struct {
	TenantID     string `json:"tenant_id"`
	MinRiskLevel string `json:"min_risk_level,omitempty"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

// ListAssessmentsResponse is a page of assessments plus the tenant total.
type ListAssessmentsResponse struct {
	Assessments []AssessmentResponse `json:"assessments"`
	Total       int                  `json:"total"`
}

// FromResult maps a scoring result to its wire form.
func FromResult(r model.MessageRiskResult) RiskResultDTO {
	preds := r.Classification.Predictions()
	full := make([]PredictionDTO, len(preds))
	for i, p := range preds {
		full[i] = PredictionDTO{Category: p.Category.String(), Probability: p.Probability}
	}

	keywords := make([]string, len(r.Keywords))
	copy(keywords, r.Keywords)

	return RiskResultDTO{
		Prediction:      r.Prediction().String(),
		Probability:     r.Probability(),
		RiskLevel:       r.RiskLevel.String(),
		Keywords:        keywords,
		KeywordRisk:     r.Features.KeywordRisk,
		LinkRisk:        r.Features.LinkRisk,
		UrgencyIndex:    r.Features.UrgencyIndex,
		SemanticAnomaly: r.Features.SemanticAnomaly,
		FullPredictions: full,
	}
}

// ScoreFromResult adds the display label and keyword list used by the
// scoring endpoint. Messages judged safe show no keywords.
func ScoreFromResult(r model.MessageRiskResult) ScoreResponse {
	resp := ScoreResponse{RiskResultDTO: FromResult(r), SemanticLabel: SemanticLabelAnomaly}
	resp.DisplayKeywords = resp.Keywords
	if r.RiskLevel.Equal(valueobject.RiskLevelNone) {
		resp.SemanticLabel = SemanticLabelSafe
		resp.DisplayKeywords = []string{service.NoKeywords}
	}
	return resp
}

// FromModel maps a domain model to the response DTO.
func FromModel(a *model.MessageAssessment) AssessmentResponse {
	return AssessmentResponse{
		ID:         a.ID(),
		TenantID:   a.TenantID(),
		TextHash:   a.TextHash(),
		Channel:    a.Channel(),
		Sender:     a.Sender(),
		Result:     FromResult(a.Result()),
		Version:    a.Version(),
		AssessedAt: a.AssessedAt(),
		CreatedAt:  a.CreatedAt(),
	}
}

// FromModels maps a page of assessments.
func FromModels(assessments []*model.MessageAssessment, total int) ListAssessmentsResponse {
	out := make([]AssessmentResponse, 0, len(assessments))
	for _, a := range assessments {
		out = append(out, FromModel(a))
	}
	return ListAssessmentsResponse{Assessments: out, Total: total}
}
