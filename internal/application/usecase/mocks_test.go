package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	"github.com/antifraud/msgrisk/pkg/events"
)

// --- Mock implementations ---

type mockAssessmentRepository struct {
	savedAssessment *model.MessageAssessment
	saveFunc        func(ctx context.Context, assessment *model.MessageAssessment) error
	findByIDFunc    func(ctx context.Context, tenantID string, id uuid.UUID) (*model.MessageAssessment, error)
	listFunc        func(ctx context.Context, tenantID string, filter port.ListFilter) ([]*model.MessageAssessment, int, error)
}

func (m *mockAssessmentRepository) Save(ctx context.Context, assessment *model.MessageAssessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, assessment)
	}
	m.savedAssessment = assessment
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, tenantID string, id uuid.UUID) (*model.MessageAssessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return nil, port.ErrAssessmentNotFound
}

func (m *mockAssessmentRepository) ListByTenant(ctx context.Context, tenantID string, filter port.ListFilter) ([]*model.MessageAssessment, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, tenantID, filter)
	}
	return nil, 0, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
	publishedEvents []events.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockScorer struct {
	err    error
	result model.MessageRiskResult
	calls  int
}

func (m *mockScorer) Score(_ context.Context, _ string) (model.MessageRiskResult, error) {
	m.calls++
	if m.err != nil {
		return model.MessageRiskResult{}, m.err
	}
	return m.result, nil
}

type recordingObserver struct {
	mu       sync.Mutex
	observed []string
}

func (o *recordingObserver) ObserveAssessment(category, riskLevel string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observed = append(o.observed, fmt.Sprintf("%s/%s", category, riskLevel))
}

// spaceSegmenter splits on whitespace.
type spaceSegmenter struct{}

func (spaceSegmenter) Cut(text string) []string { return strings.Fields(text) }

func riskResult(category valueobject.FraudCategory, logit float64, level valueobject.RiskLevel, keywords ...string) model.MessageRiskResult {
	logits := make([]float64, valueobject.NumFraudCategories)
	logits[category.Index()] = logit
	cls, err := valueobject.NewClassificationResult(logits)
	if err != nil {
		panic(err)
	}
	if len(keywords) == 0 {
		keywords = []string{"无"}
	}
	return model.MessageRiskResult{
		Classification: cls,
		RiskLevel:      level,
		Keywords:       keywords,
		Features: valueobject.RiskFeatureSet{
			KeywordRisk:     valueobject.BoundedScore(len(keywords), 20, 28),
			LinkRisk:        30,
			UrgencyIndex:    32,
			SemanticAnomaly: cls.Top().Probability * 100,
		},
	}
}

func highRiskResult() model.MessageRiskResult {
	return riskResult(valueobject.CategoryFakeInvestment, 8, valueobject.RiskLevelHigh, "点击", "领取", "奖品")
}

func safeResult() model.MessageRiskResult {
	return riskResult(valueobject.CategoryNoRisk, 8, valueobject.RiskLevelNone)
}
