package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/antifraud/msgrisk/internal/domain/event"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	"github.com/antifraud/msgrisk/pkg/events"
)

// MessageRiskResult is the combined output of one scoring call.
type MessageRiskResult struct {
	Classification valueobject.ClassificationResult
	RiskLevel      valueobject.RiskLevel
	Keywords       []string
	Features       valueobject.RiskFeatureSet
}

// Prediction returns the top category.
func (r MessageRiskResult) Prediction() valueobject.FraudCategory {
	return r.Classification.Top().Category
}

// Probability returns the top category's probability.
func (r MessageRiskResult) Probability() float64 {
	return r.Classification.Top().Probability
}

// MessageAssessment is the aggregate root for a scored message.
type MessageAssessment struct {
	assessedAt time.Time
	createdAt  time.Time
	updatedAt  time.Time
	result     MessageRiskResult
	text       string
	textHash   string
	channel    string
	sender     string
	tenantID   string
	events.EventCollector
	version int
	id      uuid.UUID
}

// NewMessageAssessment creates an unscored assessment; call Assess to record
// the scorer's result.
func NewMessageAssessment(tenantID, text, channel, sender string) (*MessageAssessment, error) {
	if text == "" {
		return nil, errors.New("text is required")
	}

	now := time.Now().UTC()
	return &MessageAssessment{
		id:        uuid.New(),
		tenantID:  tenantID,
		text:      text,
		textHash:  HashText(text),
		channel:   channel,
		sender:    sender,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Assess records the scoring result and emits the completion events.
func (a *MessageAssessment) Assess(result MessageRiskResult) error {
	if result.Classification.IsZero() {
		return errors.New("classification result is empty")
	}
	if result.RiskLevel.IsZero() {
		return errors.New("risk level is required")
	}
	if !a.assessedAt.IsZero() {
		return fmt.Errorf("assessment %s already scored", a.id)
	}

	a.result = result
	a.assessedAt = time.Now().UTC()
	a.updatedAt = a.assessedAt
	a.version++

	a.Record(event.NewAssessmentCompleted(
		a.id, a.tenantID, a.channel,
		result.Prediction().String(), result.Probability(), result.RiskLevel.String(),
		result.Keywords,
		result.Features.KeywordRisk, result.Features.LinkRisk, result.Features.UrgencyIndex,
		a.assessedAt,
	))

	if result.RiskLevel.Equal(valueobject.RiskLevelHigh) {
		a.Record(event.NewHighRiskDetected(
			a.id, a.tenantID, a.channel, a.sender,
			result.Prediction().String(), result.Probability(),
			result.Keywords, a.assessedAt,
		))
	}
	return nil
}

// Reconstruct rebuilds a MessageAssessment from persisted data (no validation, no events).
func Reconstruct(
	id uuid.UUID,
	tenantID, text, textHash, channel, sender string,
	result MessageRiskResult,
	assessedAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *MessageAssessment {
	return &MessageAssessment{
		id:         id,
		tenantID:   tenantID,
		text:       text,
		textHash:   textHash,
		channel:    channel,
		sender:     sender,
		result:     result,
		assessedAt: assessedAt,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// HashText returns the hex SHA-256 of text, used as the cache key and for
// duplicate detection.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (a *MessageAssessment) ID() uuid.UUID             { return a.id }
func (a *MessageAssessment) TenantID() string          { return a.tenantID }
func (a *MessageAssessment) Text() string              { return a.text }
func (a *MessageAssessment) TextHash() string          { return a.textHash }
func (a *MessageAssessment) Channel() string           { return a.channel }
func (a *MessageAssessment) Sender() string            { return a.sender }
func (a *MessageAssessment) Result() MessageRiskResult { return a.result }
func (a *MessageAssessment) AssessedAt() time.Time     { return a.assessedAt }
func (a *MessageAssessment) Version() int              { return a.version }
func (a *MessageAssessment) CreatedAt() time.Time      { return a.createdAt }
func (a *MessageAssessment) UpdatedAt() time.Time      { return a.updatedAt }

// IsScored reports whether Assess has run.
func (a *MessageAssessment) IsScored() bool { return !a.assessedAt.IsZero() }
