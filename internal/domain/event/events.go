package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/antifraud/msgrisk/pkg/events"
)

const (
	// AggregateType names the aggregate that emits these events.
	AggregateType = "MessageAssessment"

	// EventTypeAssessmentCompleted is emitted for every scored message.
	EventTypeAssessmentCompleted = "msgrisk.assessment.completed"

	// EventTypeHighRiskDetected is emitted when a message is assessed as 高风险.
	EventTypeHighRiskDetected = "msgrisk.high_risk.detected"
)

// AssessmentCompleted is published when a message has been scored.
type AssessmentCompleted struct {
	events.BaseEvent
	AssessmentID uuid.UUID `json:"assessment_id"`
	Channel      string    `json:"channel,omitempty"`
	Prediction   string    `json:"prediction"`
	Probability  float64   `json:"probability"`
	RiskLevel    string    `json:"risk_level"`
	Keywords     []string  `json:"keywords"`
	KeywordRisk  int       `json:"keyword_risk"`
	LinkRisk     int       `json:"link_risk"`
	UrgencyIndex int       `json:"urgency_index"`
	AssessedAt   time.Time `json:"assessed_at"`
}

// NewAssessmentCompleted builds an AssessmentCompleted event.
func NewAssessmentCompleted(
	assessmentID uuid.UUID,
	tenantID, channel, prediction string,
	probability float64,
	riskLevel string,
	keywords []string,
	keywordRisk, linkRisk, urgencyIndex int,
	assessedAt time.Time,
) AssessmentCompleted {
	return AssessmentCompleted{
		BaseEvent:    events.NewBaseEvent(EventTypeAssessmentCompleted, assessmentID, AggregateType, tenantID),
		AssessmentID: assessmentID,
		Channel:      channel,
		Prediction:   prediction,
		Probability:  probability,
		RiskLevel:    riskLevel,
		Keywords:     keywords,
		KeywordRisk:  keywordRisk,
		LinkRisk:     linkRisk,
		UrgencyIndex: urgencyIndex,
		AssessedAt:   assessedAt,
	}
}

// HighRiskDetected is published for 高风险 messages so downstream alerting
// can act on the sender.
type HighRiskDetected struct {
	events.BaseEvent
	AssessmentID uuid.UUID `json:"assessment_id"`
	Channel      string    `json:"channel,omitempty"`
	Sender       string    `json:"sender,omitempty"`
	Prediction   string    `json:"prediction"`
	Probability  float64   `json:"probability"`
	Keywords     []string  `json:"keywords"`
	DetectedAt   time.Time `json:"detected_at"`
}

// NewHighRiskDetected builds a HighRiskDetected event.
func NewHighRiskDetected(
	assessmentID uuid.UUID,
	tenantID, channel, sender, prediction string,
	probability float64,
	keywords []string,
	detectedAt time.Time,
) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:    events.NewBaseEvent(EventTypeHighRiskDetected, assessmentID, AggregateType, tenantID),
		AssessmentID: assessmentID,
		Channel:      channel,
		Sender:       sender,
		Prediction:   prediction,
		Probability:  probability,
		Keywords:     keywords,
		DetectedAt:   detectedAt,
	}
}
