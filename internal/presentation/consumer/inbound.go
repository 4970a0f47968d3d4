package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/pkg/kafka"
)

// DefaultTenantID is used for inbound messages that carry no tenant.
const DefaultTenantID = "default"

// InboundMessage is the JSON payload on the inbound topic.
type InboundMessage struct {
	TenantID string `json:"tenant_id"`
	Text     string `json:"text"`
	Channel  string `json:"channel"`
	Sender   string `json:"sender"`
}

// Assessor runs the assessment use case.
type Assessor interface {
	Execute(ctx context.Context, req dto.AssessMessageRequest) (dto.AssessmentResponse, error)
}

// InboundHandler assesses reported messages consumed from Kafka.
type InboundHandler struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewInboundHandler creates a new InboundHandler.
func NewInboundHandler(assessor Assessor, logger *slog.Logger) *InboundHandler {
	return &InboundHandler{assessor: assessor, logger: logger}
}

// Handle processes one message. Malformed or unscoreable payloads are
// dropped. Transient failures are returned; the consumer retries the same
// message with backoff and commits nothing past it until it succeeds.
func (h *InboundHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var in InboundMessage
	if err := json.Unmarshal(msg.Value, &in); err != nil {
		h.logger.Warn("dropping malformed inbound message", "key", string(msg.Key), "error", err)
		return nil
	}

	if in.TenantID == "" {
		in.TenantID = msg.Headers["tenant_id"]
	}
	if in.TenantID == "" {
		in.TenantID = DefaultTenantID
	}

	resp, err := h.assessor.Execute(ctx, dto.AssessMessageRequest{
		TenantID: in.TenantID,
		Text:     in.Text,
		Channel:  in.Channel,
		Sender:   in.Sender,
	})
	if errors.Is(err, usecase.ErrInvalidText) {
		h.logger.Warn("dropping inbound message", "tenant_id", in.TenantID, "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("assessing inbound message: %w", err)
	}

	h.logger.Debug("inbound message assessed",
		"assessment_id", resp.ID,
		"tenant_id", resp.TenantID,
		"risk_level", resp.Result.RiskLevel,
	)
	return nil
}
