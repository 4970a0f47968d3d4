package grpc

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/pkg/auth"
)

// DefaultTenantID is used when the server runs without authentication.
const DefaultTenantID = "default"

// requireRole checks that the caller has at least one of the given roles.
// Unauthenticated deployments carry no claims and are let through.
func requireRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return nil
		}
	}
	return status.Error(codes.PermissionDenied, "insufficient permissions")
}

func tenantIDFromContext(ctx context.Context) string {
	if tenant := auth.TenantFromContext(ctx); tenant != "" {
		return tenant
	}
	return DefaultTenantID
}

// toStatus maps use case errors to gRPC status codes without leaking internals.
func toStatus(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidText), errors.Is(err, usecase.ErrInvalidFilter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrAssessmentNotFound):
		return status.Error(codes.NotFound, "assessment not found")
	case errors.Is(err, port.ErrInference), errors.Is(err, port.ErrModelNotReady):
		return status.Error(codes.Unavailable, "model inference unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// Compile-time assertion that MessageRiskHandler implements MessageRiskServiceServer.
var _ MessageRiskServiceServer = (*MessageRiskHandler)(nil)

// MessageRiskHandler implements the gRPC MessageRiskServiceServer interface.
type MessageRiskHandler struct {
	UnimplementedMessageRiskServiceServer
	assessMessage   *usecase.AssessMessage
	getAssessment   *usecase.GetAssessment
	listAssessments *usecase.ListAssessments
	scoreMessage    *usecase.ScoreMessage
	logger          *slog.Logger
}

// NewMessageRiskHandler creates a new gRPC handler.
func NewMessageRiskHandler(
	assessMessage *usecase.AssessMessage,
	getAssessment *usecase.GetAssessment,
	listAssessments *usecase.ListAssessments,
	scoreMessage *usecase.ScoreMessage,
	logger *slog.Logger,
) *MessageRiskHandler {
	return &MessageRiskHandler{
		assessMessage:   assessMessage,
		getAssessment:   getAssessment,
		listAssessments: listAssessments,
		scoreMessage:    scoreMessage,
		logger:          logger,
	}
}

// Wire message types.

// AssessMessageRequest represents the AssessMessageRequest message.
type AssessMessageRequest struct {
	Text    string `json:"text"`
	Channel string `json:"channel"`
	Sender  string `json:"sender"`
}

// AssessMessageResponse represents the AssessMessageResponse message.
type AssessMessageResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

// GetAssessmentRequest represents the GetAssessmentRequest message.
type GetAssessmentRequest struct {
	ID string `json:"id"`
}

// GetAssessmentResponse represents the GetAssessmentResponse message.
type GetAssessmentResponse struct {
	Assessment *dto.AssessmentResponse `json:"assessment"`
}

// ListAssessmentsRequest represents the ListAssessmentsRequest message.
type ListAssessmentsRequest struct {
	MinRiskLevel string `json:"min_risk_level"`
	Limit        int32  `json:"limit"`
	Offset       int32  `json:"offset"`
}

// ListAssessmentsResponse represents the ListAssessmentsResponse message.
type ListAssessmentsResponse struct {
	Assessments []dto.AssessmentResponse `json:"assessments"`
	Total       int32                    `json:"total"`
}

// ScoreMessageRequest represents the ScoreMessageRequest message.
type ScoreMessageRequest struct {
	Text string `json:"text"`
}

// ScoreMessageResponse represents the ScoreMessageResponse message.
type ScoreMessageResponse struct {
	Result *dto.ScoreResponse `json:"result"`
}

// AssessMessage scores and stores a message.
func (h *MessageRiskHandler) AssessMessage(ctx context.Context, req *AssessMessageRequest) (*AssessMessageResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleAPIClient); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	tenantID := tenantIDFromContext(ctx)
	result, err := h.assessMessage.Execute(ctx, dto.AssessMessageRequest{
		TenantID: tenantID,
		Text:     req.Text,
		Channel:  req.Channel,
		Sender:   req.Sender,
	})
	if err != nil {
		h.logger.Error("failed to assess message",
			slog.String("tenant_id", tenantID),
			slog.String("error", err.Error()),
		)
		return nil, toStatus(err)
	}

	return &AssessMessageResponse{Assessment: &result}, nil
}

// GetAssessment returns one assessment of the caller's tenant.
func (h *MessageRiskHandler) GetAssessment(ctx context.Context, req *GetAssessmentRequest) (*GetAssessmentResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleReporter, auth.RoleAPIClient); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	assessmentID, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid id: %v", err)
	}

	result, err := h.getAssessment.Execute(ctx, dto.GetAssessmentRequest{
		TenantID:     tenantIDFromContext(ctx),
		AssessmentID: assessmentID,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &GetAssessmentResponse{Assessment: &result}, nil
}

// ListAssessments pages through the caller's assessments, newest first.
func (h *MessageRiskHandler) ListAssessments(ctx context.Context, req *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleReporter); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.listAssessments.Execute(ctx, dto.ListAssessmentsRequest{
		TenantID:     tenantIDFromContext(ctx),
		MinRiskLevel: req.MinRiskLevel,
		Limit:        int(req.Limit),
		Offset:       int(req.Offset),
	})
	if err != nil {
		h.logger.Error("failed to list assessments", slog.String("error", err.Error()))
		return nil, toStatus(err)
	}

	return &ListAssessmentsResponse{
		Assessments: result.Assessments,
		Total:       int32(result.Total),
	}, nil
}

// ScoreMessage scores text without storing it.
func (h *MessageRiskHandler) ScoreMessage(ctx context.Context, req *ScoreMessageRequest) (*ScoreMessageResponse, error) {
	if err := requireRole(ctx, auth.RoleAdmin, auth.RoleAnalyst, auth.RoleAPIClient); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.scoreMessage.Execute(ctx, dto.ScoreMessageRequest{Text: req.Text})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ScoreMessageResponse{Result: &result}, nil
}
