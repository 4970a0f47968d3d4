package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/pkg/auth"
)

// DefaultTenantID is used when the API runs without authentication.
const DefaultTenantID = "default"

const maxBodyBytes = 64 << 10

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AssessmentRequest is the JSON body of POST /api/v1/assessments.
type AssessmentRequest struct {
	Text    string `json:"text"`
	Channel string `json:"channel"`
	Sender  string `json:"sender"`
}

// ScoreRequest is the JSON body of POST /api/v1/score.
type ScoreRequest struct {
	Text string `json:"text"`
}

// AssessmentHandler serves the message risk REST API.
type AssessmentHandler struct {
	assessMessage   *usecase.AssessMessage
	getAssessment   *usecase.GetAssessment
	listAssessments *usecase.ListAssessments
	scoreMessage    *usecase.ScoreMessage
	logger          *slog.Logger
}

// NewAssessmentHandler creates a new REST handler.
func NewAssessmentHandler(
	assessMessage *usecase.AssessMessage,
	getAssessment *usecase.GetAssessment,
	listAssessments *usecase.ListAssessments,
	scoreMessage *usecase.ScoreMessage,
	logger *slog.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		assessMessage:   assessMessage,
		getAssessment:   getAssessment,
		listAssessments: listAssessments,
		scoreMessage:    scoreMessage,
		logger:          logger,
	}
}

// RegisterRoutes registers the API routes. Writes go through limit.
func (h *AssessmentHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /api/v1/assessments", limit(http.HandlerFunc(h.Assess)))
	mux.Handle("POST /api/v1/score", limit(http.HandlerFunc(h.Score)))
	mux.HandleFunc("GET /api/v1/assessments/{id}", h.Get)
	mux.HandleFunc("GET /api/v1/assessments", h.List)
}

// Assess handles POST /api/v1/assessments.
func (h *AssessmentHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.assessMessage.Execute(r.Context(), dto.AssessMessageRequest{
		TenantID: tenantID(r.Context()),
		Text:     req.Text,
		Channel:  req.Channel,
		Sender:   req.Sender,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Score handles POST /api/v1/score.
func (h *AssessmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.scoreMessage.Execute(r.Context(), dto.ScoreMessageRequest{Text: req.Text})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/assessments/{id}.
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	resp, err := h.getAssessment.Execute(r.Context(), dto.GetAssessmentRequest{
		TenantID:     tenantID(r.Context()),
		AssessmentID: id,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// List handles GET /api/v1/assessments?limit=&offset=&min_risk_level=.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	resp, err := h.listAssessments.Execute(r.Context(), dto.ListAssessmentsRequest{
		TenantID:     tenantID(r.Context()),
		MinRiskLevel: q.Get("min_risk_level"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AssessmentHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, code, msg)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrInvalidText), errors.Is(err, usecase.ErrInvalidFilter):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, port.ErrAssessmentNotFound):
		return http.StatusNotFound, "assessment not found"
	case errors.Is(err, port.ErrInference), errors.Is(err, port.ErrModelNotReady):
		return http.StatusBadGateway, "model inference unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func tenantID(ctx context.Context) string {
	if tenant := auth.TenantFromContext(ctx); tenant != "" {
		return tenant
	}
	return DefaultTenantID
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
