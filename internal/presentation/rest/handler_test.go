package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/antifraud/msgrisk/internal/application/dto"
	"github.com/antifraud/msgrisk/internal/application/usecase"
	"github.com/antifraud/msgrisk/internal/domain/model"
	"github.com/antifraud/msgrisk/internal/domain/port"
	"github.com/antifraud/msgrisk/internal/domain/valueobject"
	"github.com/antifraud/msgrisk/pkg/auth"
	"github.com/antifraud/msgrisk/pkg/events"
	"github.com/antifraud/msgrisk/pkg/observability"
)

// --- Mock implementations ---

type memoryRepo struct {
	byID map[uuid.UUID]*model.MessageAssessment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[uuid.UUID]*model.MessageAssessment)}
}

func (m *memoryRepo) Save(_ context.Context, a *model.MessageAssessment) error {
	m.byID[a.ID()] = a
	return nil
}

func (m *memoryRepo) FindByID(_ context.Context, tenantID string, id uuid.UUID) (*model.MessageAssessment, error) {
	if a, ok := m.byID[id]; ok && a.TenantID() == tenantID {
		return a, nil
	}
	return nil, port.ErrAssessmentNotFound
}

func (m *memoryRepo) ListByTenant(_ context.Context, tenantID string, _ port.ListFilter) ([]*model.MessageAssessment, int, error) {
	var out []*model.MessageAssessment
	for _, a := range m.byID {
		if a.TenantID() == tenantID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ...events.DomainEvent) error { return nil }

type stubScorer struct {
	category valueobject.FraudCategory
	err      error
}

func (s stubScorer) Score(_ context.Context, _ string) (model.MessageRiskResult, error) {
	if s.err != nil {
		return model.MessageRiskResult{}, s.err
	}
	logits := make([]float64, valueobject.NumFraudCategories)
	logits[s.category.Index()] = 4
	cls, err := valueobject.NewClassificationResult(logits)
	if err != nil {
		return model.MessageRiskResult{}, err
	}
	top := cls.Top()
	return model.MessageRiskResult{
		Classification: cls,
		RiskLevel:      valueobject.RiskLevelFromPrediction(top.Category, top.Probability),
		Keywords:       []string{"验证码"},
		Features: valueobject.RiskFeatureSet{
			KeywordRisk:     48,
			LinkRisk:        30,
			UrgencyIndex:    57,
			SemanticAnomaly: top.Probability * 100,
		},
	}, nil
}

// --- Helpers ---

const sampleText = "我是你领导，明天来我办公室，先把验证码发给我"

type routerConfig struct {
	scorer  stubScorer
	jwt     *auth.JWTService
	limiter *rate.Limiter
	checks  map[string]ReadinessCheck
}

func newTestRouter(cfg routerConfig) http.Handler {
	if cfg.scorer.category.IsZero() {
		cfg.scorer.category = valueobject.CategoryImpersonatingAcquaintance
	}
	logger := observability.NopLogger()
	repo := newMemoryRepo()
	handler := NewAssessmentHandler(
		usecase.NewAssessMessage(repo, nopPublisher{}, cfg.scorer, nil, logger),
		usecase.NewGetAssessment(repo),
		usecase.NewListAssessments(repo),
		usecase.NewScoreMessage(cfg.scorer, nil),
		logger,
	)
	return NewRouter(RouterOptions{
		Assessments: handler,
		Health:      NewHealthHandler("msgrisk", cfg.checks, logger),
		Metrics:     promhttp.Handler(),
		JWT:         cfg.jwt,
		Limiter:     cfg.limiter,
		Logger:      logger,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// --- Tests ---

func TestAssessAndGet(t *testing.T) {
	router := newTestRouter(routerConfig{})

	rec := do(t, router, http.MethodPost, "/api/v1/assessments", jsonBody(t, AssessmentRequest{Text: sampleText, Channel: "im"}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created dto.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, DefaultTenantID, created.TenantID)
	assert.Equal(t, "冒充领导、熟人类", created.Result.Prediction)
	assert.Equal(t, "高风险", created.Result.RiskLevel)
	assert.Len(t, created.Result.FullPredictions, valueobject.NumFraudCategories)

	rec = do(t, router, http.MethodGet, "/api/v1/assessments/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched dto.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created.ID, fetched.ID)

	rec = do(t, router, http.MethodGet, "/api/v1/assessments?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page dto.ListAssessmentsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		scorer stubScorer
		method string
		path   string
		body   string
		want   int
	}{
		{name: "short text", method: http.MethodPost, path: "/api/v1/assessments", body: `{"text":"你好"}`, want: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/api/v1/score", body: `{"text":`, want: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/api/v1/score", body: `{"message":"x"}`, want: http.StatusBadRequest},
		{name: "bad id", method: http.MethodGet, path: "/api/v1/assessments/nope", want: http.StatusBadRequest},
		{name: "missing assessment", method: http.MethodGet, path: "/api/v1/assessments/" + uuid.NewString(), want: http.StatusNotFound},
		{name: "bad limit", method: http.MethodGet, path: "/api/v1/assessments?limit=ten", want: http.StatusBadRequest},
		{name: "bad risk level", method: http.MethodGet, path: "/api/v1/assessments?min_risk_level=x", want: http.StatusBadRequest},
		{
			name:   "inference failure",
			scorer: stubScorer{err: fmt.Errorf("failed to classify: %w", port.ErrInference)},
			method: http.MethodPost,
			path:   "/api/v1/score",
			body:   jsonBody(t, ScoreRequest{Text: sampleText}),
			want:   http.StatusBadGateway,
		},
		{
			name:   "unexpected failure",
			scorer: stubScorer{err: errors.New("boom")},
			method: http.MethodPost,
			path:   "/api/v1/assessments",
			body:   jsonBody(t, AssessmentRequest{Text: sampleText}),
			want:   http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(routerConfig{scorer: tt.scorer}), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.want, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.NotContains(t, body.Error, "boom")
		})
	}
}

func TestScore_DisplayFields(t *testing.T) {
	t.Run("risky message", func(t *testing.T) {
		rec := do(t, newTestRouter(routerConfig{}), http.MethodPost, "/api/v1/score", jsonBody(t, ScoreRequest{Text: sampleText}))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.ScoreResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, dto.SemanticLabelAnomaly, resp.SemanticLabel)
		assert.Equal(t, []string{"验证码"}, resp.DisplayKeywords)
	})

	t.Run("safe message", func(t *testing.T) {
		router := newTestRouter(routerConfig{scorer: stubScorer{category: valueobject.CategoryNoRisk}})
		rec := do(t, router, http.MethodPost, "/api/v1/score", jsonBody(t, ScoreRequest{Text: sampleText}))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp dto.ScoreResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "无风险", resp.RiskLevel)
		assert.Equal(t, dto.SemanticLabelSafe, resp.SemanticLabel)
		assert.Equal(t, []string{"无"}, resp.DisplayKeywords)
	})
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(routerConfig{limiter: rate.NewLimiter(rate.Every(time.Hour), 1)})
	body := jsonBody(t, ScoreRequest{Text: sampleText})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/api/v1/score", body).Code)

	rec := do(t, router, http.MethodPost, "/api/v1/score", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// Reads are not limited.
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/assessments/"+uuid.NewString(), "").Code)
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 10))
	l := NewLimiter(5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestAuthentication(t *testing.T) {
	jwtService, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test", Issuer: "msgrisk", Expiration: time.Minute})
	require.NoError(t, err)
	router := newTestRouter(routerConfig{jwt: jwtService})
	body := jsonBody(t, AssessmentRequest{Text: sampleText})

	assert.Equal(t, http.StatusUnauthorized, do(t, router, http.MethodPost, "/api/v1/assessments", body).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/healthz", "").Code)

	token, err := jwtService.GenerateToken("gateway", "tenant-x", []string{auth.RoleAPIClient})
	require.NoError(t, err)
	rec := do(t, router, http.MethodPost, "/api/v1/assessments", body, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created dto.AssessmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "tenant-x", created.TenantID)
}

func TestHealthEndpoints(t *testing.T) {
	t.Run("ready when all checks pass", func(t *testing.T) {
		router := newTestRouter(routerConfig{checks: map[string]ReadinessCheck{
			"database":  func(context.Context) error { return nil },
			"inference": func(context.Context) error { return nil },
		}})

		rec := do(t, router, http.MethodGet, "/readyz", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, map[string]string{"database": "ok", "inference": "ok"}, resp.Checks)
	})

	t.Run("not ready when a dependency fails", func(t *testing.T) {
		router := newTestRouter(routerConfig{checks: map[string]ReadinessCheck{
			"database":  func(context.Context) error { return nil },
			"inference": func(context.Context) error { return port.ErrModelNotReady },
		}})

		rec := do(t, router, http.MethodGet, "/readyz", "")

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "unavailable", resp.Checks["inference"])
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		rec := do(t, newTestRouter(routerConfig{}), http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
