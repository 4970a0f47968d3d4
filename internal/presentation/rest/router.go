package rest

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/antifraud/msgrisk/pkg/auth"
)

// RouterOptions assembles the HTTP surface.
type RouterOptions struct {
	Assessments *AssessmentHandler
	Health      *HealthHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// JWT protects /api/ routes when set.
	JWT     *auth.JWTService
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// NewRouter builds the HTTP handler. Health and metrics endpoints stay
// unauthenticated.
func NewRouter(opts RouterOptions) http.Handler {
	api := http.NewServeMux()
	opts.Assessments.RegisterRoutes(api, RateLimitMiddleware(opts.Limiter))

	var apiHandler http.Handler = api
	if opts.JWT != nil {
		apiHandler = auth.HTTPMiddleware(opts.JWT, api)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	opts.Health.RegisterRoutes(mux)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return LoggingMiddleware(opts.Logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store")
		}
		mux.ServeHTTP(w, r)
	}))
}
