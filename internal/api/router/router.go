package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	httpmiddleware "github.com/wolfman30/lumiere-booking/internal/http/middleware"
	"github.com/wolfman30/lumiere-booking/internal/observability/metrics"
	"github.com/wolfman30/lumiere-booking/internal/wizard"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Wizard             *wizard.Handler
	MetricsHandler     http.Handler
	MetricsGatherer    prometheus.Gatherer
	CORSAllowedOrigins []string

	// RecommendLimiter throttles the recommendation endpoint per client (optional).
	RecommendLimiter *httpmiddleware.RateLimiter

	// HealthCheck probes dependencies such as Redis (optional).
	HealthCheck func(ctx context.Context) error
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.HealthCheck))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	r.Get("/stats/recommend", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.SnapshotRecommend(cfg.MetricsGatherer))
	})

	if cfg.Wizard != nil {
		var recommendMW []func(http.Handler) http.Handler
		if cfg.RecommendLimiter != nil {
			recommendMW = append(recommendMW, httpmiddleware.RateLimit(cfg.RecommendLimiter))
		}
		r.Mount("/api/booking", cfg.Wizard.Routes(recommendMW...))
	}

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
