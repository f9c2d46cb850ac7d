package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/lumiere-booking/cmd/mainconfig"
	"github.com/wolfman30/lumiere-booking/internal/api/router"
	"github.com/wolfman30/lumiere-booking/internal/app/bootstrap"
	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	httpmiddleware "github.com/wolfman30/lumiere-booking/internal/http/middleware"
	"github.com/wolfman30/lumiere-booking/internal/observability/metrics"
	"github.com/wolfman30/lumiere-booking/internal/wizard"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting lumiere booking API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	handler, cleanup, err := buildHandler(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		cleanup()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

type appMetrics struct {
	handler   http.Handler
	registry  *prometheus.Registry
	wizard    *metrics.WizardMetrics
	recommend *metrics.RecommendMetrics
}

func setupMetrics() appMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return appMetrics{
		handler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		registry:  registry,
		wizard:    metrics.NewWizardMetrics(registry),
		recommend: metrics.NewRecommendMetrics(registry),
	}
}

// buildHandler wires every dependency behind the HTTP router. cleanup
// releases connections and is safe to call more than once.
func buildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, func(), error) {
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
		closers = nil
	}
	fail := func(err error) (http.Handler, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fail(fmt.Errorf("load timezone %q: %w", cfg.Timezone, err))
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("load aws config: %w", err))
	}

	store, redisClient, err := bootstrap.BuildSessionStore(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	if redisClient != nil {
		closers = append(closers, redisClient.Close)
	}

	llmClient, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeLLM)

	confirmer, err := bootstrap.BuildConfirmer(cfg, awsCfg, logger)
	if err != nil {
		return fail(err)
	}

	m := setupMetrics()
	opts := []wizard.Option{
		wizard.WithConfirmer(confirmer),
		wizard.WithMetrics(m.wizard),
		wizard.WithRecommendMetrics(m.recommend),
		wizard.WithLocation(loc),
	}
	if suggester := bootstrap.BuildSuggester(llmClient, cfg, m.recommend, logger); suggester != nil {
		opts = append(opts, wizard.WithSuggester(suggester))
	}
	service := wizard.NewService(store, logger, opts...)

	handler := router.New(&router.Config{
		Logger:             logger,
		Wizard:             wizard.NewHandler(service, logger),
		MetricsHandler:     m.handler,
		MetricsGatherer:    m.registry,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RecommendLimiter:   httpmiddleware.NewRateLimiter(cfg.RecommendRate, cfg.RecommendBurst),
		HealthCheck:        redisHealthCheck(redisClient),
	})
	return handler, cleanup, nil
}

// redisHealthCheck returns nil when there is nothing to probe.
func redisHealthCheck(client *redis.Client) func(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
