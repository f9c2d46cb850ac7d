package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Timezone:                  "UTC",
		SessionStore:              "memory",
		SessionTTL:                time.Hour,
		LLMProvider:               "none",
		RecommendTimeout:          time.Second,
		RecommendRate:             1,
		RecommendBurst:            5,
		AWSRegion:                 "us-east-1",
		AWSAccessKeyID:            "test",
		AWSSecretAccessKey:        "test",
		ConfirmationEmailProvider: "none",
		CORSAllowedOrigins:        []string{"*"},
	}
}

func TestSetupMetricsExposesMetrics(t *testing.T) {
	m := setupMetrics()
	require.NotNil(t, m.handler)

	m.wizard.ObserveAction("select_service", "ok")
	m.recommend.ObserveOutcome("applied")

	rr := httptest.NewRecorder()
	m.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "lumiere_wizard_actions_total")
	assert.Contains(t, body, "lumiere_recommend_outcomes_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestBuildHandlerServesBookingAPI(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	handler, cleanup, err := buildHandler(context.Background(), testConfig(), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/booking/sessions", nil))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.SessionID)

	// Without a model provider the recommendation is a no-op.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/booking/sessions/"+created.SessionID+"/recommend", strings.NewReader(`{"query":"my back hurts"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"applied":false`)
}

func TestBuildHandlerRedisHealth(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.SessionStore = "redis"
	cfg.RedisAddr = mr.Addr()

	handler, cleanup, err := buildHandler(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	mr.Close()
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBuildHandlerRejectsBadConfig(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg := testConfig()
	cfg.Timezone = "Mars/Olympus_Mons"
	_, _, err := buildHandler(context.Background(), cfg, logging.Discard())
	assert.ErrorContains(t, err, "timezone")

	cfg = testConfig()
	cfg.LLMProvider = "openai"
	_, _, err = buildHandler(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}
