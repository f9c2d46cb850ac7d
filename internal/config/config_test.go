package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "SESSION_STORE", "SESSION_TTL", "LLM_PROVIDER", "RECOMMEND_TIMEOUT", "RECOMMEND_RATE", "RECOMMEND_BURST", "CORS_ALLOWED_ORIGINS", "CONFIRMATION_EMAIL_PROVIDER", "CONFIRMATION_WORKERS", "CONFIRMATION_MAX_DELIVERIES"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.UseRedis() {
		t.Fatalf("expected memory session store by default")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected gemini provider by default, got %s", cfg.LLMProvider)
	}
	if cfg.RecommendTimeout != 10*time.Second {
		t.Fatalf("expected default recommend timeout, got %s", cfg.RecommendTimeout)
	}
	if cfg.RecommendRate != 1 || cfg.RecommendBurst != 5 {
		t.Fatalf("expected default recommend rate limit 1/5, got %v/%d", cfg.RecommendRate, cfg.RecommendBurst)
	}
	if cfg.ConfirmationEmailProvider != "none" {
		t.Fatalf("expected email hand-off disabled by default, got %s", cfg.ConfirmationEmailProvider)
	}
	if cfg.ConfirmationWorkers != 2 || cfg.ConfirmationMaxDeliveries != 5 {
		t.Fatalf("expected confirmation worker defaults 2/5, got %d/%d", cfg.ConfirmationWorkers, cfg.ConfirmationMaxDeliveries)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard CORS default, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SESSION_STORE", " Redis ")
	t.Setenv("SESSION_TTL", "45m")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("LLM_PROVIDER", "BEDROCK")
	t.Setenv("LLM_FALLBACK_PROVIDER", "gemini")
	t.Setenv("RECOMMEND_TIMEOUT", "not-a-duration")
	t.Setenv("RECOMMEND_RATE", "0.5")
	t.Setenv("RECOMMEND_BURST", "x")
	t.Setenv("CONFIRMATION_QUEUE_URL", "https://sqs.us-east-1.amazonaws.com/1/bookings")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !cfg.UseRedis() {
		t.Fatalf("expected redis session store, got %q", cfg.SessionStore)
	}
	if cfg.SessionTTL != 45*time.Minute {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if cfg.LLMProvider != "bedrock" || cfg.LLMFallbackProvider != "gemini" {
		t.Fatalf("expected bedrock with gemini fallback, got %s/%s", cfg.LLMProvider, cfg.LLMFallbackProvider)
	}
	if cfg.RecommendTimeout != 10*time.Second {
		t.Fatalf("expected invalid timeout to fall back to default, got %s", cfg.RecommendTimeout)
	}
	if cfg.RecommendRate != 0.5 || cfg.RecommendBurst != 5 {
		t.Fatalf("expected rate override with default burst, got %v/%d", cfg.RecommendRate, cfg.RecommendBurst)
	}
	if cfg.ConfirmationQueueURL == "" {
		t.Fatalf("expected confirmation queue url override")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}
