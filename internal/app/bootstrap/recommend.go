package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/lumiere-booking/internal/config"
	"github.com/wolfman30/lumiere-booking/internal/observability/metrics"
	"github.com/wolfman30/lumiere-booking/internal/recommend"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// BuildLLMClient wires the primary model provider and, when configured, a
// fallback behind it. A nil client means recommendations are disabled. The
// returned close func releases provider connections and is never nil.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (recommend.LLMClient, func() error, error) {
	noop := func() error { return nil }
	if cfg == nil {
		return nil, noop, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}

	var chain []recommend.Provider
	for _, name := range []string{cfg.LLMProvider, cfg.LLMFallbackProvider} {
		if name == "" || name == "none" || containsProvider(chain, name) {
			continue
		}
		client, closer, err := buildProvider(ctx, name, cfg, awsCfg, logger)
		if err != nil {
			_ = closeAll()
			return nil, noop, err
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		if client != nil {
			chain = append(chain, recommend.Provider{Name: name, Client: client})
		}
	}

	switch len(chain) {
	case 0:
		logger.Warn("no model provider available; recommendations disabled")
		return nil, closeAll, nil
	case 1:
		logger.Info("recommendations enabled", "provider", chain[0].Name)
		return chain[0].Client, closeAll, nil
	default:
		fb := recommend.NewFallbackLLMClient(logger, chain...)
		logger.Info("recommendations enabled", "providers", fb.Providers())
		return fb, closeAll, nil
	}
}

func containsProvider(chain []recommend.Provider, name string) bool {
	for _, p := range chain {
		if p.Name == name {
			return true
		}
	}
	return false
}

// buildProvider returns nil without error when the provider is off or lacks
// credentials.
func buildProvider(ctx context.Context, name string, cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (recommend.LLMClient, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return nil, nil, nil
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			logger.Warn("gemini selected but GEMINI_API_KEY is empty")
			return nil, nil, nil
		}
		client, err := recommend.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		return client, client.Close, nil
	case "bedrock":
		if strings.TrimSpace(cfg.BedrockModelID) == "" {
			logger.Warn("bedrock selected but BEDROCK_MODEL_ID is empty")
			return nil, nil, nil
		}
		return recommend.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID), nil, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown model provider %q", name)
	}
}

// BuildSuggester wraps client in a recommendation gateway. It returns an
// untyped nil when client is nil so callers can pass it straight to the
// wizard.
func BuildSuggester(client recommend.LLMClient, cfg *appconfig.Config, m *metrics.RecommendMetrics, logger *logging.Logger) recommend.Suggester {
	if client == nil {
		return nil
	}
	var opts []recommend.Option
	if cfg != nil {
		opts = append(opts, recommend.WithTimeout(cfg.RecommendTimeout))
	}
	if m != nil {
		opts = append(opts, recommend.WithMetrics(m))
	}
	return recommend.NewGateway(client, logger, opts...)
}
