package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/lumiere-booking/internal/catalog"
	"github.com/wolfman30/lumiere-booking/internal/observability/metrics"
	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

const defaultTimeout = 10 * time.Second

var errMalformed = errors.New("recommend: malformed model response")

// Recommendation is a catalog service suggested for a free-text need.
type Recommendation struct {
	ServiceID string `json:"recommended_service_id"`
	Reasoning string `json:"reasoning,omitempty"`
}

// Suggester maps a free-text need to a catalog service. The second result is
// false whenever there is no usable suggestion; callers treat that as a
// normal outcome.
type Suggester interface {
	Suggest(ctx context.Context, query string) (Recommendation, bool)
}

// Gateway asks an external text model to pick a service. Every failure is
// absorbed and reported as "no recommendation".
type Gateway struct {
	client   LLMClient
	model    string
	timeout  time.Duration
	services []catalog.Service
	logger   *logging.Logger
	metrics  *metrics.RecommendMetrics
	tracer   trace.Tracer
}

type Option func(*Gateway)

// WithModel overrides the provider's default model id.
func WithModel(model string) Option {
	return func(g *Gateway) { g.model = model }
}

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithMetrics records outcomes and latency.
func WithMetrics(m *metrics.RecommendMetrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithServices replaces the catalog offered to the model.
func WithServices(services []catalog.Service) Option {
	return func(g *Gateway) { g.services = services }
}

// NewGateway builds a gateway over client. A nil client yields a gateway
// that never recommends.
func NewGateway(client LLMClient, logger *logging.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = logging.Default()
	}
	g := &Gateway{
		client:   client,
		timeout:  defaultTimeout,
		services: catalog.Services(),
		logger:   logger,
		tracer:   otel.Tracer("lumiere.internal.recommend"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Suggest returns the recommended service for query. Blank queries never
// reach the model.
func (g *Gateway) Suggest(ctx context.Context, query string) (Recommendation, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		g.metrics.ObserveOutcome(metrics.OutcomeSkipped)
		return Recommendation{}, false
	}
	if g.client == nil {
		g.metrics.ObserveOutcome(metrics.OutcomeUnavailable)
		return Recommendation{}, false
	}

	ctx, span := g.tracer.Start(ctx, "recommend.suggest")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	resp, err := g.client.Complete(ctx, LLMRequest{
		Model:       g.model,
		System:      []string{systemPrompt},
		Prompt:      BuildPrompt(query, g.services),
		MaxTokens:   256,
		Temperature: 0,
		Schema:      responseSchema,
	})
	if err != nil {
		span.RecordError(err)
		g.finish(metrics.OutcomeError, start)
		g.logger.Warn("recommendation call failed", "error", err)
		return Recommendation{}, false
	}

	if resp.Provider != "" {
		span.SetAttributes(attribute.String("lumiere.llm_provider", resp.Provider))
	}

	rec, err := parseRecommendation(resp.Text)
	if err != nil {
		span.RecordError(err)
		g.finish(metrics.OutcomeMalformed, start)
		g.logger.Warn("recommendation response unusable", "error", err)
		return Recommendation{}, false
	}
	if rec.ServiceID == "" {
		g.finish(metrics.OutcomeNoMatch, start)
		return Recommendation{}, false
	}
	if !g.known(rec.ServiceID) {
		g.finish(metrics.OutcomeNoMatch, start)
		g.logger.Info("recommendation named unknown service", "service_id", rec.ServiceID)
		return Recommendation{}, false
	}

	span.SetAttributes(attribute.String("lumiere.service_id", rec.ServiceID))
	g.finish(metrics.OutcomeMatched, start)
	return rec, true
}

func (g *Gateway) finish(outcome string, start time.Time) {
	g.metrics.ObserveOutcome(outcome)
	g.metrics.ObserveLatency(outcome, time.Since(start).Seconds())
}

func (g *Gateway) known(id string) bool {
	for _, svc := range g.services {
		if svc.ID == id {
			return true
		}
	}
	return false
}

type modelAnswer struct {
	RecommendedServiceID *string `json:"recommendedServiceId"`
	Reasoning            string  `json:"reasoning"`
}

// parseRecommendation decodes the model's JSON answer. Models sometimes wrap
// JSON in a markdown fence even when asked not to.
func parseRecommendation(text string) (Recommendation, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return Recommendation{}, errMalformed
	}

	var answer modelAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return Recommendation{}, errors.Join(errMalformed, err)
	}

	rec := Recommendation{Reasoning: strings.TrimSpace(answer.Reasoning)}
	if answer.RecommendedServiceID != nil {
		rec.ServiceID = strings.TrimSpace(*answer.RecommendedServiceID)
	}
	if strings.EqualFold(rec.ServiceID, "null") {
		rec.ServiceID = ""
	}
	return rec, nil
}
