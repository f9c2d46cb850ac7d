package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/lumiere-booking/pkg/logging"
)

// Provider is a named model client in a fallback chain.
type Provider struct {
	Name   string
	Client LLMClient
}

// FallbackLLMClient asks each provider in turn until one answers. Only
// transport or provider errors move to the next provider; a response that
// later fails parsing is the gateway's concern.
type FallbackLLMClient struct {
	providers []Provider
	logger    *logging.Logger
}

// NewFallbackLLMClient builds a chain in priority order. Providers with a
// nil client are skipped.
func NewFallbackLLMClient(logger *logging.Logger, providers ...Provider) *FallbackLLMClient {
	if logger == nil {
		logger = logging.Default()
	}
	chain := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p.Client != nil {
			chain = append(chain, p)
		}
	}
	return &FallbackLLMClient{providers: chain, logger: logger}
}

// Providers lists the chain's provider names in the order they are tried.
func (c *FallbackLLMClient) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name
	}
	return names
}

func (c *FallbackLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if len(c.providers) == 0 {
		return LLMResponse{}, errors.New("recommend: no model provider configured")
	}
	var errs []error
	for i, p := range c.providers {
		resp, err := p.Client.Complete(ctx, req)
		if err == nil {
			if resp.Provider == "" {
				resp.Provider = p.Name
			}
			if i > 0 {
				c.logger.Info("model provider fallback served request", "provider", p.Name, "attempt", i+1)
			}
			return resp, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("model provider failed", "provider", p.Name, "error", err, "remaining", len(c.providers)-i-1)
	}
	return LLMResponse{}, errors.Join(errs...)
}
