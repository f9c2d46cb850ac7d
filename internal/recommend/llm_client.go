package recommend

import "context"

// Schema describes the JSON object a model must return. It is provider
// neutral; each client translates it to its own structured-output form.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Nullable    bool               `json:"nullable,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

const (
	SchemaObject = "object"
	SchemaString = "string"
)

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is a single-turn completion request.
type LLMRequest struct {
	Model       string
	System      []string
	Prompt      string
	MaxTokens   int32
	Temperature float32
	// Schema, when set, asks the provider for JSON matching it.
	Schema *Schema
}

type LLMResponse struct {
	// Provider names the backend that produced the answer.
	Provider   string
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is an outside text-generation provider.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
