package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiLLMClient talks to the Gemini API. Requested schemas use Gemini's
// native JSON mode.
type GeminiLLMClient struct {
	client  *genai.Client
	modelID string
}

func NewGeminiLLMClient(ctx context.Context, apiKey, modelID string) (*GeminiLLMClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("recommend: gemini api key is required")
	}
	if modelID = strings.TrimSpace(modelID); modelID == "" {
		modelID = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("recommend: gemini client: %w", err)
	}
	return &GeminiLLMClient{client: client, modelID: modelID}, nil
}

func (c *GeminiLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return LLMResponse{}, errors.New("recommend: gemini requires a prompt")
	}
	modelID := strings.TrimSpace(req.Model)
	if modelID == "" {
		modelID = c.modelID
	}
	model := c.client.GenerativeModel(modelID)
	configureGemini(model, req)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("recommend: gemini generate: %w", err)
	}
	return geminiResponse(resp)
}

// Close releases the underlying gRPC connection.
func (c *GeminiLLMClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func configureGemini(model *genai.GenerativeModel, req LLMRequest) {
	// A negative temperature leaves the model default in place.
	if req.Temperature >= 0 {
		model.SetTemperature(req.Temperature)
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(req.MaxTokens)
	}
	if system := strings.TrimSpace(strings.Join(req.System, "\n\n")); system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = toGeminiSchema(req.Schema)
	}
}

func geminiResponse(resp *genai.GenerateContentResponse) (LLMResponse, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return LLMResponse{}, errors.New("recommend: gemini returned no candidates")
	}
	cand := resp.Candidates[0]
	var text strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
	}
	out := LLMResponse{
		Provider:   "gemini",
		Text:       strings.TrimSpace(text.String()),
		StopReason: cand.FinishReason.String(),
	}
	if out.Text == "" {
		return LLMResponse{}, fmt.Errorf("recommend: gemini returned no text (finish reason %s)", out.StopReason)
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = TokenUsage{
			InputTokens:  u.PromptTokenCount,
			OutputTokens: u.CandidatesTokenCount,
			TotalTokens:  u.TotalTokenCount,
		}
	}
	return out, nil
}

func toGeminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.TypeUnspecified,
		Description: s.Description,
		Nullable:    s.Nullable,
		Required:    s.Required,
	}
	switch s.Type {
	case SchemaObject:
		out.Type = genai.TypeObject
	case SchemaString:
		out.Type = genai.TypeString
	}
	for name, prop := range s.Properties {
		if out.Properties == nil {
			out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		}
		out.Properties[name] = toGeminiSchema(prop)
	}
	return out
}
