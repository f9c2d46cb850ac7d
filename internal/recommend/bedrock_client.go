package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// answerTool is the single tool offered when a schema is requested. Forcing
// the model to call it is how Converse yields schema-shaped JSON.
const answerTool = "record_answer"

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockLLMClient talks to Bedrock through the Converse API.
type BedrockLLMClient struct {
	api     bedrockConverseAPI
	modelID string
}

func NewBedrockLLMClient(api bedrockConverseAPI, modelID string) *BedrockLLMClient {
	if api == nil {
		panic("recommend: bedrock converse client cannot be nil")
	}
	return &BedrockLLMClient{api: api, modelID: modelID}
}

func (c *BedrockLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	in, err := c.converseInput(req)
	if err != nil {
		return LLMResponse{}, err
	}
	out, err := c.api.Converse(ctx, in)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("recommend: bedrock converse: %w", err)
	}
	if out == nil {
		return LLMResponse{}, errors.New("recommend: bedrock returned no output")
	}

	text, err := converseAnswer(out, req.Schema != nil)
	if err != nil {
		return LLMResponse{}, err
	}
	resp := LLMResponse{Provider: "bedrock", Text: text, StopReason: string(out.StopReason)}
	if u := out.Usage; u != nil {
		resp.Usage = TokenUsage{
			InputTokens:  aws.ToInt32(u.InputTokens),
			OutputTokens: aws.ToInt32(u.OutputTokens),
			TotalTokens:  aws.ToInt32(u.TotalTokens),
		}
	}
	return resp, nil
}

func (c *BedrockLLMClient) converseInput(req LLMRequest) (*bedrockruntime.ConverseInput, error) {
	modelID := strings.TrimSpace(req.Model)
	if modelID == "" {
		modelID = c.modelID
	}
	if modelID == "" {
		return nil, errors.New("recommend: bedrock model id is required")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, errors.New("recommend: bedrock requires a prompt")
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(modelID),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: prompt}},
		}},
	}
	for _, text := range req.System {
		if strings.TrimSpace(text) != "" {
			in.System = append(in.System, &brtypes.SystemContentBlockMemberText{Value: text})
		}
	}

	// A negative temperature leaves the model default in place.
	var inference brtypes.InferenceConfiguration
	if req.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(req.MaxTokens)
	}
	if req.Temperature >= 0 {
		inference.Temperature = aws.Float32(req.Temperature)
	}
	if inference.MaxTokens != nil || inference.Temperature != nil {
		in.InferenceConfig = &inference
	}

	if req.Schema != nil {
		in.ToolConfig = &brtypes.ToolConfiguration{
			Tools: []brtypes.Tool{&brtypes.ToolMemberToolSpec{Value: brtypes.ToolSpecification{
				Name:        aws.String(answerTool),
				Description: aws.String("Record the final answer."),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(jsonSchema(req.Schema))},
			}}},
			ToolChoice: &brtypes.ToolChoiceMemberTool{Value: brtypes.SpecificToolChoice{Name: aws.String(answerTool)}},
		}
	}
	return in, nil
}

// converseAnswer pulls the tool input (as JSON) when a schema was requested,
// otherwise the concatenated text blocks.
func converseAnswer(out *bedrockruntime.ConverseOutput, structured bool) (string, error) {
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("recommend: bedrock response did not include a message")
	}
	var text strings.Builder
	for _, block := range msg.Value.Content {
		switch b := block.(type) {
		case *brtypes.ContentBlockMemberToolUse:
			if !structured || aws.ToString(b.Value.Name) != answerTool || b.Value.Input == nil {
				continue
			}
			raw, err := b.Value.Input.MarshalSmithyDocument()
			if err != nil {
				return "", fmt.Errorf("recommend: bedrock tool input: %w", err)
			}
			return string(raw), nil
		case *brtypes.ContentBlockMemberText:
			text.WriteString(b.Value)
		}
	}
	// Some models answer in text even when the tool is forced; the gateway
	// still tries to parse that.
	if s := strings.TrimSpace(text.String()); s != "" {
		return s, nil
	}
	return "", errors.New("recommend: bedrock response contained no answer")
}

// jsonSchema renders s as a JSON Schema document. Nullable strings become
// a ["string","null"] type union.
func jsonSchema(s *Schema) map[string]any {
	out := map[string]any{}
	if s.Nullable {
		out["type"] = []string{s.Type, "null"}
	} else {
		out["type"] = s.Type
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = jsonSchema(prop)
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = s.Required
	}
	return out
}
