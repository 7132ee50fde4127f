package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient completes prompts with a Gemini model.
type GeminiClient struct {
	client *genai.Client
	cfg    *Config
}

// NewGeminiClient opens a Gemini client. Extra options are handed to the SDK.
func NewGeminiClient(ctx context.Context, cfg *Config, apiKey string, opts ...option.ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg == nil {
		cfg = ConfigFor(string(ProviderGemini), "")
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, cfg: cfg}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	if c.cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(c.cfg.MaxOutputTokens))
	}
	if prompt.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(prompt.System)}}
	}
	if prompt.JSON {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt.User))
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", c.cfg.Model, err)
	}
	return geminiText(resp)
}

func (c *GeminiClient) Model() string { return c.cfg.Model }

func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &EmptyResponseError{Provider: ProviderGemini, Reason: "no candidates"}
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", &EmptyResponseError{Provider: ProviderGemini, Reason: "finish reason " + cand.FinishReason.String()}
	}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", &EmptyResponseError{Provider: ProviderGemini, Reason: "no text parts"}
	}
	return sb.String(), nil
}
