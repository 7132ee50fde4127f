package llm

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient completes prompts with OpenAI chat completions.
type OpenAIClient struct {
	client openai.Client
	cfg    *Config
}

// NewOpenAIClient creates the client. Extra request options such as
// option.WithBaseURL are passed to the SDK.
func NewOpenAIClient(cfg *Config, apiKey string, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg == nil {
		cfg = ConfigFor(string(ProviderOpenAI), "")
	}
	return &OpenAIClient{
		client: openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...),
		cfg:    cfg,
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Messages:    msgs,
		Temperature: openai.Float(float64(c.cfg.Temperature)),
	}
	if c.cfg.MaxOutputTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.cfg.MaxOutputTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", c.cfg.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", &EmptyResponseError{Provider: ProviderOpenAI, Reason: "no choices"}
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", &EmptyResponseError{Provider: ProviderOpenAI, Reason: "finish reason " + resp.Choices[0].FinishReason}
	}
	return text, nil
}

func (c *OpenAIClient) Model() string { return c.cfg.Model }

// Close is a no-op; the SDK keeps no connections open.
func (c *OpenAIClient) Close() error { return nil }
