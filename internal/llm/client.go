package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned when a client is built without credentials.
var ErrNoAPIKey = errors.New("scenario model API key is required")

// EmptyResponseError means the model answered without usable text.
type EmptyResponseError struct {
	Provider Provider
	Reason   string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s returned no text: %s", e.Provider, e.Reason)
}

// Prompt is one scenario request. JSON asks the backend for a JSON-only
// answer where it supports that.
type Prompt struct {
	System string
	User   string
	JSON   bool
}

// Client completes prompts against one configured model.
type Client interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Model() string
	Close() error
}

// NewClient builds the client for cfg.Provider.
func NewClient(ctx context.Context, cfg *Config, apiKey string) (Client, error) {
	if cfg == nil {
		cfg = ConfigFor("", "")
	}
	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(cfg, apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg, apiKey)
	}
	return nil, fmt.Errorf("unknown scenario model provider %q", cfg.Provider)
}
