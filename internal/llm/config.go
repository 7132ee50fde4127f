// Package llm talks to the scenario model. Gemini is used unless the run
// selects OpenAI chat completions.
package llm

import "fmt"

// Provider names a scenario model backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ParseProvider maps a configured provider name to a Provider. An empty
// name selects Gemini.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case "", ProviderGemini:
		return ProviderGemini, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	}
	return "", fmt.Errorf("unknown scenario model provider %q", name)
}

// Config selects the model and sampling settings for scenario generation.
type Config struct {
	Provider        Provider
	Model           string
	Temperature     float32
	MaxOutputTokens int
}

// Scenarios are short creative JSON documents: a warm temperature and a
// small output budget.
const (
	defaultTemperature     = 0.9
	defaultMaxOutputTokens = 4096
)

var defaultModels = map[Provider]string{
	ProviderGemini: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o",
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(p Provider) string {
	return defaultModels[p]
}

// ConfigFor builds the configuration for a provider, using its default
// model when model is empty. Unknown providers fall back to Gemini.
func ConfigFor(provider, model string) *Config {
	p, err := ParseProvider(provider)
	if err != nil {
		p = ProviderGemini
	}
	if model == "" {
		model = DefaultModel(p)
	}
	return &Config{
		Provider:        p,
		Model:           model,
		Temperature:     defaultTemperature,
		MaxOutputTokens: defaultMaxOutputTokens,
	}
}
