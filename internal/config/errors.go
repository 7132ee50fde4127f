package config

import "fmt"

// ConfigError represents missing or invalid configuration.
// It is raised before any pipeline stage runs.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Credential requirements per command
const (
	NeedScenario = "scenario"
	NeedVoice    = "voice"
)

// RequireCredentials checks that the credentials needed by the given
// capabilities are present.
func (c *Config) RequireCredentials(needs ...string) error {
	for _, need := range needs {
		switch need {
		case NeedScenario:
			switch c.LLMProvider {
			case "openai":
				if c.OpenAIAPIKey == "" {
					return &ConfigError{Message: "OPENAI_API_KEY is required for the openai provider"}
				}
			default:
				if c.GeminiAPIKey == "" {
					return &ConfigError{Message: "GEMINI_API_KEY is required for the gemini provider"}
				}
			}
		case NeedVoice:
			if c.ElevenLabsAPIKey == "" {
				return &ConfigError{Message: "ELEVENLABS_API_KEY is required for narration"}
			}
		default:
			return &ConfigError{Message: fmt.Sprintf("unknown credential requirement %q", need)}
		}
	}
	return nil
}
