// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Scenario request
	Topic               string  `json:"topic,omitempty" yaml:"topic,omitempty"`                                  // Subject of the reel
	TopicURL            string  `json:"topic_url,omitempty" yaml:"topic_url,omitempty" validate:"omitempty,url"` // Page used to seed the topic
	BeatCount           int     `json:"beat_count,omitempty" yaml:"beat_count,omitempty" validate:"gte=0,lte=20"`
	BeatSeconds         float64 `json:"beat_seconds,omitempty" yaml:"beat_seconds,omitempty" validate:"gte=0"`
	NarrationLanguage   string  `json:"narration_language,omitempty" yaml:"narration_language,omitempty"`
	ImagePromptLanguage string  `json:"image_prompt_language,omitempty" yaml:"image_prompt_language,omitempty"`
	LLMProvider         string  `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty" validate:"omitempty,oneof=gemini openai"`
	LLMModel            string  `json:"llm_model,omitempty" yaml:"llm_model,omitempty"`

	// Paths
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"` // Root for checkpoint, artifacts and reel document

	// External tools
	ImageCommand          string   `json:"image_command,omitempty" yaml:"image_command,omitempty"`
	ImageWidth            int      `json:"image_width,omitempty" yaml:"image_width,omitempty" validate:"gte=0"`
	ImageHeight           int      `json:"image_height,omitempty" yaml:"image_height,omitempty" validate:"gte=0"`
	ImageSteps            int      `json:"image_steps,omitempty" yaml:"image_steps,omitempty" validate:"gte=0"`
	ImageCFGScale         float64  `json:"image_cfg_scale,omitempty" yaml:"image_cfg_scale,omitempty" validate:"gte=0"`
	ImageArgs             []string `json:"image_args,omitempty" yaml:"image_args,omitempty"` // Extra arguments such as model paths
	SegmentationCommand   string   `json:"segmentation_command,omitempty" yaml:"segmentation_command,omitempty"`
	SegmentationThreshold float64  `json:"segmentation_threshold,omitempty" yaml:"segmentation_threshold,omitempty" validate:"gte=0,lte=1"`
	PivotAlphaThreshold   *int     `json:"pivot_alpha_threshold,omitempty" yaml:"pivot_alpha_threshold,omitempty" validate:"omitempty,gte=0,lte=255"` // Nil means default; 0 counts every non-transparent pixel
	ProbeCommand          string   `json:"probe_command,omitempty" yaml:"probe_command,omitempty"`

	// Voice
	VoiceID         string  `json:"voice_id,omitempty" yaml:"voice_id,omitempty"`
	VoiceModel      string  `json:"voice_model,omitempty" yaml:"voice_model,omitempty"`
	VoiceRateLimit  float64 `json:"voice_rate_limit,omitempty" yaml:"voice_rate_limit,omitempty" validate:"gte=0"` // Requests per second
	VoiceAPIBaseURL string  `json:"voice_api_base_url,omitempty" yaml:"voice_api_base_url,omitempty" validate:"omitempty,url"`

	// Timeline
	FPS int `json:"fps,omitempty" yaml:"fps,omitempty" validate:"gte=0,lte=240"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	Project     string `json:"project,omitempty" yaml:"project,omitempty"`           // Checkpoint key when stored in PostgreSQL

	// Credentials
	GeminiAPIKey     string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key,omitempty"`
	OpenAIAPIKey     string `json:"openai_api_key,omitempty" yaml:"openai_api_key,omitempty"`
	ElevenLabsAPIKey string `json:"elevenlabs_api_key,omitempty" yaml:"elevenlabs_api_key,omitempty"`

	// Behavior
	UseBrowser bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"` // Use headless browser for SPA topic pages
	Verbose    bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	LogLevel   string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat  string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,oneof=text json"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		BeatCount:             5,
		BeatSeconds:           5,
		NarrationLanguage:     "Russian",
		ImagePromptLanguage:   "English",
		LLMProvider:           "gemini",
		OutputDir:             "output",
		ImageCommand:          "sd-z",
		ImageWidth:            480,
		ImageHeight:           640,
		ImageSteps:            8,
		ImageCFGScale:         1,
		SegmentationCommand:   "transparent-background",
		SegmentationThreshold: 0.1,
		PivotAlphaThreshold:   intPtr(10),
		ProbeCommand:          "ffprobe",
		VoiceID:               "JBFqnCBsd6RMkjVDRZzb",
		VoiceModel:            "eleven_turbo_v2_5",
		VoiceRateLimit:        2,
		VoiceAPIBaseURL:       "https://api.elevenlabs.io",
		FPS:                   30,
		Project:               "default",
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// LoadConfig loads configuration from a JSON or YAML file.
// The format is chosen by extension; .yaml and .yml are YAML, everything else is JSON.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required credentials are checked separately by RequireCredentials.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return &ConfigError{Message: "invalid configuration", Cause: err}
	}

	if c.Topic != "" && c.TopicURL != "" {
		return &ConfigError{Message: "'topic' and 'topic_url' are mutually exclusive"}
	}

	return nil
}

// ApplyEnv fills empty credentials and the database URL from the environment.
func (c *Config) ApplyEnv() {
	if c.GeminiAPIKey == "" {
		c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.OpenAIAPIKey == "" {
		c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.ElevenLabsAPIKey == "" {
		c.ElevenLabsAPIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.Topic, defaults.Topic)
	mergeString(&result.TopicURL, defaults.TopicURL)
	mergeString(&result.NarrationLanguage, defaults.NarrationLanguage)
	mergeString(&result.ImagePromptLanguage, defaults.ImagePromptLanguage)
	mergeString(&result.LLMProvider, defaults.LLMProvider)
	mergeString(&result.LLMModel, defaults.LLMModel)
	mergeString(&result.OutputDir, defaults.OutputDir)
	mergeString(&result.ImageCommand, defaults.ImageCommand)
	mergeString(&result.SegmentationCommand, defaults.SegmentationCommand)
	mergeString(&result.ProbeCommand, defaults.ProbeCommand)
	mergeString(&result.VoiceID, defaults.VoiceID)
	mergeString(&result.VoiceModel, defaults.VoiceModel)
	mergeString(&result.VoiceAPIBaseURL, defaults.VoiceAPIBaseURL)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.Project, defaults.Project)
	mergeString(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	mergeString(&result.OpenAIAPIKey, defaults.OpenAIAPIKey)
	mergeString(&result.ElevenLabsAPIKey, defaults.ElevenLabsAPIKey)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.LogFormat, defaults.LogFormat)

	mergeInt(&result.BeatCount, defaults.BeatCount)
	mergeInt(&result.ImageWidth, defaults.ImageWidth)
	mergeInt(&result.ImageHeight, defaults.ImageHeight)
	mergeInt(&result.ImageSteps, defaults.ImageSteps)
	mergeInt(&result.FPS, defaults.FPS)

	if result.PivotAlphaThreshold == nil && defaults.PivotAlphaThreshold != nil {
		result.PivotAlphaThreshold = intPtr(*defaults.PivotAlphaThreshold)
	}

	mergeFloat(&result.BeatSeconds, defaults.BeatSeconds)
	mergeFloat(&result.ImageCFGScale, defaults.ImageCFGScale)
	mergeFloat(&result.SegmentationThreshold, defaults.SegmentationThreshold)
	mergeFloat(&result.VoiceRateLimit, defaults.VoiceRateLimit)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// AlphaThreshold returns the pivot alpha cutoff, or 0 when none is configured.
func (c *Config) AlphaThreshold() uint8 {
	if c.PivotAlphaThreshold == nil {
		return 0
	}
	return uint8(*c.PivotAlphaThreshold)
}

// StatePath returns the location of the file checkpoint.
func (c *Config) StatePath() string {
	return filepath.Join(c.OutputDir, "state.json")
}

// ReelPath returns the location of the final reel document.
func (c *Config) ReelPath() string {
	return filepath.Join(c.OutputDir, "remotion-data.json")
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func mergeFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func intPtr(v int) *int {
	return &v
}
