package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Voice defaults for short-form narration
const (
	DefaultBaseURL   = "https://api.elevenlabs.io"
	DefaultVoiceID   = "JBFqnCBsd6RMkjVDRZzb"
	DefaultModelID   = "eleven_turbo_v2_5"
	DefaultTimeout   = 2 * time.Minute
	defaultOutFormat = "mp3_44100_128"
)

// Synthesizer turns narration text into audio written to w.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, w io.Writer) error
}

// VoiceSettings tunes the delivery of the voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns an energetic, expressive delivery.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.4,
		SimilarityBoost: 0.8,
		Style:           0.7,
		UseSpeakerBoost: true,
	}
}

// ElevenLabsOptions configures the ElevenLabs text-to-speech client.
type ElevenLabsOptions struct {
	BaseURL  string
	APIKey   string
	VoiceID  string
	ModelID  string
	Settings VoiceSettings
	// RequestsPerSecond bounds the request rate; zero disables limiting.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// APIError is a non-success response from the voice API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("voice API returned status %d: %s", e.StatusCode, e.Body)
}

// ElevenLabsClient calls the ElevenLabs text-to-speech endpoint.
type ElevenLabsClient struct {
	opts    ElevenLabsOptions
	http    *http.Client
	limiter *rate.Limiter
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// NewElevenLabsClient creates a client, filling unset options with defaults.
func NewElevenLabsClient(opts ElevenLabsOptions) *ElevenLabsClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.VoiceID == "" {
		opts.VoiceID = DefaultVoiceID
	}
	if opts.ModelID == "" {
		opts.ModelID = DefaultModelID
	}
	if opts.Settings == (VoiceSettings{}) {
		opts.Settings = DefaultVoiceSettings()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &ElevenLabsClient{
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Endpoint returns the text-to-speech URL for the configured voice.
func (c *ElevenLabsClient) Endpoint() string {
	return fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		strings.TrimRight(c.opts.BaseURL, "/"), url.PathEscape(c.opts.VoiceID), defaultOutFormat)
}

// Synthesize requests speech for text and streams the audio body into w.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text string, w io.Writer) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       c.opts.ModelID,
		VoiceSettings: c.opts.Settings,
	})
	if err != nil {
		return fmt.Errorf("failed to encode voice request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create voice request: %w", err)
	}
	req.Header.Set("xi-api-key", c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("voice request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read voice audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("voice API returned empty audio")
	}
	return nil
}
