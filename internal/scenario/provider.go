// Package scenario obtains the reel scenario, generating it with the
// scenario model only when the checkpoint does not already hold one.
package scenario

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/llm"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/prompts"
	"github.com/jonathan/parallax-reel/internal/schemas"
	"github.com/jonathan/parallax-reel/internal/types"
)

// maxContextChars bounds the topic page text inlined into the prompt.
const maxContextChars = 4000

// Request holds the settings a scenario is generated from.
type Request struct {
	Topic               string  `json:"topic"`
	TopicURL            string  `json:"topic_url,omitempty"`
	BeatCount           int     `json:"beat_count"`
	BeatSeconds         float64 `json:"beat_seconds"`
	NarrationLanguage   string  `json:"narration_language"`
	ImagePromptLanguage string  `json:"image_prompt_language"`
}

// Fingerprint returns a stable digest of the request settings.
func (r Request) Fingerprint() string {
	data, _ := json.Marshal(r)
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

// TopicSource turns a topic URL into background text.
type TopicSource interface {
	TopicText(ctx context.Context, url string) (string, error)
}

// Provider returns the scenario for a run.
type Provider struct {
	client  llm.Client
	store   checkpoint.Store
	request Request
	topics  TopicSource
}

// NewProvider creates a scenario provider. topics may be nil when
// scenarios are never seeded from URLs.
func NewProvider(client llm.Client, store checkpoint.Store, request Request, topics TopicSource) *Provider {
	return &Provider{client: client, store: store, request: request, topics: topics}
}

// Obtain returns the cached scenario or generates, validates and persists a new one.
func (p *Provider) Obtain(ctx context.Context, state *types.PipelineState) (*types.Scenario, error) {
	logger := logging.FromContext(ctx)
	fingerprint := p.request.Fingerprint()

	if state.Scenario != nil {
		if state.ScenarioFingerprint != "" && state.ScenarioFingerprint != fingerprint {
			logger.Warn("cached scenario was generated with different settings; reusing it",
				"stored", state.ScenarioFingerprint, "current", fingerprint)
		}
		logger.Info("using cached scenario", "beats", len(state.Scenario.Beats))
		return state.Scenario, nil
	}

	if p.client == nil {
		return nil, fmt.Errorf("no scenario in checkpoint and no scenario model configured")
	}

	prompt, err := p.buildPrompt(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("generating scenario", "model", p.client.Model(), "beats", p.request.BeatCount)
	raw, err := p.client.Complete(ctx, prompt)
	if err != nil {
		return nil, &APICallError{Model: p.client.Model(), Err: err}
	}

	sc, err := Parse(raw)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			logger.Error("scenario model returned an unusable answer", "reason", perr.Reason, "excerpt", perr.Excerpt(200))
		}
		return nil, err
	}

	state.Scenario = sc
	state.ScenarioFingerprint = fingerprint
	if err := p.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to persist scenario: %w", err)
	}

	logger.Info("scenario generated", "beats", len(sc.Beats))
	return sc, nil
}

// Parse strips code fences from a model response and decodes it strictly.
func Parse(raw string) (*types.Scenario, error) {
	cleaned := llm.StripFences(raw)
	if cleaned == "" {
		return nil, &ParseError{Reason: "empty response", Raw: raw}
	}

	if err := schemas.ValidateScenario(cleaned); err != nil {
		return nil, &ParseError{Reason: "schema mismatch", Raw: raw, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	dec.DisallowUnknownFields()
	var sc types.Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, &ParseError{Reason: "decode", Raw: raw, Err: err}
	}
	if err := sc.Validate(); err != nil {
		return nil, &ParseError{Reason: "validation", Raw: raw, Err: err}
	}

	return &sc, nil
}

func (p *Provider) buildPrompt(ctx context.Context) (llm.Prompt, error) {
	system, err := prompts.Get(prompts.ScenarioFile, prompts.KeySystem)
	if err != nil {
		return llm.Prompt{}, err
	}
	user, err := p.userPrompt(ctx)
	if err != nil {
		return llm.Prompt{}, err
	}
	return llm.Prompt{System: system, User: user, JSON: true}, nil
}

func (p *Provider) userPrompt(ctx context.Context) (string, error) {
	topic := strings.TrimSpace(p.request.Topic)
	topicContext := ""

	if p.request.TopicURL != "" {
		if p.topics == nil {
			return "", fmt.Errorf("topic URL given but no topic source configured")
		}
		text, err := p.topics.TopicText(ctx, p.request.TopicURL)
		if err != nil {
			return "", fmt.Errorf("failed to fetch topic page: %w", err)
		}
		if runes := []rune(text); len(runes) > maxContextChars {
			text = string(runes[:maxContextChars])
		}
		topicContext, err = prompts.Render(prompts.ScenarioFile, prompts.KeyTopicContext, map[string]string{"Context": text})
		if err != nil {
			return "", err
		}
		if topic == "" {
			topic = "the subject of the page " + p.request.TopicURL
		}
	}

	if topic == "" {
		return "", fmt.Errorf("a topic or topic URL is required to generate a scenario")
	}

	total := float64(p.request.BeatCount) * p.request.BeatSeconds
	return prompts.Render(prompts.ScenarioFile, prompts.KeyReelScenario, map[string]string{
		"Topic":               topic,
		"TopicContext":        topicContext,
		"BeatCount":           strconv.Itoa(p.request.BeatCount),
		"BeatSeconds":         strconv.FormatFloat(p.request.BeatSeconds, 'f', -1, 64),
		"TotalSeconds":        strconv.FormatFloat(total, 'f', -1, 64),
		"NarrationLanguage":   p.request.NarrationLanguage,
		"ImagePromptLanguage": p.request.ImagePromptLanguage,
	})
}
