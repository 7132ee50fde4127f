package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/parallax-reel/internal/beats"
	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/config"
	"github.com/jonathan/parallax-reel/internal/db"
	"github.com/jonathan/parallax-reel/internal/fetch"
	"github.com/jonathan/parallax-reel/internal/imaging"
	"github.com/jonathan/parallax-reel/internal/llm"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/narration"
	"github.com/jonathan/parallax-reel/internal/scenario"
	"github.com/jonathan/parallax-reel/internal/segmentation"
	"github.com/jonathan/parallax-reel/internal/toolexec"
)

// OpenStore returns the PostgreSQL store when a database URL is configured,
// otherwise the file store under the output directory. The returned cleanup
// releases the connection pool.
func OpenStore(ctx context.Context, cfg *config.Config) (StateStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return checkpoint.NewFileStore(cfg.StatePath(), cfg.ReelPath()), func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}
	logging.FromContext(ctx).Debug("using postgres checkpoint store", "project", cfg.Project)
	return checkpoint.NewPostgresStore(database, cfg.Project), database.Close, nil
}

// ScenarioRequest derives the scenario request from the configuration.
func ScenarioRequest(cfg *config.Config) scenario.Request {
	return scenario.Request{
		Topic:               cfg.Topic,
		TopicURL:            cfg.TopicURL,
		BeatCount:           cfg.BeatCount,
		BeatSeconds:         cfg.BeatSeconds,
		NarrationLanguage:   cfg.NarrationLanguage,
		ImagePromptLanguage: cfg.ImagePromptLanguage,
	}
}

// NewScenarioProvider creates the provider with an LLM client for the configured
// provider. The client is only created when the checkpoint lacks a scenario,
// so a resumed run needs no credentials.
func NewScenarioProvider(ctx context.Context, cfg *config.Config, store checkpoint.Store, needClient bool) (*scenario.Provider, func(), error) {
	var client llm.Client
	cleanup := func() {}

	if needClient {
		if err := cfg.RequireCredentials(config.NeedScenario); err != nil {
			return nil, nil, err
		}
		apiKey := cfg.GeminiAPIKey
		if cfg.LLMProvider == string(llm.ProviderOpenAI) {
			apiKey = cfg.OpenAIAPIKey
		}
		c, err := llm.NewClient(ctx, llm.ConfigFor(cfg.LLMProvider, cfg.LLMModel), apiKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create scenario model client: %w", err)
		}
		client = c
		cleanup = func() { _ = c.Close() }
	}

	topics := fetch.NewTopicFetcher(&fetch.TopicFetcherConfig{UseBrowser: cfg.UseBrowser})
	return scenario.NewProvider(client, store, ScenarioRequest(cfg), topics), cleanup, nil
}

// NewBeatProcessor wires the image and segmentation tools.
func NewBeatProcessor(cfg *config.Config, store checkpoint.Store, runner toolexec.Runner) *beats.Processor {
	gen := imaging.NewCLIGenerator(runner, imaging.Options{
		Command:   cfg.ImageCommand,
		Width:     cfg.ImageWidth,
		Height:    cfg.ImageHeight,
		Steps:     cfg.ImageSteps,
		CFGScale:  cfg.ImageCFGScale,
		ExtraArgs: cfg.ImageArgs,
	})
	seg := segmentation.NewCLISegmenter(runner, cfg.SegmentationCommand, cfg.SegmentationThreshold)
	return beats.NewProcessor(gen, seg, store, cfg.OutputDir, cfg.AlphaThreshold())
}

// NewNarrator wires the voice API and the duration probe.
func NewNarrator(cfg *config.Config, store checkpoint.Store, runner toolexec.Runner) (*narration.Stage, error) {
	if err := cfg.RequireCredentials(config.NeedVoice); err != nil {
		return nil, err
	}
	synth := narration.NewElevenLabsClient(narration.ElevenLabsOptions{
		BaseURL:           cfg.VoiceAPIBaseURL,
		APIKey:            cfg.ElevenLabsAPIKey,
		VoiceID:           cfg.VoiceID,
		ModelID:           cfg.VoiceModel,
		Settings:          narration.DefaultVoiceSettings(),
		RequestsPerSecond: cfg.VoiceRateLimit,
	})
	prober := narration.NewFFProbe(runner, cfg.ProbeCommand)
	return narration.NewStage(synth, prober, store, cfg.OutputDir), nil
}

// Title returns the display title of the reel.
func Title(cfg *config.Config) string {
	switch {
	case cfg.Topic != "":
		return cfg.Topic
	case cfg.TopicURL != "":
		return cfg.TopicURL
	default:
		return "Reel storyboard"
	}
}
