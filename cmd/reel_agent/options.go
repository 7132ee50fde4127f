package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/parallax-reel/internal/config"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/observability"
	"github.com/jonathan/parallax-reel/internal/pipeline"
)

// Flags shared by every command
var (
	configPath  string
	outputDir   string
	databaseURL string
	project     string
	verbose     bool
	logLevel    string
	logFormat   string
)

// Scenario flags, registered on run and generate
var (
	topic         string
	topicURL      string
	beatCount     int
	beatSeconds   float64
	narrationLang string
	imageLang     string
	llmProvider   string
	llmModel      string
	useBrowser    bool
)

var fps int

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (flags override its values)")
	pf.StringVarP(&outputDir, "output", "o", "", "Output directory for checkpoint, artifacts and reel document")
	pf.StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	pf.StringVar(&project, "project", "", "Checkpoint key when stored in PostgreSQL")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print detailed summaries")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&topic, "topic", "t", "", "Subject of the reel (mutually exclusive with --topic-url)")
	f.StringVar(&topicURL, "topic-url", "", "Page whose text seeds the scenario")
	f.IntVarP(&beatCount, "beats", "n", 0, "Number of beats")
	f.Float64Var(&beatSeconds, "beat-seconds", 0, "Target narration length per beat in seconds")
	f.StringVar(&narrationLang, "narration-language", "", "Language of the narration text")
	f.StringVar(&imageLang, "image-language", "", "Language of the image prompts")
	f.StringVar(&llmProvider, "llm-provider", "", "Scenario model provider: gemini or openai")
	f.StringVar(&llmModel, "llm-model", "", "Scenario model name")
	f.BoolVar(&useBrowser, "use-browser", false, "Use headless browser for SPA topic pages (requires Chrome)")
}

func addFPSFlag(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fps, "fps", 0, "Timeline frame rate")
}

// resolveConfig loads the config file, applies changed flags, the
// environment and defaults, then validates.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	applyFlags(cmd.Flags(), &cfg)
	cfg.ApplyEnv()

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// applyFlags overrides config values with flags the user set explicitly.
func applyFlags(f *pflag.FlagSet, cfg *config.Config) {
	if f.Changed("output") {
		cfg.OutputDir = outputDir
	}
	if f.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if f.Changed("project") {
		cfg.Project = project
	}
	if f.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if f.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if f.Changed("topic") {
		cfg.Topic = topic
	}
	if f.Changed("topic-url") {
		cfg.TopicURL = topicURL
	}
	if f.Changed("beats") {
		cfg.BeatCount = beatCount
	}
	if f.Changed("beat-seconds") {
		cfg.BeatSeconds = beatSeconds
	}
	if f.Changed("narration-language") {
		cfg.NarrationLanguage = narrationLang
	}
	if f.Changed("image-language") {
		cfg.ImagePromptLanguage = imageLang
	}
	if f.Changed("llm-provider") {
		cfg.LLMProvider = llmProvider
	}
	if f.Changed("llm-model") {
		cfg.LLMModel = llmModel
	}
	if f.Changed("use-browser") {
		cfg.UseBrowser = useBrowser
	}
	if f.Changed("fps") {
		cfg.FPS = fps
	}
}

// commandContext installs the configured logger as the default and in the context.
func commandContext(cmd *cobra.Command, cfg *config.Config) context.Context {
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithLogger(ctx, logger)
}

// printer returns the verbose printer, or nil when verbose output is off.
func printer(cmd *cobra.Command, cfg *config.Config) *observability.Printer {
	if !cfg.Verbose {
		return nil
	}
	return observability.NewPrinter(cmd.OutOrStdout())
}

// progressPrinter writes one line per progress event.
func progressPrinter(w io.Writer) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		if e.Beat != nil {
			_, _ = fmt.Fprintf(w, "[%s %d] %s\n", e.Step, *e.Beat, e.Message)
			return
		}
		_, _ = fmt.Fprintf(w, "[%s] %s\n", e.Step, e.Message)
	}
}

// ensureOutputDir creates the output directory before any stage writes to it.
func ensureOutputDir(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
