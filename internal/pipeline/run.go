// Package pipeline provides the high-level orchestration of a reel run:
// scenario, per-beat visuals, narration and the final timeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/narration"
	"github.com/jonathan/parallax-reel/internal/observability"
	"github.com/jonathan/parallax-reel/internal/storyboard"
	"github.com/jonathan/parallax-reel/internal/timeline"
	"github.com/jonathan/parallax-reel/internal/types"
)

// Progress steps
const (
	StepScenario  = "scenario"
	StepBeat      = "beat"
	StepNarration = "narration"
	StepTimeline  = "timeline"
	StepComplete  = "complete"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Beat    *int   `json:"beat,omitempty"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// StateStore persists both the checkpoint and the reel document.
type StateStore interface {
	checkpoint.Store
	checkpoint.ReelStore
}

// ScenarioSource returns the scenario of a run.
type ScenarioSource interface {
	Obtain(ctx context.Context, state *types.PipelineState) (*types.Scenario, error)
}

// BeatProcessor runs the visual stages of one beat.
type BeatProcessor interface {
	Process(ctx context.Context, state *types.PipelineState, i int, prompt types.BeatPrompt) (*types.BeatRecord, error)
}

// Narrator voices every beat of the scenario.
type Narrator interface {
	Run(ctx context.Context, state *types.PipelineState) (*narration.Summary, error)
}

// RunOptions holds the components and settings of a run
type RunOptions struct {
	Store     StateStore
	Scenario  ScenarioSource
	Beats     BeatProcessor
	Narration Narrator

	OutputDir string
	Title     string
	FPS       int

	// Printer receives verbose summaries; nil disables them.
	Printer    *observability.Printer
	OnProgress ProgressCallback
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, state *types.PipelineState, step string, beat *int, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:    step,
			Beat:    beat,
			Message: message,
			RunID:   state.RunID.String(),
			Content: content,
		})
	}
}

// RunPipeline runs every stage. A completed checkpoint returns immediately
// without calling any external service.
func RunPipeline(ctx context.Context, opts RunOptions) error {
	logger := logging.FromContext(ctx)

	state, err := opts.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if state.Completed {
		logger.Info("run already completed; delete the checkpoint to start over", "run_id", state.RunID)
		return nil
	}

	if err := generate(ctx, &opts, state); err != nil {
		return err
	}
	return narrate(ctx, &opts, state)
}

// RunGenerate obtains the scenario and produces every beat's visual layers.
func RunGenerate(ctx context.Context, opts RunOptions) error {
	state, err := opts.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if state.Completed {
		logging.FromContext(ctx).Info("run already completed", "run_id", state.RunID)
		return nil
	}
	return generate(ctx, &opts, state)
}

// RunNarrate voices the beats and emits the timeline. It requires a scenario
// in the checkpoint.
func RunNarrate(ctx context.Context, opts RunOptions) error {
	state, err := opts.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return narrate(ctx, &opts, state)
}

// BuildTimeline rebuilds and stores the reel document from the checkpoint alone.
func BuildTimeline(ctx context.Context, opts RunOptions) (*types.ReelDocument, error) {
	state, err := opts.Store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return emitTimeline(ctx, &opts, state)
}

func generate(ctx context.Context, opts *RunOptions, state *types.PipelineState) error {
	logger := logging.FromContext(ctx)

	sc, err := opts.Scenario.Obtain(ctx, state)
	if err != nil {
		return fmt.Errorf("scenario failed: %w", err)
	}
	if opts.Printer != nil {
		opts.Printer.PrintScenario(sc)
	}
	emitProgress(opts, state, StepScenario, nil, fmt.Sprintf("Scenario ready with %d beats", len(sc.Beats)), sc)

	if opts.OutputDir != "" {
		written, err := storyboard.WriteArtifacts(opts.OutputDir, opts.Title, sc)
		if err != nil {
			return err
		}
		for _, path := range written {
			logger.Info("wrote review artifact", "path", path)
		}
	}

	for i, prompt := range sc.Beats {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Info("processing beat", "beat", i, "of", len(sc.Beats))

		rec, err := opts.Beats.Process(ctx, state, i, prompt)
		if err != nil {
			return err
		}
		if opts.Printer != nil {
			opts.Printer.PrintBeat(rec)
		}
		emitProgress(opts, state, StepBeat, &i, fmt.Sprintf("Beat %d/%d ready", i+1, len(sc.Beats)), rec)
	}
	return nil
}

func narrate(ctx context.Context, opts *RunOptions, state *types.PipelineState) error {
	summary, err := opts.Narration.Run(ctx, state)
	if err != nil {
		return fmt.Errorf("narration failed: %w", err)
	}
	emitProgress(opts, state, StepNarration,
		nil, fmt.Sprintf("Narrated %d beats, %.2fs total", summary.Count, summary.TotalDuration), summary)

	doc, err := emitTimeline(ctx, opts, state)
	if err != nil {
		return err
	}

	if !allBeatsFinished(state) {
		logging.FromContext(ctx).Warn("some beats are incomplete; run again to finish them",
			"skipped", summary.Skipped)
		return nil
	}

	state.MarkCompleted()
	if err := opts.Store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	emitProgress(opts, state, StepComplete, nil, fmt.Sprintf("Reel ready: %d frames", doc.TotalFrames), nil)
	return nil
}

func emitTimeline(ctx context.Context, opts *RunOptions, state *types.PipelineState) (*types.ReelDocument, error) {
	fps := opts.FPS
	if fps == 0 {
		fps = timeline.DefaultFPS
	}

	tl, err := timeline.Build(state.Beats, fps)
	if err != nil {
		if errors.Is(err, timeline.ErrNoDurations) {
			return nil, fmt.Errorf("timeline needs narration durations; run narrate first: %w", err)
		}
		return nil, fmt.Errorf("timeline failed: %w", err)
	}

	doc := timeline.NewDocument(state.RunID, state.Beats, tl)
	if err := opts.Store.SaveReel(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save reel document: %w", err)
	}

	if opts.Printer != nil {
		opts.Printer.PrintTimeline(doc)
	}
	emitProgress(opts, state, StepTimeline, nil,
		fmt.Sprintf("Timeline: %d frames at %d fps", doc.TotalFrames, doc.FPS), tl)
	logging.FromContext(ctx).Info("timeline written", "frames", doc.TotalFrames, "fps", doc.FPS)
	return doc, nil
}

// allBeatsFinished reports whether every scenario beat has its visuals and a duration.
func allBeatsFinished(state *types.PipelineState) bool {
	if state.Scenario == nil {
		return false
	}
	for i := range state.Scenario.Beats {
		rec, ok := state.Beat(i)
		if !ok || !rec.Completed || !rec.HasDuration() {
			return false
		}
	}
	return true
}
