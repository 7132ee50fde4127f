// Package narration voices each beat and measures the resulting audio so the
// timeline can be sized to the narration.
package narration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/pipeline/steps"
	"github.com/jonathan/parallax-reel/internal/types"
)

// AudioDir holds the narration files, relative to the output directory.
const AudioDir = "audio"

// ErrNoScenario is returned when narration runs before a scenario exists.
var ErrNoScenario = errors.New("no scenario in checkpoint; run generate first")

// StageError reports a failed narration or duration stage for a beat.
type StageError struct {
	Beat  int
	Stage types.Stage
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("beat %d: %s stage failed: %v", e.Beat, e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Summary aggregates the measured narration.
type Summary struct {
	TotalDuration float64 `json:"totalDuration"`
	MeanDuration  float64 `json:"meanDuration"`
	Count         int     `json:"count"`
	Skipped       []int   `json:"skipped,omitempty"`
}

// AudioPath returns the narration file of beat i, relative to the output directory.
func AudioPath(i int) string {
	return filepath.Join(AudioDir, fmt.Sprintf("beat_%d.mp3", i))
}

// Stage voices every beat and records its duration.
type Stage struct {
	synth     Synthesizer
	prober    Prober
	store     checkpoint.Store
	outputDir string
}

// NewStage creates a narration stage writing audio under outputDir.
func NewStage(synth Synthesizer, prober Prober, store checkpoint.Store, outputDir string) *Stage {
	return &Stage{synth: synth, prober: prober, store: store, outputDir: outputDir}
}

// Run processes the beats in scenario order. Beats without a checkpoint slot,
// or whose visual stages have not finished, are skipped with a warning.
func (s *Stage) Run(ctx context.Context, state *types.PipelineState) (*Summary, error) {
	logger := logging.FromContext(ctx)
	if state.Scenario == nil {
		return nil, ErrNoScenario
	}

	summary := &Summary{}
	for i, prompt := range state.Scenario.Beats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, ok := state.Beat(i)
		if !ok {
			logger.Warn("no checkpoint data for beat, skipping narration", "beat", i)
			summary.Skipped = append(summary.Skipped, i)
			continue
		}
		if err := steps.ValidateDependencies(rec, types.StageNarration); err != nil {
			logger.Warn("beat visuals incomplete, skipping narration", "beat", i, "error", err)
			summary.Skipped = append(summary.Skipped, i)
			continue
		}

		if err := s.narrate(ctx, state, *rec, prompt.NarrationText); err != nil {
			return nil, err
		}
	}

	fillSummary(summary, state)
	logger.Info("narration finished",
		"beats", summary.Count,
		"total_seconds", summary.TotalDuration,
		"mean_seconds", summary.MeanDuration)
	return summary, nil
}

func (s *Stage) narrate(ctx context.Context, state *types.PipelineState, rec types.BeatRecord, text string) error {
	logger := logging.FromContext(ctx).With("beat", rec.Index)
	rel := AudioPath(rec.Index)
	abs := filepath.Join(s.outputDir, rel)
	changed := false

	if _, err := os.Stat(abs); err != nil {
		rec.SetStage(types.StageNarration, types.StatusInProgress)
		rec.SetStage(types.StageDuration, types.StatusPending)
		rec.DurationSeconds = nil
		if err := s.save(ctx, state, rec); err != nil {
			return err
		}
		logger.Info("synthesizing narration")
		if err := s.synthesizeFile(ctx, text, abs); err != nil {
			return &StageError{Beat: rec.Index, Stage: types.StageNarration, Cause: err}
		}
		changed = true
	} else {
		logger.Debug("narration audio exists")
	}
	if rec.AudioPath != rel || rec.Status(types.StageNarration) != types.StatusDone {
		changed = true
	}
	rec.AudioPath = rel
	rec.SetStage(types.StageNarration, types.StatusDone)

	if rec.Status(types.StageDuration) != types.StatusDone || !rec.HasDuration() {
		d, err := s.prober.Probe(ctx, abs)
		if err != nil {
			return &StageError{Beat: rec.Index, Stage: types.StageDuration, Cause: err}
		}
		rec.DurationSeconds = &d
		rec.SetStage(types.StageDuration, types.StatusDone)
		changed = true
		logger.Info("measured narration", "seconds", d)
	}

	if !changed {
		return nil
	}
	return s.save(ctx, state, rec)
}

// synthesizeFile writes to a temporary file and renames it into place so a
// partial download never looks like finished audio.
func (s *Stage) synthesizeFile(ctx context.Context, text, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".narration-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := s.synth.Synthesize(ctx, text, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move audio into place: %w", err)
	}
	return nil
}

func (s *Stage) save(ctx context.Context, state *types.PipelineState, rec types.BeatRecord) error {
	state.UpsertBeat(rec)
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save beat %d: %w", rec.Index, err)
	}
	return nil
}

func fillSummary(summary *Summary, state *types.PipelineState) {
	for _, b := range state.Beats {
		if !b.HasDuration() {
			continue
		}
		summary.TotalDuration += b.Duration()
		summary.Count++
	}
	if summary.Count > 0 {
		summary.MeanDuration = summary.TotalDuration / float64(summary.Count)
	}
}
