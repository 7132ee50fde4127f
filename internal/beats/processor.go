// Package beats runs the visual stages for each beat of the scenario:
// image generation, subject/background segmentation and pivot detection.
package beats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/parallax-reel/internal/checkpoint"
	"github.com/jonathan/parallax-reel/internal/imaging"
	"github.com/jonathan/parallax-reel/internal/logging"
	"github.com/jonathan/parallax-reel/internal/pipeline/steps"
	"github.com/jonathan/parallax-reel/internal/pivot"
	"github.com/jonathan/parallax-reel/internal/segmentation"
	"github.com/jonathan/parallax-reel/internal/types"
)

// OriginalImageName is the file name of the generated beat image.
const OriginalImageName = "original.png"

// StageError reports a failed stage for a beat. The run aborts; a rerun
// resumes at the stage whose artifact is missing.
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

// Processor produces the visual artifacts of a beat.
type Processor struct {
	generator      imaging.Generator
	segmenter      segmentation.Segmenter
	store          checkpoint.Store
	outputDir      string
	alphaThreshold uint8
}

// NewProcessor creates a processor writing artifacts under outputDir.
func NewProcessor(generator imaging.Generator, segmenter segmentation.Segmenter, store checkpoint.Store, outputDir string, alphaThreshold uint8) *Processor {
	return &Processor{
		generator:      generator,
		segmenter:      segmenter,
		store:          store,
		outputDir:      outputDir,
		alphaThreshold: alphaThreshold,
	}
}

// BeatDir returns the artifact directory of beat i, relative to the output directory.
func BeatDir(i int) string {
	return fmt.Sprintf("beat_%d", i)
}

// ArtifactPaths returns the relative paths of the original image and its two layers.
func ArtifactPaths(i int) (original, object, background string) {
	dir := BeatDir(i)
	original = filepath.Join(dir, OriginalImageName)
	object = segmentation.SubjectPath(original, filepath.Join(dir, segmentation.SubjectDir))
	background = segmentation.BackgroundPath(original, filepath.Join(dir, segmentation.BackgroundDir))
	return original, object, background
}

// Process runs the visual stages for beat i. A beat that is already completed
// is returned unchanged without any tool call or save.
func (p *Processor) Process(ctx context.Context, state *types.PipelineState, i int, prompt types.BeatPrompt) (*types.BeatRecord, error) {
	logger := logging.FromContext(ctx).With("beat", i)

	if existing, ok := state.Beat(i); ok && existing.Completed {
		logger.Debug("beat already completed, skipping")
		rec := *existing
		return &rec, nil
	}

	rec := types.BeatRecord{Index: i}
	if existing, ok := state.Beat(i); ok {
		rec = *existing
	}
	rec.Kind = prompt.Kind
	rec.NarrationText = prompt.NarrationText
	rec.ImagePrompt = prompt.ImagePrompt

	origRel, objRel, bgRel := ArtifactPaths(i)
	origPath := p.abs(origRel)
	objPath := p.abs(objRel)
	bgPath := p.abs(bgRel)

	// Image
	if !fileExists(origPath) {
		if err := p.begin(ctx, state, &rec, types.StageImage); err != nil {
			return nil, err
		}
		logger.Info("generating image")
		err := publishFile(origPath, func(tmp string) error {
			return p.generator.Generate(ctx, prompt.ImagePrompt, tmp)
		})
		if err != nil {
			return nil, &StageError{Beat: i, Stage: types.StageImage, Cause: err}
		}
	}
	rec.OriginalImagePath = origRel
	rec.SetStage(types.StageImage, types.StatusDone)

	// Segmentation; each layer is produced only when its file is missing.
	if err := steps.ValidateDependencies(&rec, types.StageSegmentation); err != nil {
		return nil, err
	}
	if !fileExists(objPath) || !fileExists(bgPath) {
		if err := p.begin(ctx, state, &rec, types.StageSegmentation); err != nil {
			return nil, err
		}
	}
	if !fileExists(objPath) {
		logger.Info("extracting subject")
		if err := publishLayer(ctx, objPath, origPath, p.segmenter.ExtractSubject); err != nil {
			return nil, &StageError{Beat: i, Stage: types.StageSegmentation, Cause: err}
		}
	}
	if !fileExists(bgPath) {
		logger.Info("extracting background")
		if err := publishLayer(ctx, bgPath, origPath, p.segmenter.ExtractBackground); err != nil {
			return nil, &StageError{Beat: i, Stage: types.StageSegmentation, Cause: err}
		}
	}
	rec.ObjectImagePath = objRel
	rec.BackgroundImagePath = bgRel
	rec.SetStage(types.StageSegmentation, types.StatusDone)

	// Pivot
	if err := steps.ValidateDependencies(&rec, types.StagePivot); err != nil {
		return nil, err
	}
	res, err := pivot.DetectFile(objPath, p.alphaThreshold)
	if err != nil {
		return nil, &StageError{Beat: i, Stage: types.StagePivot, Cause: err}
	}
	if res.Empty {
		logger.Warn("subject layer has no opaque pixels, using image center as pivot")
	}
	rec.Pivot = res.Pivot
	rec.Dimensions = res.Dimensions
	rec.SetStage(types.StagePivot, types.StatusDone)

	rec.Completed = true
	state.UpsertBeat(rec)
	if err := p.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save beat %d: %w", i, err)
	}

	logger.Info("beat completed", "pivot_x", rec.Pivot.X, "pivot_y", rec.Pivot.Y)
	return &rec, nil
}

// begin records stage as in progress and persists the state before an external call.
func (p *Processor) begin(ctx context.Context, state *types.PipelineState, rec *types.BeatRecord, stage types.Stage) error {
	rec.SetStage(stage, types.StatusInProgress)
	state.UpsertBeat(*rec)
	if err := p.store.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save beat %d: %w", rec.Index, err)
	}
	return nil
}

func (p *Processor) abs(rel string) string {
	return filepath.Join(p.outputDir, rel)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
