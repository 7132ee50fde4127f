// Package steps provides the per-beat stage definitions and dependency
// validation for the reel pipeline.
package steps

import (
	"fmt"

	"github.com/jonathan/parallax-reel/internal/types"
)

// Stage categories
const (
	CategoryVisual = "visual"
	CategoryAudio  = "audio"
)

// StepDefinition defines metadata for a per-beat stage
type StepDefinition struct {
	Stage        types.Stage
	Category     string
	Dependencies []types.Stage
}

// StepRegistry holds all stage definitions
var StepRegistry = map[types.Stage]StepDefinition{
	types.StageImage: {
		Stage:        types.StageImage,
		Category:     CategoryVisual,
		Dependencies: []types.Stage{},
	},
	types.StageSegmentation: {
		Stage:        types.StageSegmentation,
		Category:     CategoryVisual,
		Dependencies: []types.Stage{types.StageImage},
	},
	types.StagePivot: {
		Stage:        types.StagePivot,
		Category:     CategoryVisual,
		Dependencies: []types.Stage{types.StageSegmentation},
	},
	types.StageNarration: {
		Stage:        types.StageNarration,
		Category:     CategoryAudio,
		Dependencies: []types.Stage{types.StagePivot},
	},
	types.StageDuration: {
		Stage:        types.StageDuration,
		Category:     CategoryAudio,
		Dependencies: []types.Stage{types.StageNarration},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Beat                int
	Stage               types.Stage
	MissingDependencies []types.Stage
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("beat %d: stage %s missing dependencies: %v", e.Beat, e.Stage, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of stage is done on rec.
func ValidateDependencies(rec *types.BeatRecord, stage types.Stage) error {
	def, ok := StepRegistry[stage]
	if !ok {
		return fmt.Errorf("unknown stage: %s", stage)
	}

	var missing []types.Stage
	for _, dep := range def.Dependencies {
		if rec.Status(dep) != types.StatusDone {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Beat:                rec.Index,
			Stage:               stage,
			MissingDependencies: missing,
		}
	}
	return nil
}

// NextStage returns the first stage of rec that is not done, in execution order.
// ok is false when every stage is done.
func NextStage(rec *types.BeatRecord) (types.Stage, bool) {
	for _, stage := range types.AllStages {
		if rec.Status(stage) != types.StatusDone {
			return stage, true
		}
	}
	return "", false
}

// AvailableStages returns the stages whose dependencies are met but which are not done yet.
func AvailableStages(rec *types.BeatRecord) []types.Stage {
	var available []types.Stage
	for _, stage := range types.AllStages {
		if rec.Status(stage) == types.StatusDone {
			continue
		}
		if ValidateDependencies(rec, stage) != nil {
			continue
		}
		available = append(available, stage)
	}
	return available
}

// BlockedStages returns the stages that cannot run yet because a dependency is not done.
func BlockedStages(rec *types.BeatRecord) []types.Stage {
	var blocked []types.Stage
	for _, stage := range types.AllStages {
		if rec.Status(stage) == types.StatusDone {
			continue
		}
		if ValidateDependencies(rec, stage) != nil {
			blocked = append(blocked, stage)
		}
	}
	return blocked
}
