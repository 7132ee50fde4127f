package steps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parallax-reel/internal/types"
)

func TestStepRegistry_CoversAllStages(t *testing.T) {
	for _, stage := range types.AllStages {
		def, ok := StepRegistry[stage]
		require.True(t, ok, "stage %s must be registered", stage)
		assert.Equal(t, stage, def.Stage)
		for _, dep := range def.Dependencies {
			_, ok := StepRegistry[dep]
			assert.True(t, ok, "dependency %s of %s must be registered", dep, stage)
		}
	}
}

func TestValidateDependencies(t *testing.T) {
	rec := &types.BeatRecord{Index: 3}

	assert.NoError(t, ValidateDependencies(rec, types.StageImage))

	err := ValidateDependencies(rec, types.StagePivot)
	require.Error(t, err)
	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, 3, depErr.Beat)
	assert.Equal(t, []types.Stage{types.StageSegmentation}, depErr.MissingDependencies)

	rec.SetStage(types.StageImage, types.StatusDone)
	rec.SetStage(types.StageSegmentation, types.StatusDone)
	assert.NoError(t, ValidateDependencies(rec, types.StagePivot))

	assert.Error(t, ValidateDependencies(rec, "unknown"))
}

func TestValidateDependencies_InProgressIsNotDone(t *testing.T) {
	rec := &types.BeatRecord{}
	rec.SetStage(types.StageImage, types.StatusInProgress)

	assert.Error(t, ValidateDependencies(rec, types.StageSegmentation))
}

func TestNextStage(t *testing.T) {
	rec := &types.BeatRecord{}
	stage, ok := NextStage(rec)
	require.True(t, ok)
	assert.Equal(t, types.StageImage, stage)

	for _, s := range []types.Stage{types.StageImage, types.StageSegmentation, types.StagePivot} {
		rec.SetStage(s, types.StatusDone)
	}
	stage, ok = NextStage(rec)
	require.True(t, ok)
	assert.Equal(t, types.StageNarration, stage)

	rec.SetStage(types.StageNarration, types.StatusDone)
	rec.SetStage(types.StageDuration, types.StatusDone)
	_, ok = NextStage(rec)
	assert.False(t, ok)
}

func TestAvailableAndBlocked(t *testing.T) {
	rec := &types.BeatRecord{}
	rec.SetStage(types.StageImage, types.StatusDone)

	assert.Equal(t, []types.Stage{types.StageSegmentation}, AvailableStages(rec))
	assert.Equal(t, []types.Stage{types.StagePivot, types.StageNarration, types.StageDuration}, BlockedStages(rec))
}
