package checkpoint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parallax-reel/internal/types"
)

func sampleState() *types.PipelineState {
	d := 4.2
	state := types.NewPipelineState()
	state.Scenario = &types.Scenario{Beats: []types.BeatPrompt{
		{Kind: "hook", NarrationText: "one", ImagePrompt: "a fox"},
		{Kind: "outro", NarrationText: "two", ImagePrompt: "a owl"},
	}}
	state.UpsertBeat(types.BeatRecord{Index: 1, Kind: "outro", Completed: true})
	state.UpsertBeat(types.BeatRecord{
		Index:           0,
		Kind:            "hook",
		Pivot:           types.Point{X: 240, Y: 320},
		Dimensions:      types.Dimensions{Width: 480, Height: 640},
		DurationSeconds: &d,
		Completed:       true,
		Stages:          map[types.Stage]types.StageStatus{types.StageImage: types.StatusDone},
	})
	return state
}

func TestFileStore_LoadMissingReturnsEmptyState(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"), filepath.Join(dir, "reel.json"))

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state.Scenario)
	assert.Empty(t, state.Beats)
	assert.False(t, state.Completed)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nested", "state.json"), filepath.Join(dir, "reel.json"))
	ctx := context.Background()

	original := sampleState()
	require.NoError(t, store.Save(ctx, original))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, original.RunID, loaded.RunID)
	assert.Equal(t, original.Scenario, loaded.Scenario)
	require.Len(t, loaded.Beats, 2)
	assert.Equal(t, 0, loaded.Beats[0].Index)
	assert.Equal(t, 4.2, loaded.Beats[0].Duration())
	assert.Equal(t, types.StatusDone, loaded.Beats[0].Status(types.StageImage))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_SaveIsFullOverwrite(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"), filepath.Join(dir, "reel.json"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState()))

	replacement := types.NewPipelineState()
	require.NoError(t, store.Save(ctx, replacement))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded.Scenario)
	assert.Empty(t, loaded.Beats)
}

func TestFileStore_DeterministicEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewFileStore(path, filepath.Join(dir, "reel.json"))
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, store.Save(ctx, state))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFileStore_CorruptCheckpoint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": "one"}`), 0644))

	_, err := NewFileStore(path, filepath.Join(dir, "reel.json")).Load(context.Background())
	require.Error(t, err)

	var corrupt *CorruptError
	assert.True(t, errors.As(err, &corrupt))
}

func TestFileStore_NewerVersionRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	doc := `{"version": 99, "run_id": "550e8400-e29b-41d4-a716-446655440000", "beats": [], "completed": false}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	_, err := NewFileStore(path, filepath.Join(dir, "reel.json")).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestDecode_RejectsDuplicateBeatIndex(t *testing.T) {
	doc := `{"version": 1, "run_id": "r", "completed": false, "beats": [
		{"index": 0, "completed": true},
		{"index": 0, "completed": false}
	]}`

	_, err := Decode("state.json", []byte(doc))
	var corrupt *CorruptError
	require.ErrorAs(t, err, &corrupt)
	assert.Contains(t, err.Error(), "beat 0 recorded more than once")
}

func TestDecode_RejectsScenarioWithoutBeats(t *testing.T) {
	for name, scenario := range map[string]string{
		"no beats":    `{}`,
		"empty beats": `{"beats": []}`,
		"blank kind":  `{"beats": [{"kind": "", "narrationText": "n", "imagePrompt": "p"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			doc := `{"version": 1, "run_id": "r", "completed": false, "beats": [], "scenario": ` + scenario + `}`

			_, err := Decode("state.json", []byte(doc))
			var corrupt *CorruptError
			require.ErrorAs(t, err, &corrupt)
		})
	}
}

func TestDecode_AcceptsNullScenario(t *testing.T) {
	doc := `{"version": 1, "run_id": "r", "completed": false, "beats": null, "scenario": null}`

	state, err := Decode("state.json", []byte(doc))
	require.NoError(t, err)
	assert.Nil(t, state.Scenario)
	assert.Empty(t, state.Beats)
}

func TestFileStore_ReelAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "state.json"), filepath.Join(dir, "reel.json"))
	ctx := context.Background()

	_, err := store.LoadReel(ctx)
	assert.ErrorIs(t, err, ErrNoReel)

	require.NoError(t, store.Save(ctx, sampleState()))
	require.NoError(t, store.SaveReel(ctx, &types.ReelDocument{FPS: 30, TotalFrames: 240}))

	doc, err := store.LoadReel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 240, doc.TotalFrames)

	require.NoError(t, store.Delete(ctx))
	require.NoError(t, store.Delete(ctx))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.Scenario)
}

type fakeDB struct {
	checkpoints map[string][]byte
	reels       map[string][]byte
	err         error
}

func newFakeDB() *fakeDB {
	return &fakeDB{checkpoints: map[string][]byte{}, reels: map[string][]byte{}}
}

func (f *fakeDB) LoadCheckpoint(_ context.Context, project string) ([]byte, error) {
	return f.checkpoints[project], f.err
}

func (f *fakeDB) SaveCheckpoint(_ context.Context, project string, state []byte) error {
	if f.err != nil {
		return f.err
	}
	f.checkpoints[project] = state
	return nil
}

func (f *fakeDB) DeleteCheckpoint(_ context.Context, project string) error {
	delete(f.checkpoints, project)
	delete(f.reels, project)
	return f.err
}

func (f *fakeDB) SaveReelDocument(_ context.Context, project string, document []byte) error {
	f.reels[project] = document
	return f.err
}

func (f *fakeDB) GetReelDocument(_ context.Context, project string) ([]byte, error) {
	return f.reels[project], f.err
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	db := newFakeDB()
	store := NewPostgresStore(db, "demo")
	ctx := context.Background()

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Beats)

	state := sampleState()
	require.NoError(t, store.Save(ctx, state))
	assert.Contains(t, db.checkpoints, "demo")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.RunID, loaded.RunID)

	_, err = store.LoadReel(ctx)
	assert.ErrorIs(t, err, ErrNoReel)

	require.NoError(t, store.SaveReel(ctx, &types.ReelDocument{FPS: 30}))
	doc, err := store.LoadReel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, doc.FPS)

	require.NoError(t, store.Delete(ctx))
	assert.Empty(t, db.checkpoints)
}

func TestPostgresStore_PropagatesErrors(t *testing.T) {
	db := newFakeDB()
	db.err = errors.New("connection refused")
	store := NewPostgresStore(db, "demo")

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, store.Save(context.Background(), sampleState()))
}

func TestMemoryStore_CountsSaves(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleState()))
	require.NoError(t, store.Save(ctx, sampleState()))
	assert.Equal(t, 2, store.Saves())
	assert.NotEmpty(t, store.Raw())
}
