package parallax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parallax-reel/internal/types"
)

func TestEase_FixedPoints(t *testing.T) {
	assert.Equal(t, 0.0, Ease(0))
	assert.Equal(t, 0.5, Ease(0.5))
	assert.Equal(t, 1.0, Ease(1))
	assert.InDelta(t, 4*0.25*0.25*0.25, Ease(0.25), 1e-12)
}

func TestEase_Monotonic(t *testing.T) {
	prev := Ease(0)
	for i := 1; i <= 1000; i++ {
		cur := Ease(float64(i) / 1000)
		assert.GreaterOrEqual(t, cur, prev, "ease must not decrease at step %d", i)
		prev = cur
	}
}

func TestEase_Symmetric(t *testing.T) {
	for _, p := range []float64{0.1, 0.2, 0.3, 0.45} {
		assert.InDelta(t, 1-Ease(p), Ease(1-p), 1e-12)
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(0, 100))
	assert.Equal(t, 0.5, Progress(50, 100))
	assert.Equal(t, 1.0, Progress(150, 100))
	assert.Equal(t, 0.0, Progress(-5, 100))
	assert.Equal(t, 0.0, Progress(10, 0))
}

func TestCompose(t *testing.T) {
	pivot := types.Point{X: 120, Y: 480}
	dims := types.Dimensions{Width: 480, Height: 640}

	start := Compose(0, 100, pivot, dims)
	assert.Equal(t, 1.0, start.Background.Scale)
	assert.Equal(t, 1.0, start.Object.Scale)
	assert.Equal(t, 50.0, start.Background.OriginX)
	assert.Equal(t, 50.0, start.Background.OriginY)
	assert.Equal(t, 25.0, start.Object.OriginX)
	assert.Equal(t, 75.0, start.Object.OriginY)

	mid := Compose(50, 100, pivot, dims)
	assert.InDelta(t, 1.075, mid.Background.Scale, 1e-12)
	assert.InDelta(t, 1.2, mid.Object.Scale, 1e-12)

	end := Compose(100, 100, pivot, dims)
	assert.InDelta(t, 1.15, end.Background.Scale, 1e-12)
	assert.InDelta(t, 1.40, end.Object.Scale, 1e-12)
}

func TestCompose_ZeroDimensionsUseCenter(t *testing.T) {
	ft := Compose(10, 20, types.Point{X: 5, Y: 5}, types.Dimensions{})
	assert.Equal(t, 50.0, ft.Object.OriginX)
	assert.Equal(t, 50.0, ft.Object.OriginY)
}

func TestTransform_CSS(t *testing.T) {
	transform, origin := Transform{Scale: 1.2, OriginX: 25, OriginY: 75.5}.CSS()
	assert.Equal(t, "scale(1.2)", transform)
	assert.Equal(t, "25% 75.5%", origin)
}

func TestTrack(t *testing.T) {
	b := &types.BeatRecord{Pivot: types.Point{X: 240, Y: 320}, Dimensions: types.Dimensions{Width: 480, Height: 640}}

	track := Track(b, 30)
	require.Len(t, track, 30)
	for i := 1; i < len(track); i++ {
		assert.Equal(t, i, track[i].Frame)
		assert.GreaterOrEqual(t, track[i].Object.Scale, track[i-1].Object.Scale)
		assert.Greater(t, track[i].Object.Scale, track[i].Background.Scale)
	}
	assert.Nil(t, Track(b, 0))
}

func TestSheet(t *testing.T) {
	doc := &types.ReelDocument{
		FPS: 30,
		Beats: []types.BeatRecord{
			{Index: 0, Dimensions: types.Dimensions{Width: 480, Height: 640}},
			{Index: 1, Dimensions: types.Dimensions{Width: 480, Height: 640}},
		},
		Timeline: []types.TimelineEntry{
			{BeatIndex: 0, StartFrame: 0, LengthFrames: 126},
			{BeatIndex: 1, StartFrame: 126, LengthFrames: 114},
		},
		TotalFrames: 240,
	}

	sheets, err := Sheet(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, 0, sheets[0].BeatIndex)
	assert.Len(t, sheets[0].Frames, 126)
	assert.Equal(t, 126, sheets[1].StartFrame)
	assert.Len(t, sheets[1].Frames, 114)

	doc.Timeline = append(doc.Timeline, types.TimelineEntry{BeatIndex: 7, StartFrame: 240, LengthFrames: 10})
	_, err = Sheet(context.Background(), doc)
	assert.Error(t, err)
}

func TestSheet_Canceled(t *testing.T) {
	doc := &types.ReelDocument{
		Beats:    []types.BeatRecord{{Index: 0}},
		Timeline: []types.TimelineEntry{{BeatIndex: 0, LengthFrames: 10}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sheet(ctx, doc)
	assert.ErrorIs(t, err, context.Canceled)
}
