package pivot

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/parallax-reel/internal/types"
)

func rectNRGBA(w, h int, r image.Rectangle, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 10, A: alpha})
		}
	}
	return img
}

func TestDetect_OpaqueRectangle(t *testing.T) {
	// Opaque pixels span x 100..199 and y 50..149
	img := rectNRGBA(480, 640, image.Rect(100, 50, 200, 150), 255)

	res := Detect(img, DefaultAlphaThreshold)
	assert.False(t, res.Empty)
	assert.Equal(t, types.Point{X: 149.5, Y: 99.5}, res.Pivot)
	assert.Equal(t, types.Dimensions{Width: 480, Height: 640}, res.Dimensions)
}

func TestDetect_SinglePixel(t *testing.T) {
	img := rectNRGBA(10, 10, image.Rect(3, 7, 4, 8), 255)

	res := Detect(img, DefaultAlphaThreshold)
	assert.Equal(t, types.Point{X: 3, Y: 7}, res.Pivot)
}

func TestDetect_AllTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 480, 640))

	res := Detect(img, DefaultAlphaThreshold)
	assert.True(t, res.Empty)
	assert.Equal(t, types.Point{X: 240, Y: 320}, res.Pivot)
	assert.Equal(t, types.Dimensions{Width: 480, Height: 640}, res.Dimensions)
}

func TestDetect_AlphaAtThresholdIsTransparent(t *testing.T) {
	img := rectNRGBA(20, 20, image.Rect(0, 0, 5, 5), DefaultAlphaThreshold)
	res := Detect(img, DefaultAlphaThreshold)
	assert.True(t, res.Empty)

	img = rectNRGBA(20, 20, image.Rect(0, 0, 5, 5), DefaultAlphaThreshold+1)
	res = Detect(img, DefaultAlphaThreshold)
	assert.False(t, res.Empty)
	assert.Equal(t, types.Point{X: 2, Y: 2}, res.Pivot)
}

func TestDetect_RGBAFastPath(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 10; y < 30; y++ {
		for x := 60; x < 90; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}

	res := Detect(img, DefaultAlphaThreshold)
	assert.Equal(t, types.Point{X: 74.5, Y: 19.5}, res.Pivot)
}

func TestDetect_NoAlphaChannelIsOpaque(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 32))

	res := Detect(img, DefaultAlphaThreshold)
	assert.False(t, res.Empty)
	assert.Equal(t, types.Point{X: 31.5, Y: 15.5}, res.Pivot)
}

func TestDetect_SubImageOffsets(t *testing.T) {
	full := rectNRGBA(200, 200, image.Rect(120, 120, 130, 130), 255)
	sub := full.SubImage(image.Rect(100, 100, 200, 200))

	res := Detect(sub, DefaultAlphaThreshold)
	assert.Equal(t, types.Dimensions{Width: 100, Height: 100}, res.Dimensions)
	assert.Equal(t, types.Point{X: 24.5, Y: 24.5}, res.Pivot)
}

func TestDetect_PivotInsideBounds(t *testing.T) {
	img := rectNRGBA(50, 80, image.Rect(0, 0, 50, 80), 255)
	res := Detect(img, DefaultAlphaThreshold)

	assert.GreaterOrEqual(t, res.Pivot.X, 0.0)
	assert.LessOrEqual(t, res.Pivot.X, float64(res.Dimensions.Width))
	assert.GreaterOrEqual(t, res.Pivot.Y, 0.0)
	assert.LessOrEqual(t, res.Pivot.Y, float64(res.Dimensions.Height))
}

func TestDetectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "original_rgba.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, rectNRGBA(40, 60, image.Rect(10, 20, 20, 40), 255)))
	require.NoError(t, f.Close())

	res, err := DetectFile(path, DefaultAlphaThreshold)
	require.NoError(t, err)
	assert.Equal(t, types.Point{X: 14.5, Y: 29.5}, res.Pivot)
	assert.Equal(t, types.Dimensions{Width: 40, Height: 60}, res.Dimensions)
}

func TestDetectFile_Errors(t *testing.T) {
	_, err := DetectFile(filepath.Join(t.TempDir(), "missing.png"), DefaultAlphaThreshold)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = DetectFile(bad, DefaultAlphaThreshold)
	assert.Error(t, err)
}
