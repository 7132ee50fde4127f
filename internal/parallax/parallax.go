// Package parallax computes the per-frame layer transforms of a beat: the
// background zooms slowly around the image center while the subject zooms
// faster around its pivot.
//
// Every function here is pure and safe for concurrent use.
package parallax

import (
	"strconv"

	"github.com/jonathan/parallax-reel/internal/types"
)

// Zoom ranges reached at the end of a beat
const (
	BackgroundZoom = 0.15
	ObjectZoom     = 0.40
)

// Transform is a uniform scale about an origin given in percent of the layer size.
type Transform struct {
	Scale   float64 `json:"scale"`
	OriginX float64 `json:"originX"`
	OriginY float64 `json:"originY"`
}

// FrameTransforms holds both layer transforms for one frame.
type FrameTransforms struct {
	Frame      int       `json:"frame"`
	Progress   float64   `json:"progress"`
	Background Transform `json:"background"`
	Object     Transform `json:"object"`
}

// Ease is a symmetric cubic ease-in-out on [0,1].
func Ease(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := -2*p + 2
	return 1 - q*q*q/2
}

// Progress returns frame/length clamped to [0,1]. A non-positive length yields 0.
func Progress(frame, length int) float64 {
	if length <= 0 {
		return 0
	}
	p := float64(frame) / float64(length)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Compose returns the layer transforms for a frame within a beat.
func Compose(frame, length int, pivot types.Point, dims types.Dimensions) FrameTransforms {
	p := Progress(frame, length)
	t := Ease(p)

	originX, originY := 50.0, 50.0
	if dims.Width > 0 {
		originX = pivot.X / float64(dims.Width) * 100
	}
	if dims.Height > 0 {
		originY = pivot.Y / float64(dims.Height) * 100
	}

	return FrameTransforms{
		Frame:    frame,
		Progress: p,
		Background: Transform{
			Scale:   1 + BackgroundZoom*t,
			OriginX: 50,
			OriginY: 50,
		},
		Object: Transform{
			Scale:   1 + ObjectZoom*t,
			OriginX: originX,
			OriginY: originY,
		},
	}
}

// ComposeBeat is Compose for a stored beat record.
func ComposeBeat(b *types.BeatRecord, frame, length int) FrameTransforms {
	return Compose(frame, length, b.Pivot, b.Dimensions)
}

// CSS renders the transform as CSS transform and transform-origin values.
func (t Transform) CSS() (transform, origin string) {
	transform = "scale(" + strconv.FormatFloat(t.Scale, 'f', -1, 64) + ")"
	origin = strconv.FormatFloat(t.OriginX, 'f', -1, 64) + "% " + strconv.FormatFloat(t.OriginY, 'f', -1, 64) + "%"
	return transform, origin
}

// Track computes the transforms of every frame of a beat.
func Track(b *types.BeatRecord, length int) []FrameTransforms {
	if length <= 0 {
		return nil
	}
	out := make([]FrameTransforms, length)
	for f := 0; f < length; f++ {
		out[f] = ComposeBeat(b, f, length)
	}
	return out
}
