// Package timeline converts narration durations into a frame-exact sequence
// of beats on a fixed frame rate.
package timeline

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/jonathan/parallax-reel/internal/types"
)

// DefaultFPS is the frame rate of the rendered reel.
const DefaultFPS = 30

// ceilTolerance absorbs float noise such as 4.2*30 = 126.00000000000001.
const ceilTolerance = 1e-9

// ErrNoDurations is returned when a beat lacks a duration and no beat has one to average.
var ErrNoDurations = errors.New("no beat has a measured duration")

// Timeline is the ordered, gapless placement of beats.
type Timeline struct {
	FPS         int                   `json:"fps"`
	Entries     []types.TimelineEntry `json:"entries"`
	TotalFrames int                   `json:"totalFrames"`
}

// Frames returns the number of frames needed to cover seconds, rounding up.
func Frames(seconds float64, fps int) int {
	return int(math.Ceil(seconds*float64(fps) - ceilTolerance))
}

// FallbackDuration returns the mean of all measured durations.
func FallbackDuration(beats []types.BeatRecord) (float64, bool) {
	var total float64
	var n int
	for _, b := range beats {
		if b.HasDuration() {
			total += b.Duration()
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

// Build places beats in ascending index order. Each beat spans the ceiling of
// its duration times fps; beats without a duration use the mean duration.
func Build(beats []types.BeatRecord, fps int) (*Timeline, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %d", fps)
	}

	ordered := make([]types.BeatRecord, len(beats))
	copy(ordered, beats)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	fallback, hasFallback := FallbackDuration(ordered)

	tl := &Timeline{FPS: fps, Entries: make([]types.TimelineEntry, 0, len(ordered))}
	for _, b := range ordered {
		d := b.Duration()
		if !b.HasDuration() {
			if !hasFallback {
				return nil, fmt.Errorf("beat %d: %w", b.Index, ErrNoDurations)
			}
			d = fallback
		}

		length := Frames(d, fps)
		tl.Entries = append(tl.Entries, types.TimelineEntry{
			BeatIndex:    b.Index,
			StartFrame:   tl.TotalFrames,
			LengthFrames: length,
		})
		tl.TotalFrames += length
	}

	return tl, nil
}

// EntryAt returns the entry covering a global frame and the frame's offset within it.
func (t *Timeline) EntryAt(frame int) (types.TimelineEntry, int, bool) {
	if frame < 0 || frame >= t.TotalFrames {
		return types.TimelineEntry{}, 0, false
	}
	i := sort.Search(len(t.Entries), func(i int) bool {
		e := t.Entries[i]
		return e.StartFrame+e.LengthFrames > frame
	})
	if i == len(t.Entries) {
		return types.TimelineEntry{}, 0, false
	}
	e := t.Entries[i]
	return e, frame - e.StartFrame, true
}

// FromDocument rebuilds the timeline view of a stored reel document.
func FromDocument(doc *types.ReelDocument) *Timeline {
	return &Timeline{FPS: doc.FPS, Entries: doc.Timeline, TotalFrames: doc.TotalFrames}
}

// NewDocument assembles the final reel document from the beat records and their timeline.
func NewDocument(runID uuid.UUID, beats []types.BeatRecord, tl *Timeline) *types.ReelDocument {
	ordered := make([]types.BeatRecord, len(beats))
	copy(ordered, beats)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	doc := &types.ReelDocument{
		RunID:       runID,
		Beats:       ordered,
		FPS:         tl.FPS,
		TotalFrames: tl.TotalFrames,
		Timeline:    tl.Entries,
	}
	for _, b := range ordered {
		doc.TotalDuration += b.Duration()
	}
	if mean, ok := FallbackDuration(ordered); ok {
		doc.MeanDuration = mean
		doc.SlideDuration = mean
	}
	return doc
}
