package types

import "github.com/google/uuid"

// TimelineEntry places one beat on the global frame axis
type TimelineEntry struct {
	BeatIndex    int `json:"beatIndex"`
	StartFrame   int `json:"startFrame"`
	LengthFrames int `json:"lengthFrames"`
}

// ReelDocument is the final timeline document consumed by the rendering runtime.
type ReelDocument struct {
	RunID         uuid.UUID       `json:"run_id"`
	Beats         []BeatRecord    `json:"beats"`
	TotalDuration float64         `json:"totalDuration"`
	MeanDuration  float64         `json:"meanDuration"`
	SlideDuration float64         `json:"slideDuration"`
	FPS           int             `json:"fps"`
	TotalFrames   int             `json:"totalFrames"`
	Timeline      []TimelineEntry `json:"timeline"`
}

// BeatByIndex returns the beat record with the given index.
func (d *ReelDocument) BeatByIndex(index int) (*BeatRecord, bool) {
	for i := range d.Beats {
		if d.Beats[i].Index == index {
			return &d.Beats[i], true
		}
	}
	return nil, false
}
