// Package types provides the data model shared by the reel pipeline stages.
package types

import (
	"sort"

	"github.com/google/uuid"
)

// StateVersion is the current checkpoint schema version
const StateVersion = 1

// PipelineState is the persisted checkpoint of a reel run.
// It is always written as a whole; stages never merge partial documents.
type PipelineState struct {
	Version             int          `json:"version"`
	RunID               uuid.UUID    `json:"run_id"`
	Scenario            *Scenario    `json:"scenario,omitempty"`
	ScenarioFingerprint string       `json:"scenario_fingerprint,omitempty"`
	Beats               []BeatRecord `json:"beats"`
	Completed           bool         `json:"completed"`
}

// NewPipelineState returns the empty state used when no checkpoint exists.
func NewPipelineState() *PipelineState {
	return &PipelineState{
		Version: StateVersion,
		RunID:   uuid.New(),
		Beats:   []BeatRecord{},
	}
}

// Beat returns the record for the given beat index.
func (s *PipelineState) Beat(index int) (*BeatRecord, bool) {
	for i := range s.Beats {
		if s.Beats[i].Index == index {
			return &s.Beats[i], true
		}
	}
	return nil, false
}

// UpsertBeat replaces the record with the same index or appends it,
// keeping beats ordered by index.
func (s *PipelineState) UpsertBeat(rec BeatRecord) {
	for i := range s.Beats {
		if s.Beats[i].Index == rec.Index {
			s.Beats[i] = rec
			return
		}
	}
	s.Beats = append(s.Beats, rec)
	sort.SliceStable(s.Beats, func(i, j int) bool {
		return s.Beats[i].Index < s.Beats[j].Index
	})
}

// MarkCompleted flags the run as finished. Completion is never reverted.
func (s *PipelineState) MarkCompleted() {
	s.Completed = true
}

// KnownDurations returns the measured durations in beat order.
func (s *PipelineState) KnownDurations() []float64 {
	var out []float64
	for _, b := range s.Beats {
		if b.DurationSeconds != nil && *b.DurationSeconds > 0 {
			out = append(out, *b.DurationSeconds)
		}
	}
	return out
}
