// Package checkpoint persists the pipeline state between runs.
//
// Every Save is a full overwrite of the stored document. The last
// successful save wins; a single writer is assumed.
package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jonathan/parallax-reel/internal/schemas"
	"github.com/jonathan/parallax-reel/internal/types"
)

// Store loads and saves the pipeline state.
type Store interface {
	// Load returns the stored state, or a fresh empty state when nothing is stored.
	Load(ctx context.Context) (*types.PipelineState, error)
	// Save replaces the stored state.
	Save(ctx context.Context, state *types.PipelineState) error
	// Delete removes the stored state and reel document.
	Delete(ctx context.Context) error
}

// ReelStore persists the final timeline document.
type ReelStore interface {
	SaveReel(ctx context.Context, doc *types.ReelDocument) error
	LoadReel(ctx context.Context) (*types.ReelDocument, error)
}

// CorruptError is returned when a stored checkpoint cannot be decoded.
// The pipeline refuses to continue rather than start over silently.
type CorruptError struct {
	Location string
	Cause    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt checkpoint at %s: %v", e.Location, e.Cause)
}

func (e *CorruptError) Unwrap() error {
	return e.Cause
}

// Encode serializes a state deterministically.
func Encode(state *types.PipelineState) ([]byte, error) {
	normalized := *state
	if normalized.Beats == nil {
		normalized.Beats = []types.BeatRecord{}
	}
	beats := make([]types.BeatRecord, len(normalized.Beats))
	copy(beats, normalized.Beats)
	sort.SliceStable(beats, func(i, j int) bool { return beats[i].Index < beats[j].Index })
	normalized.Beats = beats

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&normalized); err != nil {
		return nil, fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses and validates a stored state.
func Decode(location string, data []byte) (*types.PipelineState, error) {
	if err := schemas.ValidateCheckpoint(data); err != nil {
		return nil, &CorruptError{Location: location, Cause: err}
	}

	var state types.PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &CorruptError{Location: location, Cause: err}
	}
	if state.Version > types.StateVersion {
		return nil, &CorruptError{
			Location: location,
			Cause:    fmt.Errorf("checkpoint version %d is newer than supported version %d", state.Version, types.StateVersion),
		}
	}
	if state.Beats == nil {
		state.Beats = []types.BeatRecord{}
	}
	seen := make(map[int]bool, len(state.Beats))
	for _, b := range state.Beats {
		if seen[b.Index] {
			return nil, &CorruptError{Location: location, Cause: fmt.Errorf("beat %d recorded more than once", b.Index)}
		}
		seen[b.Index] = true
	}
	sort.SliceStable(state.Beats, func(i, j int) bool { return state.Beats[i].Index < state.Beats[j].Index })

	return &state, nil
}

func encodeReel(doc *types.ReelDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode reel document: %w", err)
	}
	return append(data, '\n'), nil
}

func decodeReel(location string, data []byte) (*types.ReelDocument, error) {
	var doc types.ReelDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode reel document %s: %w", location, err)
	}
	return &doc, nil
}
