package checkpoint

import (
	"context"
	"sync"

	"github.com/jonathan/parallax-reel/internal/types"
)

// MemoryStore keeps the encoded checkpoint in memory. It round-trips through
// Encode/Decode so callers observe the same semantics as the durable stores.
type MemoryStore struct {
	mu    sync.Mutex
	state []byte
	reel  []byte
	saves int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the last saved state.
func (s *MemoryStore) Load(_ context.Context) (*types.PipelineState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return types.NewPipelineState(), nil
	}
	return Decode("memory", s.state)
}

// Save replaces the stored state.
func (s *MemoryStore) Save(_ context.Context, state *types.PipelineState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = data
	s.saves++
	return nil
}

// Delete clears the store.
func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = nil
	s.reel = nil
	return nil
}

// SaveReel stores the reel document.
func (s *MemoryStore) SaveReel(_ context.Context, doc *types.ReelDocument) error {
	data, err := encodeReel(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reel = data
	return nil
}

// LoadReel returns the stored reel document.
func (s *MemoryStore) LoadReel(_ context.Context) (*types.ReelDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reel == nil {
		return nil, ErrNoReel
	}
	return decodeReel("memory", s.reel)
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Raw returns the last encoded state.
func (s *MemoryStore) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.state...)
}
