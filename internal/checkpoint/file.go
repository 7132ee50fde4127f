package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/parallax-reel/internal/types"
)

// ErrNoReel is returned by LoadReel when no reel document has been written.
var ErrNoReel = errors.New("reel document not found")

// FileStore keeps the checkpoint as a JSON file on local disk.
type FileStore struct {
	statePath string
	reelPath  string
}

// NewFileStore creates a store writing the state to statePath and
// the reel document to reelPath.
func NewFileStore(statePath, reelPath string) *FileStore {
	return &FileStore{statePath: statePath, reelPath: reelPath}
}

// Load reads the checkpoint file; a missing file yields a fresh state.
func (s *FileStore) Load(_ context.Context) (*types.PipelineState, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.NewPipelineState(), nil
		}
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", s.statePath, err)
	}
	return Decode(s.statePath, data)
}

// Save atomically replaces the checkpoint file.
func (s *FileStore) Save(_ context.Context, state *types.PipelineState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.statePath, data)
}

// Delete removes the checkpoint and reel files.
func (s *FileStore) Delete(_ context.Context) error {
	for _, path := range []string{s.statePath, s.reelPath} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}

// SaveReel writes the reel document next to the checkpoint.
func (s *FileStore) SaveReel(_ context.Context, doc *types.ReelDocument) error {
	data, err := encodeReel(doc)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.reelPath, data)
}

// LoadReel reads the reel document.
func (s *FileStore) LoadReel(_ context.Context) (*types.ReelDocument, error) {
	data, err := os.ReadFile(s.reelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoReel
		}
		return nil, fmt.Errorf("failed to read reel document %s: %w", s.reelPath, err)
	}
	return decodeReel(s.reelPath, data)
}

// writeFileAtomic writes to a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
