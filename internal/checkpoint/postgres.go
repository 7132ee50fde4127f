package checkpoint

import (
	"context"

	"github.com/jonathan/parallax-reel/internal/types"
)

// Database is the subset of db.DB used by PostgresStore.
type Database interface {
	LoadCheckpoint(ctx context.Context, project string) ([]byte, error)
	SaveCheckpoint(ctx context.Context, project string, state []byte) error
	DeleteCheckpoint(ctx context.Context, project string) error
	SaveReelDocument(ctx context.Context, project string, document []byte) error
	GetReelDocument(ctx context.Context, project string) ([]byte, error)
}

// PostgresStore keeps the checkpoint in a PostgreSQL row keyed by project.
type PostgresStore struct {
	db      Database
	project string
}

// NewPostgresStore creates a store for the given project key.
func NewPostgresStore(db Database, project string) *PostgresStore {
	return &PostgresStore{db: db, project: project}
}

// Load reads the project's checkpoint row.
func (s *PostgresStore) Load(ctx context.Context) (*types.PipelineState, error) {
	data, err := s.db.LoadCheckpoint(ctx, s.project)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return types.NewPipelineState(), nil
	}
	return Decode("postgres:"+s.project, data)
}

// Save upserts the project's checkpoint row.
func (s *PostgresStore) Save(ctx context.Context, state *types.PipelineState) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	return s.db.SaveCheckpoint(ctx, s.project, data)
}

// Delete removes the project's rows.
func (s *PostgresStore) Delete(ctx context.Context) error {
	return s.db.DeleteCheckpoint(ctx, s.project)
}

// SaveReel stores the reel document.
func (s *PostgresStore) SaveReel(ctx context.Context, doc *types.ReelDocument) error {
	data, err := encodeReel(doc)
	if err != nil {
		return err
	}
	return s.db.SaveReelDocument(ctx, s.project, data)
}

// LoadReel reads the reel document.
func (s *PostgresStore) LoadReel(ctx context.Context) (*types.ReelDocument, error) {
	data, err := s.db.GetReelDocument(ctx, s.project)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNoReel
	}
	return decodeReel("postgres:"+s.project, data)
}
