// Package db provides PostgreSQL storage for pipeline checkpoints and reel documents.
package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the checkpoint tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// LoadCheckpoint returns the raw checkpoint document for a project, or nil when none is stored.
func (db *DB) LoadCheckpoint(ctx context.Context, project string) ([]byte, error) {
	var state []byte
	err := db.pool.QueryRow(ctx,
		`SELECT state FROM reel_checkpoints WHERE project = $1`,
		project,
	).Scan(&state)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", project, err)
	}
	return state, nil
}

// SaveCheckpoint replaces the checkpoint document for a project.
func (db *DB) SaveCheckpoint(ctx context.Context, project string, state []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO reel_checkpoints (project, state)
		 VALUES ($1, $2)
		 ON CONFLICT (project) DO UPDATE SET state = $2, updated_at = NOW()`,
		project, state,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint %s: %w", project, err)
	}
	return nil
}

// DeleteCheckpoint removes the checkpoint and reel document for a project.
func (db *DB) DeleteCheckpoint(ctx context.Context, project string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM reel_documents WHERE project = $1`, project); err != nil {
		return fmt.Errorf("failed to delete reel document %s: %w", project, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reel_checkpoints WHERE project = $1`, project); err != nil {
		return fmt.Errorf("failed to delete checkpoint %s: %w", project, err)
	}
	return tx.Commit(ctx)
}

// SaveReelDocument stores the final timeline document for a project.
func (db *DB) SaveReelDocument(ctx context.Context, project string, document []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO reel_documents (project, document)
		 VALUES ($1, $2)
		 ON CONFLICT (project) DO UPDATE SET document = $2, created_at = NOW()`,
		project, document,
	)
	if err != nil {
		return fmt.Errorf("failed to save reel document %s: %w", project, err)
	}
	return nil
}

// GetReelDocument returns the stored reel document, or nil when none exists.
func (db *DB) GetReelDocument(ctx context.Context, project string) ([]byte, error) {
	var document []byte
	err := db.pool.QueryRow(ctx,
		`SELECT document FROM reel_documents WHERE project = $1`,
		project,
	).Scan(&document)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reel document %s: %w", project, err)
	}
	return document, nil
}
