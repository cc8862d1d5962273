package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/toastmaster/toastmaster/internal/platform"
)

// SQLStore persists snapshots in the rounds table of a Postgres or SQLite
// database opened with platform.Open.
type SQLStore struct {
	db      *sql.DB
	dialect platform.Dialect
}

// NewSQLStore creates a store on an already migrated database.
func NewSQLStore(db *sql.DB, dialect platform.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Save inserts or replaces the round's row.
func (s *SQLStore) Save(ctx context.Context, snap Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode round %s: %w", snap.ID, err)
	}
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, s.dialect.Rebind(
		`INSERT INTO rounds (id, phase, generation, state, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		   SET phase = EXCLUDED.phase,
		       generation = EXCLUDED.generation,
		       state = EXCLUDED.state,
		       updated_at = EXCLUDED.updated_at`),
		snap.ID, string(snap.Game.Phase), int64(snap.Game.Generation), string(state), updated,
	)
	if err != nil {
		return fmt.Errorf("save round %s: %w", snap.ID, err)
	}
	return nil
}

// Load reads a round by id.
func (s *SQLStore) Load(ctx context.Context, id string) (Snapshot, error) {
	var state []byte
	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT state FROM rounds WHERE id = ?`), id,
	).Scan(&state)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("load round %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load round %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode round %s: %w", id, err)
	}
	return snap, nil
}

// Delete removes a round. Deleting an unknown round is not an error.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM rounds WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete round %s: %w", id, err)
	}
	return nil
}
