// Package session runs toast rounds on behalf of remote players. Each round
// owns a phase machine and its stage controllers; state is written to a
// Store after every change so a round survives cache eviction and daemon
// restarts until it is restarted or deleted.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/toastmaster/toastmaster/pkg/game"
)

// ErrNotFound is returned for an unknown round id.
var ErrNotFound = errors.New("round not found")

// Snapshot is the stored form of a round. It holds only the current
// round's state; restarting overwrites it.
type Snapshot struct {
	ID          string        `json:"id"`
	Game        game.Snapshot `json:"game"`
	Cuts        int           `json:"cuts"`
	Butter      []bool        `json:"butter,omitempty"`
	Preference  string        `json:"preference,omitempty"`
	Suggestions []string      `json:"suggestions,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Store persists round snapshots.
type Store interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}
