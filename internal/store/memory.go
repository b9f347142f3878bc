package store

import (
	"context"
	"sync"

	"github.com/rickgao/mock-auction/internal/model"
)

// MemoryStore keeps the latest snapshot in memory.
type MemoryStore struct {
	mu    sync.Mutex
	snap  model.Snapshot
	saves int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (model.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.snap), nil
}

func (s *MemoryStore) Save(ctx context.Context, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = copySnapshot(snap)
	s.saves++
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Saves returns how many snapshots have been saved.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func copySnapshot(snap model.Snapshot) model.Snapshot {
	out := snap
	out.Teams = append([]model.Team(nil), snap.Teams...)
	out.Players = append([]model.Player(nil), snap.Players...)
	return out
}
