package store

import (
	"context"
	"sync"

	"github.com/i474232898/user-geo-service/internal/user"
)

// MemoryStore is a concurrency-safe in-memory implementation of user.Store.
// Writes are immediately visible to subsequent reads.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]user.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]user.Record),
	}
}

func (s *MemoryStore) Put(_ context.Context, rec user.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[rec.ID] = rec
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[id]
	if !ok {
		return user.Record{}, user.ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) List(_ context.Context) (map[string]user.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]user.Record, len(s.data))
	for id, rec := range s.data {
		out[id] = rec
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.data, id)
	return nil
}
