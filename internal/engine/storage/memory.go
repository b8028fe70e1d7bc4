package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/chunk"
)

// MemoryStore keeps chunks in a map. Nothing survives the process.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[chunk.Position][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[chunk.Position][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, pos chunk.Position) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.chunks[pos]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (s *MemoryStore) Save(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.chunks[rec.Pos] = slices.Clone(rec.Data)
	}
	return nil
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *MemoryStore) Close() error {
	return nil
}
