package genome

import (
	"context"
	"sync"
)

// Store persists serialized brains keyed by an external ID (typically the
// organism's lineage identifier).
type Store interface {
	Init(ctx context.Context) error
	SaveBrain(ctx context.Context, rec BrainRecord) error
	GetBrain(ctx context.Context, id string) (BrainRecord, bool, error)
	ListBrains(ctx context.Context) ([]string, error)
	DeleteBrain(ctx context.Context, id string) error
	Close() error
}

// MemoryStore is an in-process Store for tests and ephemeral runs.
type MemoryStore struct {
	mu     sync.RWMutex
	brains map[string]BrainRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brains = make(map[string]BrainRecord)
	return nil
}

func (s *MemoryStore) SaveBrain(_ context.Context, rec BrainRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brains[rec.ID] = rec
	return nil
}

func (s *MemoryStore) GetBrain(_ context.Context, id string) (BrainRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.brains[id]
	return rec, ok, nil
}

func (s *MemoryStore) ListBrains(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.brains))
	for id := range s.brains {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) DeleteBrain(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.brains, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
