package storage

import (
	"sync"

	"github.com/Rob-Negrete/dura-gas/internal/core/domain"
)

// MemoryStore is an in-memory state store for tests.
type MemoryStore struct {
	mu   sync.Mutex
	data *domain.TankData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*domain.TankData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	copied := *s.data
	copied.RefillHistory = append([]domain.RefillRecord(nil), s.data.RefillHistory...)
	return &copied, nil
}

func (s *MemoryStore) Save(data domain.TankData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := data
	copied.RefillHistory = append([]domain.RefillRecord(nil), data.RefillHistory...)
	s.data = &copied
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
