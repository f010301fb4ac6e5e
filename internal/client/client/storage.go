package client

import (
	"context"
	"sync"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
)

// MemoryStorage is a SessionStorage that lives only as long as the process.
type MemoryStorage struct {
	mu sync.Mutex
	s  *models.Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Clone(), nil
}

func (m *MemoryStorage) Save(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s.Clone()
	return nil
}

func (m *MemoryStorage) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}
