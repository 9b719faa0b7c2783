package credentials

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/babeledit/internal/client/models"
)

type MemoryStore struct {
	mu      sync.RWMutex
	session models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store pre-populated with s.
func NewMemoryStoreWith(s models.Session) *MemoryStore {
	return &MemoryStore{session: s}
}

func (m *MemoryStore) Get(ctx context.Context) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, nil
}

func (m *MemoryStore) Set(ctx context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = models.Session{}
	return nil
}
