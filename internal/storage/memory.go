package storage

import (
	"context"
	"sync"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/models"
)

// MemoryStorage keeps the session for the life of the process only.
type MemoryStorage struct {
	mu      sync.RWMutex
	session models.Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(_ context.Context) (models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, nil
}

func (m *MemoryStorage) Save(_ context.Context, session models.Session) error {
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	m.session = models.Session{}
	m.mu.Unlock()
	return nil
}
