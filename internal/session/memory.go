package session

import (
	"context"
	"sync"

	"fitroom-server/internal/domain"
)

// MemoryStore keeps chat histories in process memory. It is the default
// backend; histories live for the life of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]domain.Turn
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]domain.Turn)}
}

// Get returns a copy of the stored history for key and whether it exists.
func (m *MemoryStore) Get(_ context.Context, key string) ([]domain.Turn, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns, ok := m.sessions[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out, true, nil
}

// Put replaces the stored history for key.
func (m *MemoryStore) Put(_ context.Context, key string, turns []domain.Turn) error {
	stored := make([]domain.Turn, len(turns))
	copy(stored, turns)
	m.mu.Lock()
	m.sessions[key] = stored
	m.mu.Unlock()
	return nil
}

// Delete removes a session. Deleting an unknown key succeeds.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.sessions, key)
	m.mu.Unlock()
	return nil
}

var _ domain.SessionStore = (*MemoryStore)(nil)
