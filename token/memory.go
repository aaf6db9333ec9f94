package token

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. It satisfies the Store
// contract for tests and short-lived processes; nothing survives a
// restart.
type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return nil, ErrNotFound
	}
	cp := *m.sess
	return &cp, nil
}

// Save implements Store.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sess = &cp
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess = nil
	return nil
}
