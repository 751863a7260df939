package session

import (
	"sync"

	"github.com/jonboulle/clockwork"
)

// MemStore keeps the session record in memory. Used by tests and by hosts
// that never want a persisted identity.
type MemStore struct {
	clock clockwork.Clock
	mu    sync.Mutex
	sess  *Session
}

// NewMemStore creates an in-memory store.
func NewMemStore(clock clockwork.Clock) *MemStore {
	return &MemStore{clock: clock}
}

func (m *MemStore) Get() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess == nil {
		return nil, nil
	}
	if m.clock.Now().After(m.sess.ExpiresAt) {
		m.sess = nil
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *MemStore) Put(s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sess = &cp
	return nil
}

func (m *MemStore) Remove() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
