package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-process store. Sessions are lost on
// restart, which later surfaces to callers as ErrNotFound.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create stores a copy of the session under a freshly generated identifier.
func (s *MemoryStore) Create(ctx context.Context, sess *Session) (string, error) {
	id := uuid.NewString()
	sess.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = *sess

	return id, nil
}

// Get returns a copy of the stored session.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete removes the session if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// CheckHealth always succeeds for the in-memory store.
func (s *MemoryStore) CheckHealth(ctx context.Context) error {
	return nil
}
