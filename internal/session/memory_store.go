package session

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu      sync.RWMutex
	current Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *MemoryStore) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()
	return nil
}
