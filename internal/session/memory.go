package session

import (
	"context"
	"sync"

	"github.com/UnknownOlympus/verdeando/internal/models"
)

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	mu   sync.Mutex
	user *models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return models.User{}, ErrNoSession
	}

	return clone(*s.user), nil
}

func (s *MemoryStore) Save(_ context.Context, user models.User) error {
	stored := clone(user)

	s.mu.Lock()
	s.user = &stored
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	return nil
}
