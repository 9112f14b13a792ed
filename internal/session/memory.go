package session

import (
	"context"
	"sync"
	"time"

	"github.com/openstax/rope/internal/model"
	roperrors "github.com/openstax/rope/pkg/errors"
)

type memoryEntry struct {
	user      model.SessionUser
	expiresAt time.Time
}

// MemoryStore is an in-process Store used by tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.SessionUser, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, roperrors.ErrInvalidSession
	}

	user := entry.user
	return &user, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, user model.SessionUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{user: user, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}
