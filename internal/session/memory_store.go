package session

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"fitpulse/internal/auth"
)

// MemoryStore keeps sessions in an in-process map, ideal for a single
// instance or tests. State does not survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Session
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Session)}
}

// Get returns a copy of the session, or nil when the id is unknown.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.data[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// SetTokens stores the token pair, creating the record on first write.
func (s *MemoryStore) SetTokens(_ context.Context, id string, tokens *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.data[id]
	record.ID = id
	record.Tokens = tokens
	s.data[id] = record
	return nil
}

// SetProfile stores the profile for a session that already holds tokens.
func (s *MemoryStore) SetProfile(_ context.Context, id string, profile auth.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.data[id]
	if !ok || record.Tokens == nil {
		return ErrTokensRequired
	}
	record.Profile = &profile
	s.data[id] = record
	return nil
}
