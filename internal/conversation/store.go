package conversation

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore implements SessionStore interface with in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
	}
}

// GetSession retrieves a session by sender ID
func (s *InMemoryStore) GetSession(ctx context.Context, senderID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[senderID]
	return session, exists
}

// GetOrCreateSession returns the sender's existing session, or registers a
// fresh one at the initial stage before returning it
func (s *InMemoryStore) GetOrCreateSession(ctx context.Context, senderID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, exists := s.sessions[senderID]; exists {
		return session
	}

	now := time.Now()
	session := &Session{
		SenderID:  senderID,
		Stage:     StageAwaitingName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[senderID] = session
	return session
}

// DeleteSession removes a session. Removing an absent session is a no-op.
func (s *InMemoryStore) DeleteSession(ctx context.Context, senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, senderID)
}
