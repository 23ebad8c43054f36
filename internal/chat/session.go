package chat

import (
	"context"
	"sync"
)

// DefaultSessionID is used when the caller supplies no session identifier.
const DefaultSessionID = "default"

// SessionStore holds per-session conversation history. A session that was
// never written, or was reset, reads as a fresh copy of the seed template.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]Message, error)
	Append(ctx context.Context, sessionID string, msgs ...Message) error
	Reset(ctx context.Context, sessionID string) error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]Message
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string][]Message)}
}

// History returns a copy of the session's history, seeding new sessions from
// the template.
func (s *MemorySessionStore) History(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist, ok := s.sessions[sessionID]
	if !ok {
		return SeedHistory(), nil
	}
	out := make([]Message, len(hist))
	copy(out, hist)
	return out, nil
}

// Append adds messages to the session, creating it from the seed template
// first if needed.
func (s *MemorySessionStore) Append(_ context.Context, sessionID string, msgs ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist, ok := s.sessions[sessionID]
	if !ok {
		hist = SeedHistory()
	}
	s.sessions[sessionID] = append(hist, msgs...)
	return nil
}

// Reset discards the session; its next read starts again from the seed
// template.
func (s *MemorySessionStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}
