package memory

import (
	"slices"
	"sync"

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// SessionStore implements ports.SessionStore in process memory.
// Entries live until Clear, Close or process exit, so a restart always starts
// with an empty cache and session tokens never reach the disk.
//
// Thread-safe: All operations protected by sync.RWMutex.
type SessionStore struct {
	sessions map[string]map[string][]byte
	mu       sync.RWMutex
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]map[string][]byte)}
}

// Get returns the value stored under key for the session.
func (s *SessionStore) Get(session, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.sessions[session][key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(value), nil
}

// Set stores value under key for the session.
func (s *SessionStore) Set(session, key string, value []byte) error {
	if session == "" {
		return domain.ErrMissingSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions == nil {
		return domain.NewRepositoryError("set", "session", "store is closed", nil)
	}
	values, ok := s.sessions[session]
	if !ok {
		values = make(map[string][]byte)
		s.sessions[session] = values
	}
	values[key] = slices.Clone(value)
	return nil
}

// Delete removes a single key.
func (s *SessionStore) Delete(session, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions[session], key)
	if len(s.sessions[session]) == 0 {
		delete(s.sessions, session)
	}
	return nil
}

// Clear removes every key of the session.
func (s *SessionStore) Clear(session string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, session)
	return nil
}

// Close drops every session.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}

// Verify interface implementation
var _ ports.SessionStore = (*SessionStore)(nil)
