// Package session provides session management functionality.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// sessionEntry holds a game and its creation time for expiry checking.
type sessionEntry struct {
	Game      *Game
	CreatedAt time.Time
}

// SessionStore manages game sessions in memory.
type SessionStore struct {
	sessions map[string]*sessionEntry
	mu       sync.RWMutex
	expiry   time.Duration // 0 means no expiry
}

// NewSessionStore creates a new SessionStore with no expiry.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		expiry:   0,
	}
}

// NewSessionStoreWithExpiry creates a new SessionStore with the specified expiry duration.
func NewSessionStoreWithExpiry(expiry time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		expiry:   expiry,
	}
}

// Create stores game under a new session ID and returns the ID.
func (s *SessionStore) Create(game *Game) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := uuid.New().String()
	game.SessionID = sessionID

	s.sessions[sessionID] = &sessionEntry{
		Game:      game,
		CreatedAt: time.Now(),
	}

	return sessionID
}

// Get retrieves a game by session ID.
// Returns nil and false if the session does not exist or has expired.
func (s *SessionStore) Get(sessionID string) (*Game, bool) {
	s.mu.RLock()
	entry, exists := s.sessions[sessionID]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}

	// Check expiry if set
	if s.expired(entry) {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, false
	}

	return entry.Game, true
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Count returns the number of active sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Cleanup removes every expired session and returns how many were removed.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.sessions {
		if s.expired(entry) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) expired(entry *sessionEntry) bool {
	return s.expiry > 0 && time.Since(entry.CreatedAt) > s.expiry
}
