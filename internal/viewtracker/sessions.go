package viewtracker

import (
	"sync"
	"time"
)

// SessionStore is the key/value storage of one browser session.
type SessionStore interface {
	Get(key string) (string, bool)
	Delete(key string)

	// SetIfAbsent stores value only if key is not set yet and reports whether it did.
	SetIfAbsent(key, value string) bool
}

// MemoryStore is a SessionStore kept in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// ensure MemoryStore implements SessionStore
var _ SessionStore = &MemoryStore{}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *MemoryStore) SetIfAbsent(key, value string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false
	}
	m.values[key] = value
	return true
}

type session struct {
	store    *MemoryStore
	lastSeen time.Time
}

// Sessions holds the stores of all browser sessions. A session expires once it has not been
// used for the configured time to live; Purge drops expired sessions.
type Sessions struct {
	mu       sync.Mutex
	clock    Clock
	ttl      time.Duration
	sessions map[string]*session
}

func NewSessions(clock Clock, ttl time.Duration) *Sessions {
	return &Sessions{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]*session),
	}
}

// Store returns the store of a session, creating it on first use, and refreshes its expiry.
func (s *Sessions) Store(id string) SessionStore {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	sess, ok := s.sessions[id]
	if !ok || s.expired(sess, now) {
		sess = &session{store: NewMemoryStore()}
		s.sessions[id] = sess
	}
	sess.lastSeen = now
	return sess.store
}

// Purge removes expired sessions and returns their ids.
func (s *Sessions) Purge() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	purged := make([]string, 0)
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			purged = append(purged, id)
		}
	}
	return purged
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return now.Sub(sess.lastSeen) >= s.ttl
}
