// Package sessions implements the server-tracked session store backing the
// cookie surface. A session binds an opaque token to a user id; the token is
// the only thing the client ever sees. The store is an explicit dependency
// injected into the router, created at startup and torn down at shutdown,
// never a package-level global.
package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store issues, resolves and terminates opaque session tokens.
type Store interface {
	// Start creates a session bound to userID and returns its token.
	Start(userID int) string
	// Resolve returns the user id bound to token, or false for unknown,
	// ended or expired tokens.
	Resolve(token string) (int, bool)
	// End terminates the session. Ending an unknown or already-ended
	// session is a no-op, not an error.
	End(token string)
	// Sweep evicts expired sessions and reports how many were removed.
	Sweep() int
}

// session is the server-side state bound to one token.
type session struct {
	userID    int
	createdAt time.Time
}

// MemoryStore is an in-process Store guarded by an RWMutex. Sessions do not
// survive a process restart, which matches the source behaviour of a
// server-side session dict.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]session
	ttl      time.Duration // zero means sessions never expire
	now      func() time.Time
}

// NewMemoryStore creates a MemoryStore whose sessions expire after ttl.
// A ttl of zero disables expiry entirely.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Start creates a session for userID and returns the opaque token.
func (s *MemoryStore) Start(userID int) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{userID: userID, createdAt: s.now()}
	return token
}

// Resolve returns the user id bound to token. Expired sessions resolve as
// absent even before the sweeper has run.
func (s *MemoryStore) Resolve(token string) (int, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return 0, false
	}
	if s.expired(sess) {
		// Lazily evict so a dead token cannot be resolved again.
		s.End(token)
		return 0, false
	}
	return sess.userID, true
}

// End terminates the session bound to token. Idempotent.
func (s *MemoryStore) End(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Sweep removes every expired session and returns the eviction count.
// The background sweeper calls this periodically.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions. Used by the sweeper's logging.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) expired(sess session) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.now().Sub(sess.createdAt) > s.ttl
}
