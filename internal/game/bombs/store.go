package bombs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or already finished sessions.
var ErrSessionNotFound = errors.New("bombs session not found")

// Store keeps live sessions in memory. A finished session stays in the
// store until the caller that finished it has settled it.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]*Session)}
}

// Put registers a session.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// With runs fn on the session while holding the session's lock, so two
// clicks on the same board never interleave. A session that fn leaves in
// a terminal state is dropped once fn returns nil; when fn fails the
// session is kept and the next call can settle it again.
func (s *Store) With(id uuid.UUID, fn func(*Session) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	sess.mu.Lock()
	if sess.settled {
		sess.mu.Unlock()
		return ErrSessionNotFound
	}
	err := fn(sess)
	done := err == nil && sess.State != InProgress
	if done {
		sess.settled = true
	}
	sess.mu.Unlock()

	if done {
		s.Remove(id)
	}
	return err
}

// Remove drops a session regardless of its state.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep removes sessions idle for longer than idle and returns them.
// Their stakes are forfeit. Busy sessions and finished sessions still
// waiting for their payout are left alone.
func (s *Store) Sweep(now time.Time, idle time.Duration) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*Session
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.State == InProgress && now.Sub(sess.LastSeen) > idle {
			sess.settled = true
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
		sess.mu.Unlock()
	}
	return expired
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
