package console

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one browser client. Actions hold mu for their whole duration,
// so a client's state is only ever mutated by one action at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	state    *State
	lastSeen time.Time
}

// Do runs fn with exclusive access to the session state.
func (s *Session) Do(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	fn(s.state)
}

// Sessions maps session ids to sessions.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	newState func() *State
}

func NewSessions(newState func() *State) *Sessions {
	return &Sessions{
		sessions: make(map[string]*Session),
		newState: newState,
	}
}

// Get returns the session for id, creating a fresh one under a new id when
// id is unknown. created reports whether a new session was made.
func (ss *Sessions) Get(id string) (sess *Session, created bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if s, ok := ss.sessions[id]; ok && id != "" {
		return s, false
	}
	s := &Session{
		ID:       uuid.NewString(),
		state:    ss.newState(),
		lastSeen: time.Now(),
	}
	ss.sessions[s.ID] = s
	return s, true
}

// Len returns the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (ss *Sessions) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, s := range ss.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}
