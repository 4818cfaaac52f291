package services

import (
	"sync"
	"time"

	"github.com/meetlinkapp/meetlink/pkg/internal/models"
)

// SessionRegistry holds at most one live session per viewer id.
// Acquiring for a viewer releases any previous session before the new
// one is stored, so two sessions never overlap for the same identity.
type SessionRegistry struct {
	mutex    sync.Mutex
	sessions map[string]*Session
}

var Sessions = NewSessionRegistry()

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*Session),
	}
}

func (r *SessionRegistry) Acquire(meetingId string, viewer models.Identity, transport Transport) *Session {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if old, ok := r.sessions[viewer.ID]; ok {
		old.Close()
	}

	session := NewSession(meetingId, viewer, transport)
	r.sessions[viewer.ID] = session
	return session
}

func (r *SessionRegistry) Get(viewerId string) (*Session, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	session, ok := r.sessions[viewerId]
	return session, ok
}

// Release drops a session, but only when it is still the current one
// for the viewer; a successor acquired in the meantime stays put.
func (r *SessionRegistry) Release(viewerId string, session *Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	current, ok := r.sessions[viewerId]
	if !ok || current != session {
		session.Close()
		return
	}

	current.Close()
	delete(r.sessions, viewerId)
}

// CleanupStale closes sessions with no input activity past the
// deadline and reports how many were dropped.
func (r *SessionRegistry) CleanupStale(maxIdle time.Duration) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	deadline := time.Now().Add(-maxIdle)
	var count int
	for viewerId, session := range r.sessions {
		if session.IdleSince().Before(deadline) {
			session.Close()
			delete(r.sessions, viewerId)
			count++
		}
	}
	return count
}

func (r *SessionRegistry) Len() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.sessions)
}
