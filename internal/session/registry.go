package session

import (
	"sync"
)

// Registry holds live sessions by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	newSession func() *Session
}

// NewRegistry takes the factory every Create call uses; the factory carries
// the shared collaborators (capabilities, storage, capture device).
func NewRegistry(newSession func() *Session) *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		newSession: newSession,
	}
}

// Create builds and registers a fresh session.
func (r *Registry) Create() *Session {
	s := r.newSession()
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks a session up by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes and forgets a session. Unknown ids are a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// CloseAll tears down every live session, for shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}
