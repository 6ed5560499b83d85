package container

import "sync"

// Registry maps each worker to the session it owns. It is the single source
// of truth for ownership: an entry exists iff the worker holds an unreleased
// session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[WorkerID]Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[WorkerID]Session),
	}
}

// Get returns the session bound to id, if any.
func (r *Registry) Get(id WorkerID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	return s, ok
}

// Put binds s to id, replacing any previous binding, and returns s.
func (r *Registry) Put(id WorkerID, s Session) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = s
	return s
}

// Remove unbinds id and returns the session it owned. Removing an absent
// entry is a no-op. Only one of several concurrent callers gets ok == true.
func (r *Registry) Remove(id WorkerID) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	return s, ok
}

// Has reports whether id owns a session.
func (r *Registry) Has(id WorkerID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[id]
	return ok
}

// Len returns the number of bound sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
