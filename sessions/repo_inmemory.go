package sessions

import (
	"context"
	"sync"
)

// InMemoryRepo is the default session store: a mutex-guarded map. Suitable
// for a single-process deployment, which is the normal shape of this app.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]Session),
	}
}

func (r *InMemoryRepo) Get(_ context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, NotFoundErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return Session{}, NotFoundErr
	}
	return session, nil
}

func (r *InMemoryRepo) Upsert(_ context.Context, id string, session Session) error {
	if id == "" {
		return NotFoundErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = session
	return nil
}

func (r *InMemoryRepo) Regenerate(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return "", NotFoundErr
	}

	// Old identifier dies and the new one appears under the same lock, so no
	// request can observe both.
	delete(r.sessions, id)
	newID := NewID()
	r.sessions[newID] = session
	return newID, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}
