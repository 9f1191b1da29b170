package game

import (
	"context"
	"sync"

	"github.com/mcoot/bananamath/internal/model"
)

// Registry holds one State per user
type Registry struct {
	mu       sync.Mutex
	states   map[model.UserID]*State
	newState func(profile *model.UserProfile) *State
}

// NewRegistry creates a registry that builds sessions with newState
func NewRegistry(newState func(profile *model.UserProfile) *State) *Registry {
	return &Registry{
		states:   make(map[model.UserID]*State),
		newState: newState,
	}
}

// Get returns the user's session. On first use the session is created and
// resumed from the user's autosave, if there is one.
func (r *Registry) Get(ctx context.Context, profile *model.UserProfile) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.states[profile.UserID]; ok {
		return st, nil
	}
	st := r.newState(profile)
	if _, err := st.Resume(ctx); err != nil {
		return nil, err
	}
	r.states[profile.UserID] = st
	return st, nil
}

// Lookup returns the user's session if one exists
func (r *Registry) Lookup(id model.UserID) (*State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[id]
	return st, ok
}

// Remove drops the user's session
func (r *Registry) Remove(id model.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, id)
}

// Len returns the number of live sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}
