package state

import (
	"sync"

	"github.com/joshharrison/ganttboard/internal/filter"
)

// Registry holds one selection per session id in memory.
type Registry struct {
	mu   sync.RWMutex
	sels map[string]filter.Selection
}

func NewRegistry() *Registry {
	return &Registry{sels: make(map[string]filter.Selection)}
}

// Get returns the session's selection, or the default one.
func (r *Registry) Get(sessionID string) filter.Selection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sel, ok := r.sels[sessionID]; ok {
		return sel
	}
	return filter.Default()
}

// Put stores sel for the session.
func (r *Registry) Put(sessionID string, sel filter.Selection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sels[sessionID] = sel.Normalize()
}

// Delete forgets the session's selection.
func (r *Registry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sels, sessionID)
}

// Len returns the number of sessions with a stored selection.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sels)
}
