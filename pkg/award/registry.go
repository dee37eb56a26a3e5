package award

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages configured awards.
type Registry struct {
	awards map[string]Award
	mu     sync.RWMutex
}

// NewRegistry creates a new empty award registry.
func NewRegistry() *Registry {
	return &Registry{
		awards: make(map[string]Award),
	}
}

// Register adds an award to the registry.
// Returns an error if an award with the same ID already exists.
func (r *Registry) Register(a Award) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.awards[a.ID()]; exists {
		return fmt.Errorf("award %s already registered", a.ID())
	}

	r.awards[a.ID()] = a
	return nil
}

// Get returns an award by ID, or nil.
func (r *Registry) Get(awardID string) Award {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.awards[awardID]
}

// IDs returns the registered award IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.awards))
	for id := range r.awards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered awards.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.awards)
}
