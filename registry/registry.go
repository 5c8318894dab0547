// Package registry tracks which workload instances are currently realized
// as containers on this host. The mapping lives in memory only; it is
// rebuilt to empty on every connection reset.
package registry

import "sync"

// Registry maps a workload id to the container id the runtime assigned to it.
// At most one entry exists per workload id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]string),
	}
}

// Put records the container id for a workload id, replacing any prior entry.
func (r *Registry) Put(workloadID, containerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[workloadID] = containerID
}

// Get returns the container id for a workload id.
func (r *Registry) Get(workloadID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	containerID, ok := r.entries[workloadID]
	return containerID, ok
}

// Contains reports whether a workload id is registered.
func (r *Registry) Contains(workloadID string) bool {
	_, ok := r.Get(workloadID)
	return ok
}

// Remove deletes the entry for a workload id, if present.
func (r *Registry) Remove(workloadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, workloadID)
}

// Snapshot returns a copy of the current entries.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make(map[string]string, len(r.entries))
	for workloadID, containerID := range r.entries {
		entries[workloadID] = containerID
	}
	return entries
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]string)
}

// Len returns the number of registered workloads.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
