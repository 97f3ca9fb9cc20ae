// Package registry maps original archive paths to their content-addressed
// replacement filenames for a single repackaging run.
package registry

import (
	"maps"
	"sync"
)

// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]string)}
}

// Record maps originalPath to newFilename. The first mapping for a path wins;
// later calls for the same path are ignored and report false.
func (r *Registry) Record(originalPath, newFilename string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[originalPath]; exists {
		return false
	}
	r.entries[originalPath] = newFilename
	return true
}

// Lookup returns the replacement filename for originalPath.
func (r *Registry) Lookup(originalPath string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.entries[originalPath]
	return name, ok
}

// Len reports the number of recorded paths.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot copies the current mappings.
func (r *Registry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.entries)
}
