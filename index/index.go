// Package index holds the flat filename index the assistant searches, and the
// indexer that rebuilds it from the configured root directories.
package index

import (
	"sync"
	"time"
)

// Snapshot is the result of one full walk over the roots.
type Snapshot struct {
	Paths  []string          // lowercased absolute paths, in walk order
	Actual map[string]string // lowercased path -> on-disk spelling
}

// Index is an in-memory handle on the current snapshot.
// Readers always see a complete snapshot; Swap replaces it wholesale.
type Index struct {
	mu      sync.RWMutex
	paths   []string
	actual  map[string]string
	builtAt time.Time
}

// New creates an index from a list of lowercased paths, for example one loaded from disk.
func New(paths []string) *Index {
	if paths == nil {
		paths = []string{}
	}
	return &Index{
		paths:  paths,
		actual: make(map[string]string),
	}
}

// Swap replaces the current snapshot.
func (ix *Index) Swap(snapshot Snapshot) {
	paths := snapshot.Paths
	if paths == nil {
		paths = []string{}
	}
	actual := snapshot.Actual
	if actual == nil {
		actual = make(map[string]string)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.paths = paths
	ix.actual = actual
	ix.builtAt = time.Now()
}

// Paths returns a copy of all indexed paths in index order.
func (ix *Index) Paths() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	result := make([]string, len(ix.paths))
	copy(result, ix.paths)
	return result
}

// Len returns the number of indexed paths.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.paths)
}

// BuiltAt returns when the current snapshot was swapped in, or the zero time
// if the index still holds what was loaded at startup.
func (ix *Index) BuiltAt() time.Time {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.builtAt
}

// ActualPath returns the on-disk spelling of an index entry.
// Entries loaded from a persisted index have no recorded spelling; they are
// looked up on disk one segment at a time and the result is remembered.
// An entry with no match on disk is returned as is.
func (ix *Index) ActualPath(entry string) string {
	ix.mu.RLock()
	actual, ok := ix.actual[entry]
	ix.mu.RUnlock()
	if ok {
		return actual
	}

	found := findOnDisk(entry)
	if found == "" {
		return entry
	}
	ix.mu.Lock()
	ix.actual[entry] = found
	ix.mu.Unlock()
	return found
}

// Search returns every entry whose base name contains query, case-insensitively, in index order.
func (ix *Index) Search(query string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return Search(query, ix.paths)
}
