// Package document tracks open text buffers and marks the ones taking part
// in a running commit so that save logic can hold off writing them.
package document

import (
	"bytes"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// binarySniffLen matches git's heuristic: a NUL byte in the first 8000
// bytes means binary.
const binarySniffLen = 8000

// Buffer is a live in-memory document backed by a file.
type Buffer struct {
	ID     string
	Path   string
	Binary bool
}

// Store gives read-consistent access to open buffers.
type Store interface {
	// Snapshot calls fn with a lookup function that sees a stable view of
	// the open buffers for the duration of the call.
	Snapshot(fn func(lookup func(path string) (Buffer, bool)))
}

// Registry is an in-memory Store keyed by cleaned path.
type Registry struct {
	mu      sync.RWMutex
	buffers map[string]Buffer
}

// NewRegistry creates an empty buffer registry.
func NewRegistry() *Registry {
	return &Registry{buffers: make(map[string]Buffer)}
}

// Open registers a buffer for path, sniffing content for binary data.
// Re-opening a path keeps its buffer ID.
func (r *Registry) Open(path string, content []byte) Buffer {
	key := filepath.Clean(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.buffers[key]
	if !ok {
		buf = Buffer{ID: uuid.New().String(), Path: key}
	}
	buf.Binary = isBinary(content)
	r.buffers[key] = buf
	return buf
}

// Close forgets the buffer for path.
func (r *Registry) Close(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buffers, filepath.Clean(path))
}

// Get returns the buffer open for path.
func (r *Registry) Get(path string) (Buffer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	buf, ok := r.buffers[filepath.Clean(path)]
	return buf, ok
}

// Snapshot implements Store. Writers block until fn returns.
func (r *Registry) Snapshot(fn func(lookup func(path string) (Buffer, bool))) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(func(path string) (Buffer, bool) {
		buf, ok := r.buffers[filepath.Clean(path)]
		return buf, ok
	})
}

func isBinary(content []byte) bool {
	if len(content) > binarySniffLen {
		content = content[:binarySniffLen]
	}
	return bytes.IndexByte(content, 0) >= 0
}

var _ Store = (*Registry)(nil)
