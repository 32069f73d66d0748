package vcs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Backend persists changes to one version-control system.
//
// Commit reports per-change problems through the returned slice. A non-nil
// error means the backend failed outright; the orchestrator turns it into a
// single Error for every change it was given. Commit is called without any
// orchestrator lock held and receives a context that is never cancelled by
// the caller: an in-flight commit runs to completion.
type Backend interface {
	Name() string
	Commit(ctx context.Context, changes []Change, message string, aux any, feedback *Feedback) ([]*CommitError, error)
	KeepChangeListAfterCommit(list *ChangeList) bool
	NeedsRefreshAfterCommit() bool
}

// Router maps a change to the backend that owns it. It returns nil when no
// backend claims the change.
type Router interface {
	BackendFor(c Change) Backend
}

// Registry routes changes to backends by working-tree root.
type Registry struct {
	mu    sync.RWMutex
	roots map[string]Backend
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{roots: make(map[string]Backend)}
}

// Register makes b the owner of every path under root.
func (r *Registry) Register(root string, b Backend) error {
	if b == nil {
		return fmt.Errorf("nil backend for root %s", root)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root %s: %w", root, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roots[filepath.Clean(abs)] = b
	return nil
}

// Unregister removes the mapping for root.
func (r *Registry) Unregister(root string) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roots, filepath.Clean(abs))
}

// BackendFor returns the backend registered for the deepest root containing
// the change's path.
func (r *Registry) BackendFor(c Change) Backend {
	path, err := filepath.Abs(c.Path)
	if err != nil {
		return nil
	}
	path = filepath.Clean(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Backend
	bestLen := -1
	for root, b := range r.roots {
		if !under(path, root) {
			continue
		}
		if len(root) > bestLen {
			best, bestLen = b, len(root)
		}
	}
	return best
}

// RootFor returns the registered root that owns path, or "".
func (r *Registry) RootFor(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	abs = filepath.Clean(abs)

	r.mu.RLock()
	defer r.mu.RUnlock()

	best := ""
	for root := range r.roots {
		if under(abs, root) && len(root) > len(best) {
			best = root
		}
	}
	return best
}

func under(path, root string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Fixed routes every change to one backend.
type Fixed struct {
	Backend Backend
}

// BackendFor implements Router.
func (f Fixed) BackendFor(Change) Backend {
	return f.Backend
}
