package document

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/zhubert/checkin/logger"
)

// Lock records that one buffer is being committed by one request.
type Lock struct {
	BufferID string
	Path     string
	Owner    string
}

// Guard maps buffer IDs to the request currently committing them.
// The marker is advisory: it never blocks edits, it only lets save logic
// veto writing a buffer while its file is being committed.
type Guard struct {
	store Store

	mu     sync.Mutex
	owners map[string]Lock // buffer ID → lock
}

// NewGuard creates a guard over the given buffer store.
func NewGuard(store Store) *Guard {
	return &Guard{
		store:  store,
		owners: make(map[string]Lock),
	}
}

// NewLease returns an empty lease for owner. Callers defer Release before
// marking so that markers are cleared even if marking fails half-way:
//
//	lease := guard.NewLease(requestID)
//	defer lease.Release()
//	lease.Mark(paths)
func (g *Guard) NewLease(owner string) *Lease {
	return &Lease{guard: g, owner: owner}
}

// Mark is NewLease followed by Lease.Mark.
func (g *Guard) Mark(owner string, paths []string) *Lease {
	lease := g.NewLease(owner)
	lease.Mark(paths)
	return lease
}

func (g *Guard) acquire(l Lock) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.owners[l.BufferID]; ok && cur.Owner != l.Owner {
		return false
	}
	g.owners[l.BufferID] = l
	return true
}

// release drops the marker for id if owner still holds it.
func (g *Guard) release(owner, id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.owners[id]; ok && cur.Owner == owner {
		delete(g.owners, id)
	}
}

// IsBeingCommitted returns the lock on the buffer open for path, if any.
func (g *Guard) IsBeingCommitted(path string) (Lock, bool) {
	key := filepath.Clean(path)
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, l := range g.owners {
		if l.Path == key {
			return l, true
		}
	}
	return Lock{}, false
}

// VetoSave reports whether saving path should be postponed.
func (g *Guard) VetoSave(path string) bool {
	_, locked := g.IsBeingCommitted(path)
	return locked
}

// Locks returns a snapshot of all held locks.
func (g *Guard) Locks() []Lock {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Lock, 0, len(g.owners))
	for _, l := range g.owners {
		out = append(out, l)
	}
	return out
}

// Len returns the number of marked buffers.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.owners)
}

// Lease is the set of buffers one request marked. Release is idempotent.
type Lease struct {
	guard *Guard
	owner string

	mu       sync.Mutex
	ids      []string
	released bool
}

// Mark tags every open, non-binary buffer for paths as being committed by
// the lease owner. Buffers already held by another owner are skipped.
func (l *Lease) Mark(paths []string) {
	g := l.guard
	if g.store == nil {
		return
	}

	g.store.Snapshot(func(lookup func(string) (Buffer, bool)) {
		for _, p := range paths {
			buf, ok := lookup(p)
			if !ok || buf.Binary {
				continue
			}
			if !l.add(buf.ID) {
				return
			}
			if !g.acquire(Lock{BufferID: buf.ID, Path: buf.Path, Owner: l.owner}) {
				l.remove(buf.ID)
			}
		}
	})

	logger.WithComponent("document").Debug("buffers marked", "owner", l.owner, "count", l.Len())
}

func (l *Lease) add(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return false
	}
	l.ids = append(l.ids, id)
	return true
}

func (l *Lease) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = slices.DeleteFunc(l.ids, func(x string) bool { return x == id })
}

// Owner returns the request token the lease was taken for.
func (l *Lease) Owner() string {
	return l.owner
}

// Len returns the number of buffers held by the lease.
func (l *Lease) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return 0
	}
	return len(l.ids)
}

// Release clears every marker the lease still owns. Calling it again is a
// no-op.
func (l *Lease) Release() {
	if l == nil {
		return
	}
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	ids := l.ids
	l.mu.Unlock()

	for _, id := range ids {
		l.guard.release(l.owner, id)
	}
}
