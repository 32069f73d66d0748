// Package changelist keeps the user's changelists: named groups of pending
// changes, exactly one of which is the default list.
package changelist

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/vcs"
)

// DefaultName is the name of the list created by NewManager.
const DefaultName = "Changes"

var (
	ErrNotFound    = errors.New("changelist not found")
	ErrExists      = errors.New("changelist already exists")
	ErrDefaultList = errors.New("cannot remove the default changelist")
	ErrReadOnly    = errors.New("changelist is read-only")
)

// Manager is a goroutine-safe changelist store. Every method returns or
// accepts copies; callers never hold references into the store.
//
// A change belongs to at most one list. Adding a change that already lives
// in another list moves it.
type Manager struct {
	mu          sync.RWMutex
	lists       []*vcs.ChangeList // insertion order
	defaultName string
}

// NewManager creates a store holding one empty default list.
func NewManager() *Manager {
	return &Manager{
		lists:       []*vcs.ChangeList{{Name: DefaultName, Default: true}},
		defaultName: DefaultName,
	}
}

func (m *Manager) find(name string) *vcs.ChangeList {
	for _, l := range m.lists {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// FindChangeList returns a copy of the named list, or nil.
func (m *Manager) FindChangeList(name string) *vcs.ChangeList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(name).Clone()
}

// DefaultChangeList returns a copy of the default list.
func (m *Manager) DefaultChangeList() *vcs.ChangeList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(m.defaultName).Clone()
}

// ChangeLists returns copies of all lists in creation order.
func (m *Manager) ChangeLists() []*vcs.ChangeList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*vcs.ChangeList, len(m.lists))
	for i, l := range m.lists {
		out[i] = l.Clone()
	}
	return out
}

// AddChangeList creates an empty list.
func (m *Manager) AddChangeList(name, comment string) (*vcs.ChangeList, error) {
	if name == "" {
		return nil, fmt.Errorf("changelist name must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.find(name) != nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, name)
	}
	l := &vcs.ChangeList{Name: name, Comment: comment}
	m.lists = append(m.lists, l)

	logger.WithComponent("changelist").Info("changelist added", "name", name)
	return l.Clone(), nil
}

// RemoveChangeList deletes a list. Its remaining changes move to the
// default list.
func (m *Manager) RemoveChangeList(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.find(name)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if l.Default {
		return fmt.Errorf("%w: %s", ErrDefaultList, name)
	}
	if l.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	}

	def := m.find(m.defaultName)
	def.Changes = append(def.Changes, l.Changes...)
	m.lists = slices.DeleteFunc(m.lists, func(x *vcs.ChangeList) bool { return x == l })

	logger.WithComponent("changelist").Info("changelist removed", "name", name, "movedToDefault", len(l.Changes))
	return nil
}

// SetDefault makes the named list the default one.
func (m *Manager) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.find(name)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if cur := m.find(m.defaultName); cur != nil {
		cur.Default = false
	}
	l.Default = true
	m.defaultName = name
	return nil
}

// SetReadOnly toggles the read-only flag of a list.
func (m *Manager) SetReadOnly(name string, readOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.find(name)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	l.ReadOnly = readOnly
	return nil
}

// AddChanges puts changes into the named list, taking them out of any
// other list first.
func (m *Manager) AddChanges(name string, changes ...vcs.Change) error {
	return m.MoveChanges(name, changes)
}

// MoveChanges moves changes into the target list. Changes not tracked yet
// are added.
func (m *Manager) MoveChanges(target string, changes []vcs.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dst := m.find(target)
	if dst == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	moving := vcs.ChangeSet(changes)
	for _, l := range m.lists {
		if l == dst {
			continue
		}
		l.Changes = slices.DeleteFunc(l.Changes, func(c vcs.Change) bool { return moving[c] })
	}
	for _, c := range changes {
		if !slices.Contains(dst.Changes, c) {
			dst.Changes = append(dst.Changes, c)
		}
	}

	logger.WithComponent("changelist").Debug("changes moved", "target", target, "count", len(changes))
	return nil
}

// RemoveChanges takes changes out of whatever list holds them and returns
// how many were removed. Lists are kept even when they end up empty.
func (m *Manager) RemoveChanges(changes []vcs.Change) int {
	set := vcs.ChangeSet(changes)
	n := m.drop(func(c vcs.Change) bool { return set[c] })
	if n > 0 {
		logger.WithComponent("changelist").Debug("changes removed", "count", n)
	}
	return n
}

// ListFor returns the name of the list holding c, or "".
func (m *Manager) ListFor(c vcs.Change) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lists {
		if slices.Contains(l.Changes, c) {
			return l.Name
		}
	}
	return ""
}

// UniqueName returns base, or base followed by " (2)", " (3)" and so on: the first
// name not used by any list.
func (m *Manager) UniqueName(base string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := base
	for i := 2; m.find(name) != nil; i++ {
		name = fmt.Sprintf("%s (%d)", base, i)
	}
	return name
}
