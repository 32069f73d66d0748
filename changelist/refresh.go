package changelist

import (
	"context"
	"fmt"
	"slices"

	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/vcs"
)

// Scanner reports which of the given paths still differ from the
// repository.
type Scanner interface {
	Dirty(ctx context.Context, paths []string) (map[string]bool, error)
}

// WorkingTree refreshes a Manager from the working tree: changes whose path
// is no longer dirty are dropped from every list.
type WorkingTree struct {
	lists   *Manager
	scanner Scanner
}

// NewWorkingTree binds a manager to a scanner.
func NewWorkingTree(lists *Manager, scanner Scanner) *WorkingTree {
	return &WorkingTree{lists: lists, scanner: scanner}
}

// Refresh rescans paths and drops clean changes.
func (w *WorkingTree) Refresh(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	dirty, err := w.scanner.Dirty(ctx, paths)
	if err != nil {
		return fmt.Errorf("scan working tree: %w", err)
	}

	scanned := make(map[string]bool, len(paths))
	for _, p := range paths {
		scanned[p] = true
	}

	dropped := w.lists.drop(func(c vcs.Change) bool {
		return scanned[c.Path] && !dirty[c.Path]
	})

	logger.WithComponent("changelist").Debug("working tree refreshed", "paths", len(paths), "dropped", dropped)
	return nil
}

// drop removes every change matching fn from all lists and returns how many
// were removed.
func (m *Manager) drop(fn func(vcs.Change) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, l := range m.lists {
		before := len(l.Changes)
		l.Changes = slices.DeleteFunc(l.Changes, fn)
		n += before - len(l.Changes)
	}
	return n
}
