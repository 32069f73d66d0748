package vcs

import "slices"

// ChangeList is a named, ordered grouping of pending changes.
type ChangeList struct {
	Name     string
	Comment  string // default commit message for the list
	Default  bool
	ReadOnly bool
	Changes  []Change
}

// Contains reports whether the list holds c.
func (l *ChangeList) Contains(c Change) bool {
	return slices.Contains(l.Changes, c)
}

// IncludedIn reports whether every change of the list is present in included.
func (l *ChangeList) IncludedIn(included []Change) bool {
	return ContainsAll(included, l.Changes)
}

// Clone returns a deep copy of the list.
func (l *ChangeList) Clone() *ChangeList {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Changes = slices.Clone(l.Changes)
	return &cp
}
