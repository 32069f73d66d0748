// Package vcs holds the data model shared by the commit orchestrator and
// version-control backends: changes, changelists, backend contract and the
// classified problems a backend reports back.
package vcs

import "fmt"

// ChangeType describes what happened to a path.
type ChangeType int

const (
	ChangeModified ChangeType = iota
	ChangeAdded
	ChangeDeleted
	ChangeMoved
)

// String returns the porcelain-style status letter.
func (t ChangeType) String() string {
	switch t {
	case ChangeModified:
		return "M"
	case ChangeAdded:
		return "A"
	case ChangeDeleted:
		return "D"
	case ChangeMoved:
		return "R"
	default:
		return "?"
	}
}

// Change is a pending modification of one path. It is a comparable value
// and may be used as a map key.
type Change struct {
	Path           string
	BeforeRevision string // empty for added files
	AfterRevision  string // empty for deleted files or unsaved working copy
	Type           ChangeType
}

// Key returns a stable identity for the change.
func (c Change) Key() string {
	return fmt.Sprintf("%s@%s..%s", c.Path, c.BeforeRevision, c.AfterRevision)
}

func (c Change) String() string {
	return c.Type.String() + " " + c.Path
}

// Paths returns the paths of changes in order, without duplicates.
func Paths(changes []Change) []string {
	seen := make(map[string]bool, len(changes))
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		if seen[c.Path] {
			continue
		}
		seen[c.Path] = true
		out = append(out, c.Path)
	}
	return out
}

// ChangeSet returns changes as a set.
func ChangeSet(changes []Change) map[Change]bool {
	set := make(map[Change]bool, len(changes))
	for _, c := range changes {
		set[c] = true
	}
	return set
}

// ContainsAll reports whether every change in sub is present in set.
func ContainsAll(set []Change, sub []Change) bool {
	have := ChangeSet(set)
	for _, c := range sub {
		if !have[c] {
			return false
		}
	}
	return true
}
