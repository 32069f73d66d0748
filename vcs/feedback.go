package vcs

import (
	"slices"
	"sync"
)

// Feedback collects free-form lines a backend wants shown to the user
// after a commit (e.g. "3 files pushed to origin"). Duplicate lines are
// kept once, in first-seen order.
type Feedback struct {
	mu    sync.Mutex
	lines []string
}

// Add records line unless it is empty or already present.
func (f *Feedback) Add(line string) {
	if f == nil || line == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if slices.Contains(f.lines, line) {
		return
	}
	f.lines = append(f.lines, line)
}

// Lines returns a copy of the collected lines.
func (f *Feedback) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.lines)
}
