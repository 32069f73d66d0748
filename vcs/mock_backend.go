package vcs

import (
	"context"
	"slices"
	"sync"
)

// MockCommit records one Commit invocation on a MockBackend.
type MockCommit struct {
	Changes []Change
	Message string
	Aux     any
}

// MockBackend is a test double for Backend. Results are returned in the
// order they were queued; once the queue is empty Commit succeeds with no
// problems.
type MockBackend struct {
	mu sync.Mutex

	name    string
	keep    bool
	refresh bool
	results []mockResult
	commits []MockCommit

	// OnCommit, when set, runs inside Commit before the queued result is
	// returned. Tests use it to block or to add feedback.
	OnCommit func(ctx context.Context, changes []Change, feedback *Feedback)
}

type mockResult struct {
	problems []*CommitError
	err      error
}

// NewMockBackend creates a mock backend that needs refresh after commit.
func NewMockBackend(name string) *MockBackend {
	return &MockBackend{name: name, refresh: true}
}

// SetKeepChangeList sets the KeepChangeListAfterCommit answer.
func (m *MockBackend) SetKeepChangeList(keep bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keep = keep
}

// SetNeedsRefresh sets the NeedsRefreshAfterCommit answer.
func (m *MockBackend) SetNeedsRefresh(refresh bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = refresh
}

// QueueProblems queues the problems returned by the next Commit.
func (m *MockBackend) QueueProblems(problems ...*CommitError) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{problems: problems})
}

// QueueError makes the next Commit fail outright with err.
func (m *MockBackend) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{err: err})
}

// Commits returns the recorded invocations.
func (m *MockBackend) Commits() []MockCommit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.commits)
}

// Name implements Backend.
func (m *MockBackend) Name() string {
	return m.name
}

// Commit implements Backend.
func (m *MockBackend) Commit(ctx context.Context, changes []Change, message string, aux any, feedback *Feedback) ([]*CommitError, error) {
	m.mu.Lock()
	m.commits = append(m.commits, MockCommit{Changes: slices.Clone(changes), Message: message, Aux: aux})
	hook := m.OnCommit
	var res mockResult
	if len(m.results) > 0 {
		res = m.results[0]
		m.results = m.results[1:]
	}
	m.mu.Unlock()

	if hook != nil {
		hook(ctx, changes, feedback)
	}
	return res.problems, res.err
}

// KeepChangeListAfterCommit implements Backend.
func (m *MockBackend) KeepChangeListAfterCommit(*ChangeList) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keep
}

// NeedsRefreshAfterCommit implements Backend.
func (m *MockBackend) NeedsRefreshAfterCommit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

var _ Backend = (*MockBackend)(nil)
