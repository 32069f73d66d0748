package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zhubert/checkin/vcs"
)

// Backend commits changes under one repository root.
type Backend struct {
	svc      *GitService
	root     string
	keepList bool
}

// NewBackend creates a git backend for the repository at root.
func NewBackend(svc *GitService, root string) *Backend {
	return &Backend{svc: svc, root: absPath(root)}
}

// absPath resolves p against the working directory, as vcs.Registry does.
func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// SetKeepChangeList makes the backend ask for the committed list to be kept.
func (b *Backend) SetKeepChangeList(keep bool) {
	b.keepList = keep
}

// Root returns the repository root.
func (b *Backend) Root() string {
	return b.root
}

// Name implements vcs.Backend.
func (b *Backend) Name() string {
	return "git"
}

// Commit implements vcs.Backend. Changes outside the repository are reported
// as errors against the change; the rest are committed together.
func (b *Backend) Commit(ctx context.Context, changes []vcs.Change, message string, _ any, feedback *vcs.Feedback) ([]*vcs.CommitError, error) {
	var problems []*vcs.CommitError
	rel := make([]string, 0, len(changes))
	for _, c := range changes {
		r, err := filepath.Rel(b.root, absPath(c.Path))
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			problems = append(problems, vcs.NewError("not under repository "+b.root).ForChange(c))
			continue
		}
		rel = append(rel, filepath.ToSlash(r))
	}
	if len(changes) > 0 && len(rel) == 0 {
		return problems, nil
	}

	res, err := b.svc.CommitPaths(ctx, b.root, message, rel)
	if err != nil {
		return problems, err
	}

	for _, w := range res.Warnings {
		problems = append(problems, vcs.NewWarning(w))
	}
	if res.Hash != "" {
		feedback.Add(fmt.Sprintf("Committed %s in %s", res.Hash, filepath.Base(b.root)))
	}
	return problems, nil
}

// KeepChangeListAfterCommit implements vcs.Backend.
func (b *Backend) KeepChangeListAfterCommit(*vcs.ChangeList) bool {
	return b.keepList
}

// NeedsRefreshAfterCommit implements vcs.Backend. The working tree always
// changes after a git commit.
func (b *Backend) NeedsRefreshAfterCommit() bool {
	return true
}

var _ vcs.Backend = (*Backend)(nil)
