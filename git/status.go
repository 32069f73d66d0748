package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zhubert/checkin/logger"
)

// StatusEntry is one line of `git status --porcelain -z`.
type StatusEntry struct {
	Path   string // Path relative to the repository root
	Status string // Two-letter XY code
}

// Status returns the porcelain status of the given paths, or of the whole
// worktree when paths is empty.
func (s *GitService) Status(ctx context.Context, repoPath string, paths []string) ([]StatusEntry, error) {
	args := []string{"status", "--porcelain", "-z", "--untracked-files=all"}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}

	output, err := s.executor.Output(ctx, repoPath, "git", args...)
	if err != nil {
		return nil, fmt.Errorf("git status failed: %w", err)
	}
	return parsePorcelainZ(string(output)), nil
}

// parsePorcelainZ parses NUL-separated porcelain v1 output. Renames and
// copies are followed by an extra entry holding the original path.
func parsePorcelainZ(output string) []StatusEntry {
	var entries []StatusEntry
	fields := strings.Split(output, "\x00")
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		if len(f) < 4 {
			continue
		}
		code := f[:2]
		entries = append(entries, StatusEntry{Path: f[3:], Status: code})
		if code[0] == 'R' || code[0] == 'C' {
			i++
		}
	}
	return entries
}

// RootResolver maps an absolute path to the repository root owning it.
// vcs.Registry satisfies it.
type RootResolver interface {
	RootFor(path string) string
}

// StatusScanner reports which paths are still dirty according to git.
type StatusScanner struct {
	svc   *GitService
	roots RootResolver
}

// NewStatusScanner creates a scanner that groups paths by repository root.
func NewStatusScanner(svc *GitService, roots RootResolver) *StatusScanner {
	return &StatusScanner{svc: svc, roots: roots}
}

// Dirty implements changelist.Scanner. Paths outside any known repository
// are reported dirty so they are never dropped.
func (s *StatusScanner) Dirty(ctx context.Context, paths []string) (map[string]bool, error) {
	dirty := make(map[string]bool, len(paths))
	byRoot := make(map[string][]string)
	var order []string

	for _, p := range paths {
		root := s.roots.RootFor(p)
		if root == "" {
			dirty[p] = true
			continue
		}
		if _, ok := byRoot[root]; !ok {
			order = append(order, root)
		}
		byRoot[root] = append(byRoot[root], p)
	}

	log := logger.WithComponent("git")
	for _, root := range order {
		abs := byRoot[root]
		rel := make([]string, 0, len(abs))
		back := make(map[string]string, len(abs))
		for _, p := range abs {
			r, err := filepath.Rel(root, absPath(p))
			if err != nil {
				dirty[p] = true
				continue
			}
			r = filepath.ToSlash(r)
			rel = append(rel, r)
			back[r] = p
		}

		entries, err := s.svc.Status(ctx, root, rel)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		for _, e := range entries {
			if p, ok := back[e.Path]; ok {
				dirty[p] = true
			}
		}
		log.Debug("scanned repository", "root", root, "paths", len(rel), "dirty", len(entries))
	}

	return dirty, nil
}
