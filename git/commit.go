package git

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/zhubert/checkin/logger"
)

// CommitResult describes a successful commit.
type CommitResult struct {
	Hash     string   // Short hash of the new HEAD, empty if it could not be read
	Warnings []string // "warning:" lines git printed while staging or committing
}

// CommitPaths stages and commits exactly the given paths (relative to
// repoPath). With no paths an empty commit is recorded.
func (s *GitService) CommitPaths(ctx context.Context, repoPath, message string, paths []string) (*CommitResult, error) {
	log := logger.WithComponent("git")
	log.Info("committing paths", "repo", repoPath, "count", len(paths))

	result := &CommitResult{}

	var commitArgs []string
	if len(paths) > 0 {
		// -A stages deletions as well as modifications
		addArgs := append([]string{"add", "-A", "--"}, paths...)
		output, err := s.executor.CombinedOutput(ctx, repoPath, "git", addArgs...)
		if err != nil {
			return nil, fmt.Errorf("git add failed: %s - %w", strings.TrimSpace(string(output)), err)
		}
		result.Warnings = append(result.Warnings, gitWarnings(output)...)

		commitArgs = append([]string{"commit", "-m", message, "--"}, paths...)
	} else {
		commitArgs = []string{"commit", "--allow-empty", "-m", message}
	}

	output, err := s.executor.CombinedOutput(ctx, repoPath, "git", commitArgs...)
	if err != nil {
		return nil, fmt.Errorf("git commit failed: %s - %w", strings.TrimSpace(string(output)), err)
	}
	result.Warnings = append(result.Warnings, gitWarnings(output)...)

	hash, err := s.executor.Output(ctx, repoPath, "git", "rev-parse", "--short", "HEAD")
	if err != nil {
		log.Warn("could not read new HEAD", "error", err, "repo", repoPath)
	} else {
		result.Hash = strings.TrimSpace(string(hash))
	}

	return result, nil
}

// gitWarnings extracts the warning lines from git output.
func gitWarnings(output []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if msg, ok := strings.CutPrefix(line, "warning: "); ok {
			out = append(out, msg)
		}
	}
	return out
}
