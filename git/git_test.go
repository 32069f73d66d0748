package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	pexec "github.com/zhubert/checkin/exec"
	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/vcs"
)

// ctx is a background context for testing
var ctx = context.Background()

func TestMain(m *testing.M) {
	logger.Reset()
	logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}

// createTestRepo creates a temporary git repository with one commit
func createTestRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")
	run("config", "commit.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(dir, "test.txt"), []byte("test content"), 0o644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	run("add", ".")
	run("commit", "-m", "Initial commit")

	// Resolve symlinks (macOS /var -> /private/var) so paths match git output.
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	return resolved
}

func TestCommitPaths_Mock(t *testing.T) {
	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"add"}, pexec.MockResponse{
		Stdout: []byte("warning: in the working copy of 'a.txt', LF will be replaced by CRLF\n"),
	})
	mock.AddExactMatch("git", []string{"rev-parse", "--short", "HEAD"}, pexec.MockResponse{
		Stdout: []byte("abc1234\n"),
	})
	svc := NewGitServiceWithExecutor(mock)

	res, err := svc.CommitPaths(ctx, "/repo", "fix things", []string{"a.txt", "dir/b.txt"})
	if err != nil {
		t.Fatalf("CommitPaths: %v", err)
	}
	if res.Hash != "abc1234" {
		t.Errorf("Hash = %q", res.Hash)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "CRLF") {
		t.Errorf("Warnings = %v", res.Warnings)
	}

	calls := mock.GetCalls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 git calls, got %d", len(calls))
	}
	wantAdd := []string{"add", "-A", "--", "a.txt", "dir/b.txt"}
	if !slices.Equal(calls[0].Args, wantAdd) {
		t.Errorf("add args = %v, want %v", calls[0].Args, wantAdd)
	}
	wantCommit := []string{"commit", "-m", "fix things", "--", "a.txt", "dir/b.txt"}
	if !slices.Equal(calls[1].Args, wantCommit) {
		t.Errorf("commit args = %v, want %v", calls[1].Args, wantCommit)
	}
	for _, c := range calls {
		if c.Dir != "/repo" {
			t.Errorf("call ran in %q", c.Dir)
		}
	}
}

func TestCommitPaths_Empty(t *testing.T) {
	mock := pexec.NewMockExecutor()
	svc := NewGitServiceWithExecutor(mock)

	if _, err := svc.CommitPaths(ctx, "/repo", "empty", nil); err != nil {
		t.Fatalf("CommitPaths: %v", err)
	}
	calls := mock.GetCalls()
	want := []string{"commit", "--allow-empty", "-m", "empty"}
	if !slices.Equal(calls[0].Args, want) {
		t.Errorf("args = %v, want %v", calls[0].Args, want)
	}
}

func TestCommitPaths_Failures(t *testing.T) {
	tests := []struct {
		name    string
		prefix  []string
		wantErr string
	}{
		{"add fails", []string{"add"}, "git add failed"},
		{"commit fails", []string{"commit"}, "git commit failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := pexec.NewMockExecutor()
			mock.AddPrefixMatch("git", tt.prefix, pexec.MockResponse{
				Stderr: []byte("fatal: boom"),
				Err:    errors.New("exit status 128"),
			})
			svc := NewGitServiceWithExecutor(mock)

			_, err := svc.CommitPaths(ctx, "/repo", "msg", []string{"a.txt"})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), "fatal: boom") {
				t.Errorf("err should carry git output: %v", err)
			}
		})
	}
}

func TestCommitPaths_NoHash(t *testing.T) {
	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"rev-parse"}, pexec.MockResponse{Err: errors.New("no HEAD")})
	svc := NewGitServiceWithExecutor(mock)

	res, err := svc.CommitPaths(ctx, "/repo", "msg", []string{"a.txt"})
	if err != nil {
		t.Fatalf("rev-parse failure should not fail the commit: %v", err)
	}
	if res.Hash != "" {
		t.Errorf("Hash = %q", res.Hash)
	}
}

func TestParsePorcelainZ(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []StatusEntry
	}{
		{"empty", "", nil},
		{
			name:   "modified and untracked",
			output: " M a.txt\x00?? new file.txt\x00",
			want: []StatusEntry{
				{Path: "a.txt", Status: " M"},
				{Path: "new file.txt", Status: "??"},
			},
		},
		{
			name:   "rename skips original path",
			output: "R  new.txt\x00old.txt\x00D  gone.txt\x00",
			want: []StatusEntry{
				{Path: "new.txt", Status: "R "},
				{Path: "gone.txt", Status: "D "},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePorcelainZ(tt.output)
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

type staticRoots map[string]string

func (s staticRoots) RootFor(path string) string {
	for prefix, root := range s {
		if strings.HasPrefix(path, prefix) {
			return root
		}
	}
	return ""
}

func TestStatusScanner_Mock(t *testing.T) {
	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"status"}, pexec.MockResponse{
		Stdout: []byte(" M src/a.go\x00"),
	})
	scanner := NewStatusScanner(NewGitServiceWithExecutor(mock), staticRoots{"/repo/": "/repo"})

	dirty, err := scanner.Dirty(ctx, []string{"/repo/src/a.go", "/repo/src/b.go", "/elsewhere/c.go"})
	if err != nil {
		t.Fatalf("Dirty: %v", err)
	}
	if !dirty["/repo/src/a.go"] {
		t.Error("a.go should be dirty")
	}
	if dirty["/repo/src/b.go"] {
		t.Error("b.go should be clean")
	}
	if !dirty["/elsewhere/c.go"] {
		t.Error("paths outside any repository should be reported dirty")
	}

	calls := mock.GetCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one status call per root, got %d", len(calls))
	}
	if !slices.Contains(calls[0].Args, "src/b.go") {
		t.Errorf("status should be limited to relative paths: %v", calls[0].Args)
	}
}

func TestStatusScanner_Error(t *testing.T) {
	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"status"}, pexec.MockResponse{Err: errors.New("not a git repository")})
	scanner := NewStatusScanner(NewGitServiceWithExecutor(mock), staticRoots{"/repo/": "/repo"})

	if _, err := scanner.Dirty(ctx, []string{"/repo/a.go"}); err == nil {
		t.Error("expected error from failed status")
	}
}

func TestBackend_Mock(t *testing.T) {
	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"rev-parse"}, pexec.MockResponse{Stdout: []byte("deadbee\n")})
	b := NewBackend(NewGitServiceWithExecutor(mock), "/work/repo")

	inside := vcs.Change{Path: "/work/repo/main.go", Type: vcs.ChangeModified}
	outside := vcs.Change{Path: "/work/other/x.go", Type: vcs.ChangeModified}
	fb := &vcs.Feedback{}

	problems, err := b.Commit(ctx, []vcs.Change{inside, outside}, "msg", nil, fb)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(problems) != 1 || problems[0].IsWarning() || problems[0].Change == nil || *problems[0].Change != outside {
		t.Fatalf("problems = %v, want one error for the outside change", problems)
	}
	if lines := fb.Lines(); len(lines) != 1 || lines[0] != "Committed deadbee in repo" {
		t.Errorf("feedback = %v", lines)
	}
	if b.KeepChangeListAfterCommit(nil) {
		t.Error("keep should default to false")
	}
	if !b.NeedsRefreshAfterCommit() {
		t.Error("git backend always needs refresh")
	}
}

func TestBackend_OnlyOutsideChanges(t *testing.T) {
	mock := pexec.NewMockExecutor()
	b := NewBackend(NewGitServiceWithExecutor(mock), "/work/repo")

	problems, err := b.Commit(ctx, []vcs.Change{{Path: "/tmp/x"}}, "msg", nil, nil)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(problems) != 1 {
		t.Errorf("problems = %v", problems)
	}
	if len(mock.GetCalls()) != 0 {
		t.Error("git should not run when nothing is committable")
	}
}

func TestBackend_RelativePaths(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"status"}, pexec.MockResponse{
		Stdout: []byte(" M src/a.go\x00"),
	})
	svc := NewGitServiceWithExecutor(mock)
	b := NewBackend(svc, "repo")
	if !filepath.IsAbs(b.Root()) {
		t.Errorf("Root = %q, want an absolute path", b.Root())
	}

	problems, err := b.Commit(ctx, []vcs.Change{{Path: "repo/src/a.go"}}, "msg", nil, &vcs.Feedback{})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if len(problems) != 0 {
		t.Errorf("relative path inside the repository reported: %v", problems)
	}
	var add pexec.MockCall
	for _, c := range mock.GetCalls() {
		if len(c.Args) > 0 && c.Args[0] == "add" {
			add = c
		}
	}
	if !slices.Contains(add.Args, "src/a.go") {
		t.Errorf("add args = %v, want src/a.go", add.Args)
	}

	reg := vcs.NewRegistry()
	if err := reg.Register("repo", b); err != nil {
		t.Fatal(err)
	}
	dirty, err := NewStatusScanner(svc, reg).Dirty(ctx, []string{"repo/src/a.go", "repo/src/b.go"})
	if err != nil {
		t.Fatalf("Dirty: %v", err)
	}
	if !dirty["repo/src/a.go"] {
		t.Error("a.go should be dirty")
	}
	if dirty["repo/src/b.go"] {
		t.Error("b.go should be clean")
	}
}

func TestBackend_CommandFailure(t *testing.T) {
	mock := pexec.NewMockExecutor()
	mock.AddPrefixMatch("git", []string{"commit"}, pexec.MockResponse{Err: errors.New("exit status 1")})
	b := NewBackend(NewGitServiceWithExecutor(mock), "/work/repo")

	_, err := b.Commit(ctx, []vcs.Change{{Path: "/work/repo/a"}}, "msg", nil, &vcs.Feedback{})
	if err == nil {
		t.Error("expected git failure to surface as error")
	}
}

func TestBackend_RealRepo(t *testing.T) {
	repo := createTestRepo(t)
	svc := NewGitService()

	modified := filepath.Join(repo, "test.txt")
	added := filepath.Join(repo, "added.txt")
	untouched := filepath.Join(repo, "later.txt")
	for path, content := range map[string]string{
		modified:  "changed",
		added:     "new",
		untouched: "not yet",
	} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	b := NewBackend(svc, repo)
	fb := &vcs.Feedback{}
	changes := []vcs.Change{
		{Path: modified, Type: vcs.ChangeModified},
		{Path: added, Type: vcs.ChangeAdded},
	}
	problems, err := b.Commit(ctx, changes, "Commit two files", nil, fb)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	for _, p := range problems {
		if !p.IsWarning() {
			t.Errorf("unexpected error: %v", p)
		}
	}
	if len(fb.Lines()) != 1 {
		t.Errorf("feedback = %v", fb.Lines())
	}

	reg := vcs.NewRegistry()
	if err := reg.Register(repo, b); err != nil {
		t.Fatal(err)
	}
	dirty, err := NewStatusScanner(svc, reg).Dirty(ctx, []string{modified, added, untouched})
	if err != nil {
		t.Fatalf("Dirty: %v", err)
	}
	if dirty[modified] || dirty[added] {
		t.Errorf("committed files should be clean: %v", dirty)
	}
	if !dirty[untouched] {
		t.Errorf("uncommitted file should be dirty: %v", dirty)
	}
}
