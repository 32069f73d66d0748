// Package hooks runs per-commit handlers around a checkin.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zhubert/checkin/exec"
	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/vcs"
)

// Handler is notified once the outcome of a commit is known.
type Handler interface {
	CheckinSuccessful(ctx context.Context)
	CheckinFailed(ctx context.Context, errs []*vcs.CommitError)
}

// BeforeHandler is an optional extension invoked on the commit worker
// before any backend is called. A returned error is logged and does not
// stop the commit.
type BeforeHandler interface {
	BeforeCheckin(ctx context.Context, changes []vcs.Change) error
}

// HookContext provides environment variables for hook execution.
type HookContext struct {
	RepoPath   string
	ChangeList string
	Message    string
	RequestID  string
}

// envVars returns the hook context as environment variable pairs.
func (hc HookContext) envVars() []string {
	return []string{
		fmt.Sprintf("CHECKIN_REPO_PATH=%s", hc.RepoPath),
		fmt.Sprintf("CHECKIN_CHANGELIST=%s", hc.ChangeList),
		fmt.Sprintf("CHECKIN_MESSAGE=%s", hc.Message),
		fmt.Sprintf("CHECKIN_REQUEST_ID=%s", hc.RequestID),
	}
}

// RunHooks executes hooks sequentially. Errors are logged but do not block the commit.
// Extra environment pairs are appended after the context variables.
func RunHooks(ctx context.Context, executor exec.CommandExecutor, hooks []HookConfig, hookCtx HookContext, log *slog.Logger, extra ...string) {
	env := append(hookCtx.envVars(), extra...)
	for _, hook := range hooks {
		if hook.Run == "" {
			continue
		}

		stdout, stderr, err := executor.Exec(ctx, exec.Command{
			Dir:  hookCtx.RepoPath,
			Name: "sh",
			Args: []string{"-c", hook.Run},
			Env:  env,
		})
		output := string(stdout) + string(stderr)
		if err != nil {
			log.Warn("hook failed",
				"command", hook.Run,
				"error", err,
				"output", output,
			)
			continue
		}

		log.Debug("hook completed",
			"command", hook.Run,
			"output", output,
		)
	}
}

// ShellHandler runs the shell hooks configured for a repository.
type ShellHandler struct {
	cfg      *Config
	executor exec.CommandExecutor
	hookCtx  HookContext
	log      *slog.Logger
}

// NewShellHandler binds a hook configuration to one commit request.
func NewShellHandler(cfg *Config, executor exec.CommandExecutor, hookCtx HookContext) *ShellHandler {
	if cfg == nil {
		cfg = &Config{}
	}
	return &ShellHandler{
		cfg:      cfg,
		executor: executor,
		hookCtx:  hookCtx,
		log:      logger.WithComponent("hooks").With("requestID", hookCtx.RequestID),
	}
}

// BeforeCheckin runs the before hooks with the changed paths exported as
// CHECKIN_FILES (newline separated).
func (h *ShellHandler) BeforeCheckin(ctx context.Context, changes []vcs.Change) error {
	files := "CHECKIN_FILES=" + strings.Join(vcs.Paths(changes), "\n")
	RunHooks(ctx, h.executor, h.cfg.Before, h.hookCtx, h.log, files)
	return nil
}

// CheckinSuccessful runs the after_success hooks.
func (h *ShellHandler) CheckinSuccessful(ctx context.Context) {
	RunHooks(ctx, h.executor, h.cfg.AfterSuccess, h.hookCtx, h.log)
}

// CheckinFailed runs the after_failure hooks with the error messages exported
// as CHECKIN_ERRORS (newline separated).
func (h *ShellHandler) CheckinFailed(ctx context.Context, errs []*vcs.CommitError) {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	RunHooks(ctx, h.executor, h.cfg.AfterFailure, h.hookCtx, h.log, "CHECKIN_ERRORS="+strings.Join(msgs, "\n"))
}

var (
	_ Handler       = (*ShellHandler)(nil)
	_ BeforeHandler = (*ShellHandler)(nil)
)
