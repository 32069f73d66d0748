package commit

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"

	"github.com/zhubert/checkin/changelist"
	"github.com/zhubert/checkin/config"
	"github.com/zhubert/checkin/document"
	"github.com/zhubert/checkin/hooks"
	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/notify"
	"github.com/zhubert/checkin/progress"
	"github.com/zhubert/checkin/vcs"
)

// Progress texts shown while a commit runs.
const (
	ProgressCommitting = "Performing VCS commit..."
	ProgressWaiting    = "Waiting for VCS background tasks to finish..."
	ProgressRefreshing = "Refreshing files"
	ProgressCompleted  = "Commit completed successfully"
)

var (
	ErrNilRequest = errors.New("nil commit request")
	ErrNilBackend = errors.New("alien commit requires a backend")
)

// ChangeLists is the changelist store a normal commit mutates.
// *changelist.Manager satisfies it.
type ChangeLists interface {
	FindChangeList(name string) *vcs.ChangeList
	DefaultChangeList() *vcs.ChangeList
	AddChangeList(name, comment string) (*vcs.ChangeList, error)
	RemoveChangeList(name string) error
	MoveChanges(target string, changes []vcs.Change) error
	RemoveChanges(changes []vcs.Change) int
	MoveToFailedList(source *vcs.ChangeList, message string, failed []vcs.Change, newName string, opt config.Confirmation, confirm func() bool) (string, error)
}

// Refresher rescans paths after a commit. *changelist.WorkingTree
// satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, paths []string) error
}

// Prompter asks the user to decide. Both methods are called on the commit
// worker.
type Prompter interface {
	Confirm(title, message string) bool
	ChooseChangeList(changes []vcs.Change) (name string, ok bool)
}

// Services are the host collaborators an Orchestrator works with. Router is
// required; the rest fall back to no-op or default implementations.
type Services struct {
	Router      vcs.Router
	ChangeLists ChangeLists
	Guard       *document.Guard
	Refresher   Refresher
	Notifier    notify.Notifier
	Prompter    Prompter
	Progress    progress.Indicator
	Config      *config.Config
}

// Orchestrator runs commit requests.
type Orchestrator struct {
	router    vcs.Router
	lists     ChangeLists
	guard     *document.Guard
	refresher Refresher
	notifier  notify.Notifier
	prompter  Prompter
	progress  progress.Indicator
	cfg       *config.Config
	log       *slog.Logger
}

// New creates an orchestrator.
func New(s Services) *Orchestrator {
	o := &Orchestrator{
		router:    s.Router,
		lists:     s.ChangeLists,
		guard:     s.Guard,
		refresher: s.Refresher,
		notifier:  s.Notifier,
		prompter:  s.Prompter,
		progress:  s.Progress,
		cfg:       s.Config,
		log:       logger.WithComponent("commit"),
	}
	if o.guard == nil {
		o.guard = document.NewGuard(nil)
	}
	if o.notifier == nil {
		o.notifier = notify.NewLogNotifier()
	}
	if o.progress == nil {
		o.progress = progress.Discard{}
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	return o
}

// NewRequest builds a request with the move offer taken from the current
// configuration.
func (o *Orchestrator) NewRequest(list *vcs.ChangeList, included []vcs.Change, message string, opts ...RequestOption) *Request {
	opts = append([]RequestOption{WithOfferMove(o.cfg.GetOfferMoveOnPartialCommit())}, opts...)
	return NewRequest(list, included, message, opts...)
}

// Commit runs a normal commit. A synchronous request blocks until the
// worker finishes or ctx is done and reports whether no errors occurred.
// Any other request returns true as soon as the worker has started.
func (o *Orchestrator) Commit(ctx context.Context, req *Request) (bool, error) {
	return o.commit(ctx, req, Normal())
}

// CommitAlien commits every included change through backend.
func (o *Orchestrator) CommitAlien(ctx context.Context, req *Request, backend vcs.Backend) (bool, error) {
	if backend == nil {
		return false, ErrNilBackend
	}
	return o.commit(ctx, req, Alien(backend))
}

func (o *Orchestrator) commit(ctx context.Context, req *Request, s Strategy) (bool, error) {
	if req == nil {
		return false, ErrNilRequest
	}

	e := o.Start(ctx, req, s)
	if !req.Synchronous {
		return true, nil
	}

	o.progress.SetText(ProgressWaiting)
	out, err := e.Wait(ctx)
	if err != nil {
		return false, err
	}
	return out.Success(), nil
}

// Start runs req on a new worker goroutine and returns immediately.
// Cancelling ctx stops the worker before its next backend call.
func (o *Orchestrator) Start(ctx context.Context, req *Request, s Strategy) *Execution {
	e := newExecution(req)
	go o.run(ctx, req, s, e)
	return e
}

// run is the worker body. The done channel is closed last, after every
// cleanup step.
func (o *Orchestrator) run(ctx context.Context, req *Request, s Strategy, e *Execution) {
	defer close(e.done)

	log := o.log.With("requestID", req.ID, "strategy", s.Name())
	out := e.outcome

	protect := func(phase string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				f := &FaultError{Phase: phase, Value: r, Stack: debug.Stack()}
				log.Error("commit fault", "phase", phase, "panic", r, "stack", string(f.Stack))
				out.add(vcs.WrapError(f))
				if e.fault == nil {
					e.fault = f
				}
			}
		}()
		fn()
	}

	log.Info("commit started", "list", listName(req.ChangeList), "changes", len(req.Included))
	o.progress.SetText(ProgressCommitting)

	protect("commit", func() { o.commitChanges(ctx, req, s, out, log) })

	if out.cancelErr == nil {
		out.cancelErr = ctx.Err()
	}
	if out.Cancelled() {
		log.Info("commit cancelled, skipping report", "error", out.cancelErr)
	} else {
		protect("completion", func() { o.completed(ctx, req, s, out, log) })
	}

	if s.managesChangeLists() {
		protect("refresh", func() { o.refresh(context.WithoutCancel(ctx), out, log) })
		protect("changelists", func() {
			o.forgetCommitted(out, log)
			if !out.Cancelled() && out.Success() {
				o.applyAfterCommit(req, out, log)
			}
		})
	}

	errs, warnings := out.Classify()
	log.Info("commit finished", "errors", errs, "warnings", warnings, "failed", len(out.failed), "cancelled", out.Cancelled())
}

// commitChanges marks the buffers, runs the before hooks and dispatches.
// The lease is released before it returns, whatever happens.
func (o *Orchestrator) commitChanges(ctx context.Context, req *Request, s Strategy, out *Outcome, log *slog.Logger) {
	lease := o.guard.NewLease(req.ID)
	defer lease.Release()
	lease.Mark(vcs.Paths(req.Included))

	for _, h := range req.Handlers {
		bh, ok := h.(hooks.BeforeHandler)
		if !ok {
			continue
		}
		if err := bh.BeforeCheckin(ctx, req.Included); err != nil {
			log.Warn("before-commit handler failed", "error", err)
		}
	}

	feedback := &vcs.Feedback{}
	d := &dispatcher{
		list:     req.ChangeList,
		message:  req.Message,
		aux:      req.AuxData,
		feedback: feedback,
		log:      log,
	}
	// feedback is collected even if a backend panics
	defer func() { out.feedback = feedback.Lines() }()

	if err := d.run(ctx, s.route(req, o.router), out); err != nil {
		out.cancelErr = err
	}
}

// completed notifies the handlers, reports the result and, after a failed
// normal commit, offers to move the failed changes to their own list.
func (o *Orchestrator) completed(ctx context.Context, req *Request, s Strategy, out *Outcome, log *slog.Logger) {
	errs := out.Errors()
	if len(errs) == 0 {
		for _, h := range req.Handlers {
			h.CheckinSuccessful(ctx)
		}
	} else {
		for _, h := range req.Handlers {
			h.CheckinFailed(ctx, errs)
		}
	}

	o.report(req, out)

	if len(errs) == 0 {
		if len(out.problems) == 0 {
			o.progress.SetText(ProgressCompleted)
		}
		return
	}

	if s.managesChangeLists() {
		o.moveFailed(req, out, log)
	}
}

func (o *Orchestrator) moveFailed(req *Request, out *Outcome, log *slog.Logger) {
	if o.lists == nil || req.ChangeList == nil {
		return
	}
	source := o.lists.FindChangeList(req.ChangeList.Name)
	if source == nil {
		source = req.ChangeList
	}

	confirm := func() bool {
		return o.prompter != nil && o.prompter.Confirm("Commit Failed", "Move the changes that failed to commit to a separate changelist?")
	}
	name, err := o.lists.MoveToFailedList(source, req.Message, out.FailedChanges(),
		changelist.FailedListName(req.ChangeList.Name), o.cfg.GetMoveToFailedList(), confirm)
	if err != nil {
		log.Warn("failed to move failed changes", "error", err)
		return
	}
	if name != "" {
		log.Info("failed changes moved", "list", name)
	}
}

// refresh rescans the paths touched by backends that need it. Errors are
// logged and otherwise ignored.
func (o *Orchestrator) refresh(ctx context.Context, out *Outcome, log *slog.Logger) {
	paths := out.PathsToRefresh()
	if len(paths) == 0 || o.refresher == nil {
		return
	}
	o.progress.SetText(ProgressRefreshing)
	if err := o.refresher.Refresh(ctx, paths); err != nil {
		log.Warn("refresh after commit failed", "paths", len(paths), "error", err)
	}
}

// forgetCommitted drops the accepted changes from every changelist. The
// working-tree rescan only covers backends that need a refresh, so the store
// is updated here for all of them.
func (o *Orchestrator) forgetCommitted(out *Outcome, log *slog.Logger) {
	if o.lists == nil {
		return
	}
	committed := out.CommittedChanges()
	if len(committed) == 0 {
		return
	}
	n := o.lists.RemoveChanges(committed)
	log.Debug("committed changes dropped from changelists", "changes", len(committed), "removed", n)
}

func listName(l *vcs.ChangeList) string {
	if l == nil {
		return ""
	}
	return l.Name
}

var (
	_ ChangeLists = (*changelist.Manager)(nil)
	_ Refresher   = (*changelist.WorkingTree)(nil)
)
