package commit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zhubert/checkin/vcs"
)

// group is the slice of a request owned by one backend. A nil backend
// collects the changes no backend claimed.
type group struct {
	backend vcs.Backend
	changes []vcs.Change
}

// partition groups changes by owning backend in first-seen order.
func partition(changes []vcs.Change, router vcs.Router) []group {
	var groups []group
	index := make(map[vcs.Backend]int)
	for _, c := range changes {
		b := router.BackendFor(c)
		i, ok := index[b]
		if !ok {
			i = len(groups)
			index[b] = i
			groups = append(groups, group{backend: b})
		}
		groups[i].changes = append(groups[i].changes, c)
	}
	return groups
}

// dispatcher invokes each backend once, sequentially.
type dispatcher struct {
	list     *vcs.ChangeList
	message  string
	aux      any
	feedback *vcs.Feedback
	log      *slog.Logger
}

// run commits every group. It stops before the next group once ctx is
// done and returns ctx's error wrapped with the backend it did not reach;
// the group in flight is allowed to finish.
func (d *dispatcher) run(ctx context.Context, groups []group, out *Outcome) error {
	callCtx := context.WithoutCancel(ctx)
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			d.log.Info("commit cancelled before backend", "backend", backendName(g.backend), "error", err)
			return fmt.Errorf("stopped before backend %s: %w", backendName(g.backend), err)
		}
		d.commitGroup(callCtx, g, out)
	}
	return nil
}

func (d *dispatcher) commitGroup(ctx context.Context, g group, out *Outcome) {
	if g.backend == nil {
		for _, c := range g.changes {
			out.add(vcs.NewError("no version control system owns this file").ForChange(c))
			out.fail(c)
		}
		return
	}

	if g.backend.NeedsRefreshAfterCommit() {
		out.touch(g.changes)
	}
	if g.backend.KeepChangeListAfterCommit(d.list) {
		out.keep = true
	}

	d.log.Debug("committing group", "backend", g.backend.Name(), "changes", len(g.changes))
	problems, err := g.backend.Commit(ctx, g.changes, d.message, d.aux, d.feedback)
	if err != nil {
		thrown := vcs.NewError(err.Error())
		thrown.Err = err
		problems = append(problems, thrown)
	}

	out.record(g.changes)
	inGroup := vcs.ChangeSet(g.changes)
	for _, p := range problems {
		if p == nil {
			continue
		}
		out.add(p)
		if p.IsWarning() {
			continue
		}
		if p.Change != nil && inGroup[*p.Change] {
			out.fail(*p.Change)
		} else {
			out.fail(g.changes...)
		}
	}

	errs, warnings := countProblems(problems)
	d.log.Info("backend finished", "backend", g.backend.Name(), "errors", errs, "warnings", warnings)
}

func countProblems(problems []*vcs.CommitError) (errs, warnings int) {
	for _, p := range problems {
		switch {
		case p == nil:
		case p.IsWarning():
			warnings++
		default:
			errs++
		}
	}
	return errs, warnings
}

func backendName(b vcs.Backend) string {
	if b == nil {
		return "<none>"
	}
	return b.Name()
}
