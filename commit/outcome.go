package commit

import (
	"slices"

	"github.com/zhubert/checkin/vcs"
)

// Outcome aggregates what every backend reported for one request.
// It is written only by the worker and must be read after the execution is
// done.
type Outcome struct {
	included  int
	problems  []*vcs.CommitError
	failed    []vcs.Change
	failedSet map[vcs.Change]bool
	sent      []vcs.Change
	refresh   map[string]bool
	keep      bool
	feedback  []string
	cancelErr error
}

func newOutcome(included int) *Outcome {
	return &Outcome{
		included:  included,
		failedSet: make(map[vcs.Change]bool),
		refresh:   make(map[string]bool),
	}
}

func (o *Outcome) add(problems ...*vcs.CommitError) {
	for _, p := range problems {
		if p != nil {
			o.problems = append(o.problems, p)
		}
	}
}

func (o *Outcome) fail(changes ...vcs.Change) {
	for _, c := range changes {
		if !o.failedSet[c] {
			o.failedSet[c] = true
			o.failed = append(o.failed, c)
		}
	}
}

// record notes changes a backend returned from, whatever it reported.
func (o *Outcome) record(changes []vcs.Change) {
	o.sent = append(o.sent, changes...)
}

func (o *Outcome) touch(changes []vcs.Change) {
	for _, p := range vcs.Paths(changes) {
		o.refresh[p] = true
	}
}

// Classify returns the number of errors and warnings.
func (o *Outcome) Classify() (errs, warnings int) {
	for _, p := range o.problems {
		if p.IsWarning() {
			warnings++
		} else {
			errs++
		}
	}
	return errs, warnings
}

// HasOnlyWarnings reports whether no problem is an error. An outcome with
// no problems at all has only warnings.
func (o *Outcome) HasOnlyWarnings() bool {
	errs, _ := o.Classify()
	return errs == 0
}

// Success reports whether the commit succeeded. Warnings do not count.
func (o *Outcome) Success() bool {
	return o.HasOnlyWarnings()
}

// Problems returns every reported problem in arrival order.
func (o *Outcome) Problems() []*vcs.CommitError {
	return slices.Clone(o.problems)
}

// Errors returns the error-severity problems.
func (o *Outcome) Errors() []*vcs.CommitError {
	return o.filter(false)
}

// Warnings returns the warning-severity problems.
func (o *Outcome) Warnings() []*vcs.CommitError {
	return o.filter(true)
}

func (o *Outcome) filter(warning bool) []*vcs.CommitError {
	var out []*vcs.CommitError
	for _, p := range o.problems {
		if p.IsWarning() == warning {
			out = append(out, p)
		}
	}
	return out
}

// FailedChanges returns the changes that did not make it into a commit.
func (o *Outcome) FailedChanges() []vcs.Change {
	return slices.Clone(o.failed)
}

// CommittedChanges returns the changes a backend accepted: every change
// handed to a backend that returned, minus the failed ones.
func (o *Outcome) CommittedChanges() []vcs.Change {
	var out []vcs.Change
	for _, c := range o.sent {
		if !o.failedSet[c] {
			out = append(out, c)
		}
	}
	return out
}

// Committed returns how many included changes were committed.
func (o *Outcome) Committed() int {
	return max(o.included-len(o.failed), 0)
}

// PathsToRefresh returns the sorted paths that need a working tree refresh.
func (o *Outcome) PathsToRefresh() []string {
	paths := make([]string, 0, len(o.refresh))
	for p := range o.refresh {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// KeepChangeList reports whether any backend asked to keep the source list.
func (o *Outcome) KeepChangeList() bool {
	return o.keep
}

// Feedback returns the lines backends added for the user.
func (o *Outcome) Feedback() []string {
	return slices.Clone(o.feedback)
}

// Cancelled reports whether the request was cancelled before completion.
func (o *Outcome) Cancelled() bool {
	return o.cancelErr != nil
}
