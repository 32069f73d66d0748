package commit

import (
	"log/slog"

	"github.com/zhubert/checkin/vcs"
)

// AfterCommit is what happens to the source changelist after a fully
// successful commit.
type AfterCommit int

const (
	AfterCommitNothing AfterCommit = iota
	AfterCommitDeleteList
	AfterCommitMoveOthers
)

func (a AfterCommit) String() string {
	switch a {
	case AfterCommitNothing:
		return "nothing"
	case AfterCommitDeleteList:
		return "delete-list"
	case AfterCommitMoveOthers:
		return "move-others"
	default:
		return "unknown"
	}
}

// DecideAfterCommit picks the changelist action for a request.
//
// A list is deleted when it is neither default nor read-only and every one
// of its changes is included. The move offer is made only for the default
// list, only when part of it stays behind, and only when the request covered
// all of the default list's changes at preparation time.
func DecideAfterCommit(list *vcs.ChangeList, included []vcs.Change, allOfDefaultIncluded, offerMove bool) AfterCommit {
	if list == nil {
		return AfterCommitNothing
	}
	containsAll := vcs.ContainsAll(included, list.Changes)
	switch {
	case containsAll && !list.Default && !list.ReadOnly:
		return AfterCommitDeleteList
	case offerMove && !containsAll && list.Default && allOfDefaultIncluded:
		return AfterCommitMoveOthers
	default:
		return AfterCommitNothing
	}
}

// applyAfterCommit mutates the changelists once the commit succeeded.
func (o *Orchestrator) applyAfterCommit(req *Request, out *Outcome, log *slog.Logger) {
	if o.lists == nil || req.ChangeList == nil {
		return
	}
	if out.KeepChangeList() {
		log.Debug("backend asked to keep the changelist", "list", req.ChangeList.Name)
		return
	}

	switch req.afterCommit {
	case AfterCommitDeleteList:
		if err := o.lists.RemoveChangeList(req.ChangeList.Name); err != nil {
			log.Warn("failed to remove committed changelist", "list", req.ChangeList.Name, "error", err)
			return
		}
		log.Info("committed changelist removed", "list", req.ChangeList.Name)
	case AfterCommitMoveOthers:
		o.moveOthers(log)
	}
}

// moveOthers offers to move what is left in the default list elsewhere.
func (o *Orchestrator) moveOthers(log *slog.Logger) {
	if o.prompter == nil {
		return
	}
	def := o.lists.DefaultChangeList()
	if def == nil || len(def.Changes) == 0 {
		return
	}
	if !o.prompter.Confirm("Partial Commit", "Move the remaining changes of the default changelist to another changelist?") {
		log.Debug("move of remaining changes declined")
		return
	}

	target, ok := o.prompter.ChooseChangeList(def.Changes)
	if !ok || target == "" || target == def.Name {
		return
	}
	if o.lists.FindChangeList(target) == nil {
		if _, err := o.lists.AddChangeList(target, ""); err != nil {
			log.Warn("failed to create changelist", "list", target, "error", err)
			return
		}
	}
	if err := o.lists.MoveChanges(target, def.Changes); err != nil {
		log.Warn("failed to move remaining changes", "list", target, "error", err)
		return
	}
	log.Info("remaining changes moved", "list", target, "count", len(def.Changes))
}
