package changelist

import (
	"github.com/zhubert/checkin/config"
	"github.com/zhubert/checkin/logger"
	"github.com/zhubert/checkin/vcs"
)

// FailedListName is the base name for lists created from failed commits.
func FailedListName(source string) string {
	return "Failed commit: " + source
}

// MoveToFailedList moves the changes that failed to commit out of source
// into a fresh list named after newName (made unique with a " (n)"
// suffix), with message as its comment.
//
// Nothing happens when the failed changes already cover the whole source
// list, since the result would be the same list under another name. The
// confirmation option decides whether confirm is asked first: Never skips
// the move, AlwaysSilently moves without asking.
//
// It returns the name of the created list, or "" when nothing was moved.
func (m *Manager) MoveToFailedList(source *vcs.ChangeList, message string, failed []vcs.Change, newName string, opt config.Confirmation, confirm func() bool) (string, error) {
	log := logger.WithComponent("changelist")

	if len(failed) == 0 || vcs.ContainsAll(failed, source.Changes) {
		log.Debug("failed changes cover the list, not moving", "list", source.Name)
		return "", nil
	}

	switch opt {
	case config.Never:
		return "", nil
	case config.AlwaysSilently:
	default:
		if confirm == nil || !confirm() {
			return "", nil
		}
	}

	name := m.UniqueName(newName)
	if _, err := m.AddChangeList(name, message); err != nil {
		return "", err
	}
	if err := m.MoveChanges(name, failed); err != nil {
		return "", err
	}

	log.Info("failed changes moved", "from", source.Name, "to", name, "count", len(failed))
	return name, nil
}
