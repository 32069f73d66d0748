// Package commit drives a commit request through the backends that own its
// changes and performs the bookkeeping that follows.
//
// # Overview
//
// A Request names the source changelist, the subset of its changes to
// commit and the message. The Orchestrator runs the request on a dedicated
// worker goroutine:
//
//	orch := commit.New(commit.Services{
//	    Router:      registry,
//	    ChangeLists: lists,
//	    Guard:       guard,
//	    Refresher:   changelist.NewWorkingTree(lists, scanner),
//	    Notifier:    notifier,
//	    Config:      cfg,
//	})
//	req := orch.NewRequest(list, included, "Fix parser", commit.WithSynchronous())
//	ok, err := orch.Commit(ctx, req)
//
// # Request Lifecycle
//
// On the worker the orchestrator:
//   - marks the open buffers of the included files as being committed
//   - runs the before-commit hooks
//   - commits each backend's group of changes, one backend at a time
//   - releases the buffer markers
//   - notifies the handlers and reports the result
//   - refreshes the committed paths
//   - deletes the source list or offers to move the rest of the default list
//
// Buffer markers are released and the refresh is attempted on every path
// out of the worker, including cancellation and panics.
//
// # Cancellation
//
// Cancelling the context passed to Commit unblocks a synchronous caller at
// once with context.Canceled. The worker stops before the next backend
// group and skips reporting and changelist mutation. A backend call that is
// already running is not interrupted; backends receive a context that is
// never cancelled.
//
// # Strategies
//
// Normal commits route each change to its owning backend and manage the
// changelists afterwards. Alien commits push every change through one
// explicit backend and leave the changelists alone.
package commit
