package commit

import (
	"context"
	"fmt"
)

// Execution is a commit running on its worker goroutine.
type Execution struct {
	id      string
	done    chan struct{}
	outcome *Outcome
	fault   *FaultError
}

func newExecution(req *Request) *Execution {
	return &Execution{
		id:      req.ID,
		done:    make(chan struct{}),
		outcome: newOutcome(len(req.Included)),
	}
}

// ID returns the request ID.
func (e *Execution) ID() string {
	return e.id
}

// Done is closed when the worker has finished, including cleanup.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the worker finishes or ctx is done. A fault inside the
// worker is returned as *FaultError; a cancelled request returns its
// context error along with the partial outcome.
func (e *Execution) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-e.done:
		return e.result()
	default:
	}

	select {
	case <-e.done:
		return e.result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Execution) result() (*Outcome, error) {
	if e.fault != nil {
		return e.outcome, e.fault
	}
	if e.outcome.cancelErr != nil {
		return e.outcome, e.outcome.cancelErr
	}
	return e.outcome, nil
}

// FaultError is a panic recovered on the commit worker.
type FaultError struct {
	Phase string
	Value any
	Stack []byte
}

func (f *FaultError) Error() string {
	return fmt.Sprintf("commit fault during %s: %v", f.Phase, f.Value)
}

// Unwrap returns the panic value when it was an error.
func (f *FaultError) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}
