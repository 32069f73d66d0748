package commit

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zhubert/checkin/hooks"
	"github.com/zhubert/checkin/vcs"
)

// ResultHandler replaces the notification reporter for one request.
type ResultHandler interface {
	OnSuccess(message string)
	OnFailure()
}

// Request is one commit. It is built once with NewRequest and must not be
// modified after it is handed to the Orchestrator.
type Request struct {
	ID         string
	ChangeList *vcs.ChangeList
	Included   []vcs.Change
	Message    string

	Handlers      []hooks.Handler
	Synchronous   bool
	ResultHandler ResultHandler
	AuxData       any

	// AllOfDefaultIncluded is set when the request covered every change the
	// default list held when the commit was prepared.
	AllOfDefaultIncluded bool

	// Backend, when set on a normal commit with no included changes, is
	// asked to record an empty commit.
	Backend vcs.Backend

	offerMove   bool
	afterCommit AfterCommit
}

// RequestOption configures a Request during creation.
type RequestOption func(*Request)

// WithHandlers appends commit handlers, run in order.
func WithHandlers(handlers ...hooks.Handler) RequestOption {
	return func(r *Request) {
		r.Handlers = append(r.Handlers, handlers...)
	}
}

// WithSynchronous makes Commit block until the worker finishes.
func WithSynchronous() RequestOption {
	return func(r *Request) {
		r.Synchronous = true
	}
}

// WithResultHandler routes the result to h instead of the notifier.
func WithResultHandler(h ResultHandler) RequestOption {
	return func(r *Request) {
		r.ResultHandler = h
	}
}

// WithAuxData passes backend specific data through to every Commit call.
func WithAuxData(data any) RequestOption {
	return func(r *Request) {
		r.AuxData = data
	}
}

// WithAllOfDefaultIncluded marks that every change of the default list was
// included.
func WithAllOfDefaultIncluded() RequestOption {
	return func(r *Request) {
		r.AllOfDefaultIncluded = true
	}
}

// WithBackend pins the backend used for an empty commit.
func WithBackend(b vcs.Backend) RequestOption {
	return func(r *Request) {
		r.Backend = b
	}
}

// WithOfferMove enables the offer to move the remaining changes of the
// default list after a partial commit.
func WithOfferMove(enabled bool) RequestOption {
	return func(r *Request) {
		r.offerMove = enabled
	}
}

// NewRequest snapshots list and included and decides what happens to the
// list after a successful commit.
func NewRequest(list *vcs.ChangeList, included []vcs.Change, message string, opts ...RequestOption) *Request {
	r := &Request{
		ID:         uuid.New().String(),
		ChangeList: list.Clone(),
		Included:   slices.Clone(included),
		Message:    message,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.afterCommit = DecideAfterCommit(r.ChangeList, r.Included, r.AllOfDefaultIncluded, r.offerMove)
	return r
}

// AfterCommit returns the changelist action decided at construction.
func (r *Request) AfterCommit() AfterCommit {
	return r.afterCommit
}
