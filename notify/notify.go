// Package notify delivers commit result notifications to the user.
package notify

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/zhubert/checkin/logger"
)

// Level is the channel a notification is routed to.
type Level int

const (
	LevelSuccess Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier is the host's notification sink.
type Notifier interface {
	NotifyError(title, body string)
	NotifyWarning(title, body string)
	NotifySuccess(title, body string)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier returns a notifier logging under the "notify" component.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.WithComponent("notify")}
}

func (n *LogNotifier) NotifyError(title, body string) {
	n.log.Error(title, "body", body)
}

func (n *LogNotifier) NotifyWarning(title, body string) {
	n.log.Warn(title, "body", body)
}

func (n *LogNotifier) NotifySuccess(title, body string) {
	n.log.Info(title, "body", body)
}

// Notification is one delivered message.
type Notification struct {
	Level Level
	Title string
	Body  string
}

// Recorder keeps every notification in memory. Hosts use it to drain
// notifications into their own UI; tests use it for assertions.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level Level, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Title: title, Body: body})
}

func (r *Recorder) NotifyError(title, body string)   { r.add(LevelError, title, body) }
func (r *Recorder) NotifyWarning(title, body string) { r.add(LevelWarning, title, body) }
func (r *Recorder) NotifySuccess(title, body string) { r.add(LevelSuccess, title, body) }

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Multi fans a notification out to several sinks.
type Multi []Notifier

func (m Multi) NotifyError(title, body string) {
	for _, n := range m {
		n.NotifyError(title, body)
	}
}

func (m Multi) NotifyWarning(title, body string) {
	for _, n := range m {
		n.NotifyWarning(title, body)
	}
}

func (m Multi) NotifySuccess(title, body string) {
	for _, n := range m {
		n.NotifySuccess(title, body)
	}
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recorder)(nil)
	_ Notifier = Multi(nil)
)
