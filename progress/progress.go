// Package progress exposes the status line a long-running commit updates.
package progress

import (
	"log/slog"
	"sync"

	"github.com/zhubert/checkin/logger"
)

// Indicator receives human-readable status updates.
type Indicator interface {
	SetText(text string)
}

// Status is an Indicator that remembers the latest text and its history.
type Status struct {
	mu      sync.Mutex
	text    string
	history []string
	log     *slog.Logger
}

// NewStatus creates a status that also logs every update at debug level.
func NewStatus() *Status {
	return &Status{log: logger.WithComponent("progress")}
}

// SetText implements Indicator.
func (s *Status) SetText(text string) {
	s.mu.Lock()
	s.text = text
	s.history = append(s.history, text)
	s.mu.Unlock()

	s.log.Debug("progress", "text", text)
}

// Text returns the latest status text.
func (s *Status) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// History returns every text set so far.
func (s *Status) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// Discard drops all updates.
type Discard struct{}

func (Discard) SetText(string) {}
