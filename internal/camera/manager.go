package camera

import (
	"fmt"
	"log/slog"

	"github.com/inamate/pleat/internal/typeid"
)

// Outcome is the result of resolving an acquisition ticket.
type Outcome int

const (
	// Attached means the stream is now the active feed.
	Attached Outcome = iota
	// Failed means the current request failed; the caller rolls back.
	Failed
	// Stale means the ticket was no longer wanted; any stream was stopped.
	Stale
)

func (o Outcome) String() string {
	switch o {
	case Attached:
		return "attached"
	case Failed:
		return "failed"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Manager tracks the wanted acquisition and the active stream.
// It is not safe for concurrent use; the owner serializes calls.
type Manager struct {
	log    *slog.Logger
	ticket string
	stream Stream
}

// NewManager returns a manager with no feed.
func NewManager(log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{log: log}
}

// Begin starts a new acquisition request and returns its ticket. Any earlier
// request becomes stale and any active stream is stopped.
func (m *Manager) Begin() string {
	m.stopStream()
	m.ticket = typeid.NewCameraRequestID()
	m.log.Debug("camera request", "ticket", m.ticket)
	return m.ticket
}

// Resolve settles the acquisition identified by ticket. A nil stream without
// an error counts as a failure.
func (m *Manager) Resolve(ticket string, s Stream, err error) Outcome {
	if ticket == "" || ticket != m.ticket || m.stream != nil {
		if s != nil {
			s.Stop()
		}
		m.log.Info("dropped late camera stream", "ticket", ticket)
		return Stale
	}
	if err == nil && s == nil {
		err = ErrNoStream
	}
	if err != nil {
		m.ticket = ""
		if s != nil {
			s.Stop()
		}
		m.log.Warn("camera acquisition failed", "ticket", ticket, "error", err)
		return Failed
	}
	m.stream = s
	m.log.Info("camera attached", "ticket", ticket)
	return Attached
}

// Cancel abandons any pending request and stops the active stream.
func (m *Manager) Cancel() {
	m.ticket = ""
	m.stopStream()
}

// Pending reports whether a request is outstanding.
func (m *Manager) Pending() bool {
	return m.ticket != "" && m.stream == nil
}

// Active reports whether a stream is attached.
func (m *Manager) Active() bool {
	return m.stream != nil
}

func (m *Manager) stopStream() {
	if m.stream == nil {
		return
	}
	m.stream.Stop()
	m.stream = nil
	m.log.Info("camera stopped")
}
