package donorlink

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types emitted by the session core.
const (
	// EventLoginSuccess is an exported constant or variable used by the session core.
	EventLoginSuccess = "login.success"
	// EventLoginRejected is an exported constant or variable used by the session core.
	EventLoginRejected = "login.rejected"
	// EventLoginTransportError is an exported constant or variable used by the session core.
	EventLoginTransportError = "login.transport_error"
	// EventSessionRestored is an exported constant or variable used by the session core.
	EventSessionRestored = "session.restored"
	// EventSessionDiscarded is an exported constant or variable used by the session core.
	EventSessionDiscarded = "session.discarded"
	// EventLogout is an exported constant or variable used by the session core.
	EventLogout = "logout"
	// EventGuardRedirect is an exported constant or variable used by the session core.
	EventGuardRedirect = "guard.redirect"
	// EventProfileSet is an exported constant or variable used by the session core.
	EventProfileSet = "profile.set"
	// EventProfileHydrated is an exported constant or variable used by the session core.
	EventProfileHydrated = "profile.hydrated"
	// EventProfileNotifySuppressed is an exported constant or variable used by the session core.
	EventProfileNotifySuppressed = "profile.notify_suppressed"
	// EventPersistenceError is an exported constant or variable used by the session core.
	EventPersistenceError = "persistence.error"
	// EventTokenClaimsMismatch is an exported constant or variable used by the session core.
	EventTokenClaimsMismatch = "token.claims_mismatch"
)

// AuditEvent is the canonical audit record emitted through an [AuditSink].
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	ClientID  string            `json:"client_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives emitted audit events.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink drops audit events.
type NoOpSink struct{}

// Emit describes the emit operation and its observable behavior.
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink writes audit events into a buffered channel.
type ChannelSink struct {
	events chan AuditEvent
}

// NewChannelSink describes the newchannelsink operation and its observable behavior.
//
// NewChannelSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events describes the events operation and its observable behavior.
func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink describes the newjsonwritersink operation and its observable behavior.
//
// NewJSONWriterSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit describes the emit operation and its observable behavior.
func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
