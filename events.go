package sessionkit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType classifies a security event.
type EventType string

const (
	// EventLoginSuccess records a completed credential verification that
	// issued tokens directly.
	EventLoginSuccess EventType = "login_success"
	// EventLoginPending records a verification that entered the two-phase
	// pending state.
	EventLoginPending EventType = "login_pending"
	// EventLoginCompleted records a pending login exchanged for a session.
	EventLoginCompleted EventType = "login_completed"
	// EventLoginFailure records rejected credentials or a failed exchange.
	EventLoginFailure EventType = "login_failure"
	// EventRefreshSuccess records a successful silent token refresh.
	EventRefreshSuccess EventType = "refresh_success"
	// EventRefreshFailure records a rejected refresh; the session ended.
	EventRefreshFailure EventType = "refresh_failure"
	// EventSessionExpired records a 401 that survived the single retry.
	EventSessionExpired EventType = "session_expired"
	// EventRequestRetried records the gateway's single refresh-and-retry.
	EventRequestRetried EventType = "request_retried"
	// EventFormRateLimited records a form submission denied by the window.
	EventFormRateLimited EventType = "form_rate_limited"
	// EventAPIRateLimited records a protected call denied by the window.
	EventAPIRateLimited EventType = "api_rate_limited"
	// EventFormSpam records a honeypot rejection.
	EventFormSpam EventType = "form_spam"
	// EventFormAccepted records a submission that cleared every pipeline
	// stage.
	EventFormAccepted EventType = "form_accepted"
	// EventFormRejected records sanitization or required-field failures.
	EventFormRejected EventType = "form_rejected"
	// EventCSRFRejected records a CSRF token mismatch.
	EventCSRFRejected EventType = "csrf_rejected"
	// EventLogout records a logout, server-acknowledged or not.
	EventLogout EventType = "logout"
)

// SecurityEvent is one append-only record of the defense pipeline. Events
// live only as long as their sink; nothing is persisted by this package.
type SecurityEvent struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	ClientID  string            `json:"client_id"`
	IP        string            `json:"ip,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// EventSink receives security events from the dispatcher. Emit must not
// block indefinitely; slow sinks cause drops when the buffer fills.
type EventSink interface {
	Emit(ctx context.Context, event SecurityEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit implements EventSink.
func (NoOpSink) Emit(context.Context, SecurityEvent) {}

// ChannelSink forwards events to a channel for test assertions or custom
// fan-out.
type ChannelSink struct {
	events chan SecurityEvent
}

// NewChannelSink creates a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan SecurityEvent, buffer),
	}
}

// Emit implements EventSink.
func (s *ChannelSink) Emit(ctx context.Context, event SecurityEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events exposes the receiving side of the sink.
func (s *ChannelSink) Events() <-chan SecurityEvent {
	return s.events
}

// JSONWriterSink writes one JSON object per line to an io.Writer.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink over w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit implements EventSink.
func (s *JSONWriterSink) Emit(ctx context.Context, event SecurityEvent) {
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

// ZerologSink records events on a zerolog logger. Failures log at warn,
// successes at info.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink creates a ZerologSink over logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

// Emit implements EventSink.
func (s *ZerologSink) Emit(ctx context.Context, event SecurityEvent) {
	ev := s.logger.Info()
	if !event.Success {
		ev = s.logger.Warn()
	}
	ev = ev.
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Str("client_id", event.ClientID).
		Time("event_time", event.Timestamp).
		Bool("success", event.Success)
	if event.IP != "" {
		ev = ev.Str("ip", event.IP)
	}
	if event.Error != "" {
		ev = ev.Str("error", event.Error)
	}
	for k, v := range event.Details {
		ev = ev.Str("detail_"+k, v)
	}
	ev.Msg("security event")
}
