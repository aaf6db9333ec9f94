package sessionkit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testEvent(id string) SecurityEvent {
	return SecurityEvent{
		ID:        id,
		Type:      EventLoginFailure,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		ClientID:  "client-1",
		Success:   false,
		Error:     "invalid credentials",
		Details:   map[string]string{"identifier": "user@example.com"},
	}
}

func TestDispatcherDelivers(t *testing.T) {
	sink := NewChannelSink(8)
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	d.Emit(context.Background(), testEvent("e1"))

	select {
	case got := <-sink.Events():
		if got.ID != "e1" || got.Type != EventLoginFailure {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDispatcherCloseDrains(t *testing.T) {
	sink := NewChannelSink(16)
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), testEvent("e"))
	}
	d.Close()

	delivered := 0
	for {
		select {
		case <-sink.Events():
			delivered++
			if delivered == 10 {
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 10 events after drain, got %d", delivered)
		}
	}
}

// blockingSink parks inside Emit until released, so tests can wedge the
// dispatcher's worker deterministically.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingSink() *blockingSink {
	return &blockingSink{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *blockingSink) Emit(ctx context.Context, event SecurityEvent) {
	s.once.Do(func() { close(s.entered) })
	<-s.release
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := newBlockingSink()
	d := newEventDispatcher(EventsConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker inside the sink.
	d.Emit(context.Background(), testEvent("e1"))
	select {
	case <-sink.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reached the sink")
	}

	// Second fills the buffer, third has nowhere to go.
	d.Emit(context.Background(), testEvent("e2"))
	d.Emit(context.Background(), testEvent("e3"))

	if got := d.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped event, got %d", got)
	}

	close(sink.release)
	d.Close()
}

func TestDispatcherDisabled(t *testing.T) {
	d := newEventDispatcher(EventsConfig{Enabled: false}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled events must not start a dispatcher")
	}
	// A nil dispatcher is inert, not a panic.
	d.Emit(context.Background(), testEvent("e"))
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher drops nothing")
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), testEvent("e1"))
	sink.Emit(context.Background(), testEvent("e2"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var got SecurityEvent
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("unmarshal line: %v", err)
	}
	if got.ID != "e1" || got.Details["identifier"] != "user@example.com" {
		t.Fatalf("unexpected round-trip: %+v", got)
	}
}

func TestZerologSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(zerolog.New(&buf))

	sink.Emit(context.Background(), testEvent("e1"))

	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("failure events log at warn, got %s", out)
	}
	if !strings.Contains(out, `"event_type":"login_failure"`) {
		t.Fatalf("expected event type field, got %s", out)
	}

	buf.Reset()
	ok := testEvent("e2")
	ok.Success = true
	ok.Error = ""
	sink.Emit(context.Background(), ok)
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Fatalf("success events log at info, got %s", buf.String())
	}
}
