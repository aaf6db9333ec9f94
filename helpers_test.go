package sessionkit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/meridianlabs/sessionkit/token"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// newTestClient builds a Client against an httptest backend. mutate, when
// non-nil, adjusts the configuration before Build; extra builder options
// apply afterwards.
func newTestClient(t *testing.T, handler http.Handler, mutate func(*Config), opts ...func(*Builder)) (*Client, *fakeClock) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.API.BaseURL = srv.URL
	if mutate != nil {
		mutate(&cfg)
	}

	clock := newFakeClock()
	b := New().WithConfig(cfg).withClock(clock.Now)
	for _, opt := range opts {
		opt(b)
	}

	c, err := b.Build()
	if err != nil {
		t.Fatalf("build client: %v", err)
	}
	t.Cleanup(c.Close)
	return c, clock
}

func seedSession(t *testing.T, store token.Store, access, refresh string) {
	t.Helper()
	sess := token.Session{AccessToken: access, RefreshToken: refresh}
	if err := store.Save(context.Background(), &sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func decodeJSON(t *testing.T, r *http.Request, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		t.Errorf("decode request: %v", err)
	}
}
