package sessionkit

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"
)

func newFormClient(t *testing.T, mutate func(*Config)) (*Client, *fakeClock) {
	t.Helper()
	return newTestClient(t, http.NewServeMux(), mutate)
}

func TestCheckFormAccepts(t *testing.T) {
	c, _ := newFormClient(t, nil)

	res := c.CheckForm(context.Background(), FormSubmission{
		Fields: map[string]string{
			"name":    "  Pat Doe  ",
			"email":   "pat@example.com",
			"comment": "<b>hello</b>",
		},
		Required: []string{"name", "email"},
	})

	if !res.Valid {
		t.Fatalf("expected valid, got errors %v", res.Errors)
	}
	if res.Sanitized["name"] != "Pat Doe" {
		t.Fatalf("expected trimmed name, got %q", res.Sanitized["name"])
	}
	if res.Sanitized["comment"] != "hello" {
		t.Fatalf("expected stripped comment, got %q", res.Sanitized["comment"])
	}
}

func TestCheckFormHoneypotAlwaysRejects(t *testing.T) {
	c, _ := newFormClient(t, nil)

	// Every other field is pristine; the decoy alone decides.
	res := c.CheckForm(context.Background(), FormSubmission{
		Fields:   map[string]string{"email": "pat@example.com"},
		Honeypot: "filled by a bot",
		Required: []string{"email"},
	})

	if res.Valid {
		t.Fatal("expected rejection")
	}
	if !errors.Is(res.Failure, ErrSpamDetected) {
		t.Fatalf("expected ErrSpamDetected, got %v", res.Failure)
	}
	if res.Sanitized != nil {
		t.Fatal("honeypot rejection must short-circuit before sanitization")
	}

	// Whitespace-only decoy values are not spam.
	res = c.CheckForm(context.Background(), FormSubmission{
		Fields:   map[string]string{"email": "pat@example.com"},
		Honeypot: "   ",
	})
	if !res.Valid {
		t.Fatalf("whitespace honeypot must pass, got %v", res.Errors)
	}
}

func TestCheckFormRateLimitWindow(t *testing.T) {
	c, clock := newFormClient(t, func(cfg *Config) {
		cfg.FormRateLimit = RateLimitConfig{Window: 15 * time.Minute, MaxRequests: 5}
	})
	ctx := context.Background()
	first := clock.Now()

	for i := 0; i < 5; i++ {
		res := c.CheckForm(ctx, FormSubmission{Fields: map[string]string{"comment": "hi"}})
		if !res.Valid {
			t.Fatalf("submission %d: expected accepted, got %v", i+1, res.Errors)
		}
		clock.Advance(time.Minute)
	}

	res := c.CheckForm(ctx, FormSubmission{Fields: map[string]string{"comment": "hi"}})
	if res.Valid {
		t.Fatal("6th submission inside the window must be rejected")
	}
	var rlErr *RateLimitError
	if !errors.As(res.Failure, &rlErr) {
		t.Fatalf("expected *RateLimitError, got %v", res.Failure)
	}
	if want := first.Add(15 * time.Minute); !rlErr.ResetAt.Equal(want) {
		t.Fatalf("expected reset at %v, got %v", want, rlErr.ResetAt)
	}

	// A different fingerprint is a different bucket.
	other := WithUserAgent(ctx, "other-agent/2.0")
	if res := c.CheckForm(other, FormSubmission{Fields: map[string]string{"comment": "hi"}}); !res.Valid {
		t.Fatalf("distinct fingerprint must not share the window, got %v", res.Errors)
	}
}

func TestCheckFormRequiredFields(t *testing.T) {
	c, _ := newFormClient(t, nil)

	res := c.CheckForm(context.Background(), FormSubmission{
		Fields:   map[string]string{"name": "   ", "email": "pat@example.com"},
		Required: []string{"name", "email", "subject"},
	})

	if res.Valid {
		t.Fatal("expected rejection for missing required fields")
	}
	var vErr *ValidationError
	if !errors.As(res.Failure, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", res.Failure)
	}
	if len(vErr.Fields["name"]) == 0 {
		t.Fatal("whitespace-only required field must be reported missing")
	}
	if len(vErr.Fields["subject"]) == 0 {
		t.Fatal("absent required field must be reported missing")
	}
	if len(vErr.Fields["email"]) != 0 {
		t.Fatalf("valid field must not be reported, got %v", vErr.Fields["email"])
	}
	// Sanitized values come back even on rejection.
	if res.Sanitized["email"] != "pat@example.com" {
		t.Fatalf("expected sanitized values on rejection, got %v", res.Sanitized)
	}
}

func TestCheckFormFieldValidation(t *testing.T) {
	c, _ := newFormClient(t, nil)

	res := c.CheckForm(context.Background(), FormSubmission{
		Fields: map[string]string{"email": "not-an-email"},
	})

	if res.Valid {
		t.Fatal("expected rejection for malformed email")
	}
	var vErr *ValidationError
	if !errors.As(res.Failure, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", res.Failure)
	}
	if len(vErr.Fields["email"]) == 0 {
		t.Fatalf("expected email error, got %v", vErr.Fields)
	}
}

func TestSubmitLoginSanitizesIdentifier(t *testing.T) {
	var gotIdentifier atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		var in loginWireRequest
		decodeJSON(t, r, &in)
		gotIdentifier.Store(in.Identifier)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"success": true, "userId": "42"})
	})
	c, _ := newTestClient(t, mux, nil)

	out, err := c.SubmitLogin(context.Background(), LoginRequest{
		Identifier: "  user@example.com  ",
		Password:   "hunter2",
	}, "")
	if err != nil {
		t.Fatalf("submit login: %v", err)
	}
	if _, ok := out.(LoginPending); !ok {
		t.Fatalf("expected LoginPending, got %T", out)
	}
	if got := gotIdentifier.Load(); got != "user@example.com" {
		t.Fatalf("expected sanitized identifier on the wire, got %q", got)
	}
}

func TestSubmitLoginAcceptsDepartmentCode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"success": true, "userId": "7"})
	})
	c, _ := newTestClient(t, mux, nil)

	// Identifiers are not necessarily emails; a department code must not
	// be rejected by an email-shape check.
	if _, err := c.SubmitLogin(context.Background(), LoginRequest{
		Identifier: "OPS-1234",
		Password:   "hunter2",
	}, ""); err != nil {
		t.Fatalf("department code identifier rejected: %v", err)
	}
}

func TestSubmitLoginHoneypot(t *testing.T) {
	var called atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})
	c, _ := newTestClient(t, mux, nil)

	_, err := c.SubmitLogin(context.Background(), LoginRequest{
		Identifier: "user@example.com",
		Password:   "hunter2",
	}, "gotcha")
	if !errors.Is(err, ErrSpamDetected) {
		t.Fatalf("expected ErrSpamDetected, got %v", err)
	}
	if called.Load() {
		t.Fatal("spam must never reach the login endpoint")
	}
}

func TestSubmitLoginRequiresPassword(t *testing.T) {
	var called atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	})
	c, _ := newTestClient(t, mux, nil)

	_, err := c.SubmitLogin(context.Background(), LoginRequest{
		Identifier: "user@example.com",
		Password:   "   ",
	}, "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(vErr.Fields["password"]) == 0 {
		t.Fatalf("expected password error, got %v", vErr.Fields)
	}
	if called.Load() {
		t.Fatal("invalid form must never reach the login endpoint")
	}
}

func TestSubmitLoginPasswordForwardedRaw(t *testing.T) {
	var gotPassword atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc(loginPath, func(w http.ResponseWriter, r *http.Request) {
		var in loginWireRequest
		decodeJSON(t, r, &in)
		gotPassword.Store(in.Password)
		writeJSON(t, w, http.StatusOK, map[string]interface{}{"success": true, "userId": "42"})
	})
	c, _ := newTestClient(t, mux, nil)

	// Passwords legitimately contain characters the sanitizer would eat.
	raw := `p<a>ss & "word"  `
	if _, err := c.SubmitLogin(context.Background(), LoginRequest{
		Identifier: "user@example.com",
		Password:   raw,
	}, ""); err != nil {
		t.Fatalf("submit login: %v", err)
	}
	if got := gotPassword.Load(); got != raw {
		t.Fatalf("password must be forwarded untouched, got %q", got)
	}
}
