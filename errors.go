package sessionkit

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials is returned by Login when the backend rejects
	// the identifier/password pair. It is never retried.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned when a 401 survives the single refresh
	// attempt. The token store has been cleared by the time callers see it.
	ErrSessionExpired = errors.New("session expired")
	// ErrRefreshInvalid is returned when the refresh endpoint rejects the
	// stored refresh token.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrNoSession is returned by protected calls when the token store
	// holds no session.
	ErrNoSession = errors.New("no active session")
	// ErrNoPendingLogin is returned by CompleteLogin when no pending login
	// is held, or the supplied user id does not match it.
	ErrNoPendingLogin = errors.New("no pending login")
	// ErrLoginPendingExpired is returned by CompleteLogin when the pending
	// login outlived its TTL. The pending state is discarded.
	ErrLoginPendingExpired = errors.New("pending login expired")
	// ErrLoginIncomplete is returned by CompleteLogin when the completion
	// endpoint rejects the exchange. The pending login is retained so the
	// caller may retry completion or restart credential verification.
	ErrLoginIncomplete = errors.New("login completion rejected")
	// ErrCSRFInvalid is returned by CSRFGuard.Validate on any mismatch.
	ErrCSRFInvalid = errors.New("csrf token invalid")
	// ErrSpamDetected is returned by the form pipeline when a honeypot
	// field carries a value.
	ErrSpamDetected = errors.New("spam detected")
	// ErrClientClosed is returned by operations on a closed Client.
	ErrClientClosed = errors.New("client closed")
)

// RateLimitError reports a denied rate-limit check. ResetAt is the instant
// at which the oldest counted request leaves the window and a slot frees.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.ResetAt.Format(time.RFC3339))
}

// NetworkError reports a transport-level failure. Timeout distinguishes the
// fixed per-request deadline from connectivity errors; neither variant is
// retried by the gateway.
type NetworkError struct {
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out: %v", e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError carries per-field sanitization or presence failures. It
// is produced only at the form pipeline boundary and never reaches the
// transport layer.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	n := 0
	for _, msgs := range e.Fields {
		n += len(msgs)
	}
	return fmt.Sprintf("validation failed for %d field(s), %d error(s)", len(e.Fields), n)
}
