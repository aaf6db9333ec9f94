package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/meridianlabs/sessionkit/internal/rate"
	"github.com/meridianlabs/sessionkit/sanitize"
	"github.com/meridianlabs/sessionkit/token"
)

// Client is the session and request-resilience layer. Construct it through
// [Builder.Build]; after that all methods are safe for concurrent use.
//
// A Client owns exactly one session slot (the token store), one pending
// login slot, one CSRF guard, and two rate limiter instances: form
// submissions and generic API calls.
type Client struct {
	config     Config
	httpClient *http.Client
	store      token.Store

	formLimiter *rate.Limiter
	apiLimiter  *rate.Limiter
	sanitizer   *sanitize.Sanitizer
	csrf        *CSRFGuard
	gateway     *gateway

	events  *eventDispatcher
	metrics *Metrics

	clientID string
	now      func() time.Time

	mu      sync.Mutex
	pending *PendingLogin

	closed atomic.Bool
}

// Login submits credentials to the login endpoint. Three outcomes exist:
//
//   - [LoginPending]: credentials verified, session not yet issued; call
//     [Client.CompleteLogin] with the returned user id. The token store is
//     untouched.
//   - [LoginComplete]: the backend issued tokens directly (legacy path);
//     the session is already stored.
//   - an error: [ErrInvalidCredentials] (wrapping the backend's verbatim
//     message) or [*NetworkError]. The token store is untouched.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginOutcome, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	var out loginWireResponse
	err := postJSON(ctx, c.httpClient, joinURL(c.config.API.BaseURL, loginPath), loginWireRequest{
		Identifier: req.Identifier,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	}, &out)
	if err != nil {
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, err, map[string]string{
			"identifier": req.Identifier,
			"reason":     "transport",
		})
		return nil, err
	}

	if !out.Success {
		authErr := ErrInvalidCredentials
		if out.Error != "" {
			authErr = fmt.Errorf("%w: %s", ErrInvalidCredentials, out.Error)
		}
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, authErr, map[string]string{
			"identifier": req.Identifier,
			"reason":     "rejected",
		})
		return nil, authErr
	}

	// Legacy/alternate path: tokens issued immediately.
	if out.Tokens != nil && out.Tokens.AccessToken != "" && out.Tokens.RefreshToken != "" {
		sess := token.New(out.Tokens.AccessToken, out.Tokens.RefreshToken, secondsToDuration(out.Tokens.ExpiresIn))
		if err := c.store.Save(ctx, &sess); err != nil {
			c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, err, map[string]string{
				"identifier": req.Identifier,
				"reason":     "store_save_failed",
			})
			return nil, err
		}
		c.setPending(nil)
		c.observe(ctx, EventLoginSuccess, MetricLoginSuccess, true, nil, map[string]string{
			"identifier": req.Identifier,
		})
		return LoginComplete{User: out.User.toUser(), Session: sess}, nil
	}

	userID := flexibleID(out.UserID)
	if userID == "" {
		err := errors.New("login response carried neither tokens nor a user id")
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, err, map[string]string{
			"identifier": req.Identifier,
			"reason":     "malformed_response",
		})
		return nil, err
	}

	pending := &PendingLogin{UserID: userID, IssuedAt: c.now()}
	c.setPending(pending)
	c.observe(ctx, EventLoginPending, MetricLoginPending, true, nil, map[string]string{
		"identifier": req.Identifier,
		"user_id":    userID,
	})
	return LoginPending{UserID: userID, IssuedAt: pending.IssuedAt}, nil
}

// CompleteLogin exchanges a verified pending identity for an issued token
// pair. On success the session is stored and the pending login discarded.
// On a rejected exchange the pending login is retained, so the caller may
// retry completion or restart credential verification.
func (c *Client) CompleteLogin(ctx context.Context, userID string) (*User, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	pending, ok := c.PendingLogin()
	if !ok || pending.UserID != userID {
		return nil, ErrNoPendingLogin
	}
	if ttl := c.config.Login.PendingTTL; ttl > 0 && c.now().Sub(pending.IssuedAt) > ttl {
		c.setPending(nil)
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, ErrLoginPendingExpired, map[string]string{
			"user_id": userID,
		})
		return nil, ErrLoginPendingExpired
	}

	var out completeWireResponse
	err := postJSON(ctx, c.httpClient, joinURL(c.config.API.BaseURL, completePath), completeWireRequest{UserID: userID}, &out)
	if err != nil {
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, err, map[string]string{
			"user_id": userID,
			"reason":  "transport",
		})
		return nil, err
	}

	if !out.Success || out.Tokens == nil || out.Tokens.AccessToken == "" || out.Tokens.RefreshToken == "" {
		exchErr := ErrLoginIncomplete
		if out.Error != "" {
			exchErr = fmt.Errorf("%w: %s", ErrLoginIncomplete, out.Error)
		}
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, exchErr, map[string]string{
			"user_id": userID,
			"reason":  "rejected",
		})
		return nil, exchErr
	}

	sess := token.New(out.Tokens.AccessToken, out.Tokens.RefreshToken, secondsToDuration(out.Tokens.ExpiresIn))
	if err := c.store.Save(ctx, &sess); err != nil {
		c.observe(ctx, EventLoginFailure, MetricLoginFailure, false, err, map[string]string{
			"user_id": userID,
			"reason":  "store_save_failed",
		})
		return nil, err
	}
	c.setPending(nil)

	user := out.User.toUser()
	if user == nil {
		user = &User{ID: userID}
	}
	c.observe(ctx, EventLoginCompleted, MetricLoginCompleted, true, nil, map[string]string{
		"user_id": userID,
	})
	return user, nil
}

// Logout notifies the backend best-effort and clears local session state
// unconditionally: token store, pending login, and the CSRF token. A
// failed server call never blocks the local clear; only a store failure
// is returned.
func (c *Client) Logout(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	var serverErr error
	if sess, err := c.store.Load(ctx); err == nil {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(c.config.API.BaseURL, logoutPath), nil)
		if reqErr == nil {
			req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
			if resp, doErr := c.httpClient.Do(req); doErr != nil {
				serverErr = doErr
			} else {
				resp.Body.Close()
			}
		}
	}

	clearErr := c.store.Clear(ctx)
	c.setPending(nil)
	c.csrf.Reset()

	details := map[string]string{}
	if serverErr != nil {
		details["server_error"] = serverErr.Error()
	}
	c.observe(ctx, EventLogout, MetricLogout, clearErr == nil, clearErr, details)
	return clearErr
}

// Do executes a protected request through the gateway: bearer token
// attached, API rate limit enforced, at most one silent refresh-and-retry
// on 401. See the package documentation for the resilience contract.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}
	return c.gateway.Do(ctx, req)
}

// Session returns the currently stored session, or ErrNoSession.
func (c *Client) Session(ctx context.Context) (*token.Session, error) {
	sess, err := c.store.Load(ctx)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return sess, nil
}

// PendingLogin returns a copy of the held pending login, if any.
func (c *Client) PendingLogin() (PendingLogin, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return PendingLogin{}, false
	}
	return *c.pending, true
}

// CSRF exposes the per-session CSRF guard.
func (c *Client) CSRF() *CSRFGuard {
	return c.csrf
}

// ValidateCSRF checks candidate against the session's CSRF token and
// records rejections as security events. Validating through the guard
// directly skips the recording; submission paths go through here.
func (c *Client) ValidateCSRF(ctx context.Context, candidate string) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	if err := c.csrf.Validate(candidate); err != nil {
		c.observe(ctx, EventCSRFRejected, MetricCSRFRejected, false, err, nil)
		return err
	}
	return nil
}

// MetricsSnapshot copies the in-process counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// EventsDropped reports how many security events the dispatcher dropped
// under backpressure.
func (c *Client) EventsDropped() uint64 {
	return c.events.Dropped()
}

// Close drains and stops the event dispatcher. The Client rejects further
// operations with ErrClientClosed.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.closed.CompareAndSwap(false, true) {
		c.events.Close()
	}
}

func (c *Client) setPending(p *PendingLogin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending = p
}

// observe pairs a metric increment with a security event. An empty event
// type increments the counter only.
func (c *Client) observe(ctx context.Context, t EventType, id MetricID, success bool, opErr error, details map[string]string) {
	c.metrics.Inc(id)
	if t == "" || c.events == nil {
		return
	}

	event := SecurityEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: c.now(),
		ClientID:  c.clientID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Details:   details,
	}
	if opErr != nil {
		event.Error = opErr.Error()
	}
	c.events.Emit(ctx, event)
}
