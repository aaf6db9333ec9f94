package sessionkit

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/meridianlabs/sessionkit/internal"
	"github.com/meridianlabs/sessionkit/internal/rate"
	"github.com/meridianlabs/sessionkit/token"
)

// requestAttempt threads the single-retry invariant through the gateway as
// a value instead of a mutable flag on the request: a request is refreshed
// and retried at most once, never speculatively, and never again after its
// retry.
type requestAttempt struct {
	retried bool
}

// gateway wraps every protected outbound call: it attaches the bearer
// token from the store, runs the API rate limiter, classifies timeouts,
// and on 401 performs at most one silent refresh-and-retry.
//
// Concurrent independent requests that hit 401 simultaneously each run
// their own refresh; the store's last write wins. This mirrors the
// deployed behavior and is documented rather than coalesced.
type gateway struct {
	httpClient *http.Client
	store      token.Store
	refreshURL string
	limiter    *rate.Limiter

	observe func(ctx context.Context, t EventType, id MetricID, success bool, err error, details map[string]string)
}

var errBodyNotReplayable = errors.New("request body cannot be replayed for retry")

// Do executes one protected request. The caller owns the response body.
func (g *gateway) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if g.limiter != nil {
		key := FingerprintFromContext(ctx).Key()
		if res := g.limiter.Check(key); !res.Allowed {
			rlErr := &RateLimitError{ResetAt: res.ResetAt}
			g.observe(ctx, EventAPIRateLimited, MetricAPIRateLimited, false, rlErr, map[string]string{
				"key": key,
			})
			return nil, rlErr
		}
	}

	sess, err := g.store.Load(ctx)
	if err != nil {
		if errors.Is(err, token.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	attempt := requestAttempt{}
	current, err := cloneWithAuth(ctx, req, sess.AccessToken)
	if err != nil {
		return nil, err
	}

	for {
		resp, err := g.httpClient.Do(current)
		if err != nil {
			nerr := classifyTransportError(err)
			if nerr.Timeout {
				// Timeout is a distinct NetworkError, never a refresh
				// trigger. Counted, not retried.
				g.observe(ctx, "", MetricRequestTimeout, false, nerr, nil)
			}
			return nil, nerr
		}
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}
		resp.Body.Close()

		if attempt.retried {
			// Second 401 on the same logical request: the refreshed token
			// was also rejected. Terminal.
			g.endSession(ctx, errors.New("retried request unauthorized"))
			return nil, ErrSessionExpired
		}
		attempt.retried = true

		next, err := g.refresh(ctx, sess.RefreshToken)
		if err != nil {
			// Only a rejected refresh token ends the session. A transport
			// failure mid-refresh is surfaced as-is; the stored pair may
			// still be good once connectivity returns.
			var nerr *NetworkError
			if errors.As(err, &nerr) {
				return nil, nerr
			}
			g.endSession(ctx, err)
			return nil, ErrSessionExpired
		}
		sess = next

		details := map[string]string{"url": req.URL.String()}
		if nonce, err := internal.Nonce(); err == nil {
			details["attempt"] = nonce
		}
		g.observe(ctx, EventRequestRetried, MetricRequestRetried, true, nil, details)

		current, err = cloneWithAuth(ctx, req, sess.AccessToken)
		if err != nil {
			return nil, err
		}
	}
}

// refresh exchanges the stored refresh token for a new pair and persists
// it. Any failure — transport, rejection, incomplete pair — is terminal
// for the session; the caller clears the store.
func (g *gateway) refresh(ctx context.Context, refreshToken string) (*token.Session, error) {
	if refreshToken == "" {
		return nil, ErrRefreshInvalid
	}

	var out refreshResponse
	if err := postJSON(ctx, g.httpClient, g.refreshURL, refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		g.observe(ctx, EventRefreshFailure, MetricRefreshFailure, false, err, nil)
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		g.observe(ctx, EventRefreshFailure, MetricRefreshFailure, false, ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	sess := token.New(out.AccessToken, out.RefreshToken, secondsToDuration(out.ExpiresIn))
	if err := g.store.Save(ctx, &sess); err != nil {
		g.observe(ctx, EventRefreshFailure, MetricRefreshFailure, false, err, nil)
		return nil, err
	}

	g.observe(ctx, EventRefreshSuccess, MetricRefreshSuccess, true, nil, nil)
	return &sess, nil
}

// endSession clears the token store unconditionally and records the
// terminal failure. Control returns to the login boundary in the caller.
func (g *gateway) endSession(ctx context.Context, cause error) {
	_ = g.store.Clear(ctx)
	g.observe(ctx, EventSessionExpired, MetricSessionExpired, false, cause, nil)
}

// cloneWithAuth rebuilds the request with a fresh body and the bearer
// token set. The retry path needs GetBody; requests built through
// http.NewRequest with byte or string readers carry it automatically.
func cloneWithAuth(ctx context.Context, req *http.Request, accessToken string) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.Body != nil {
		if req.GetBody == nil {
			return nil, errBodyNotReplayable
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	clone.Header.Set("Authorization", "Bearer "+accessToken)
	return clone, nil
}

func classifyTransportError(err error) *NetworkError {
	var ne net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout())
	return &NetworkError{Timeout: timeout, Err: err}
}
