package sessionkit

import (
	"crypto/subtle"
	"sync"

	"github.com/meridianlabs/sessionkit/internal"
)

// csrfTokenLength is fixed; Validate rejects candidates of any other
// length before comparing.
const csrfTokenLength = 32

// CSRFGuard issues and validates the per-session CSRF token. The token is
// generated once per guard lifetime, held only in memory (ephemeral,
// session-scoped), and is not rotated after a successful validation — a
// known weakening relative to single-use tokens, kept to match the
// deployed behavior rather than silently changed.
type CSRFGuard struct {
	mu    sync.Mutex
	token string
}

// NewCSRFGuard returns a guard with no token yet; Token generates it
// lazily on first use.
func NewCSRFGuard() *CSRFGuard {
	return &CSRFGuard{}
}

// Token returns the session's CSRF token, generating it on first call.
func (g *CSRFGuard) Token() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.token == "" {
		t, err := internal.AlphanumericToken(csrfTokenLength)
		if err != nil {
			return "", err
		}
		g.token = t
	}
	return g.token, nil
}

// Validate succeeds only when candidate has the expected length and
// exactly matches the issued token. Comparison is constant-time.
func (g *CSRFGuard) Validate(candidate string) error {
	g.mu.Lock()
	issued := g.token
	g.mu.Unlock()

	if issued == "" || len(candidate) != csrfTokenLength {
		return ErrCSRFInvalid
	}
	if subtle.ConstantTimeCompare([]byte(issued), []byte(candidate)) != 1 {
		return ErrCSRFInvalid
	}
	return nil
}

// Reset discards the token; the next Token call issues a fresh one. Called
// on logout so a new session never inherits the previous token.
func (g *CSRFGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.token = ""
}
