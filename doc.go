// Package sessionkit is a client-side session and request-resilience layer
// for the Meridian corporate backend: a two-phase login protocol, an
// automatic token-refresh gateway bounded to a single retry per request,
// and a form/API defense pipeline (sliding-window rate limiting, input
// sanitization, CSRF token handling, honeypot rejection).
//
// The package is the public surface. It exposes [Client], [Builder],
// [Config], and value types (LoginOutcome, FormResult, SecurityEvent).
// Supporting coordination — sliding-window counters, random token
// generation — lives under internal/ and is never exported. Token
// persistence and field sanitization are reusable on their own and live in
// the token and sanitize subpackages.
//
// # Architecture boundaries
//
//   - sessionkit never stores or hashes passwords; credentials pass through
//     to the login endpoint and are discarded.
//   - The backend is consumed only through its HTTP contract. No server
//     state is modeled beyond the issued token pair.
//   - Rate-limit keys derive from coarse, spoofable client signals. They
//     dampen accidental repeat submissions and are not an identity or
//     security boundary.
//
// # Resilience contract
//
// A protected request that fails with 401 Unauthorized is refreshed and
// retried at most once, strictly after the original response. A request
// whose retry also fails 401, or whose refresh is rejected, clears the
// token store and surfaces [ErrSessionExpired]; the caller re-enters the
// login boundary. Timeouts are classified as [*NetworkError] and never
// trigger the refresh path.
package sessionkit
