package sessionkit

import "time"

// User is the account representation returned by the login and completion
// endpoints. Fields beyond ID are informational and may be empty depending
// on backend role configuration.
type User struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// LoginRequest carries the credentials submitted to the login endpoint.
// Identifier is an email address or department code.
type LoginRequest struct {
	Identifier string
	Password   string
	RememberMe bool
}

// PendingLogin is the intermediate state between credential verification
// and session issuance. It never carries tokens; only a Session does.
type PendingLogin struct {
	UserID   string
	IssuedAt time.Time
}

// FormSubmission is the input to the form defense pipeline. Fields maps
// field names to raw user input. Honeypot is the decoy field's value;
// legitimate users never fill it. Required lists field names that must be
// non-empty after sanitization.
type FormSubmission struct {
	Fields   map[string]string
	Honeypot string
	Required []string
}

// FormResult is the gating decision for a form submission. When Valid is
// false, Errors holds human-readable messages and Failure classifies the
// rejection: a *RateLimitError when the window is exhausted,
// ErrSpamDetected when the honeypot fired, or a *ValidationError for
// sanitization and required-field failures. Sanitized carries the cleaned
// field values whenever sanitization ran, so callers decide whether to
// block on errors.
type FormResult struct {
	Valid     bool
	Errors    []string
	Sanitized map[string]string
	Failure   error
}
