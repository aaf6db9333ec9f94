package token

import "context"

// Store is synchronous, durable persistence for the issued session.
// Implementations must be safe for concurrent use; independent in-flight
// requests all read and write the same store, last write wins.
type Store interface {
	// Load returns the stored session, or ErrNotFound when none exists.
	Load(ctx context.Context) (*Session, error)
	// Save replaces the stored session.
	Save(ctx context.Context, s *Session) error
	// Clear removes the session entirely. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}

// KeyNames are the persisted key names for the token pair. Names are
// opaque configuration owned by the integrator; semantics are fixed.
type KeyNames struct {
	AccessToken  string
	RefreshToken string
}

// DefaultKeyNames returns the key names used when none are configured.
func DefaultKeyNames() KeyNames {
	return KeyNames{
		AccessToken:  "auth_access_token",
		RefreshToken: "auth_refresh_token",
	}
}

func (k KeyNames) valid() bool {
	return k.AccessToken != "" && k.RefreshToken != "" && k.AccessToken != k.RefreshToken
}

// expiresKey derives the persisted key for the access token expiry. It is
// not independently configurable; it follows the access token key.
func (k KeyNames) expiresKey() string {
	return k.AccessToken + "_expires_at"
}
