package token

import "errors"

var (
	// ErrNotFound is returned by Store.Load when no session is persisted.
	ErrNotFound = errors.New("no stored session")
	// ErrStoreUnavailable wraps backend failures of a durable store.
	ErrStoreUnavailable = errors.New("token store unavailable")
	// ErrInvalidKeyNames is returned by store constructors when key names
	// are empty or collide.
	ErrInvalidKeyNames = errors.New("invalid token key names")
)
