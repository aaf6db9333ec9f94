package sessionkit

import (
	"errors"
	"net/url"
	"time"

	"github.com/meridianlabs/sessionkit/token"
)

// Config is the immutable tuning surface of a Client. Construct it with
// DefaultConfig or ConfigFromEnv, adjust fields, and hand it to the
// Builder; it is copied at Build and never mutated afterwards.
type Config struct {
	API           APIConfig
	Storage       StorageConfig
	Login         LoginConfig
	FormRateLimit RateLimitConfig
	APIRateLimit  RateLimitConfig
	Sanitize      SanitizeConfig
	Events        EventsConfig
	Metrics       MetricsConfig
}

// APIConfig locates the backend and bounds each request.
type APIConfig struct {
	// BaseURL is the backend root, for example "https://api.example.com".
	// Endpoint paths (/auth/login and friends) are fixed relative to it.
	BaseURL string
	// RequestTimeout is the fixed per-request budget. Exceeding it yields
	// a timeout-flagged NetworkError and never triggers a refresh.
	RequestTimeout time.Duration
}

// StorageConfig names the persisted keys. Names are opaque strings owned
// by the integrator; semantics are fixed.
type StorageConfig struct {
	AccessTokenKey  string
	RefreshTokenKey string
}

// LoginConfig tunes the two-phase login protocol.
type LoginConfig struct {
	// PendingTTL bounds how long a verified-but-incomplete login may be
	// exchanged for a session. Zero disables the bound.
	PendingTTL time.Duration
}

// RateLimitConfig tunes one sliding-window limiter instance.
type RateLimitConfig struct {
	Window      time.Duration
	MaxRequests int
}

// SanitizeConfig tunes the form field sanitizer.
type SanitizeConfig struct {
	// MaxFieldLength caps each field in runes.
	MaxFieldLength int
	// EscapeHTML escapes the five HTML-significant characters instead of
	// stripping markup.
	EscapeHTML bool
}

// EventsConfig tunes the security event dispatcher.
type EventsConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events (counted) instead of blocking the request
	// path when the buffer is full.
	DropIfFull bool
}

// MetricsConfig tunes the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 30s request budget,
// form window 15m/5, API window 1m/100, 5m pending-login TTL, 1000-rune
// fields with markup stripping, events and metrics on.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			RequestTimeout: 30 * time.Second,
		},
		Storage: StorageConfig{
			AccessTokenKey:  "auth_access_token",
			RefreshTokenKey: "auth_refresh_token",
		},
		Login: LoginConfig{
			PendingTTL: 5 * time.Minute,
		},
		FormRateLimit: RateLimitConfig{
			Window:      15 * time.Minute,
			MaxRequests: 5,
		},
		APIRateLimit: RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 100,
		},
		Sanitize: SanitizeConfig{
			MaxFieldLength: 1000,
			EscapeHTML:     false,
		},
		Events: EventsConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects configurations the Client cannot operate under.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API.BaseURL required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API.BaseURL must be an absolute http(s) URL")
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("API.RequestTimeout must be positive")
	}
	if c.Storage.AccessTokenKey == "" || c.Storage.RefreshTokenKey == "" {
		return errors.New("storage key names required")
	}
	if c.Storage.AccessTokenKey == c.Storage.RefreshTokenKey {
		return errors.New("storage key names must differ")
	}
	if c.Login.PendingTTL < 0 {
		return errors.New("Login.PendingTTL must not be negative")
	}
	if err := validateWindow("FormRateLimit", c.FormRateLimit); err != nil {
		return err
	}
	if err := validateWindow("APIRateLimit", c.APIRateLimit); err != nil {
		return err
	}
	if c.Sanitize.MaxFieldLength <= 0 {
		return errors.New("Sanitize.MaxFieldLength must be positive")
	}
	return nil
}

// KeyNames bridges the configured storage keys to the token stores:
//
//	store, err := token.NewFileStore(path, cfg.KeyNames())
func (c Config) KeyNames() token.KeyNames {
	return token.KeyNames{
		AccessToken:  c.Storage.AccessTokenKey,
		RefreshToken: c.Storage.RefreshTokenKey,
	}
}

func validateWindow(name string, rl RateLimitConfig) error {
	if rl.Window <= 0 {
		return errors.New(name + ".Window must be positive")
	}
	if rl.MaxRequests <= 0 {
		return errors.New(name + ".MaxRequests must be positive")
	}
	return nil
}
