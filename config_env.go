package sessionkit

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors the externally-owned configuration surface: the base
// API URL and the storage key names, plus the operational knobs a
// deployment commonly overrides.
type envConfig struct {
	BaseURL         string        `env:"SESSIONKIT_BASE_URL"`
	RequestTimeout  time.Duration `env:"SESSIONKIT_REQUEST_TIMEOUT"`
	AccessTokenKey  string        `env:"SESSIONKIT_ACCESS_TOKEN_KEY"`
	RefreshTokenKey string        `env:"SESSIONKIT_REFRESH_TOKEN_KEY"`
	PendingTTL      time.Duration `env:"SESSIONKIT_PENDING_TTL"`
	FormWindow      time.Duration `env:"SESSIONKIT_FORM_WINDOW"`
	FormMax         int           `env:"SESSIONKIT_FORM_MAX"`
	APIWindow       time.Duration `env:"SESSIONKIT_API_WINDOW"`
	APIMax          int           `env:"SESSIONKIT_API_MAX"`
	MaxFieldLength  int           `env:"SESSIONKIT_MAX_FIELD_LENGTH"`
	EscapeHTML      bool          `env:"SESSIONKIT_ESCAPE_HTML"`
	EventsEnabled   bool          `env:"SESSIONKIT_EVENTS_ENABLED" envDefault:"true"`
	MetricsEnabled  bool          `env:"SESSIONKIT_METRICS_ENABLED" envDefault:"true"`
}

// ConfigFromEnv overlays SESSIONKIT_* environment variables on
// DefaultConfig. Unset variables keep their defaults; the result still
// goes through Validate at Build.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return cfg, err
	}

	if ec.BaseURL != "" {
		cfg.API.BaseURL = ec.BaseURL
	}
	if ec.RequestTimeout > 0 {
		cfg.API.RequestTimeout = ec.RequestTimeout
	}
	if ec.AccessTokenKey != "" {
		cfg.Storage.AccessTokenKey = ec.AccessTokenKey
	}
	if ec.RefreshTokenKey != "" {
		cfg.Storage.RefreshTokenKey = ec.RefreshTokenKey
	}
	if ec.PendingTTL > 0 {
		cfg.Login.PendingTTL = ec.PendingTTL
	}
	if ec.FormWindow > 0 {
		cfg.FormRateLimit.Window = ec.FormWindow
	}
	if ec.FormMax > 0 {
		cfg.FormRateLimit.MaxRequests = ec.FormMax
	}
	if ec.APIWindow > 0 {
		cfg.APIRateLimit.Window = ec.APIWindow
	}
	if ec.APIMax > 0 {
		cfg.APIRateLimit.MaxRequests = ec.APIMax
	}
	if ec.MaxFieldLength > 0 {
		cfg.Sanitize.MaxFieldLength = ec.MaxFieldLength
	}
	cfg.Sanitize.EscapeHTML = ec.EscapeHTML
	cfg.Events.Enabled = ec.EventsEnabled
	cfg.Metrics.Enabled = ec.MetricsEnabled

	return cfg, nil
}
