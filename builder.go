package sessionkit

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/meridianlabs/sessionkit/internal/rate"
	"github.com/meridianlabs/sessionkit/sanitize"
	"github.com/meridianlabs/sessionkit/token"
)

// Builder assembles a Client. Configure it with the With* chain and call
// Build once; construction is allocation-only until then.
type Builder struct {
	config     Config
	httpClient *http.Client
	store      token.Store
	sink       EventSink

	clock func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets the backend root without replacing the rest of the
// configuration.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies the underlying transport. When omitted, Build
// creates one bounded by the configured request timeout; a supplied
// client's zero Timeout is bounded the same way.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithTokenStore supplies session persistence. When omitted, Build uses
// an in-memory store; sessions then die with the process.
func (b *Builder) WithTokenStore(store token.Store) *Builder {
	b.store = store
	return b
}

// WithEventSink supplies the security event receiver.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// withClock overrides the time source for deterministic tests.
func (b *Builder) withClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// Build validates the configuration and assembles the Client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = cfg.API.RequestTimeout
	}

	store := b.store
	if store == nil {
		store = token.NewMemoryStore()
	}

	c := &Client{
		config:     cfg,
		httpClient: httpClient,
		store:      store,
		clientID:   uuid.NewString(),
		now:        clock,
	}

	c.formLimiter = rate.New(rate.Config{
		Window:      cfg.FormRateLimit.Window,
		MaxRequests: cfg.FormRateLimit.MaxRequests,
		Clock:       clock,
	})
	c.apiLimiter = rate.New(rate.Config{
		Window:      cfg.APIRateLimit.Window,
		MaxRequests: cfg.APIRateLimit.MaxRequests,
		Clock:       clock,
	})
	c.sanitizer = sanitize.New(sanitize.Options{
		MaxLength:  cfg.Sanitize.MaxFieldLength,
		EscapeHTML: cfg.Sanitize.EscapeHTML,
	})
	c.csrf = NewCSRFGuard()
	c.events = newEventDispatcher(cfg.Events, b.sink)
	c.metrics = NewMetrics(cfg.Metrics)
	c.gateway = &gateway{
		httpClient: httpClient,
		store:      store,
		refreshURL: joinURL(cfg.API.BaseURL, refreshPath),
		limiter:    c.apiLimiter,
		observe:    c.observe,
	}

	b.built = true

	return c, nil
}
