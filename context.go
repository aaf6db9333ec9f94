package sessionkit

import "context"

type userAgentContextKey struct{}
type localeContextKey struct{}
type screenContextKey struct{}
type timezoneContextKey struct{}
type clientIPContextKey struct{}

// WithUserAgent attaches the caller's user agent string to ctx. The Client
// folds it into the rate-limit fingerprint and security event records.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// WithLocale attaches the caller's locale (for example "en-US") to ctx for
// fingerprinting.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// WithScreen attaches the caller's screen dimensions (for example
// "1920x1080") to ctx for fingerprinting.
func WithScreen(ctx context.Context, screen string) context.Context {
	return context.WithValue(ctx, screenContextKey{}, screen)
}

// WithTimezone attaches the caller's IANA timezone name to ctx for
// fingerprinting.
func WithTimezone(ctx context.Context, tz string) context.Context {
	return context.WithValue(ctx, timezoneContextKey{}, tz)
}

// WithClientIP attaches the caller's IP address to ctx. It is recorded on
// security events only; it does not participate in the fingerprint.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func userAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}

func localeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	locale, _ := ctx.Value(localeContextKey{}).(string)
	return locale
}

func screenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	screen, _ := ctx.Value(screenContextKey{}).(string)
	return screen
}

func timezoneFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	tz, _ := ctx.Value(timezoneContextKey{}).(string)
	return tz
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
