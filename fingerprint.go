package sessionkit

import (
	"context"
	"encoding/base64"

	"github.com/meridianlabs/sessionkit/internal"
)

// Fingerprint is a coarse bundle of stable, low-entropy client signals.
// It buckets abuse-dampening counters and nothing else: every signal is
// client-reported and trivially spoofable, so it must never be treated as
// an identity or a security boundary.
type Fingerprint struct {
	UserAgent string
	Locale    string
	Screen    string
	Timezone  string
}

// FingerprintFromContext collects the signals attached through the With*
// context helpers. Missing signals stay empty; an all-empty fingerprint
// still yields a usable (shared) key.
func FingerprintFromContext(ctx context.Context) Fingerprint {
	return Fingerprint{
		UserAgent: userAgentFromContext(ctx),
		Locale:    localeFromContext(ctx),
		Screen:    screenFromContext(ctx),
		Timezone:  timezoneFromContext(ctx),
	}
}

// Key derives the rate-limit bucket key for this fingerprint.
func (f Fingerprint) Key() string {
	sum := internal.HashSignals(f.UserAgent, f.Locale, f.Screen, f.Timezone)
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}
