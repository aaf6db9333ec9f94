package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is an issued token pair. AccessToken authorizes protected
// requests, RefreshToken mints its replacement, ExpiresAt is the access
// token's expiry (zero when unknown). Destroyed on logout, on an
// irrecoverable refresh failure, or by an explicit Clear.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// New builds a Session from the wire fields of a login, completion, or
// refresh response. When the backend omits expiresIn, the expiry is
// recovered from the access token's exp claim if it parses as a JWT.
func New(accessToken, refreshToken string, expiresIn time.Duration) Session {
	s := Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if expiresIn > 0 {
		s.ExpiresAt = time.Now().Add(expiresIn)
	} else {
		s.ExpiresAt = expiryFromAccessToken(accessToken)
	}
	return s
}

// Complete reports whether both tokens are present. A pending login never
// produces a complete Session.
func (s Session) Complete() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

// Expired reports whether the access token's known expiry has passed. An
// unknown expiry reports false; the gateway then relies on the backend's
// 401 to trigger refresh.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// expiryFromAccessToken reads the exp claim without verifying the
// signature. Verification is the server's job; the client only needs the
// timestamp, and an unparseable token simply yields an unknown expiry.
func expiryFromAccessToken(accessToken string) time.Time {
	if accessToken == "" {
		return time.Time{}
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(accessToken, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
