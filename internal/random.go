package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"math/big"
	"strings"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// AlphanumericToken returns n characters drawn uniformly from [A-Za-z0-9]
// using rejection-free sampling over crypto/rand.
func AlphanumericToken(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid token length")
	}

	var b strings.Builder
	b.Grow(n)

	max := big.NewInt(int64(len(alphanumeric)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphanumeric[idx.Int64()])
	}
	return b.String(), nil
}

// Nonce returns a compact random identifier. The gateway stamps one on
// each refresh-and-retry security event so a retried attempt can be
// correlated in downstream sinks.
func Nonce() (string, error) {
	var raw [12]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}

// HashSignals digests an ordered set of client signals into a fixed-size
// key. Collisions are acceptable; the output only buckets abuse-dampening
// counters.
func HashSignals(signals ...string) [32]byte {
	return sha256.Sum256([]byte(strings.Join(signals, "\x1f")))
}
