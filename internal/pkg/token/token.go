// Package token issues and verifies self-contained HS256 bearer tokens.
// A token carries subject, issued-at and expiry; possession of a valid,
// unexpired token is the sole proof of identity.
package token

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// hmacKeyBytes is the minimum key size for HS256.
const hmacKeyBytes = 32

// Codec signs and verifies bearer tokens with a symmetric key.
type Codec struct {
	key []byte
	ttl time.Duration
}

// NewCodec builds a Codec from the configured secret and token lifetime.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{key: deriveKey(secret), ttl: ttl}
}

// deriveKey uses the secret directly when it is base64 for key-length
// material; otherwise it derives a 256-bit key with SHA-256. Deterministic, so
// tokens survive process restarts under an unchanged secret.
func deriveKey(secret string) []byte {
	if raw, err := base64.StdEncoding.DecodeString(secret); err == nil && len(raw) >= hmacKeyBytes {
		return raw
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// Issue creates a signed token for the subject, expiring after the configured
// lifetime.
func (c *Codec) Issue(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify checks signature and expiry and returns the embedded subject.
// Every failure mode (bad signature, malformed structure, expired) collapses
// to ok == false; callers never learn the cause.
func (c *Codec) Verify(tokenStr string) (subject string, ok bool) {
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.key, nil
	})
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}
