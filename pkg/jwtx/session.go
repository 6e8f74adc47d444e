// Package jwtx signs and verifies Quillboard session tokens.
//
// Sessions are HS256 JWTs signed with a single HMAC key derived from
// the service root secret. There is no key rotation and no JWKS: the
// only verifier is this service itself.
package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quillboard/quillboard/pkg/idx"
)

// DefaultSessionTTL is the session token lifetime. Sessions are
// long-lived so returning users land straight back in their workspace.
const DefaultSessionTTL = 90 * 24 * time.Hour

// SessionClaims is the claim set embedded in a session token.
type SessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UUID returns the account identifier the token was issued for.
func (c *SessionClaims) UUID() string { return c.Subject }

// SessionSigner issues and verifies session tokens.
type SessionSigner struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

// NewSessionSigner builds a signer around an HMAC key. A zero ttl
// falls back to DefaultSessionTTL.
func NewSessionSigner(key []byte, issuer string, ttl time.Duration) *SessionSigner {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionSigner{key: key, issuer: issuer, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (s *SessionSigner) TTL() time.Duration { return s.ttl }

// Issue signs a fresh token for the given account identity.
func (s *SessionSigner) Issue(uuid, email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid,
			Issuer:    s.issuer,
			ID:        idx.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify checks signature, issuer and expiry. It returns nil on any
// failure, including malformed claims; callers never see a reason.
func (s *SessionSigner) Verify(token string) *SessionClaims {
	if token == "" {
		return nil
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil
	}

	return claims
}
