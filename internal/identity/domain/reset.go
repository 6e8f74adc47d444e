package domain

import "time"

// ResetToken is a single-use password reset grant, stored under the
// opaque token value with a 24h TTL. It is deleted on successful
// consumption and on first use after expiry.
type ResetToken struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the token is past its lifetime at t.
func (rt ResetToken) Expired(t time.Time) bool {
	return t.After(rt.ExpiresAt)
}
