package domain

import "time"

// Revocation reasons recorded alongside blacklisted session tokens.
const (
	RevokeReasonLogout         = "logout"
	RevokeReasonRefresh        = "refresh"
	RevokeReasonAccountDeleted = "account_deleted"
	RevokeReasonManual         = "manual"
)

// RevokedToken is the blacklist entry stored under the token's SHA-256
// fingerprint with a 24h TTL. A live entry invalidates the token even
// when its signature and expiry would otherwise verify.
type RevokedToken struct {
	UUID      string    `json:"uuid"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revoked_at"`
}
