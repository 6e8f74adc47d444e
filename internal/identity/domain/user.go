package domain

import "time"

// User is the per-email account record. It carries the password in two
// parallel, structurally independent forms: an irreversible argon2id
// hash used for authentication and a reversible encrypted envelope so
// the original secret can be recovered server-side after login. The
// UUID is minted once at registration and never regenerated.
type User struct {
	UUID         string `json:"uuid"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"` // argon2id PHC encoded

	// SecretEnvelope holds the original plaintext password sealed under
	// the server envelope sub-key: salt(16) || nonce(12) || ciphertext.
	SecretEnvelope []byte `json:"secret_envelope,omitempty"`

	PasswordResetAt *time.Time `json:"password_reset_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
