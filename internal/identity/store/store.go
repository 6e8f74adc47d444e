package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// KV is the root data access interface. Concrete drivers (sqlite)
// implement this. The backing store exposes only atomic single-key
// operations with optional TTL: no transactions, no multi-key writes.
// Every caller therefore writes fully-formed values in a single Put,
// and read-then-write sequences must tolerate interleaving. The one
// conditional primitive is PutIfAbsent, which is atomic where the
// driver supports it (the sqlite driver does).
type KV interface {
	// Get returns the live value for key. Expired entries are treated
	// as absent; drivers may delete them lazily on read.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the value, replacing any existing entry. A ttl of 0
	// means the entry never expires.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// PutIfAbsent writes the value only if no live entry exists for
	// key, returning ErrAlreadyExists otherwise. An expired entry
	// counts as absent.
	PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes dead rows and reports how many were
	// deleted. Housekeeping only: Get already hides expired entries.
	DeleteExpired(ctx context.Context) (int64, error)

	// Ping verifies the store is still reachable.
	Ping(ctx context.Context) error

	// Close releases any underlying resources.
	Close() error
}

// Key namespaces. The store has no secondary indexes, so each record
// type is addressed by its natural unique key.

// UserKey addresses the account record for an email. Emails are
// case-insensitive, so the key is always lowercased.
func UserKey(email string) string {
	return "user:" + strings.ToLower(strings.TrimSpace(email))
}

// RevokedKey addresses the blacklist entry for a session token
// fingerprint.
func RevokedKey(fingerprint string) string {
	return "revoked:" + fingerprint
}

// ResetKey addresses a password reset token.
func ResetKey(token string) string {
	return "reset:" + token
}

// DirectoryKey addresses the directory association for an account.
func DirectoryKey(accountUUID string) string {
	return "dir:" + accountUUID
}
