package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/store"
	"github.com/quillboard/quillboard/pkg/cryptox"
	"github.com/quillboard/quillboard/pkg/jwtx"
)

// DefaultBlacklistTTL is how long a revoked token fingerprint stays in
// the blacklist. Tokens older than this cannot still be in flight for
// the flows that revoke them, so the entry can expire without reopening
// a hole.
const DefaultBlacklistTTL = 24 * time.Hour

// SessionService issues, verifies, refreshes, and revokes session
// tokens. Revocation is a fingerprint blacklist in the store: a token
// with a valid signature and expiry is still rejected while its
// fingerprint has a live blacklist entry.
type SessionService struct {
	Signer       *jwtx.SessionSigner
	Store        store.KV
	BlacklistTTL time.Duration
}

// Issue mints a fresh session token for the account.
func (s *SessionService) Issue(ctx context.Context, uuid, email string) (string, error) {
	return s.Signer.Issue(uuid, email)
}

// Verify checks signature, issuer, expiry, and the revocation
// blacklist. Any failure collapses into ErrInvalidSession.
func (s *SessionService) Verify(ctx context.Context, token string) (*jwtx.SessionClaims, error) {
	claims := s.Signer.Verify(token)
	if claims == nil {
		return nil, ErrInvalidSession
	}

	revoked, err := s.IsRevoked(ctx, token)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidSession
	}

	return claims, nil
}

// Refresh exchanges a still-valid token for a fresh one with a full
// lifetime. The old token is blacklisted before the new one is issued,
// so a refreshed token can never be replayed.
func (s *SessionService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.Verify(ctx, token)
	if err != nil {
		return "", err
	}

	if err := s.Revoke(ctx, token, domain.RevokeReasonRefresh); err != nil {
		return "", err
	}

	return s.Signer.Issue(claims.UUID(), claims.Email)
}

// Revoke blacklists the token's fingerprint. Revoking an already
// revoked or unparseable token is a no-op, not an error, so logout is
// idempotent.
func (s *SessionService) Revoke(ctx context.Context, token, reason string) error {
	claims := s.Signer.Verify(token)
	if claims == nil {
		return nil
	}

	entry := domain.RevokedToken{
		UUID:      claims.UUID(),
		Reason:    reason,
		RevokedAt: time.Now().UTC(),
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal revocation: %w", err)
	}

	ttl := s.BlacklistTTL
	if ttl <= 0 {
		ttl = DefaultBlacklistTTL
	}

	key := store.RevokedKey(cryptox.FingerprintToken(token))
	return s.Store.Put(ctx, key, value, ttl)
}

// IsRevoked reports whether the token's fingerprint has a live
// blacklist entry.
func (s *SessionService) IsRevoked(ctx context.Context, token string) (bool, error) {
	key := store.RevokedKey(cryptox.FingerprintToken(token))
	if _, err := s.Store.Get(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
