package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/store"
	"github.com/quillboard/quillboard/pkg/cryptox"
	"github.com/quillboard/quillboard/pkg/slogx"
)

// DefaultResetTTL is the lifetime of a password reset token.
const DefaultResetTTL = 24 * time.Hour

// ResetService manages single-use password reset tokens. Tokens are
// opaque random values stored under their own key with a TTL, so an
// unconsumed token simply ages out of the store.
type ResetService struct {
	Store       store.KV
	Credentials *CredentialService
	TTL         time.Duration
}

// Request mints a reset token for the account. For an unknown email it
// returns an empty token and no error, so callers cannot probe which
// addresses have accounts.
func (s *ResetService) Request(ctx context.Context, email string) (string, error) {
	if _, err := s.Credentials.Get(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			slogx.FromContext(ctx).Info("reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}

	now := time.Now().UTC()
	grant := domain.ResetToken{
		Email:     normalizeEmail(email),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	value, err := json.Marshal(grant)
	if err != nil {
		return "", fmt.Errorf("marshal reset token: %w", err)
	}

	if err := s.Store.Put(ctx, store.ResetKey(token), value, ttl); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("reset token issued", slog.Time("expires_at", grant.ExpiresAt))
	return token, nil
}

// Consume redeems a reset token and rotates the account password to
// newPassword. The token is deleted on success and on first use after
// expiry. A weak password leaves the token intact so the user can
// retry with the same link.
func (s *ResetService) Consume(ctx context.Context, token, newPassword string) (domain.User, error) {
	value, err := s.Store.Get(ctx, store.ResetKey(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrResetNotFound
		}
		return domain.User{}, err
	}

	var grant domain.ResetToken
	if err := json.Unmarshal(value, &grant); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal reset token: %w", err)
	}

	if grant.Expired(time.Now().UTC()) {
		_ = s.Store.Delete(ctx, store.ResetKey(token))
		return domain.User{}, ErrResetExpired
	}

	if err := ValidatePassword(newPassword); err != nil {
		return domain.User{}, err
	}

	user, err := s.Credentials.RotatePassword(ctx, grant.Email, newPassword)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.Store.Delete(ctx, store.ResetKey(token)); err != nil {
		return domain.User{}, err
	}

	return user, nil
}
