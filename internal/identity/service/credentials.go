package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/store"
	"github.com/quillboard/quillboard/pkg/cryptox"
	"github.com/quillboard/quillboard/pkg/slogx"
)

// MinPasswordLength is the floor for new passwords. Passwords must
// also contain at least one letter and one digit.
const MinPasswordLength = 12

// CredentialService owns the account records: registration, password
// verification, secret recovery, password rotation, and deletion. Every
// write replaces the whole record in one Put, since the backing store
// only offers single-key atomicity.
type CredentialService struct {
	Store store.KV

	// Keys supplies the envelope passphrase used to seal and open the
	// recoverable copy of each password.
	Keys *cryptox.RootKey
}

// Register creates the account record for email, claiming the key
// atomically so concurrent registrations for the same address produce
// exactly one account. Returns ErrEmailTaken when a live record already
// holds the key and ErrWeakPassword when the password fails policy.
func (s *CredentialService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)
	if err := ValidatePassword(password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	envelope, err := cryptox.SealEnvelope([]byte(password), s.Keys.EnvelopePassphrase())
	if err != nil {
		return domain.User{}, fmt.Errorf("seal secret envelope: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UUID:           uuid.NewString(),
		Email:          email,
		PasswordHash:   hash,
		SecretEnvelope: envelope,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	value, err := json.Marshal(user)
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal user: %w", err)
	}

	if err := s.Store.PutIfAbsent(ctx, store.UserKey(email), value, 0); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	return user, nil
}

// Authenticate verifies the password against the stored argon2id hash.
// Unknown emails and wrong passwords are indistinguishable to the
// caller: both return ErrInvalidCredentials.
func (s *CredentialService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.getUser(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// RecoverSecret opens the user's secret envelope and returns the
// original plaintext password. The caller must have already
// authenticated with password; if the envelope is corrupt or was
// sealed under a previous key, the record self-heals by resealing the
// verified password in place.
func (s *CredentialService) RecoverSecret(ctx context.Context, user domain.User, password string) (string, error) {
	secret, err := cryptox.OpenEnvelope(user.SecretEnvelope, s.Keys.EnvelopePassphrase())
	if err == nil {
		return string(secret), nil
	}
	if !errors.Is(err, cryptox.ErrDecryptionFailure) {
		return "", err
	}

	slogx.FromContext(ctx).Warn("secret envelope unreadable, resealing from verified password",
		slog.String("uuid", user.UUID))

	envelope, err := cryptox.SealEnvelope([]byte(password), s.Keys.EnvelopePassphrase())
	if err != nil {
		return "", fmt.Errorf("reseal secret envelope: %w", err)
	}

	user.SecretEnvelope = envelope
	user.UpdatedAt = time.Now().UTC()
	if err := s.putUser(ctx, user); err != nil {
		return "", err
	}

	return password, nil
}

// RotatePassword replaces both stored forms of the password and stamps
// the rotation time. Used by the reset flow; the caller is responsible
// for having proven control of the account first.
func (s *CredentialService) RotatePassword(ctx context.Context, email, newPassword string) (domain.User, error) {
	if err := ValidatePassword(newPassword); err != nil {
		return domain.User{}, err
	}

	user, err := s.getUser(ctx, email)
	if err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	envelope, err := cryptox.SealEnvelope([]byte(newPassword), s.Keys.EnvelopePassphrase())
	if err != nil {
		return domain.User{}, fmt.Errorf("seal secret envelope: %w", err)
	}

	now := time.Now().UTC()
	user.PasswordHash = hash
	user.SecretEnvelope = envelope
	user.PasswordResetAt = &now
	user.UpdatedAt = now

	if err := s.putUser(ctx, user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Get fetches the account record for email.
func (s *CredentialService) Get(ctx context.Context, email string) (domain.User, error) {
	return s.getUser(ctx, email)
}

// Delete removes the account record. Deleting an unknown email is not
// an error.
func (s *CredentialService) Delete(ctx context.Context, email string) error {
	return s.Store.Delete(ctx, store.UserKey(email))
}

func (s *CredentialService) getUser(ctx context.Context, email string) (domain.User, error) {
	value, err := s.Store.Get(ctx, store.UserKey(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}

	var user domain.User
	if err := json.Unmarshal(value, &user); err != nil {
		return domain.User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return user, nil
}

func (s *CredentialService) putUser(ctx context.Context, user domain.User) error {
	value, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.Store.Put(ctx, store.UserKey(user.Email), value, 0)
}

// ValidatePassword enforces the password policy: minimum length plus
// at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
