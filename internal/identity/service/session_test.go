package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/quillboard/quillboard/internal/identity/domain"
	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestSessionIssueVerify(t *testing.T) {
	ctx := context.Background()
	sessions := newSessionService(t, newTestStore(t), time.Hour)

	token, err := sessions.Issue(ctx, "uuid-1", "alice@example.com")
	require.NoError(t, err)

	claims, err := sessions.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "uuid-1", claims.UUID())
	require.Equal(t, "alice@example.com", claims.Email)
}

func TestSessionRevoke(t *testing.T) {
	ctx := context.Background()
	sessions := newSessionService(t, newTestStore(t), time.Hour)

	token, err := sessions.Issue(ctx, "uuid-1", "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, token, domain.RevokeReasonLogout))

	revoked, err := sessions.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, revoked)

	// Signature and expiry still verify, but the blacklist wins.
	_, err = sessions.Verify(ctx, token)
	require.ErrorIs(t, err, service.ErrInvalidSession)

	// Revoking again, or revoking garbage, is a no-op.
	require.NoError(t, sessions.Revoke(ctx, token, domain.RevokeReasonLogout))
	require.NoError(t, sessions.Revoke(ctx, "not-a-token", domain.RevokeReasonManual))
}

func TestSessionRefresh(t *testing.T) {
	ctx := context.Background()
	sessions := newSessionService(t, newTestStore(t), time.Hour)

	old, err := sessions.Issue(ctx, "uuid-1", "alice@example.com")
	require.NoError(t, err)

	// jti is time-based, so give the fresh token a different stamp.
	time.Sleep(2 * time.Millisecond)

	fresh, err := sessions.Refresh(ctx, old)
	require.NoError(t, err)
	require.NotEqual(t, old, fresh)

	// The old token is dead, the new one carries the same identity.
	_, err = sessions.Verify(ctx, old)
	require.ErrorIs(t, err, service.ErrInvalidSession)

	claims, err := sessions.Verify(ctx, fresh)
	require.NoError(t, err)
	require.Equal(t, "uuid-1", claims.UUID())
	require.Equal(t, "alice@example.com", claims.Email)

	// A revoked token cannot be refreshed.
	_, err = sessions.Refresh(ctx, old)
	require.ErrorIs(t, err, service.ErrInvalidSession)
}

func TestSessionVerifyRejectsForeignToken(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)
	sessions := newSessionService(t, kv, time.Hour)

	other := jwtx.NewSessionSigner([]byte("some other signing key"), "quillboard-test", time.Hour)
	token, err := other.Issue("uuid-1", "alice@example.com")
	require.NoError(t, err)

	_, err = sessions.Verify(ctx, token)
	require.ErrorIs(t, err, service.ErrInvalidSession)
}
