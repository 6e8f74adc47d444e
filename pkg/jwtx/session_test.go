package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/quillboard/quillboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewSessionSigner([]byte("test-signing-key"), "quillboard-identity", time.Hour)

	token, err := signer.Issue("a68b6d2e-0000-4000-8000-1234567890ab", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims := signer.Verify(token)
	require.NotNil(t, claims)
	require.Equal(t, "a68b6d2e-0000-4000-8000-1234567890ab", claims.UUID())
	require.Equal(t, "alice@example.com", claims.Email)
	require.NotEmpty(t, claims.ID, "tokens carry a jti")
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyReturnsNilNotError(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewSessionSigner([]byte("key-a"), "quillboard-identity", time.Hour)

	t.Run("empty token", func(t *testing.T) {
		require.Nil(t, signer.Verify(""))
	})

	t.Run("garbage token", func(t *testing.T) {
		require.Nil(t, signer.Verify("not.a.jwt"))
	})

	t.Run("wrong key", func(t *testing.T) {
		other := jwtx.NewSessionSigner([]byte("key-b"), "quillboard-identity", time.Hour)
		token, err := other.Issue("uuid", "a@example.com")
		require.NoError(t, err)
		require.Nil(t, signer.Verify(token))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := jwtx.NewSessionSigner([]byte("key-a"), "someone-else", time.Hour)
		token, err := other.Issue("uuid", "a@example.com")
		require.NoError(t, err)
		require.Nil(t, signer.Verify(token))
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.SessionClaims{
			Email: "a@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "uuid",
				Issuer:    "quillboard-identity",
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		token, err := expired.SignedString([]byte("key-a"))
		require.NoError(t, err)
		require.Nil(t, signer.Verify(token))
	})

	t.Run("missing exp claim", func(t *testing.T) {
		unbounded := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtx.SessionClaims{
			Email: "a@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  "uuid",
				Issuer:   "quillboard-identity",
				IssuedAt: jwt.NewNumericDate(time.Now()),
			},
		})
		token, err := unbounded.SignedString([]byte("key-a"))
		require.NoError(t, err)
		require.Nil(t, signer.Verify(token))
	})
}

func TestDefaultTTL(t *testing.T) {
	t.Parallel()

	signer := jwtx.NewSessionSigner([]byte("key"), "iss", 0)
	require.Equal(t, jwtx.DefaultSessionTTL, signer.TTL())
}
