package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	identityhttp "github.com/quillboard/quillboard/internal/identity/http"
	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/internal/identity/store/drivers/sqlite"
	"github.com/quillboard/quillboard/pkg/cryptox"
	"github.com/quillboard/quillboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery 9"

type testServer struct {
	*httptest.Server

	resetTokens map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cryptox.ResetPepperForTesting()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	kv, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	require.NoError(t, kv.ApplyMigrations())

	keys, err := cryptox.NewRootKey([]byte("test-root-secret-material"))
	require.NoError(t, err)

	creds := &service.CredentialService{Store: kv, Keys: keys}
	sessions := &service.SessionService{
		Signer: jwtx.NewSessionSigner(keys.SigningKey(), "quillboard-test", time.Hour),
		Store:  kv,
	}
	resets := &service.ResetService{Store: kv, Credentials: creds, TTL: time.Hour}
	dirs := &service.DirectoryService{Store: kv}

	router := identityhttp.NewRouter("test", kv, slog.New(slog.DiscardHandler), false)
	router.CredentialService = creds
	router.SessionService = sessions
	router.ResetService = resets
	router.DirectoryService = dirs

	ts := &testServer{resetTokens: map[string]string{}}
	router.ResetDelivery = func(_ context.Context, email, token string) {
		ts.resetTokens[email] = token
	}

	router.ApplyRoutes()
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Server.Close)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, cookie string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: identityhttp.SessionCookieName, Value: cookie})
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, raw
}

func (ts *testServer) register(t *testing.T, email string) (uuid, token string) {
	t.Helper()

	resp, raw := ts.do(t, http.MethodPost, "/v1/register", "", map[string]string{
		"email": email, "password": testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var out struct {
		UUID         string `json:"uuid"`
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.UUID)
	require.NotEmpty(t, out.SessionToken)
	return out.UUID, out.SessionToken
}

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)

	uuid, _ := ts.register(t, "alice@example.com")

	// Duplicate registration conflicts.
	resp, raw := ts.do(t, http.MethodPost, "/v1/register", "", map[string]string{
		"email": "Alice@Example.com", "password": "another password 42",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, string(raw), "conflict")

	// Login returns the recovered plaintext secret.
	resp, raw = ts.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	var login struct {
		UUID   string `json:"uuid"`
		Secret string `json:"secret"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	require.Equal(t, uuid, login.UUID)
	require.Equal(t, testPassword, login.Secret)

	// Wrong password is a plain 401.
	resp, raw = ts.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong password 99",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, string(raw), "authentication_failed")
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	for name, body := range map[string]map[string]string{
		"bad email":     {"email": "not-an-email", "password": testPassword},
		"empty email":   {"email": "", "password": testPassword},
		"weak password": {"email": "alice@example.com", "password": "short1"},
	} {
		t.Run(name, func(t *testing.T) {
			resp, raw := ts.do(t, http.MethodPost, "/v1/register", "", body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Contains(t, string(raw), "validation_failed")
		})
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "alice@example.com")

	resp, _ := ts.do(t, http.MethodPost, "/v1/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The revoked token no longer authenticates anything.
	resp, _ = ts.do(t, http.MethodPost, "/v1/logout", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticatedRequests(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/logout"},
		{http.MethodDelete, "/v1/account"},
		{http.MethodPost, "/v1/session/refresh"},
		{http.MethodPost, "/v1/session/invalidate"},
		{http.MethodPost, "/v1/directories"},
		{http.MethodDelete, "/v1/directories"},
	} {
		resp, raw := ts.do(t, tc.method, tc.path, "", nil)
		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s: %s", tc.method, tc.path, raw)
	}

	// Garbage tokens fail the same way as missing ones.
	resp, _ := ts.do(t, http.MethodPost, "/v1/logout", "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSessionRefreshRotatesToken(t *testing.T) {
	ts := newTestServer(t)
	uuid, old := ts.register(t, "alice@example.com")

	time.Sleep(2 * time.Millisecond)

	resp, raw := ts.do(t, http.MethodPost, "/v1/session/refresh", old, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		UUID         string `json:"uuid"`
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, uuid, out.UUID)
	require.NotEqual(t, old, out.SessionToken)

	// The pre-refresh token is blacklisted.
	resp, _ = ts.do(t, http.MethodPost, "/v1/session/refresh", old, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The replacement works.
	resp, _ = ts.do(t, http.MethodPost, "/v1/directories", out.SessionToken,
		map[string]string{"directory_path": "/notes"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionInvalidate(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.register(t, "alice@example.com")

	resp, _ := ts.do(t, http.MethodPost, "/v1/session/invalidate", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodPost, "/v1/session/refresh", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAccountDelete(t *testing.T) {
	ts := newTestServer(t)
	uuid, token := ts.register(t, "alice@example.com")

	resp, _ := ts.do(t, http.MethodDelete, "/v1/account", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Both the record and the session are gone.
	resp, _ = ts.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": testPassword,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodDelete, "/v1/account", token, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Re-registration mints a fresh uuid.
	again, _ := ts.register(t, "alice@example.com")
	require.NotEqual(t, uuid, again)
}

func TestPasswordResetFlow(t *testing.T) {
	ts := newTestServer(t)
	uuid, _ := ts.register(t, "alice@example.com")

	resp, raw := ts.do(t, http.MethodPost, "/v1/password/request-reset", "", map[string]string{
		"email": "alice@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token := ts.resetTokens["alice@example.com"]
	require.NotEmpty(t, token)
	require.NotContains(t, string(raw), token,
		"the token travels out of band, never in the response")

	// Weak replacement is rejected and the token survives.
	resp, raw = ts.do(t, http.MethodPost, "/v1/password/reset", "", map[string]string{
		"token": token, "new_password": "weak",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(raw), "validation_failed")

	resp, raw = ts.do(t, http.MethodPost, "/v1/password/reset", "", map[string]string{
		"token": token, "new_password": "reset password 2024",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		UUID         string `json:"uuid"`
		SessionToken string `json:"session_token"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, uuid, out.UUID, "reset keeps the account uuid")
	require.NotEmpty(t, out.SessionToken)

	// The token is single use.
	resp, _ = ts.do(t, http.MethodPost, "/v1/password/reset", "", map[string]string{
		"token": token, "new_password": "reset password 2025",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Old password dead, new one live and recoverable.
	resp, raw = ts.do(t, http.MethodPost, "/v1/login", "", map[string]string{
		"email": "alice@example.com", "password": "reset password 2024",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Secret string `json:"secret"`
	}
	require.NoError(t, json.Unmarshal(raw, &login))
	require.Equal(t, "reset password 2024", login.Secret)
}

func TestPasswordResetNoEnumeration(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice@example.com")

	known, knownRaw := ts.do(t, http.MethodPost, "/v1/password/request-reset", "", map[string]string{
		"email": "alice@example.com",
	})
	ghost, ghostRaw := ts.do(t, http.MethodPost, "/v1/password/request-reset", "", map[string]string{
		"email": "ghost@example.com",
	})

	require.Equal(t, known.StatusCode, ghost.StatusCode)
	require.JSONEq(t, string(knownRaw), string(ghostRaw), "responses are indistinguishable")
	require.Empty(t, ts.resetTokens["ghost@example.com"])
}

func TestDirectoryEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.register(t, "alice@example.com")
	bob, bobToken := ts.register(t, "bob@example.com")

	resp, _ := ts.do(t, http.MethodPost, "/v1/directories", aliceToken,
		map[string]string{"directory_path": "/home/alice/notes"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := ts.do(t, http.MethodGet, "/v1/directories/"+alice, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		DirectoryPath  string `json:"directory_path"`
		LastAccessTime string `json:"last_access_time"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, "/home/alice/notes", out.DirectoryPath)
	_, err := time.Parse(time.RFC3339, out.LastAccessTime)
	require.NoError(t, err)

	// Reading another account's mapping is Forbidden, even when it exists.
	resp, raw = ts.do(t, http.MethodGet, "/v1/directories/"+alice, bobToken, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Contains(t, string(raw), "forbidden")

	// Nothing stored for bob yet.
	resp, _ = ts.do(t, http.MethodGet, "/v1/directories/"+bob, bobToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Remove is idempotent.
	resp, _ = ts.do(t, http.MethodDelete, "/v1/directories", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = ts.do(t, http.MethodDelete, "/v1/directories", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = ts.do(t, http.MethodGet, "/v1/directories/"+alice, aliceToken, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthProbes(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := ts.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `"status":"ok"`)

	resp, raw = ts.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), `"database":"ok"`)
	require.Contains(t, string(raw), `"signer":"ok"`)
}
