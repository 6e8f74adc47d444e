package service_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/internal/identity/store"
	"github.com/quillboard/quillboard/internal/identity/store/drivers/sqlite"
	"github.com/quillboard/quillboard/pkg/cryptox"
	"github.com/quillboard/quillboard/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct horse battery 9"

func newTestStore(t *testing.T) store.KV {
	t.Helper()

	cryptox.ResetPepperForTesting()
	cryptox.SetPepperPath(filepath.Join(t.TempDir(), "pepper"))

	kv, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	require.NoError(t, kv.ApplyMigrations())
	return kv
}

func newTestKeys(t *testing.T) *cryptox.RootKey {
	t.Helper()

	keys, err := cryptox.NewRootKey([]byte("test-root-secret-material"))
	require.NoError(t, err)
	return keys
}

func newCredentialService(t *testing.T, kv store.KV) *service.CredentialService {
	t.Helper()
	return &service.CredentialService{Store: kv, Keys: newTestKeys(t)}
}

func newSessionService(t *testing.T, kv store.KV, ttl time.Duration) *service.SessionService {
	t.Helper()

	keys := newTestKeys(t)
	return &service.SessionService{
		Signer: jwtx.NewSessionSigner(keys.SigningKey(), "quillboard-test", ttl),
		Store:  kv,
	}
}
