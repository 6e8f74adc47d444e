package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/quillboard/quillboard/internal/identity/service"
	"github.com/quillboard/quillboard/internal/identity/store"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore(t)

	require.NoError(t, kv.Put(ctx, "revoked:dead", []byte(`{}`), 10*time.Millisecond))
	require.NoError(t, kv.Put(ctx, "user:alice@example.com", []byte(`{}`), 0))

	time.Sleep(30 * time.Millisecond)

	hk := service.NewHousekeepingService(kv, slog.New(slog.DiscardHandler), 10*time.Millisecond)
	hk.Start()
	hk.Stop()

	// The startup sweep already ran before Stop returned.
	_, err := kv.Get(ctx, "user:alice@example.com")
	require.NoError(t, err, "live entries survive the sweep")

	deleted, err := kv.DeleteExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, deleted, "nothing left for a second sweep")

	_, err = kv.Get(ctx, "revoked:dead")
	require.ErrorIs(t, err, store.ErrNotFound)
}
