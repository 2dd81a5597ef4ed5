package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialboost/panel/internal/db"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/migrations"
)

func setupIdemStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repository.ApplyMigrations(ctx, conn, migrations.Files))

	return NewStore(nil, repository.NewStore(conn), time.Hour)
}

func TestReserveFinalizeLookup(t *testing.T) {
	store := setupIdemStore(t)
	ctx := context.Background()

	_, err := store.Lookup(ctx, "key-1", "hash-1")
	assert.ErrorIs(t, err, ErrNotFound)

	claimed, err := store.Reserve(ctx, "key-1", "hash-1", "POST", "/api/orders")
	require.NoError(t, err)
	assert.True(t, claimed)

	// The key is held until finalized.
	_, err = store.Lookup(ctx, "key-1", "hash-1")
	assert.ErrorIs(t, err, ErrInProgress)

	claimed, err = store.Reserve(ctx, "key-1", "hash-1", "POST", "/api/orders")
	require.NoError(t, err)
	assert.False(t, claimed)

	rec, err := store.Finalize(ctx, "key-1", "hash-1", 201, []byte(`{"id":"ORD1"}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)

	rec, err = store.Lookup(ctx, "key-1", "hash-1")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)
	assert.JSONEq(t, `{"id":"ORD1"}`, string(rec.Body))
	assert.Equal(t, "sqlite", rec.ServedBy)
}

func TestLookupRejectsDifferentBody(t *testing.T) {
	store := setupIdemStore(t)
	ctx := context.Background()

	claimed, err := store.Reserve(ctx, "key-2", "hash-a", "POST", "/api/orders")
	require.NoError(t, err)
	require.True(t, claimed)
	_, err = store.Finalize(ctx, "key-2", "hash-a", 201, nil, "application/json")
	require.NoError(t, err)

	_, err = store.Lookup(ctx, "key-2", "hash-b")
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestWaitForCompletion(t *testing.T) {
	store := setupIdemStore(t)
	ctx := context.Background()

	claimed, err := store.Reserve(ctx, "key-3", "hash-3", "POST", "/api/orders")
	require.NoError(t, err)
	require.True(t, claimed)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_, _ = store.Finalize(ctx, "key-3", "hash-3", 200, []byte("done"), "text/plain")
	}()

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	rec, err := store.WaitForCompletion(waitCtx, "key-3", "hash-3")
	require.NoError(t, err)
	assert.Equal(t, []byte("done"), rec.Body)
}
