package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/socialboost/panel/internal/db"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/migrations"
)

func setupStore(t *testing.T) *repository.Store {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, repository.ApplyMigrations(ctx, conn, migrations.Files))

	store := repository.NewStore(conn)
	require.NoError(t, store.Seed(ctx))
	return store
}

func TestQueueWorkerProcessOnce(t *testing.T) {
	store := setupStore(t)
	w := NewQueueWorker(store)

	require.NoError(t, w.ProcessOnce(context.Background()))
}

func TestQueueWorkerStops(t *testing.T) {
	store := setupStore(t)
	w := NewQueueWorker(store).WithPollInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := w.Run(ctx)
	time.Sleep(30 * time.Millisecond)
	stop()
}
