package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/socialboost/panel/internal/db"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/gateway"
	"github.com/socialboost/panel/internal/repository"
	"github.com/socialboost/panel/internal/session"
	"github.com/socialboost/panel/migrations"
)

// setupStore opens a fresh in-memory database, migrates it and seeds the
// storefront defaults.
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

type testServices struct {
	store    *repository.Store
	sessions *session.Manager
	bus      *events.Bus
	cards    *gateway.MockCardGateway
	audit    *AuditService
	users    *UserService
	orders   *OrderService
	funds    *FundService
	inbox    *InboxService
	catalog  *CatalogService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	store := setupStore(t)
	sessions := session.NewManager()
	bus := events.NewBus(zap.NewNop())
	cards := &gateway.MockCardGateway{FailureRate: 0, Latency: 0}

	audit := NewAuditService(store)
	users := NewUserService(store, sessions, audit, zap.NewNop())
	orders := NewOrderService(store, sessions, bus, audit, cards)
	funds := NewFundService(store, sessions, bus, audit, cards, orders)
	inbox := NewInboxService(store, bus)
	catalog := NewCatalogService(store, audit)

	return &testServices{
		store:    store,
		sessions: sessions,
		bus:      bus,
		cards:    cards,
		audit:    audit,
		users:    users,
		orders:   orders,
		funds:    funds,
		inbox:    inbox,
		catalog:  catalog,
	}
}
