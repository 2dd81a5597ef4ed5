package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/events"
	"github.com/socialboost/panel/internal/models"
)

func TestPlaceFromBalanceDebitsAndInserts(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	order, err := ts.orders.PlaceFromBalance(ctx, "test@example.com", "instagram", "followers", 5000, "https://instagram.com/someone")
	require.NoError(t, err)

	// 5000 followers at $5.00 per 1000 is $25.00.
	assert.Equal(t, int64(25_000_000), order.CostMicros)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "Followers", order.Service)

	user, err := ts.users.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(25_000_000), user.BalanceMicros)

	// Newest order comes back first.
	orders, err := ts.orders.ListForUser(ctx, "test@example.com")
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestPlaceFromBalanceInsufficientLeavesNoTrace(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	// YouTube subscribers cost $25 per 1000; 5000 of them exceed the $50
	// seed balance.
	_, err := ts.orders.PlaceFromBalance(ctx, "test@example.com", "youtube", "subscribers", 5000, "https://youtube.com/channel/x")
	require.ErrorIs(t, err, models.ErrInsufficientBalance)

	user, err := ts.users.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_000), user.BalanceMicros)

	orders, err := ts.orders.ListForUser(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestPlaceFromBalanceValidation(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.orders.PlaceFromBalance(ctx, "test@example.com", "instagram", "followers", 50, "https://x")
	assert.ErrorIs(t, err, models.ErrOutOfRange)

	_, err = ts.orders.PlaceFromBalance(ctx, "test@example.com", "instagram", "followers", 20000, "https://x")
	assert.ErrorIs(t, err, models.ErrOutOfRange)

	_, err = ts.orders.PlaceFromBalance(ctx, "test@example.com", "instagram", "nope", 500, "https://x")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = ts.orders.PlaceFromBalance(ctx, "test@example.com", "myspace", "followers", 500, "https://x")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPlaceSentinelPlatforms(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	topUp, err := ts.orders.Place(ctx, "test@example.com", PlaceOrderInput{
		Service:    "Add Funds",
		Quantity:   1,
		CostMicros: 10_000_000,
		FundTopUp:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformFundTransfer, topUp.PlatformID)

	unknown, err := ts.orders.Place(ctx, "test@example.com", PlaceOrderInput{
		Service:    "Mystery",
		Quantity:   1,
		CostMicros: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PlatformUnknown, unknown.PlatformID)
}

func TestSetStatusOverwritesAndAudits(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.orders.SetStatus(ctx, "ORD_MOCK_0", "Delivered", "admin@example.com")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	// Completed back to Pending is allowed; there is no transition graph.
	order, err := ts.orders.SetStatus(ctx, "ORD_MOCK_0", domain.OrderStatusPending, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	entries, err := ts.audit.List(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "set_status", entries[0].Action)
	assert.Equal(t, domain.OrderStatusCompleted, entries[0].PrevState)
	assert.Equal(t, domain.OrderStatusPending, entries[0].NextState)
}

func TestGetForOwnerHidesForeignOrders(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	order, err := ts.orders.GetForOwner(ctx, "ORD_MOCK_0", "Test@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "ORD_MOCK_0", order.ID)

	_, err = ts.orders.GetForOwner(ctx, "ORD_MOCK_0", "admin@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPlacePublishesEvent(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	ch, cancel := ts.bus.Subscribe()
	defer cancel()

	order, err := ts.orders.PlaceFromBalance(ctx, "test@example.com", "instagram", "likes", 100, "https://x")
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, events.TypeOrderPlaced, ev.Type)
	assert.Equal(t, order.ID, ev.EntityID)
	assert.Equal(t, "test@example.com", ev.UserEmail)
}

func TestPlaceWithCardDoesNotTouchBalance(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	order, err := ts.orders.PlaceWithCard(ctx, "test@example.com", PlaceOrderInput{
		PlatformID: "instagram",
		Service:    "Followers",
		Link:       "https://x",
		Quantity:   500,
		CostMicros: 2_500_000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	user, err := ts.users.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_000), user.BalanceMicros)
}

func TestPlaceWithCardDeclined(t *testing.T) {
	ts := newTestServices(t)
	ts.cards.FailureRate = 1
	ctx := context.Background()

	_, err := ts.orders.PlaceWithCard(ctx, "test@example.com", PlaceOrderInput{
		PlatformID: "instagram",
		Service:    "Followers",
		Quantity:   500,
		CostMicros: 2_500_000,
	})
	require.Error(t, err)

	orders, err := ts.orders.ListForUser(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
