package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialboost/panel/internal/models"
)

func TestPlatformsSeeded(t *testing.T) {
	ts := newTestServices(t)

	platforms, err := ts.catalog.Platforms(context.Background())
	require.NoError(t, err)
	require.Len(t, platforms, 4)

	ig, ok := platforms["instagram"]
	require.True(t, ok)
	assert.Equal(t, "Instagram", ig.Name)
	require.Len(t, ig.Services, 3)
	assert.Equal(t, int64(5_000_000), ig.Services["followers"].PricePer1000)
	assert.Equal(t, int64(100), ig.Services["followers"].MinQuantity)
	assert.Equal(t, int64(10000), ig.Services["followers"].MaxQuantity)
}

func TestQuote(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	svc, cost, err := ts.catalog.Quote(ctx, "instagram", "followers", 5000)
	require.NoError(t, err)
	assert.Equal(t, "Followers", svc.Name)
	assert.Equal(t, int64(25_000_000), cost)

	// Fractional thousands price exactly.
	_, cost, err = ts.catalog.Quote(ctx, "instagram", "likes", 150)
	require.NoError(t, err)
	assert.Equal(t, int64(375_000), cost)

	_, _, err = ts.catalog.Quote(ctx, "instagram", "followers", 10)
	assert.ErrorIs(t, err, models.ErrOutOfRange)
}

func TestUpdatePriceTouchesOneService(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, ts.catalog.UpdatePrice(ctx, "instagram", "followers", 7_500_000, "admin@example.com"))

	platforms, err := ts.catalog.Platforms(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7_500_000), platforms["instagram"].Services["followers"].PricePer1000)
	// Same service id on another platform keeps its own price.
	assert.Equal(t, int64(6_000_000), platforms["tiktok"].Services["followers"].PricePer1000)

	err = ts.catalog.UpdatePrice(ctx, "instagram", "nope", 1, "admin@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = ts.catalog.UpdatePrice(ctx, "instagram", "followers", -1, "admin@example.com")
	assert.ErrorIs(t, err, models.ErrOutOfRange)
}

func TestReplaceBanks(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	err := ts.catalog.ReplaceBanks(ctx, []models.Bank{
		{ID: "one", Name: "Bank One", IBAN: "SA00", AccountHolderName: "X"},
		{ID: "one", Name: "Bank One Again", IBAN: "SA01", AccountHolderName: "X"},
	}, "admin@example.com")
	assert.ErrorIs(t, err, models.ErrDuplicateBankID)

	// The rejected replacement left the seeded banks alone.
	settings, err := ts.catalog.PaymentSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, settings.Banks, 4)

	err = ts.catalog.ReplaceBanks(ctx, []models.Bank{
		{ID: "one", Name: "Bank One", IBAN: "SA00", AccountHolderName: "X"},
	}, "admin@example.com")
	require.NoError(t, err)

	settings, err = ts.catalog.PaymentSettings(ctx)
	require.NoError(t, err)
	require.Len(t, settings.Banks, 1)
	assert.Equal(t, "Bank One", settings.Banks[0].Name)
}
