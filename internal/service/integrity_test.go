package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrityCleanOnSeed(t *testing.T) {
	ts := newTestServices(t)
	integrity := NewIntegrityService(ts.store)

	report, err := integrity.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Empty(t, report.NegativeBalances)
	assert.Empty(t, report.DuplicateEmails)
	// One of the seeded sample orders is still in progress, none pending.
	assert.Zero(t, report.PendingOrders)
}

func TestIntegrityFlagsNegativeBalance(t *testing.T) {
	ts := newTestServices(t)
	integrity := NewIntegrityService(ts.store)
	ctx := context.Background()

	_, err := ts.users.SetBalance(ctx, "test@example.com", -1_000_000, "admin@example.com")
	require.NoError(t, err)

	report, err := integrity.Run(ctx)
	require.NoError(t, err)
	assert.False(t, report.Clean())
	assert.Equal(t, []string{"test@example.com"}, report.NegativeBalances)
}

func TestIntegrityReportsOrphanedOrders(t *testing.T) {
	ts := newTestServices(t)
	integrity := NewIntegrityService(ts.store)
	ctx := context.Background()

	require.NoError(t, ts.users.Delete(ctx, "test@example.com", "admin@example.com"))

	report, err := integrity.Run(ctx)
	require.NoError(t, err)
	// Orphans are informational and do not dirty the report.
	assert.True(t, report.Clean())
	assert.Equal(t, []string{"test@example.com"}, report.OrphanedOrders)
}
