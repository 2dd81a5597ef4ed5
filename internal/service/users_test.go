package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialboost/panel/internal/models"
)

func TestRegisterNormalizesAndRejectsDuplicates(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	user, err := ts.users.Register(ctx, "Alice", "Alice@Example.COM", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.APIKey)
	assert.Zero(t, user.BalanceMicros)

	_, err = ts.users.Register(ctx, "Other Alice", "ALICE@example.com", "different")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestAuthenticateStartsSession(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, ok := ts.sessions.Current()
	require.False(t, ok)

	user, err := ts.users.Authenticate(ctx, "TEST@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	current, ok := ts.sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "test@example.com", current.Email)
	assert.Equal(t, int64(50_000_000), current.BalanceMicros)
}

func TestAuthenticateBadCredentials(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.users.Authenticate(ctx, "test@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = ts.users.Authenticate(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, ok := ts.sessions.Current()
	assert.False(t, ok)
}

func TestRenameEmailCascades(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.users.Authenticate(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	renamed, err := ts.users.RenameEmail(ctx, "test@example.com", "renamed@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", renamed.Email)

	// Every seeded order follows the rename.
	orders, err := ts.orders.ListForUser(ctx, "renamed@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	old, err := ts.orders.ListForUser(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Empty(t, old)

	// The live session follows too.
	current, ok := ts.sessions.Current()
	require.True(t, ok)
	assert.Equal(t, "renamed@example.com", current.Email)
}

func TestRenameEmailRejectsTakenAddress(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.users.RenameEmail(ctx, "test@example.com", "Admin@Example.com", "password123")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)

	_, err = ts.users.RenameEmail(ctx, "test@example.com", "test@example.com", "password123")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = ts.users.RenameEmail(ctx, "test@example.com", "new@example.com", "wrongpass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestSetBalanceAllowsNegativeAndRefreshesSession(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.users.Authenticate(ctx, "test@example.com", "password123")
	require.NoError(t, err)

	user, err := ts.users.SetBalance(ctx, "test@example.com", -5_000_000, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(-5_000_000), user.BalanceMicros)

	current, ok := ts.sessions.Current()
	require.True(t, ok)
	assert.Equal(t, int64(-5_000_000), current.BalanceMicros)
}

func TestChangePasswordRoundTrip(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	err := ts.users.ChangePassword(ctx, "test@example.com", "wrong", "newpass456")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	require.NoError(t, ts.users.ChangePassword(ctx, "test@example.com", "password123", "newpass456"))

	_, err = ts.users.Authenticate(ctx, "test@example.com", "password123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = ts.users.Authenticate(ctx, "test@example.com", "newpass456")
	assert.NoError(t, err)
}

func TestDeleteUserRetainsOrders(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, ts.users.Delete(ctx, "test@example.com", "admin@example.com"))

	_, err := ts.users.GetByEmail(ctx, "test@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	orders, err := ts.orders.ListForUser(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}
