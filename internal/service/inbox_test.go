package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialboost/panel/internal/domain"
)

func TestInboxDelivery(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	msg, err := ts.inbox.Send(ctx, "Test@Example.com", "Your order shipped")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", msg.UserEmail)
	assert.Equal(t, domain.MessageSenderAdmin, msg.From)
	assert.False(t, msg.Read)

	_, err = ts.inbox.Send(ctx, "test@example.com", "")
	assert.Error(t, err)

	unread, err := ts.inbox.CountUnread(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestMarkAllReadIsIdempotent(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()

	_, err := ts.inbox.Send(ctx, "test@example.com", "first")
	require.NoError(t, err)
	_, err = ts.inbox.Send(ctx, "test@example.com", "second")
	require.NoError(t, err)

	updated, err := ts.inbox.MarkAllRead(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	updated, err = ts.inbox.MarkAllRead(ctx, "test@example.com")
	require.NoError(t, err)
	assert.Zero(t, updated)

	messages, err := ts.inbox.ListForUser(ctx, "test@example.com")
	require.NoError(t, err)
	for _, m := range messages {
		assert.True(t, m.Read)
	}
}
