package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeSucceeds(t *testing.T) {
	g := &MockCardGateway{FailureRate: 0, Latency: 0}

	ref, err := g.Charge(context.Background(), "test@example.com", 10_000_000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "CHG-"))
}

func TestChargeDeclined(t *testing.T) {
	g := &MockCardGateway{FailureRate: 1, Latency: 0}

	_, err := g.Charge(context.Background(), "test@example.com", 10_000_000)
	assert.Error(t, err)
}

func TestChargeHonoursCancellation(t *testing.T) {
	g := &MockCardGateway{FailureRate: 0, Latency: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Charge(ctx, "test@example.com", 1)
	assert.Error(t, err)
}
