package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// CardGateway represents the external card-payment processor used for
// non-balance checkout. The integration is simulated only.
type CardGateway interface {
	// Charge attempts to charge amountMicros against the shopper's card.
	// Returns a gateway reference on success.
	Charge(ctx context.Context, email string, amountMicros int64) (string, error)
}

// MockCardGateway simulates the processor: a short artificial delay and a
// configurable failure rate.
type MockCardGateway struct {
	// FailureRate is the probability of a declined charge (0.0 to 1.0).
	FailureRate float64
	// Latency bounds the simulated round trip. Zero means no delay,
	// which tests rely on.
	Latency time.Duration
}

func NewMockCardGateway() *MockCardGateway {
	return &MockCardGateway{
		FailureRate: 0.05,
		Latency:     1500 * time.Millisecond,
	}
}

func (g *MockCardGateway) Charge(ctx context.Context, email string, amountMicros int64) (string, error) {
	if g.Latency > 0 {
		jitter := time.Duration(rand.Int63n(int64(g.Latency)))
		select {
		case <-time.After(g.Latency/2 + jitter):
		case <-ctx.Done():
			return "", fmt.Errorf("gateway call canceled: %w", ctx.Err())
		}
	}

	if rand.Float64() < g.FailureRate {
		return "", fmt.Errorf("card declined")
	}

	ref := fmt.Sprintf("CHG-%s-%05d", time.Now().Format("20060102-150405"), rand.Intn(100000))
	return ref, nil
}
