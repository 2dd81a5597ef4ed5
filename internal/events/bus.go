// Package events carries admin-facing notifications out of the ledger.
// The ledger publishes; presentation (the admin SSE stream, an optional
// Redis channel) subscribes. Persistence never touches presentation
// directly.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event types emitted by the ledger.
const (
	TypeOrderPlaced        = "order_placed"
	TypeOrderStatusChanged = "order_status_changed"
	TypeFundRequestFiled   = "fund_request_filed"
	TypeFundRequestDecided = "fund_request_decided"
	TypeMessageSent        = "message_sent"
)

// Event is one admin notification.
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	UserEmail string    `json:"user_email,omitempty"`
	EntityID  string    `json:"entity_id,omitempty"`
	At        time.Time `json:"at"`
}

const subscriberBuffer = 16

// RedisChannel is the pub/sub channel mirrored events go out on.
const RedisChannel = "panel:admin-events"

// Bus fans events out to in-process subscribers and, when configured,
// mirrors them to a Redis channel for external consumers.
type Bus struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	redis  redis.UniversalClient
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
	}
}

// WithRedis mirrors every published event to the Redis channel. A nil
// client leaves the bus in-process only.
func (b *Bus) WithRedis(client redis.UniversalClient) *Bus {
	b.redis = client
	return b
}

// Publish delivers the event to every subscriber. Slow subscribers drop
// events rather than block the ledger.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			if b.logger != nil {
				b.logger.Warn("event dropped for slow subscriber", zap.String("type", ev.Type))
			}
		}
	}
	b.mu.Unlock()

	if b.redis != nil {
		payload, err := json.Marshal(ev)
		if err == nil {
			err = b.redis.Publish(ctx, RedisChannel, payload).Err()
		}
		if err != nil && b.logger != nil {
			b.logger.Warn("redis event publish failed", zap.Error(err))
		}
	}
}

// Subscribe registers a new listener. The returned cancel func must be
// called when done; the channel is closed on cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
