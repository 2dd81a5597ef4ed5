package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/socialboost/panel/internal/domain"
	"github.com/socialboost/panel/internal/observability"
	"github.com/socialboost/panel/internal/service"
)

// QueueWorker polls the pending-order and pending-fund-request counts into
// Prometheus gauges and sweeps expired idempotency keys as it goes.
type QueueWorker struct {
	store        service.QueryStore
	pollInterval time.Duration
	stopCh       chan struct{}
}

func NewQueueWorker(store service.QueryStore) *QueueWorker {
	return &QueueWorker{
		store:        store,
		pollInterval: 15 * time.Second,
		stopCh:       make(chan struct{}),
	}
}

// WithPollInterval sets the poll interval for the worker.
func (w *QueueWorker) WithPollInterval(interval time.Duration) *QueueWorker {
	w.pollInterval = interval
	return w
}

// Start runs the poll loop until Stop is called or the context is canceled.
func (w *QueueWorker) Start(ctx context.Context) {
	zap.L().Info("queue worker starting", zap.Duration("interval", w.pollInterval))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("queue worker stopping, context canceled")
			return
		case <-w.stopCh:
			zap.L().Info("queue worker stopping")
			return
		case <-ticker.C:
			if err := w.ProcessOnce(ctx); err != nil {
				observability.IncrementWorkerRun("queue", "error")
				zap.L().Error("queue worker poll failed", zap.Error(err))
			} else {
				observability.IncrementWorkerRun("queue", "ok")
			}
		}
	}
}

// Stop signals the worker to stop.
func (w *QueueWorker) Stop() {
	close(w.stopCh)
}

// ProcessOnce runs a single poll immediately. Useful for tests.
func (w *QueueWorker) ProcessOnce(ctx context.Context) error {
	queries := w.store.Queries()

	pendingOrders, err := queries.CountOrdersByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return fmt.Errorf("count pending orders: %w", err)
	}
	observability.SetPendingOrders(pendingOrders)

	pendingFunds, err := queries.CountFundRequestsByStatus(ctx, domain.FundStatusPending)
	if err != nil {
		return fmt.Errorf("count pending fund requests: %w", err)
	}
	observability.SetPendingFundRequests(pendingFunds)

	purged, err := queries.PurgeExpiredIdempotencyKeys(ctx)
	if err != nil {
		return fmt.Errorf("purge idempotency keys: %w", err)
	}
	if purged > 0 {
		zap.L().Debug("purged expired idempotency keys", zap.Int64("count", purged))
	}
	return nil
}

// Run starts the worker in a goroutine and returns its stop function.
func (w *QueueWorker) Run(ctx context.Context) func() {
	go w.Start(ctx)
	return w.Stop
}
