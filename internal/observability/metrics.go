package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpDurationHistogram   *prometheus.HistogramVec
	ordersPlacedCounter     *prometheus.CounterVec
	fundDecisionCounter     *prometheus.CounterVec
	pendingOrdersGauge      prometheus.Gauge
	pendingFundGauge        prometheus.Gauge
	idempotencyCounter      *prometheus.CounterVec
	eventsPublishedCounter  *prometheus.CounterVec
	workerRunCounter        *prometheus.CounterVec
	integrityFindingCounter *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		ordersPlacedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders accepted into the ledger",
		}, []string{"platform"})

		fundDecisionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fund_request_decisions_total",
			Help: "Fund transfer request decisions",
		}, []string{"decision"})

		pendingOrdersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orders_pending",
			Help: "Current number of orders still pending",
		})

		pendingFundGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fund_requests_pending",
			Help: "Current number of undecided fund transfer requests",
		})

		idempotencyCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idempotency_events_total",
			Help: "Idempotency middleware outcomes",
		}, []string{"outcome"})

		eventsPublishedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_events_published_total",
			Help: "Events published on the admin notification bus",
		}, []string{"type"})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		integrityFindingCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "integrity_findings_total",
			Help: "Ledger integrity checker findings",
		}, []string{"kind"})

		prometheus.MustRegister(
			httpDurationHistogram,
			ordersPlacedCounter,
			fundDecisionCounter,
			pendingOrdersGauge,
			pendingFundGauge,
			idempotencyCounter,
			eventsPublishedCounter,
			workerRunCounter,
			integrityFindingCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementOrderPlaced(platform string) {
	if ordersPlacedCounter == nil {
		return
	}
	ordersPlacedCounter.WithLabelValues(platform).Inc()
}

func IncrementFundDecision(decision string) {
	if fundDecisionCounter == nil {
		return
	}
	fundDecisionCounter.WithLabelValues(decision).Inc()
}

func SetPendingOrders(count int64) {
	if pendingOrdersGauge == nil {
		return
	}
	pendingOrdersGauge.Set(float64(count))
}

func SetPendingFundRequests(count int64) {
	if pendingFundGauge == nil {
		return
	}
	pendingFundGauge.Set(float64(count))
}

func IncrementIdempotencyEvent(outcome string) {
	if idempotencyCounter == nil {
		return
	}
	idempotencyCounter.WithLabelValues(outcome).Inc()
}

func IncrementEventPublished(eventType string) {
	if eventsPublishedCounter == nil {
		return
	}
	eventsPublishedCounter.WithLabelValues(eventType).Inc()
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}

func IncrementIntegrityFinding(kind string) {
	if integrityFindingCounter == nil {
		return
	}
	integrityFindingCounter.WithLabelValues(kind).Inc()
}
