// Package metrics provides Prometheus metrics for the canteen recommendation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Recommendation engine
	recommendations    *prometheus.CounterVec
	fallbacks          *prometheus.CounterVec
	scoringCalls       *prometheus.CounterVec
	scoringLatency     prometheus.Histogram
	breakerState       prometheus.Gauge
	breakerTransitions *prometheus.CounterVec
	trendingRequests   prometheus.Counter
	trendingLatency    prometheus.Histogram
	trendingScanned    prometheus.Counter

	// Orders
	ordersPlaced    prometheus.Counter
	ordersDuplicate prometheus.Counter
	ordersRejected  *prometheus.CounterVec
	ordersStored    prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Store
	storeQueryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "canteen",
		subsystem:        "engine",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.recommendations = auto.NewCounterVec(
		m.counter("recommendations_total", "Recommendation results served, by the path that produced them"),
		[]string{"source"},
	)
	m.fallbacks = auto.NewCounterVec(
		m.counter("fallbacks_total", "Scoring failures recovered by the fallback ranker, by failure kind"),
		[]string{"reason"},
	)
	m.scoringCalls = auto.NewCounterVec(
		m.counter("scoring_calls_total", "Calls to the external scoring service, by outcome"),
		[]string{"outcome"},
	)
	m.scoringLatency = auto.NewHistogram(
		m.histogram("scoring_latency_milliseconds", "External scoring call latency in milliseconds", nil),
	)
	m.breakerState = auto.NewGauge(
		m.gauge("scoring_breaker_state", "Scoring circuit breaker state (0 closed, 1 half-open, 2 open)"),
	)
	m.breakerTransitions = auto.NewCounterVec(
		m.counter("scoring_breaker_transitions_total", "Scoring circuit breaker state changes"),
		[]string{"from", "to"},
	)
	m.trendingRequests = auto.NewCounter(
		m.counter("trending_requests_total", "Trending rankings computed"),
	)
	m.trendingLatency = auto.NewHistogram(
		m.histogram("trending_latency_milliseconds", "Trending aggregation latency in milliseconds", nil),
	)
	m.trendingScanned = auto.NewCounter(
		m.counter("trending_orders_scanned_total", "Orders scanned by trending aggregation"),
	)

	m.ordersPlaced = auto.NewCounter(
		m.counter("orders_placed_total", "Orders accepted for placement"),
	)
	m.ordersDuplicate = auto.NewCounter(
		m.counter("orders_duplicate_total", "Orders dropped as duplicates of an earlier submission"),
	)
	m.ordersRejected = auto.NewCounterVec(
		m.counter("orders_rejected_total", "Orders rejected before enqueue, by reason"),
		[]string{"reason"},
	)
	m.ordersStored = auto.NewCounter(
		m.counter("orders_stored_total", "Orders appended to the order store by workers"),
	)

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Current size of the order queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum order queue capacity"))
	m.queueEnqueueRate = auto.NewCounter(m.counter("queue_enqueue_total", "Orders enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counter("queue_dequeue_total", "Orders dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counter("queue_enqueue_errors_total", "Enqueue attempts rejected"))

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Current number of order workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogram("worker_processing_latency_milliseconds", "Time to persist one order in milliseconds", nil),
	)
	m.workerErrorRate = auto.NewCounter(m.counter("worker_errors_total", "Orders the workers failed to persist"))

	m.storeQueryLatency = auto.NewHistogramVec(
		m.histogram("store_query_latency_milliseconds", "Store operation latency in milliseconds", nil),
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counter("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordRecommendation counts a served recommendation result.
func RecordRecommendation(source string) {
	globalManager.recommendations.WithLabelValues(source).Inc()
}

// RecordFallback counts a scoring failure recovered by fallback.
func RecordFallback(reason string) {
	globalManager.fallbacks.WithLabelValues(reason).Inc()
}

// RecordScoringCall records the outcome and latency of one scoring call.
func RecordScoringCall(outcome string, latencyMs float64) {
	globalManager.scoringCalls.WithLabelValues(outcome).Inc()
	globalManager.scoringLatency.Observe(latencyMs)
}

// UpdateBreakerState sets the circuit breaker state gauge.
func UpdateBreakerState(state int) {
	globalManager.breakerState.Set(float64(state))
}

// RecordBreakerTransition counts a circuit breaker state change.
func RecordBreakerTransition(from, to string) {
	globalManager.breakerTransitions.WithLabelValues(from, to).Inc()
}

// RecordTrending records one trending computation.
func RecordTrending(ordersScanned int, latencyMs float64) {
	globalManager.trendingRequests.Inc()
	globalManager.trendingScanned.Add(float64(ordersScanned))
	globalManager.trendingLatency.Observe(latencyMs)
}

// RecordOrderPlaced increments the accepted orders counter.
func RecordOrderPlaced() {
	globalManager.ordersPlaced.Inc()
}

// RecordOrderDuplicate increments the duplicate orders counter.
func RecordOrderDuplicate() {
	globalManager.ordersDuplicate.Inc()
}

// RecordOrderRejected counts an order rejected before enqueue.
func RecordOrderRejected(reason string) {
	globalManager.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordOrderStored increments the persisted orders counter.
func RecordOrderStored() {
	globalManager.ordersStored.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordStoreQueryLatency records the latency of a store operation.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
