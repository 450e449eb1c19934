package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/gym-ops-api/internal/models"
)

// MetricsService owns the Prometheus registry for HTTP, cache and domain instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	opDuration      *prometheus.HistogramVec
	ledgerEntries   *prometheus.CounterVec
	ledgerCents     *prometheus.CounterVec
	enrollments     *prometheus.CounterVec
	classAdmissions *prometheus.CounterVec
	rentals         *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	opCount              uint64
	opFailures           uint64
}

// NewMetricsService registers all collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gym_operation_duration_seconds",
		Help:    "Duration of domain engine operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "result"})

	ledgerEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_ledger_entries_total",
		Help: "Ledger transactions recorded, by type",
	}, []string{"type"})

	ledgerCents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_ledger_amount_cents_total",
		Help: "Absolute amount moved through the ledger in cents, by type",
	}, []string{"type"})

	enrollments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_enrollment_attempts_total",
		Help: "Class enrollment attempts, by outcome",
	}, []string{"outcome"})

	classAdmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_class_admissions_total",
		Help: "Class creation attempts, by result",
	}, []string{"result"})

	rentals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_rental_operations_total",
		Help: "Rental checkouts and returns, by operation and result",
	}, []string{"operation", "result"})

	registry.MustRegister(
		requestDuration, requestTotal,
		cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		opDuration, ledgerEntries, ledgerCents, enrollments, classAdmissions, rentals,
		collectors.NewGoCollector(),
	)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		opDuration:      opDuration,
		ledgerEntries:   ledgerEntries,
		ledgerCents:     ledgerCents,
		enrollments:     enrollments,
		classAdmissions: classAdmissions,
		rentals:         rentals,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveOperation times one engine operation. A nil err counts as success.
func (m *MetricsService) ObserveOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = errorCode(err)
		atomic.AddUint64(&m.opFailures, 1)
	}
	m.opDuration.WithLabelValues(operation, result).Observe(time.Since(started).Seconds())
	atomic.AddUint64(&m.opCount, 1)
}

// RecordLedgerEntry counts a committed transaction.
func (m *MetricsService) RecordLedgerEntry(txType models.TransactionType, amountCents int64) {
	if m == nil {
		return
	}
	if amountCents < 0 {
		amountCents = -amountCents
	}
	m.ledgerEntries.WithLabelValues(string(txType)).Inc()
	m.ledgerCents.WithLabelValues(string(txType)).Add(float64(amountCents))
}

// RecordEnrollment counts one enrollment attempt.
func (m *MetricsService) RecordEnrollment(outcome models.EnrollOutcome) {
	if m == nil {
		return
	}
	m.enrollments.WithLabelValues(string(outcome)).Inc()
}

// RecordClassAdmission counts a class creation attempt ("created", "conflict", ...).
func (m *MetricsService) RecordClassAdmission(result string) {
	if m == nil {
		return
	}
	m.classAdmissions.WithLabelValues(result).Inc()
}

// RecordRental counts a checkout or return.
func (m *MetricsService) RecordRental(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = errorCode(err)
	}
	m.rentals.WithLabelValues(operation, result).Inc()
}

// Snapshot returns aggregated metrics for the health endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		OperationsTotal:          atomic.LoadUint64(&m.opCount),
		OperationFailures:        atomic.LoadUint64(&m.opFailures),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
