package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assignment outcomes recorded by ObserveAssignment.
const (
	OutcomeAssigned = "assigned"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
	OutcomeRemoved  = "removed"
)

// MetricsService encapsulates Prometheus instrumentation.
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

	assignments         *prometheus.CounterVec
	completions         prometheus.Counter
	propagatedStudents  prometheus.Counter
	propagationFailures prometheus.Counter
	reconcileRuns       *prometheus.CounterVec
	reconciledStudents  prometheus.Counter
	mailDeliveries      *prometheus.CounterVec
	importedRows        *prometheus.CounterVec

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
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
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
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

	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "internship_assignments_total",
		Help: "Student assignment attempts by outcome",
	}, []string{"outcome"})

	completions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "internship_completions_total",
		Help: "Internships marked complete",
	})

	propagatedStudents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "internship_students_propagated_total",
		Help: "Students whose didInternship flag was set by completion",
	})

	propagationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "internship_propagation_failures_total",
		Help: "Completions whose student propagation failed",
	})

	reconcileRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "internship_reconcile_runs_total",
		Help: "Reconciliation runs by result",
	}, []string{"result"})

	reconciledStudents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "internship_reconciled_students_total",
		Help: "Students repaired by reconciliation",
	})

	mailDeliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mail_deliveries_total",
		Help: "Outbound mail deliveries by status",
	}, []string{"status"})

	importedRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "student_import_rows_total",
		Help: "Bulk import rows by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		assignments, completions, propagatedStudents, propagationFailures, reconcileRuns, reconciledStudents, mailDeliveries,
		importedRows, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheHitRatio:       cacheHitRatio,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		assignments:         assignments,
		completions:         completions,
		propagatedStudents:  propagatedStudents,
		propagationFailures: propagationFailures,
		reconcileRuns:       reconcileRuns,
		reconciledStudents:  reconciledStudents,
		mailDeliveries:      mailDeliveries,
		importedRows:        importedRows,
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

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
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

// ObserveAssignment counts a student assignment attempt.
func (m *MetricsService) ObserveAssignment(outcome string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(outcome).Inc()
}

// ObserveCompletion records a completion and how many students it flagged.
func (m *MetricsService) ObserveCompletion(studentsUpdated int64, propagationErr error) {
	if m == nil {
		return
	}
	m.completions.Inc()
	if propagationErr != nil {
		m.propagationFailures.Inc()
		return
	}
	m.propagatedStudents.Add(float64(studentsUpdated))
}

// ObserveReconcile records a reconciliation run.
func (m *MetricsService) ObserveReconcile(repaired int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.reconcileRuns.WithLabelValues("error").Inc()
		return
	}
	m.reconcileRuns.WithLabelValues("ok").Inc()
	m.reconciledStudents.Add(float64(repaired))
}

// ObserveMail counts a mail delivery attempt.
func (m *MetricsService) ObserveMail(err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.mailDeliveries.WithLabelValues(status).Inc()
}

// ObserveImport counts imported and skipped bulk import rows.
func (m *MetricsService) ObserveImport(imported, skipped int) {
	if m == nil {
		return
	}
	m.importedRows.WithLabelValues("imported").Add(float64(imported))
	m.importedRows.WithLabelValues("skipped").Add(float64(skipped))
}
