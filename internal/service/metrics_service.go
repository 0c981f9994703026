package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	entriesIngested *prometheus.CounterVec
	recalculations  *prometheus.CounterVec
	recalcDuration  prometheus.Histogram
	unenrollments   prometheus.Counter
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progress_cache_hits_total",
		Help: "Total progress cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progress_cache_misses_total",
		Help: "Total progress cache misses",
	})

	entriesIngested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lesson_entries_ingested_total",
		Help: "Total lesson outcomes ingested, by status code",
	}, []string{"status"})

	recalculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "progress_recalculations_total",
		Help: "Total progress recalculations, by result",
	}, []string{"result"})

	recalcDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "progress_recalculation_duration_seconds",
		Help:    "Duration of single-student progress recalculations",
		Buckets: prometheus.DefBuckets,
	})

	unenrollments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unenrollments_total",
		Help: "Total unenrollment events processed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, entriesIngested, recalculations, recalcDuration, unenrollments, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		entriesIngested: entriesIngested,
		recalculations:  recalculations,
		recalcDuration:  recalcDuration,
		unenrollments:   unenrollments,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup records a progress cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordEntryIngested counts one ingested outcome by status code.
func (m *MetricsService) RecordEntryIngested(status string) {
	if m == nil {
		return
	}
	m.entriesIngested.WithLabelValues(status).Inc()
}

// RecordRecalculation counts one recalculation and its duration.
func (m *MetricsService) RecordRecalculation(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.recalculations.WithLabelValues(result).Inc()
	m.recalcDuration.Observe(duration.Seconds())
}

// RecordUnenrollment counts one processed unenrollment event.
func (m *MetricsService) RecordUnenrollment() {
	if m == nil {
		return
	}
	m.unenrollments.Inc()
}
