package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"sae/internal/services"
	"sae/internal/structures"
	"time"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveScanDuration(duration time.Duration)
	IncExportJobs(result string)
	ObserveSegmentDuration(duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	scanDuration    prometheus.Histogram
	exportJobs      *prometheus.CounterVec
	segmentDuration prometheus.Histogram
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveScanDuration(duration time.Duration) {
	m.scanDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncExportJobs(result string) {
	m.exportJobs.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveSegmentDuration(duration time.Duration) {
	m.segmentDuration.Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.ArchiveServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sae_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sae_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sae_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sae_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		scanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sae_scan_duration_seconds",
			Help:    "Duration of archive scans in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		exportJobs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sae_export_jobs_total",
			Help: "Total number of export jobs by result",
		}, []string{"result"}),

		segmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sae_segment_render_duration_seconds",
			Help:    "Duration of segment renders in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sae_entries_total",
		Help: "Number of media entries in the current index",
	}, func() float64 {
		return float64(service.EntryCount())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sae_dates_total",
		Help: "Number of dates in the current index",
	}, func() float64 {
		return float64(len(service.GetDates()))
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sae_users_total",
		Help: "Number of users in the current index",
	}, func() float64 {
		return float64(len(service.GetUsers()))
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObserveScanDuration(_ time.Duration)              {}
func (n *noopMetrics) IncExportJobs(_ string)                           {}
func (n *noopMetrics) ObserveSegmentDuration(_ time.Duration)           {}
