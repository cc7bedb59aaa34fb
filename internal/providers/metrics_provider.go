package providers

import (
	"srtrack/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncUpstreamRequests(outcome string)
	ObserveUpstreamDuration(duration time.Duration)
	SetBreakerState(name string, state float64)
	IncFallbackExhausted(resolver string)
	SetLogEntries(roomID string, count int)
	DeleteLogEntries(roomID string)
	IncQueueDropped(roomID string)
	SetChannelConnected(roomID string, connected bool)
	ObserveTickDuration(duration time.Duration)
	WatchSessions(sessions SessionCounter)
}

// SessionCounter is satisfied by the tracking service.
type SessionCounter interface {
	SessionCount() int
}

type MetricsProvider struct {
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	upstreamRequests  *prometheus.CounterVec
	upstreamDuration  prometheus.Histogram
	breakerState      *prometheus.GaugeVec
	fallbackExhausted *prometheus.CounterVec
	logEntries        *prometheus.GaugeVec
	queueDropped      *prometheus.CounterVec
	channelConnected  *prometheus.GaugeVec
	tickDuration      prometheus.Histogram
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

func (m *MetricsProvider) IncUpstreamRequests(outcome string) {
	m.upstreamRequests.WithLabelValues(outcome).Inc()
}

func (m *MetricsProvider) ObserveUpstreamDuration(duration time.Duration) {
	m.upstreamDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetBreakerState(name string, state float64) {
	m.breakerState.WithLabelValues(name).Set(state)
}

func (m *MetricsProvider) IncFallbackExhausted(resolver string) {
	m.fallbackExhausted.WithLabelValues(resolver).Inc()
}

func (m *MetricsProvider) SetLogEntries(roomID string, count int) {
	m.logEntries.WithLabelValues(roomID).Set(float64(count))
}

func (m *MetricsProvider) DeleteLogEntries(roomID string) {
	m.logEntries.DeleteLabelValues(roomID)
}

func (m *MetricsProvider) IncQueueDropped(roomID string) {
	m.queueDropped.WithLabelValues(roomID).Inc()
}

func (m *MetricsProvider) SetChannelConnected(roomID string, connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	m.channelConnected.WithLabelValues(roomID).Set(v)
}

func (m *MetricsProvider) ObserveTickDuration(duration time.Duration) {
	m.tickDuration.Observe(duration.Seconds())
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

// WatchSessions exposes the number of active tracking sessions as a gauge.
func (m *MetricsProvider) WatchSessions(sessions SessionCounter) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "srtrack_sessions_active",
		Help: "Number of active tracking sessions",
	}, func() float64 {
		return float64(sessions.SessionCount())
	})
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "srtrack_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "srtrack_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "srtrack_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "srtrack_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		upstreamRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "srtrack_upstream_requests_total",
			Help: "Upstream API requests by outcome",
		}, []string{"outcome"}),

		upstreamDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "srtrack_upstream_duration_seconds",
			Help:    "Upstream API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		breakerState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtrack_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),

		fallbackExhausted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "srtrack_fallback_exhausted_total",
			Help: "Resolutions where every candidate source failed",
		}, []string{"resolver"}),

		logEntries: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtrack_log_entries",
			Help: "Number of entries held in a room log",
		}, []string{"room"}),

		queueDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "srtrack_queue_dropped_total",
			Help: "Push events dropped because the room queue was full",
		}, []string{"room"}),

		channelConnected: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "srtrack_channel_connected",
			Help: "Whether the push channel of a room is connected",
		}, []string{"room"}),

		tickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "srtrack_tick_duration_seconds",
			Help:    "Duration of one tracking tick over all sessions",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20},
		}),
	}

	return m
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncUpstreamRequests(_ string)                     {}
func (n *noopMetrics) ObserveUpstreamDuration(_ time.Duration)          {}
func (n *noopMetrics) SetBreakerState(_ string, _ float64)              {}
func (n *noopMetrics) IncFallbackExhausted(_ string)                    {}
func (n *noopMetrics) SetLogEntries(_ string, _ int)                    {}
func (n *noopMetrics) DeleteLogEntries(_ string)                        {}
func (n *noopMetrics) IncQueueDropped(_ string)                         {}
func (n *noopMetrics) SetChannelConnected(_ string, _ bool)             {}
func (n *noopMetrics) ObserveTickDuration(_ time.Duration)              {}
func (n *noopMetrics) WatchSessions(_ SessionCounter)                   {}
