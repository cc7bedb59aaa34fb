package providers

import (
	"srtrack/internal/structures"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type fixedSessions int

func (f fixedSessions) SessionCount() int { return int(f) }

func useTestRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prometheus.NewRegistry()
		prometheus.DefaultGatherer = prometheus.DefaultRegisterer.(prometheus.Gatherer)
	})
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.IncFallbackExhausted("ranking")
	m.SetChannelConnected("1", true)
	m.WatchSessions(fixedSessions(2))
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf)
	_, ok := m.(*MetricsProvider)
	assert.True(t, ok, "should return MetricsProvider when enabled")
}

func TestMetricsProvider_RecordsAndGathers(t *testing.T) {
	useTestRegistry(t)

	m := NewMetricsProvider(&structures.Config{Metrics: structures.MetricsConfig{Enabled: true}})
	m.WatchSessions(fixedSessions(3))

	m.IncRequestsTotal("/snapshot", 200)
	m.ObserveRequestDuration("/snapshot", 5*time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.IncUpstreamRequests("success")
	m.ObserveUpstreamDuration(20 * time.Millisecond)
	m.SetBreakerState("upstream", 2)
	m.IncFallbackExhausted("ranking")
	m.SetLogEntries("1001", 42)
	m.DeleteLogEntries("1001")
	m.IncQueueDropped("1001")
	m.SetChannelConnected("1001", false)
	m.ObserveTickDuration(time.Second)

	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["srtrack_sessions_active"])
	assert.True(t, names["srtrack_fallback_exhausted_total"])
	assert.True(t, names["srtrack_circuit_breaker_state"])
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
