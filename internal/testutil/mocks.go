package testutil

import (
	"context"
	"fmt"
	"srtrack/internal/providers"
	"srtrack/internal/upstream"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockClient implements upstream.ClientInterface. Responses are keyed by the
// exact path requested; unknown paths answer upstream.ErrNotFound.
type MockClient struct {
	mu        sync.Mutex
	Responses map[string]any
	Errors    map[string]error
	Calls     []string
}

func NewMockClient() *MockClient {
	return &MockClient{Responses: make(map[string]any), Errors: make(map[string]error)}
}

func (m *MockClient) On(path string, payload any) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[path] = payload
	delete(m.Errors, path)
	return m
}

func (m *MockClient) Fail(path string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[path] = err
	delete(m.Responses, path)
	return m
}

func (m *MockClient) GetJSON(ctx context.Context, path string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[path]; ok {
		return nil, err
	}
	if payload, ok := m.Responses[path]; ok {
		return payload, nil
	}
	return nil, fmt.Errorf("%w: %s", upstream.ErrNotFound, path)
}

// CallCount returns how many times path was requested.
func (m *MockClient) CallCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == path {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
	TTLs map[string]time.Duration
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte), TTLs: make(map[string]time.Duration)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
	m.TTLs[key] = ttl
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	delete(m.TTLs, key)
}

// MockCompressor implements providers.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and keeps the
// counters tests assert on.
type MockMetrics struct {
	mu                sync.Mutex
	Upstream          map[string]int
	FallbackExhausted map[string]int
	LogEntries        map[string]int
	QueueDropped      map[string]int
	Connected         map[string]bool
	BreakerStates     []float64
	Ticks             int
	Sessions          providers.SessionCounter
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Upstream:          make(map[string]int),
		FallbackExhausted: make(map[string]int),
		LogEntries:        make(map[string]int),
		QueueDropped:      make(map[string]int),
		Connected:         make(map[string]bool),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveUpstreamDuration(_ time.Duration)          {}

func (m *MockMetrics) IncUpstreamRequests(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Upstream[outcome]++
}

func (m *MockMetrics) SetBreakerState(_ string, state float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BreakerStates = append(m.BreakerStates, state)
}

func (m *MockMetrics) IncFallbackExhausted(resolver string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackExhausted[resolver]++
}

func (m *MockMetrics) SetLogEntries(roomID string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LogEntries[roomID] = count
}

func (m *MockMetrics) DeleteLogEntries(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.LogEntries, roomID)
}

func (m *MockMetrics) IncQueueDropped(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueDropped[roomID]++
}

func (m *MockMetrics) SetChannelConnected(roomID string, connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connected[roomID] = connected
}

func (m *MockMetrics) ObserveTickDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ticks++
}

func (m *MockMetrics) WatchSessions(sessions providers.SessionCounter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions = sessions
}

// Snapshot helpers guard the maps for assertions made while goroutines run.

func (m *MockMetrics) UpstreamCount(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Upstream[outcome]
}

func (m *MockMetrics) IsConnected(roomID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Connected[roomID]
}

func (m *MockMetrics) DroppedCount(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueueDropped[roomID]
}
