package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"srtrack/internal/providers"
	"srtrack/internal/structures"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const maxBodySize = 8 << 20

const breakerName = "upstream"

type ClientInterface interface {
	// GetJSON fetches path (absolute URL or relative to the base URL) and decodes the body
	// into a generic JSON tree.
	GetJSON(ctx context.Context, path string) (any, error)
}

type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[any]
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	limit := rate.Inf
	if conf.Upstream.RatePerSecond > 0 {
		limit = rate.Limit(conf.Upstream.RatePerSecond)
	}
	burst := conf.Upstream.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:   strings.TrimRight(conf.Upstream.BaseURL, "/"),
		userAgent: conf.Upstream.UserAgent,
		http:      &http.Client{Timeout: conf.Upstream.Timeout},
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
		metrics:   metrics,
	}
	c.cb = newBreaker(conf.Upstream, logger, metrics)
	metrics.SetBreakerState(breakerName, 0)
	return c
}

func newBreaker(conf structures.UpstreamConfig, logger providers.Logger, metrics providers.MetricsProviderInterface) *gobreaker.CircuitBreaker[any] {
	minRequests := conf.BreakerMinRequests
	if minRequests == 0 {
		minRequests = 10
	}
	ratio := conf.BreakerFailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}
	timeout := conf.BreakerTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		// 404 and undecodable bodies mean the host answered; they must not open the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformedPayload)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf(providers.TypeApp, "circuit breaker %s: %s -> %s", name, from, to)
			metrics.SetBreakerState(name, stateToFloat(to))
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) GetJSON(ctx context.Context, path string) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	start := time.Now()
	result, err := c.cb.Execute(func() (any, error) {
		return c.do(ctx, c.resolve(path))
	})
	c.metrics.ObserveUpstreamDuration(time.Since(start))

	switch {
	case err == nil:
		c.metrics.IncUpstreamRequests("success")
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.IncUpstreamRequests("rejected")
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	case errors.Is(err, ErrNotFound):
		c.metrics.IncUpstreamRequests("not_found")
	case errors.Is(err, ErrMalformedPayload):
		c.metrics.IncUpstreamRequests("malformed")
	default:
		c.metrics.IncUpstreamRequests("failure")
	}
	return nil, err
}

func (c *Client) do(ctx context.Context, url string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned %d", ErrSourceUnavailable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, url, err)
	}
	return payload, nil
}
