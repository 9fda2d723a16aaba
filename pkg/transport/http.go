package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for transport operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkpager_requests_total",
		Help: "Total page requests by status",
	}, []string{"status"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkpager_request_duration_seconds",
		Help:    "Page request duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkpager_transport_errors_total",
		Help: "Total transport errors by class",
	}, []string{"class"})
)

// Gate decides whether a request to a host may proceed and learns from the
// response headers. *ratelimit.Tracker implements it.
type Gate interface {
	ShouldAllowRequest(ctx context.Context, host string) (bool, error)
	UpdateFromHeaders(ctx context.Context, host string, headers http.Header) error
}

// Config holds the HTTP fetcher configuration.
type Config struct {
	// UserAgent is sent with every request (required)
	UserAgent string

	// Timeout applies to the whole request unless RequestOptions.Timeout is set
	Timeout time.Duration

	// FailOnStatus turns responses with status >= 400 into *Error.
	// When false, any HTTP response is a successful fetch.
	FailOnStatus bool

	// RateLimiter gates requests per host (optional)
	RateLimiter Gate

	// HTTPClient overrides the underlying client (optional)
	HTTPClient *http.Client
}

// DefaultConfig returns a default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// HTTPFetcher fetches locators over HTTP.
type HTTPFetcher struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new HTTP fetcher.
func New(cfg Config) (*HTTPFetcher, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
		}
	}

	return &HTTPFetcher{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "transport").Logger(),
	}, nil
}

// Fetch performs one request for locator.
func (f *HTTPFetcher) Fetch(ctx context.Context, locator string, opts RequestOptions) (*http.Response, error) {
	target, err := url.Parse(locator)
	if err != nil {
		errorsTotal.WithLabelValues(string(ClassClient)).Inc()
		return nil, &Error{Locator: locator, Class: ClassClient, Err: err}
	}
	host := target.Host

	if f.config.RateLimiter != nil {
		allowed, err := f.config.RateLimiter.ShouldAllowRequest(ctx, host)
		if err != nil {
			f.logger.Warn().Err(err).Str("host", host).Msg("Rate limit check failed")
		} else if !allowed {
			f.logger.Warn().Str("locator", locator).Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues("rate_limited").Inc()
			errorsTotal.WithLabelValues(string(ClassRateLimit)).Inc()
			return nil, &Error{Locator: locator, Class: ClassRateLimit, Err: ErrRateLimited}
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		resp, err := f.do(ctx, locator, opts)
		if err != nil || resp == nil {
			cancel()
			return resp, err
		}
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	return f.do(ctx, locator, opts)
}

func (f *HTTPFetcher) do(ctx context.Context, locator string, opts RequestOptions) (*http.Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, locator, nil)
	if err != nil {
		errorsTotal.WithLabelValues(string(ClassClient)).Inc()
		return nil, &Error{Locator: locator, Class: ClassClient, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	for key, values := range opts.Header {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	f.logger.Debug().
		Str("locator", locator).
		Str("method", method).
		Msg("Fetching page")

	startTime := time.Now()
	resp, err := f.httpClient.Do(req)
	requestDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		f.logger.Warn().Err(err).Str("locator", locator).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ClassNetwork)).Inc()
		requestsTotal.WithLabelValues("network_error").Inc()
		return nil, &Error{Locator: locator, Class: ClassNetwork, Err: err}
	}

	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if f.config.RateLimiter != nil {
		if err := f.config.RateLimiter.UpdateFromHeaders(ctx, req.URL.Host, resp.Header); err != nil {
			f.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	if class := classifyStatus(resp.StatusCode); class != "" {
		f.logger.Warn().
			Str("locator", locator).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Page request error")

		if f.config.FailOnStatus {
			errorsTotal.WithLabelValues(string(class)).Inc()
			resp.Body.Close()
			return nil, &Error{Locator: locator, StatusCode: resp.StatusCode, Class: class}
		}
	}

	return resp, nil
}

// cancelOnClose releases a per-request timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
