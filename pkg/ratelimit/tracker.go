package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "linkpager_rate_limit_remaining",
		Help: "Requests remaining in the current rate limit window by host",
	}, []string{"host"})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkpager_rate_limit_blocks_total",
		Help: "Total number of requests blocked due to critical rate limit",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linkpager_rate_limit_throttles_total",
		Help: "Total number of requests throttled due to warning rate limit",
	})
)

// Headers names the response headers the tracker reads.
type Headers struct {
	Remaining string
	Reset     string

	// ResetIsEpoch is true when Reset carries a Unix timestamp,
	// false when it carries seconds until reset.
	ResetIsEpoch bool
}

// DefaultHeaders returns the X-RateLimit-* convention with an epoch reset.
func DefaultHeaders() Headers {
	return Headers{
		Remaining:    "X-RateLimit-Remaining",
		Reset:        "X-RateLimit-Reset",
		ResetIsEpoch: true,
	}
}

// Tracker monitors per-host rate limits and gates requests.
type Tracker struct {
	redis    *redis.Client
	logger   zerolog.Logger
	headers  Headers
	throttle time.Duration
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:    redisClient,
		logger:   logger,
		headers:  DefaultHeaders(),
		throttle: time.Second,
	}
}

// WithHeaders sets the header names read by UpdateFromHeaders.
func (t *Tracker) WithHeaders(h Headers) *Tracker {
	t.headers = h
	return t
}

// WithThrottle sets how long a request waits in the warning state.
func (t *Tracker) WithThrottle(d time.Duration) *Tracker {
	t.throttle = d
	return t
}

// GetState retrieves the current state of host from Redis.
// Returns a default healthy state if no data exists.
func (t *Tracker) GetState(ctx context.Context, host string) (*State, error) {
	remaining, err := t.redis.Get(ctx, redisKey(host, fieldRemaining)).Int()
	if errors.Is(err, redis.Nil) {
		t.logger.Debug().Str("host", host).Msg("No rate limit state in Redis, returning default healthy state")
		return &State{
			Host:       host,
			Remaining:  ThresholdHealthy * 2,
			ResetAt:    time.Now().Add(60 * time.Second),
			LastUpdate: time.Now(),
			IsHealthy:  true,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get remaining: %w", err)
	}

	resetTimestamp, err := t.redis.Get(ctx, redisKey(host, fieldReset)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get reset timestamp: %w", err)
	}

	lastUpdateStr, err := t.redis.Get(ctx, redisKey(host, fieldLastUpdate)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get last update: %w", err)
	}

	var lastUpdate time.Time
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, fmt.Errorf("parse last update: %w", err)
		}
	}

	state := &State{
		Host:       host,
		Remaining:  remaining,
		ResetAt:    time.Unix(resetTimestamp, 0),
		LastUpdate: lastUpdate,
	}
	state.UpdateHealth()

	return state, nil
}

// ParseHeaders extracts a State from response headers.
// Returns nil, nil when the remaining header is absent.
func (t *Tracker) ParseHeaders(host string, headers http.Header, now time.Time) (*State, error) {
	remainStr := headers.Get(t.headers.Remaining)
	if remainStr == "" {
		return nil, nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", t.headers.Remaining, err)
	}

	resetStr := headers.Get(t.headers.Reset)
	if resetStr == "" {
		return nil, fmt.Errorf("%s header missing", t.headers.Reset)
	}

	reset, err := strconv.ParseInt(resetStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s header: %w", t.headers.Reset, err)
	}

	resetAt := now.Add(time.Duration(reset) * time.Second)
	if t.headers.ResetIsEpoch {
		resetAt = time.Unix(reset, 0)
	}

	state := &State{
		Host:       host,
		Remaining:  remain,
		ResetAt:    resetAt,
		LastUpdate: now,
	}
	state.UpdateHealth()
	return state, nil
}

// UpdateFromHeaders parses rate limit headers and stores the state of host in Redis.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, host string, headers http.Header) error {
	state, err := t.ParseHeaders(host, headers, time.Now())
	if err != nil || state == nil {
		return err
	}

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	// Keys expire shortly after the window resets.
	ttl := state.TimeUntilReset() + time.Minute

	pipe := t.redis.Pipeline()
	pipe.Set(ctx, redisKey(host, fieldRemaining), state.Remaining, ttl)
	pipe.Set(ctx, redisKey(host, fieldReset), state.ResetAt.Unix(), ttl)
	pipe.Set(ctx, redisKey(host, fieldLastUpdate), lastUpdateJSON, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	rateLimitRemaining.WithLabelValues(host).Set(float64(state.Remaining))

	switch {
	case state.NeedsCriticalBlock():
		t.logger.Error().
			Str("host", host).
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Rate limit CRITICAL - requests will be blocked")
	case state.NeedsThrottling():
		t.logger.Warn().
			Str("host", host).
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Rate limit WARNING - requests will be throttled")
	default:
		t.logger.Debug().
			Str("host", host).
			Int("remaining", state.Remaining).
			Bool("is_healthy", state.IsHealthy).
			Msg("Rate limit state updated")
	}

	return nil
}

// ShouldAllowRequest checks whether a request to host may proceed.
// Returns false in the critical state; waits for the throttle duration in the
// warning state.
func (t *Tracker) ShouldAllowRequest(ctx context.Context, host string) (bool, error) {
	state, err := t.GetState(ctx, host)
	if err != nil {
		return false, fmt.Errorf("get rate limit state: %w", err)
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Str("host", host).
			Int("remaining", state.Remaining).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Rate limit critical - blocking request")

		rateLimitBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsThrottling() {
		t.logger.Warn().
			Str("host", host).
			Int("remaining", state.Remaining).
			Msg("Rate limit warning - throttling request")

		rateLimitThrottlesTotal.Inc()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(t.throttle):
		}
	}

	return true, nil
}
