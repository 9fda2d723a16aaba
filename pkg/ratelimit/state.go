// Package ratelimit gates page requests using the X-RateLimit-Remaining and
// X-RateLimit-Reset headers advertised by Link-paginated APIs. State is kept
// per host in Redis so that concurrent traversals and processes share it.
package ratelimit

import (
	"fmt"
	"time"
)

// Redis key layout for per-host state: linkpager:rate_limit:<host>:<field>.
const (
	redisKeyPrefix = "linkpager:rate_limit"

	fieldRemaining  = "remaining"
	fieldReset      = "reset_timestamp"
	fieldLastUpdate = "last_update"
)

// redisKey returns the Redis key for one state field of host.
func redisKey(host, field string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, host, field)
}

// Thresholds for rate limit decisions.
const (
	// ThresholdCritical blocks all requests when remaining falls below this value.
	ThresholdCritical = 5

	// ThresholdWarning applies throttling when remaining falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation.
	ThresholdHealthy = 50
)

// State represents the rate limit budget of one host.
type State struct {
	// Host the budget applies to.
	Host string `json:"host"`

	// Remaining is the number of requests left in the current window.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last updated from response headers.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
// A window that has already reset never blocks.
func (s *State) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be throttled.
func (s *State) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && s.TimeUntilReset() > 0 && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on current Remaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.Remaining >= ThresholdHealthy
}
