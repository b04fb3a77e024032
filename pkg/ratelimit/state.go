// Package ratelimit tracks upstream throttling signals of the character API
// and gates outgoing requests. It reads the X-RateLimit-Remaining and
// X-RateLimit-Reset headers when present and honours Retry-After on 429
// answers.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRemaining      = "characters:rate_limit:remaining"
	RedisKeyResetTimestamp = "characters:rate_limit:reset_timestamp"
	RedisKeyBlockedUntil   = "characters:rate_limit:blocked_until"
	RedisKeyLastUpdate     = "characters:rate_limit:last_update"
)

// Thresholds for rate limit decisions.
const (
	// RemainingThresholdCritical blocks requests when fewer requests remain
	// in the current window.
	RemainingThresholdCritical = 1

	// RemainingThresholdWarning throttles requests below this value.
	RemainingThresholdWarning = 10

	// RemainingThresholdHealthy marks the state healthy at or above this value.
	RemainingThresholdHealthy = 50

	// DefaultRemaining is assumed until the API reports a real value.
	DefaultRemaining = 100
)

// RateLimitState is the last known throttling state of the API.
type RateLimitState struct {
	// Remaining is the number of requests left in the current window
	// (X-RateLimit-Remaining).
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets (X-RateLimit-Reset, seconds).
	ResetAt time.Time `json:"reset_at"`

	// BlockedUntil is set from Retry-After after a 429 answer.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when this state was last refreshed.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when Remaining >= RemainingThresholdHealthy and no
	// Retry-After block is active.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// IsBlocked reports whether a Retry-After block is still active.
func (s *RateLimitState) IsBlocked() bool {
	return time.Now().Before(s.BlockedUntil)
}

// NeedsCriticalBlock returns true if requests must not be sent: either a
// Retry-After block is active or the window is exhausted and has not reset.
func (s *RateLimitState) NeedsCriticalBlock() bool {
	if s.IsBlocked() {
		return true
	}
	return s.Remaining < RemainingThresholdCritical && s.TimeUntilReset() > 0
}

// NeedsThrottling returns true if requests should be slowed down. A window
// that has already reset never throttles.
func (s *RateLimitState) NeedsThrottling() bool {
	if s.NeedsCriticalBlock() || s.TimeUntilReset() == 0 {
		return false
	}
	return s.Remaining < RemainingThresholdWarning
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// WaitDuration returns how long a blocked caller has to wait.
func (s *RateLimitState) WaitDuration() time.Duration {
	if wait := time.Until(s.BlockedUntil); wait > 0 {
		return wait
	}
	return s.TimeUntilReset()
}

// UpdateHealth updates the IsHealthy field.
func (s *RateLimitState) UpdateHealth() {
	s.IsHealthy = s.Remaining >= RemainingThresholdHealthy && !s.IsBlocked()
}

func defaultState() *RateLimitState {
	return &RateLimitState{
		Remaining:  DefaultRemaining,
		ResetAt:    time.Now().Add(60 * time.Second),
		LastUpdate: time.Now(),
		IsHealthy:  true,
	}
}
