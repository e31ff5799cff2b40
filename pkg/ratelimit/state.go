// Package ratelimit guards the hub's daily traffic quota. Once the service
// reports that a key exhausted its quota, further requests fail fast until
// the quota window resets at midnight Korea Standard Time.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeyQuotaState = "neis:quota:state"
)

// KST is the zone in which the hub's daily quota resets. It has no DST.
var KST = time.FixedZone("KST", 9*60*60)

// QuotaState represents the daily quota state of one API key.
// This state is shared across all client instances via Redis.
type QuotaState struct {
	// Exhausted is set once the service rejected a request for quota reasons.
	Exhausted bool `json:"exhausted"`

	// Code is the result code that tripped the guard.
	Code string `json:"code,omitempty"`

	// ResetAt is when the quota window reopens.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last updated.
	LastUpdate time.Time `json:"last_update"`
}

// NextReset returns the next midnight in KST strictly after now.
func NextReset(now time.Time) time.Time {
	local := now.In(KST)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, KST)
	return midnight.AddDate(0, 0, 1)
}

// IsStale returns true if the state data is older than the given duration.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsBlock reports whether requests must be refused at now.
func (s *QuotaState) NeedsBlock(now time.Time) bool {
	return s.Exhausted && now.Before(s.ResetAt)
}

// TimeUntilReset returns the duration until the quota resets.
// Returns 0 if the reset time has already passed.
func (s *QuotaState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}
