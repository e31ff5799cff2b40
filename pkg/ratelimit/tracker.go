package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	neisQuotaExhausted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neis_quota_exhausted",
		Help: "1 while the daily NEIS traffic quota is exhausted",
	})

	neisQuotaTripsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neis_quota_trips_total",
		Help: "Total number of times the daily quota guard tripped",
	})

	neisQuotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neis_quota_blocks_total",
		Help: "Total number of requests refused locally due to an exhausted quota",
	})
)

// Tracker records quota exhaustion and gates requests.
// With a nil Redis client the state is process-local.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger

	mu    sync.Mutex
	local QuotaState
	now   func() time.Time
}

// NewTracker creates a new quota tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
		now:    time.Now,
	}
}

// GetState retrieves the current quota state.
// Returns a default open state if nothing was recorded.
func (t *Tracker) GetState(ctx context.Context) (*QuotaState, error) {
	if t.redis == nil {
		t.mu.Lock()
		state := t.local
		t.mu.Unlock()
		return &state, nil
	}

	data, err := t.redis.Get(ctx, RedisKeyQuotaState).Bytes()
	if errors.Is(err, redis.Nil) {
		t.logger.Debug().Msg("No quota state in Redis, returning open state")
		return &QuotaState{LastUpdate: t.now()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quota state: %w", err)
	}

	var state QuotaState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse quota state: %w", err)
	}
	return &state, nil
}

// MarkExhausted records that the service refused a request with code for
// quota reasons. The guard stays closed until the next KST midnight.
func (t *Tracker) MarkExhausted(ctx context.Context, code string) error {
	now := t.now()
	state := QuotaState{
		Exhausted:  true,
		Code:       code,
		ResetAt:    NextReset(now),
		LastUpdate: now,
	}

	if t.redis == nil {
		t.mu.Lock()
		t.local = state
		t.mu.Unlock()
	} else {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal quota state: %w", err)
		}
		// The key expires with the window so a stale trip never outlives it.
		if err := t.redis.Set(ctx, RedisKeyQuotaState, data, state.ResetAt.Sub(now)).Err(); err != nil {
			return fmt.Errorf("store quota state in redis: %w", err)
		}
	}

	neisQuotaExhausted.Set(1)
	neisQuotaTripsTotal.Inc()

	t.logger.Error().
		Str("code", code).
		Time("reset_at", state.ResetAt).
		Msg("NEIS daily quota exhausted - requests will be refused until reset")

	return nil
}

// Reset reopens the guard.
func (t *Tracker) Reset(ctx context.Context) error {
	if t.redis == nil {
		t.mu.Lock()
		t.local = QuotaState{LastUpdate: t.now()}
		t.mu.Unlock()
	} else if err := t.redis.Del(ctx, RedisKeyQuotaState).Err(); err != nil {
		return fmt.Errorf("clear quota state: %w", err)
	}

	neisQuotaExhausted.Set(0)
	t.logger.Info().Msg("NEIS quota guard reset")
	return nil
}

// ShouldAllowRequest reports whether a request may be dispatched. When it
// returns false the accompanying state explains why.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, *QuotaState, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("get quota state: %w", err)
	}

	if state.NeedsBlock(t.now()) {
		t.logger.Warn().
			Str("code", state.Code).
			Dur("wait_duration", state.ResetAt.Sub(t.now())).
			Msg("NEIS quota exhausted - refusing request")

		neisQuotaBlocksTotal.Inc()
		return false, state, nil
	}

	if state.Exhausted {
		neisQuotaExhausted.Set(0)
	}

	return true, state, nil
}
