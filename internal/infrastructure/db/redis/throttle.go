package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultMaxFailures = 10
	defaultWindow      = 15 * time.Minute
)

// LoginThrottle counts failed login attempts per credential alias in Redis.
// Key format: login_fail:<alias>. The counter expires after the window, so a
// quiet alias is forgiven automatically. Callers treat errors as advisory.
type LoginThrottle struct {
	client      *redis.Client
	maxFailures int64
	window      time.Duration
}

// NewLoginThrottle creates a throttle allowing maxFailures failed attempts
// per window. Non-positive arguments fall back to defaults.
func NewLoginThrottle(client *redis.Client, maxFailures int, window time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = defaultMaxFailures
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginThrottle{client: client, maxFailures: int64(maxFailures), window: window}
}

// Blocked reports whether the alias has exhausted its failure budget.
func (t *LoginThrottle) Blocked(ctx context.Context, alias string) (bool, error) {
	n, err := t.client.Get(ctx, t.key(alias)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check: %w", err)
	}
	return n >= t.maxFailures, nil
}

// RecordFailure counts one failed attempt. The expiry is refreshed on each
// failure, so the window is measured from the most recent attempt.
func (t *LoginThrottle) RecordFailure(ctx context.Context, alias string) error {
	key := t.key(alias)
	pipe := t.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, t.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset clears the failure count after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, alias string) error {
	if err := t.client.Del(ctx, t.key(alias)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(alias string) string {
	return "login_fail:" + alias
}
