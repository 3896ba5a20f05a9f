package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/educonnect/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// RateLimitError is returned when a key has used up its attempts.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter counts attempts per key in redis. A nil client disables limiting.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(action, subject string) string {
	return fmt.Sprintf("rate_limit:%s:%s", action, subject)
}

// Check fails once subject has max or more recorded attempts for action.
func (l *Limiter) Check(ctx context.Context, action, subject string, max int64) error {
	if l == nil || l.rdb == nil || max <= 0 {
		return nil
	}

	k := key(action, subject)
	count, err := l.rdb.Get(ctx, k).Int64()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	if count < max {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil {
		ttl = 0
	}
	return &RateLimitError{
		Message:    fmt.Sprintf("too many attempts, try again in %.0f seconds", ttl.Seconds()),
		RetryAfter: ttl,
	}
}

// Hit records one attempt; the window starts with the first attempt.
func (l *Limiter) Hit(ctx context.Context, action, subject string, window time.Duration) error {
	if l == nil || l.rdb == nil {
		return nil
	}

	k := key(action, subject)
	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("failed to record attempt in redis: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, k, window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return nil
}

func (l *Limiter) Clear(ctx context.Context, action, subject string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(action, subject)).Err()
}
