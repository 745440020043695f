package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ipo:rl:"

var _ Limiter = (*RedisLimiter)(nil)

// RedisLimiter shares counters between server instances.
type RedisLimiter struct {
	redis  redis.UniversalClient
	limit  int
	period time.Duration
}

func NewRedisLimiter(client redis.UniversalClient, limit int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{redis: client, limit: limit, period: period}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	key = redisKeyPrefix + key

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	// The first hit opens the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	ttl, err := l.redis.PTTL(ctx, key).Result()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ttl < 0 {
		// Lost the expiry, e.g. a crash between INCR and EXPIRE.
		if err := l.redis.Expire(ctx, key, l.period).Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		ttl = l.period
	}
	return newResult(count, l.limit, ttl), nil
}
