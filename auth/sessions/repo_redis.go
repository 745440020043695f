package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ipo:sess:"

var _ Repo = (*RedisRepo)(nil)

// RedisRepo stores each session as JSON with a TTL matching its expiry.
type RedisRepo struct {
	redis   redis.UniversalClient
	nowTime func() time.Time
}

func NewRedisRepo(client redis.UniversalClient) *RedisRepo {
	return &RedisRepo{redis: client, nowTime: time.Now}
}

func (r *RedisRepo) Upsert(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return errors.New("session id is required")
	}
	ttl := session.ExpiresAt.Sub(r.nowTime())
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	if err := r.redis.Set(ctx, redisKeyPrefix+session.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := r.redis.Get(ctx, redisKeyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("[RedisRepo.Get] decode: %w", err)
	}
	if session.Expired(r.nowTime()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	n, err := r.redis.Del(ctx, redisKeyPrefix+sessionID).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
