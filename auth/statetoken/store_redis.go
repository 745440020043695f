package statetoken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ipo:state:"

var _ Store = (*RedisStore)(nil)

// RedisStore shares tokens between server instances. The key TTL does the
// sweeping; GETDEL gives single use across processes.
type RedisStore struct {
	redis redis.UniversalClient
	settings
}

func NewRedisStore(client redis.UniversalClient, opts ...Option) *RedisStore {
	return &RedisStore{
		redis:    client,
		settings: newSettings(opts...),
	}
}

func (s *RedisStore) Issue(ctx context.Context, purpose Purpose, redirectTarget string) (string, error) {
	data, err := json.Marshal(Entry{
		Purpose:        purpose,
		RedirectTarget: redirectTarget,
		CreatedAt:      s.nowTime(),
	})
	if err != nil {
		return "", err
	}

	for i := 0; i < maxIssue; i++ {
		token, err := newToken()
		if err != nil {
			return "", err
		}
		ok, err := s.redis.SetNX(ctx, redisKeyPrefix+token, data, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ok {
			return token, nil
		}
	}
	return "", errors.New("[RedisStore.Issue] could not generate a unique token")
}

func (s *RedisStore) Validate(ctx context.Context, token string) (*Entry, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	data, err := s.redis.GetDel(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("[RedisStore.Validate] decode: %w", err)
	}
	if s.strictExpiry && s.expired(entry, s.nowTime()) {
		return nil, ErrNotFound
	}
	return &entry, nil
}
