package statetoken

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestPurposeValid(t *testing.T) {
	require.True(t, PurposeLogin.Valid())
	require.True(t, PurposeSignup.Valid())
	require.False(t, Purpose("admin").Valid())
}

func TestInMemoryTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	token, err := store.Issue(ctx, PurposeSignup, "/welcome")
	require.NoError(t, err)
	require.Len(t, token, 32)

	entry, err := store.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, PurposeSignup, entry.Purpose)
	require.Equal(t, "/welcome", entry.RedirectTarget)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Validate(ctx, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryTokensAreUnique(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		token, err := store.Issue(ctx, PurposeLogin, "/")
		require.NoError(t, err)
		require.False(t, seen[token])
		seen[token] = true
	}
	require.Equal(t, 200, store.Len())
}

func TestInMemorySweepRemovesExpiredTokens(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := NewInMemoryStore(WithNowTime(clock.Now))

	stale, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	fresh, err := store.Issue(ctx, PurposeLogin, "/ipos")
	require.NoError(t, err)

	clock.Advance(5*time.Minute + time.Second)
	_, err = store.Validate(ctx, "unknown")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, store.Len(), "only the fresh token survives the sweep")

	_, err = store.Validate(ctx, stale)
	require.ErrorIs(t, err, ErrNotFound)

	entry, err := store.Validate(ctx, fresh)
	require.NoError(t, err)
	require.Equal(t, "/ipos", entry.RedirectTarget)
}

func TestInMemoryStrictExpiryRejectsUnsweptToken(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := NewInMemoryStore(WithNowTime(clock.Now))

	token, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
	require.Zero(t, store.Len())
}

func TestInMemoryStrictExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := NewInMemoryStore(WithNowTime(clock.Now))

	early, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)
	onTime, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)

	clock.Advance(DefaultTTL - time.Millisecond)
	_, err = store.Validate(ctx, early)
	require.NoError(t, err)

	clock.Advance(time.Millisecond)
	_, err = store.Validate(ctx, onTime)
	require.ErrorIs(t, err, ErrNotFound, "a token aged exactly the TTL is expired")
}

func TestInMemoryLooseExpiryHonoursFoundToken(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	store := NewInMemoryStore(WithNowTime(clock.Now), WithStrictExpiry(false))

	token, err := store.Issue(ctx, PurposeSignup, "/welcome")
	require.NoError(t, err)

	// no validation ran in between, so nothing swept the token
	clock.Advance(16 * time.Minute)
	entry, err := store.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, PurposeSignup, entry.Purpose)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryConcurrentValidateSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	token, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Validate(ctx, token); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins.Load())
}

func TestRedisTokenIsSingleUse(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	store := NewRedisStore(client)

	token, err := store.Issue(ctx, PurposeLogin, "/dashboard")
	require.NoError(t, err)
	require.Len(t, token, 32)

	entry, err := store.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, PurposeLogin, entry.Purpose)
	require.Equal(t, "/dashboard", entry.RedirectTarget)

	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKeyExpires(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedisStore(client)

	token, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)
	require.True(t, mr.Exists(redisKeyPrefix+token))

	mr.FastForward(DefaultTTL + time.Second)
	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStrictExpiryUsesRecordAge(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	_, client := newTestRedis(t)
	store := NewRedisStore(client, WithNowTime(clock.Now))

	token, err := store.Issue(ctx, PurposeLogin, "/")
	require.NoError(t, err)

	// the key itself has not expired in redis yet
	clock.Advance(DefaultTTL)
	_, err = store.Validate(ctx, token)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	store := NewRedisStore(client)
	mr.Close()

	_, err := store.Issue(ctx, PurposeLogin, "/")
	require.ErrorIs(t, err, ErrUnavailable)
}
