package ratelimit

import (
	"context"
	"sync"
	"time"
)

var _ Limiter = (*InMemoryLimiter)(nil)

type window struct {
	count int64
	start time.Time
}

// InMemoryLimiter counts hits per key in process memory. Closed windows are
// dropped on the next hit for the same key or by Sweep.
type InMemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	nowTime func() time.Time
}

type InMemoryOption func(*InMemoryLimiter)

func WithNowTime(nowFunc func() time.Time) InMemoryOption {
	return func(l *InMemoryLimiter) {
		l.nowTime = nowFunc
	}
}

func NewInMemoryLimiter(limit int, period time.Duration, opts ...InMemoryOption) *InMemoryLimiter {
	l := &InMemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		nowTime: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *InMemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowTime()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++
	return newResult(w.count, l.limit, w.start.Add(l.period).Sub(now)), nil
}

// Sweep removes closed windows.
func (l *InMemoryLimiter) Sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowTime()
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
		}
	}
}
