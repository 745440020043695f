// Package ratelimit implements a fixed-window request counter per client key.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrUnavailable = errors.New("rate limit store unavailable")

// Result describes the state of the caller's window after counting a hit.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is the time left until the window closes.
	Reset time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func newResult(count int64, limit int, reset time.Duration) Result {
	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	if reset < 0 {
		reset = 0
	}
	return Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}
}
