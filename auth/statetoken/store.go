// Package statetoken binds a federated login round trip to the request that
// started it. Tokens are opaque, single use and expire after a fixed TTL.
package statetoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

type Purpose string

const (
	PurposeLogin  Purpose = "login"
	PurposeSignup Purpose = "signup"
)

func (p Purpose) Valid() bool {
	return p == PurposeLogin || p == PurposeSignup
}

const (
	DefaultTTL = 15 * time.Minute
	tokenBytes = 16
	maxIssue   = 5
)

var (
	ErrNotFound    = errors.New("state token not found")
	ErrUnavailable = errors.New("state token store unavailable")
)

type Entry struct {
	Purpose        Purpose   `json:"purpose"`
	RedirectTarget string    `json:"redirectTarget"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Store interface {
	Issue(ctx context.Context, purpose Purpose, redirectTarget string) (string, error)
	// Validate consumes token. Every call after the first returns ErrNotFound.
	Validate(ctx context.Context, token string) (*Entry, error)
}

type settings struct {
	ttl          time.Duration
	nowTime      func() time.Time
	strictExpiry bool
}

type Option func(*settings)

func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.ttl = ttl
	}
}

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *settings) {
		s.nowTime = nowFunc
	}
}

// WithStrictExpiry controls whether Validate rejects a found token that is
// past its TTL. When false, age is enforced only by the sweep, and a token
// that is found is honoured whatever its age.
func WithStrictExpiry(strict bool) Option {
	return func(s *settings) {
		s.strictExpiry = strict
	}
}

func newSettings(opts ...Option) settings {
	s := settings{
		ttl:          DefaultTTL,
		nowTime:      time.Now,
		strictExpiry: true,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// expired reports whether the entry has reached its TTL. A token is dead from
// the instant its age equals the TTL.
func (s settings) expired(e Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) >= s.ttl
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
