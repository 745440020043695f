package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Principal is the identity snapshot kept in a session. It never carries
// credential material.
type Principal struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type Session struct {
	ID         string    `json:"id"`
	Principal  Principal `json:"principal"`
	Persistent bool      `json:"persistent"` // remember me: cookie outlives the browser session
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// New builds a session with a fresh id that expires ttl after now.
func New(principal Principal, persistent bool, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Principal:  principal,
		Persistent: persistent,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
