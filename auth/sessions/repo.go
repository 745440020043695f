package sessions

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrUnavailable = errors.New("session store unavailable")
)

// Repo stores sessions server side, keyed by the id the cookie carries.
type Repo interface {
	Upsert(ctx context.Context, session *Session) error
	// Get returns ErrNotFound for unknown and expired sessions.
	Get(ctx context.Context, sessionID string) (*Session, error)
	// Delete returns ErrNotFound when there was nothing to delete.
	Delete(ctx context.Context, sessionID string) error
}
