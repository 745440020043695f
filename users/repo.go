package users

import (
	"context"
	"time"
)

type UserRepo interface {
	// Create inserts a new user, assigning ID and timestamps. ErrDuplicate when the
	// email or google id is already taken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string, opts ...GetOption) (*User, error)
	GetByEmail(ctx context.Context, email string, opts ...GetOption) (*User, error)
	GetByProviderID(ctx context.Context, providerID string, opts ...GetOption) (*User, error)
	// LinkProvider attaches a google id to a user that has none yet.
	LinkProvider(ctx context.Context, userID, providerID string) error
	SetResetToken(ctx context.Context, userID, tokenHash string, expires time.Time) error
	ClearResetToken(ctx context.Context, userID string) error
	// CompleteReset stores the new password and clears the reset fields, provided
	// the stored reset hash still equals tokenHash. ErrNotFound otherwise.
	CompleteReset(ctx context.Context, userID, tokenHash, passwordHash string) error
}

type GetOptions struct {
	IncludePassword bool
}

type GetOption func(*GetOptions)

// WithPassword selects the password hash, which reads leave out by default.
func WithPassword() GetOption {
	return func(o *GetOptions) {
		o.IncludePassword = true
	}
}

func ApplyGetOptions(opts ...GetOption) GetOptions {
	var o GetOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
