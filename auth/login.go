package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Login checks an email and password pair and starts a session. An unknown
// email and a wrong password fail with the same error.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) (*users.User, *sessions.Session, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, MissingCredentialsErr
	}

	u, err := s.repos.Users.GetByEmail(ctx, email, users.WithPassword())
	if errors.Is(err, users.ErrNotFound) {
		return nil, nil, InvalidCredentialsErr
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Service.Login] lookup user")
	}
	if !u.CheckPassword(password) {
		return nil, nil, InvalidCredentialsErr
	}

	session, err := s.startSession(ctx, u, rememberMe)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("userId", u.ID).Bool("rememberMe", rememberMe).Msg("login success")
	return u.Sanitized(), session, nil
}

// Signup registers a local account and starts a browser-scoped session.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*users.User, *sessions.Session, error) {
	name = strings.TrimSpace(name)
	email = users.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, nil, MissingCredentialsErr
	}
	if users.ValidateEmail(email) != nil {
		return nil, nil, InvalidEmailErr
	}
	if users.ValidatePassword(password) != nil {
		return nil, nil, WeakPasswordErr
	}

	_, err := s.repos.Users.GetByEmail(ctx, email)
	if err == nil {
		return nil, nil, EmailExistsErr
	}
	if !errors.Is(err, users.ErrNotFound) {
		return nil, nil, errors.Wrap(err, "[Service.Signup] lookup user")
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Service.Signup] hash password")
	}
	u := &users.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     users.ProviderLocal,
	}
	if err := s.repos.Users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, nil, EmailExistsErr
		}
		return nil, nil, errors.Wrap(err, "[Service.Signup] create user")
	}

	session, err := s.startSession(ctx, u, false)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("userId", u.ID).Msg("signup success")
	return u.Sanitized(), session, nil
}

// Session returns the live session for sessionID.
func (s *Service) Session(ctx context.Context, sessionID string) (*sessions.Session, error) {
	if sessionID == "" {
		return nil, NotAuthenticatedErr
	}
	session, err := s.repos.Sessions.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, NotAuthenticatedErr
	}
	if err != nil {
		return nil, sessionError(errors.Wrap(err, "[Service.Session]"))
	}
	return session, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return NoSessionErr
	}
	err := s.repos.Sessions.Delete(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return NoSessionErr
	}
	if err != nil {
		return sessionErrorMsg(errors.Wrap(err, "[Service.Logout]"), "Failed to destroy session")
	}
	return nil
}
