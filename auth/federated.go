package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/auth/statetoken"
	"github.com/jrsteele09/ipo-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type FederatedOutcome struct {
	Purpose        statetoken.Purpose
	User           *users.User
	Session        *sessions.Session
	RedirectTarget string
}

// BeginFederatedAuth issues a state token bound to purpose and returns the
// provider URL the browser should be sent to.
func (s *Service) BeginFederatedAuth(ctx context.Context, purpose statetoken.Purpose, redirectTarget string) (string, error) {
	if !purpose.Valid() {
		return "", InvalidPurposeErr
	}
	fallback := DefaultLoginRedirect
	if purpose == statetoken.PurposeSignup {
		fallback = DefaultSignupRedirect
	}

	state, err := s.repos.States.Issue(ctx, purpose, SafeRedirectTarget(redirectTarget, fallback))
	if err != nil {
		return "", authFailed(errors.Wrap(err, "[Service.BeginFederatedAuth] issue state"))
	}
	return s.provider.AuthCodeURL(state), nil
}

// CompleteFederatedAuth finishes the round trip started by BeginFederatedAuth.
// The state token is consumed before anything else, so a replayed callback
// fails with invalid_state even when the provider reported an error.
func (s *Service) CompleteFederatedAuth(ctx context.Context, state, code, providerErr string) (*FederatedOutcome, error) {
	entry, err := s.repos.States.Validate(ctx, state)
	if errors.Is(err, statetoken.ErrNotFound) {
		return nil, InvalidStateErr
	}
	if err != nil {
		return nil, authFailed(errors.Wrap(err, "[Service.CompleteFederatedAuth] validate state"))
	}

	if providerErr != "" {
		log.Warn().Str("providerError", providerErr).Msg("provider declined authentication")
		return nil, AuthFailedErr
	}
	if code == "" {
		return nil, AuthFailedErr
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, authFailed(errors.Wrap(err, "[Service.CompleteFederatedAuth] exchange code"))
	}

	u, err := s.LinkIdentity(ctx, entry.Purpose, profile)
	if err != nil {
		return nil, err
	}

	session, err := s.startSession(ctx, u, false)
	if err != nil {
		return nil, err
	}
	return &FederatedOutcome{
		Purpose:        entry.Purpose,
		User:           u.Sanitized(),
		Session:        session,
		RedirectTarget: entry.RedirectTarget,
	}, nil
}

// SafeRedirectTarget keeps only same-site relative paths.
func SafeRedirectTarget(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	return target
}
