package auth

import (
	"context"
	"strings"

	"github.com/jrsteele09/ipo-auth-server/auth/statetoken"
	"github.com/jrsteele09/ipo-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LinkIdentity resolves a verified provider profile to a local account.
//
//	login:  found by provider id -> that user
//	        found by email       -> link provider id, that user
//	        none                 -> no_account
//	signup: found by provider id -> account_exists
//	        found by email       -> email_in_use
//	        none                 -> new google user
func (s *Service) LinkIdentity(ctx context.Context, purpose statetoken.Purpose, profile *Profile) (*users.User, error) {
	if !purpose.Valid() {
		return nil, InvalidPurposeErr
	}
	if profile == nil || profile.ProviderID == "" {
		return nil, AuthFailedErr
	}
	email := users.NormalizeEmail(profile.Email)

	byProvider, err := s.repos.Users.GetByProviderID(ctx, profile.ProviderID)
	if err != nil && !errors.Is(err, users.ErrNotFound) {
		return nil, errors.Wrap(err, "[Service.LinkIdentity] lookup by provider id")
	}

	var byEmail *users.User
	if byProvider == nil && email != "" {
		byEmail, err = s.repos.Users.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, users.ErrNotFound) {
			return nil, errors.Wrap(err, "[Service.LinkIdentity] lookup by email")
		}
	}

	switch purpose {
	case statetoken.PurposeLogin:
		return s.linkForLogin(ctx, profile, byProvider, byEmail)
	default:
		return s.linkForSignup(ctx, profile, email, byProvider, byEmail)
	}
}

func (s *Service) linkForLogin(ctx context.Context, profile *Profile, byProvider, byEmail *users.User) (*users.User, error) {
	if byProvider != nil {
		return byProvider, nil
	}
	if byEmail == nil {
		return nil, NoAccountErr
	}
	if byEmail.GoogleID != "" {
		log.Warn().Str("userId", byEmail.ID).Msg("email matched a user linked to another google account")
		return nil, ProviderMismatchErr
	}

	if err := s.repos.Users.LinkProvider(ctx, byEmail.ID, profile.ProviderID); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, ProviderMismatchErr
		}
		return nil, errors.Wrap(err, "[Service.LinkIdentity] link provider")
	}
	byEmail.GoogleID = profile.ProviderID
	log.Info().Str("userId", byEmail.ID).Msg("linked google account")
	return byEmail, nil
}

func (s *Service) linkForSignup(ctx context.Context, profile *Profile, email string, byProvider, byEmail *users.User) (*users.User, error) {
	if byProvider != nil {
		return nil, AccountExistsErr
	}
	if byEmail != nil {
		return nil, EmailInUseErr
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email
	}
	if name == "" {
		name = "Google user"
	}
	u := &users.User{
		Email:    email,
		Name:     name,
		GoogleID: profile.ProviderID,
		Avatar:   profile.Avatar,
		Provider: users.ProviderGoogle,
	}
	if err := s.repos.Users.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, AccountExistsErr
		}
		return nil, errors.Wrap(err, "[Service.LinkIdentity] create user")
	}
	log.Info().Str("userId", u.ID).Msg("created user from google signup")
	return u, nil
}
