package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/auth/statetoken"
	"github.com/jrsteele09/ipo-auth-server/mailer"
	"github.com/jrsteele09/ipo-auth-server/users"
	"github.com/pkg/errors"
)

const (
	DefaultSessionTTL    = 24 * time.Hour
	DefaultRememberMeTTL = 30 * 24 * time.Hour
	DefaultResetTokenTTL = 15 * time.Minute

	DefaultLoginRedirect  = "/"
	DefaultSignupRedirect = "/welcome"
)

// Profile is the identity a provider vouches for after a code exchange.
type Profile struct {
	ProviderID string
	Email      string
	Name       string
	Avatar     string
}

// IdentityProvider is the external half of the federated round trip.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo   // Repository for user accounts
	Sessions sessions.Repo    // Server side session store
	States   statetoken.Store // Federated round trip state tokens
}

// Service implements password login, federated login and password reset.
type Service struct {
	repos    Repos
	mailer   mailer.Mailer
	provider IdentityProvider

	sessionTTL    time.Duration
	rememberMeTTL time.Duration
	resetTokenTTL time.Duration
	resetLinkBase string

	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithSessionTTL sets the lifetime of browser-scoped and remember-me sessions.
func WithSessionTTL(sessionTTL, rememberMeTTL time.Duration) ServiceOption {
	return func(s *Service) {
		s.sessionTTL = sessionTTL
		s.rememberMeTTL = rememberMeTTL
	}
}

func WithResetTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.resetTokenTTL = ttl
	}
}

// WithResetLinkBase sets the frontend URL the emailed reset link points at.
func WithResetLinkBase(frontendURL string) ServiceOption {
	return func(s *Service) {
		s.resetLinkBase = frontendURL
	}
}

func NewService(
	repos Repos,
	m mailer.Mailer,
	provider IdentityProvider,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if repos.States == nil {
		return nil, errors.New("[NewService] States store is required")
	}
	if m == nil {
		return nil, errors.New("[NewService] mailer is required")
	}
	if provider == nil {
		return nil, errors.New("[NewService] identity provider is required")
	}

	s := &Service{
		repos:         repos,
		mailer:        m,
		provider:      provider,
		sessionTTL:    DefaultSessionTTL,
		rememberMeTTL: DefaultRememberMeTTL,
		resetTokenTTL: DefaultResetTokenTTL,
		nowTime:       time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// PrincipalFor builds the session snapshot of a user.
func PrincipalFor(u *users.User) sessions.Principal {
	return sessions.Principal{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Provider: string(u.Provider),
	}
}

// startSession always mints a new session id.
func (s *Service) startSession(ctx context.Context, u *users.User, persistent bool) (*sessions.Session, error) {
	ttl := s.sessionTTL
	if persistent {
		ttl = s.rememberMeTTL
	}
	session := sessions.New(PrincipalFor(u), persistent, s.nowTime(), ttl)
	if err := s.repos.Sessions.Upsert(ctx, session); err != nil {
		return nil, sessionError(errors.Wrap(err, "[Service.startSession]"))
	}
	return session, nil
}
