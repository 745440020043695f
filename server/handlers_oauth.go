package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/ipo-auth-server/auth"
	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	"github.com/jrsteele09/ipo-auth-server/auth/statetoken"
)

func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return s.beginFederated(statetoken.PurposeLogin)
}

func (s *Server) GoogleSignupHandler() http.HandlerFunc {
	return s.beginFederated(statetoken.PurposeSignup)
}

func (s *Server) beginFederated(purpose statetoken.Purpose) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.auth.BeginFederatedAuth(r.Context(), purpose, r.URL.Query().Get("redirectUrl"))
		if err != nil {
			s.federatedFailure(w, r, err)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// GoogleCallbackHandler finishes the provider round trip. Every outcome is a
// redirect to the frontend; failures carry ?type=<code>.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		outcome, err := s.auth.CompleteFederatedAuth(r.Context(), query.Get("state"), query.Get("code"), query.Get("error"))
		if err != nil {
			s.federatedFailure(w, r, err)
			return
		}
		if err := s.setSessionCookie(w, r, outcome.Session); err != nil {
			s.federatedFailure(w, r, err)
			return
		}

		target := s.config.GetFrontendURL() + outcome.RedirectTarget
		log.Info().
			Str("userId", outcome.User.ID).
			Str("purpose", string(outcome.Purpose)).
			Str("redirect", target).
			Msg("federated auth complete")
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func (s *Server) federatedFailure(w http.ResponseWriter, r *http.Request, err error) {
	log.Warn().Err(err).Str("code", auth.TranslateFederatedError(err)).Msg("federated auth failed")
	http.Redirect(w, r, auth.FederatedErrorRedirect(s.config.GetFrontendURL(), err), http.StatusFound)
}

type accountUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Provider string `json:"provider,omitempty"`
}

func accountUserFrom(p sessions.Principal, withProvider bool) accountUser {
	u := accountUser{ID: p.ID, Name: p.Name, Email: p.Email, Avatar: p.Avatar}
	if withProvider {
		u.Provider = p.Provider
	}
	return u
}

func (s *Server) OAuthVerifySessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.currentSession(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"user":          accountUserFrom(session.Principal, false),
		})
	}
}

// AccountStatusHandler always answers 200.
func (s *Server) AccountStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.currentSession(r)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"isAuthenticated": false, "user": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"isAuthenticated": true,
			"user":            accountUserFrom(session.Principal, true),
		})
	}
}
