package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/ipo-auth-server/auth"
	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
)

// setSessionCookie writes the signed session cookie. Only remember-me
// sessions get a Max-Age; the rest end with the browser session.
func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, session *sessions.Session) error {
	value, err := s.cookies.Encode(session)
	if err != nil {
		return err
	}

	cookie := s.baseCookie(r)
	cookie.Value = value
	if session.Persistent {
		cookie.MaxAge = int(time.Until(session.ExpiresAt).Seconds())
		cookie.Expires = session.ExpiresAt
	}
	http.SetCookie(w, cookie)
	return nil
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	cookie := s.baseCookie(r)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	http.SetCookie(w, cookie)
}

// baseCookie is cross-site (SameSite=None, Secure) in production where the
// frontend lives on another domain.
func (s *Server) baseCookie(r *http.Request) *http.Cookie {
	cookie := &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	}
	if s.config.IsProduction() {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteNoneMode
	}
	return cookie
}

// sessionID returns the verified session id from the cookie, or "".
func (s *Server) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err != nil {
		return ""
	}
	id, err := s.cookies.Decode(cookie.Value)
	if err != nil {
		return ""
	}
	return id
}

// currentSession loads the live session behind the request cookie.
func (s *Server) currentSession(r *http.Request) (*sessions.Session, error) {
	id := s.sessionID(r)
	if id == "" {
		return nil, auth.NotAuthenticatedErr
	}
	return s.auth.Session(r.Context(), id)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case nil:
		return false
	default:
		return true
	}
}
