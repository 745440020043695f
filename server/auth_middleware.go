package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/ipo-auth-server/auth/sessions"
	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

type ContextKey string

const (
	ContextKeyPrincipal ContextKey = "principal"
	ContextKeySessionID ContextKey = "session_id"
)

const (
	msgLoginRequired      = "Please login to access this resource"
	msgInvalidCredentials = "Invalid or missing authentication credentials"
)

// PrincipalFromContext returns the identity RequireSession attached to the request.
func PrincipalFromContext(ctx context.Context) (sessions.Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(sessions.Principal)
	return p, ok
}

func withSession(r *http.Request, session *sessions.Session) *http.Request {
	ctx := context.WithValue(r.Context(), ContextKeyPrincipal, session.Principal)
	ctx = context.WithValue(ctx, ContextKeySessionID, session.ID)
	return r.WithContext(ctx)
}

// RequireSession admits requests with a live session. Others get a JSON 401
// or, when the client prefers HTML, a redirect to the Google login. A failing
// session store is reported as a server error.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.currentSession(r)
			if sessionStoreFailed(err) {
				s.writeError(w, r, err)
				return
			}
			if err != nil {
				if prefersJSON(r.Header.Get("Accept")) {
					writeUnauthorized(w, msgLoginRequired)
					return
				}
				http.Redirect(w, r, RouteGoogleLogin, http.StatusSeeOther)
				return
			}
			next(w, withSession(r, session))
		}
	}
}

// RequireAPISession always answers JSON.
func (s *Server) RequireAPISession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := s.currentSession(r)
			if sessionStoreFailed(err) {
				s.writeError(w, r, err)
				return
			}
			if err != nil {
				writeUnauthorized(w, msgInvalidCredentials)
				return
			}
			next(w, withSession(r, session))
		}
	}
}

func sessionStoreFailed(err error) bool {
	return err != nil && apperrors.ReasonOf(err) == apperrors.ReasonSessionError
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, map[string]any{
		"success": false,
		"error":   "Unauthorized",
		"reason":  "unauthorized",
		"message": message,
	})
}

// prefersJSON compares the Accept qualities of application/json and
// text/html. No Accept header, or a tie, means JSON.
func prefersJSON(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return true
	}
	return acceptQuality(accept, "application", "json") >= acceptQuality(accept, "text", "html")
}

// acceptQuality returns the q value of the most specific range matching
// type/subtype, or 0 when none does.
func acceptQuality(accept, typ, subtype string) float64 {
	bestSpecificity := -1
	quality := 0.0
	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		mediaRange := strings.ToLower(strings.TrimSpace(fields[0]))
		rangeType, rangeSub, ok := strings.Cut(mediaRange, "/")
		if !ok {
			continue
		}

		specificity := -1
		switch {
		case rangeType == typ && rangeSub == subtype:
			specificity = 2
		case rangeType == typ && rangeSub == "*":
			specificity = 1
		case rangeType == "*" && rangeSub == "*":
			specificity = 0
		}
		if specificity <= bestSpecificity {
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			key, value, _ := strings.Cut(strings.TrimSpace(param), "=")
			if strings.EqualFold(key, "q") {
				if parsed, err := strconv.ParseFloat(value, 64); err == nil {
					q = parsed
				}
			}
		}
		bestSpecificity = specificity
		quality = q
	}
	return quality
}
