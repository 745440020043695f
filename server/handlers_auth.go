package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe any    `json:"rememberMe"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		user, session, err := s.auth.Login(r.Context(), req.Email, req.Password, truthy(req.RememberMe))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.setSessionCookie(w, r, session); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Login successful!",
			"user":    user,
		})
	}
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		user, session, err := s.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.setSessionCookie(w, r, session); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "User registered successfully!",
			"user":    user,
		})
	}
}

func (s *Server) VerifySessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.currentSession(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"message": "Not authenticated",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    session.Principal,
		})
	}
}

// LogoutHandler ends both password and Google sessions.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := s.sessionID(r)
		err := s.auth.Logout(r.Context(), id)
		s.clearSessionCookie(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		log.Info().Str("session", id).Msg("logged out")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Logged out successfully",
		})
	}
}
