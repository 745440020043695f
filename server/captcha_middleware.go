package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

// CaptchaMiddleware checks the recaptchaToken field of a JSON body and hands
// the untouched body on to the next handler.
func (s *Server) CaptchaMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.captcha == nil {
			next(w, r)
			return
		}

		var raw []byte
		if r.Body != nil {
			var err error
			raw, err = io.ReadAll(r.Body)
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					s.writeError(w, r, payloadTooLarge())
					return
				}
				s.writeError(w, r, apperrors.Wrap(err, apperrors.KindValidation, apperrors.ReasonInvalidBody, "Invalid JSON body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
		}

		var body struct {
			RecaptchaToken string `json:"recaptchaToken"`
		}
		_ = json.Unmarshal(raw, &body)
		if body.RecaptchaToken == "" {
			s.writeError(w, r, apperrors.Validation(apperrors.ReasonCaptchaMissing, "Missing reCAPTCHA token"))
			return
		}

		result, err := s.captcha.Verify(r.Context(), body.RecaptchaToken, clientIP(r))
		if err != nil {
			s.writeError(w, r, apperrors.Dependency(err, apperrors.ReasonCaptchaError, "reCAPTCHA verification error"))
			return
		}
		if !result.Success {
			errorCodes := result.ErrorCodes
			if errorCodes == nil {
				errorCodes = []string{}
			}
			s.writeError(w, r, apperrors.Validation(apperrors.ReasonCaptchaFailed, "reCAPTCHA verification failed").
				WithDetail("errors", errorCodes))
			return
		}
		next(w, r)
	}
}
