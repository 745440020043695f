package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders any error as {success:false, message, reason}. Outside
// production the wrapped cause is included as stack.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.From(err)
	status := appErr.Status()

	body := map[string]any{}
	for k, v := range appErr.Details {
		body[k] = v
	}
	body["success"] = false
	body["message"] = appErr.Message
	body["reason"] = appErr.Reason
	if appErr.Err != nil && !s.config.IsProduction() {
		body["stack"] = fmt.Sprintf("%+v", appErr.Err)
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("reason", string(appErr.Reason)).Msg("request failed")
	} else {
		log.Debug().Str("path", r.URL.Path).Str("reason", string(appErr.Reason)).Msg(appErr.Message)
	}
	writeJSON(w, status, body)
}

func payloadTooLarge() error {
	return apperrors.New(apperrors.KindTooLarge, apperrors.ReasonTooLarge, "request entity too large")
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	err := dec.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return payloadTooLarge()
	}
	return apperrors.Wrap(err, apperrors.KindValidation, apperrors.ReasonInvalidBody, "Invalid JSON body")
}
