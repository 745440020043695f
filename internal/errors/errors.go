package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the coarse error class; it decides the HTTP status.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindAuth           Kind = "auth_error"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindForbiddenState Kind = "forbidden_state"
	KindDependency     Kind = "dependency_failure"
	KindRateLimited    Kind = "rate_limited"
	KindTooLarge       Kind = "payload_too_large"
)

// Reason is the stable machine readable code carried next to the message.
type Reason string

const (
	ReasonInvalidCredentials Reason = "invalid_credentials"
	ReasonInvalidEmail       Reason = "invalid_email"
	ReasonWeakPassword       Reason = "weak_password"
	ReasonEmailExists        Reason = "email_exists"
	ReasonNoSession          Reason = "no_session"
	ReasonSessionError       Reason = "session_error"
	ReasonUnauthorized       Reason = "unauthorized"

	ReasonInvalidState     Reason = "invalid_state"
	ReasonInvalidPurpose   Reason = "invalid_purpose"
	ReasonNoAccount        Reason = "no_account"
	ReasonAccountExists    Reason = "account_exists"
	ReasonEmailInUse       Reason = "email_in_use"
	ReasonProviderMismatch Reason = "provider_mismatch"
	ReasonAuthFailed       Reason = "auth_failed"

	ReasonMissingField      Reason = "missing_field"
	ReasonInvalidField      Reason = "invalid_field"
	ReasonNotFound          Reason = "not_found"
	ReasonNoPendingReset    Reason = "no_pending_reset"
	ReasonInvalidToken      Reason = "invalid_token"
	ReasonExpiredToken      Reason = "expired_token"
	ReasonPasswordReuse     Reason = "password_reuse"
	ReasonMailUndeliverable Reason = "mail_undeliverable"

	ReasonCaptchaMissing Reason = "captcha_missing"
	ReasonCaptchaFailed  Reason = "captcha_failed"
	ReasonCaptchaError   Reason = "captcha_error"

	ReasonInvalidID     Reason = "invalid_id"
	ReasonInvalidUpload Reason = "invalid_upload"
	ReasonNoUpdate      Reason = "no_update"

	ReasonRateLimited   Reason = "rate_limited"
	ReasonTooLarge      Reason = "payload_too_large"
	ReasonInvalidBody   Reason = "invalid_body"
	ReasonInternalError Reason = "internal_error"
)

type AppError struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
	// Details holds extra fields rendered into the JSON body, e.g. captcha error codes.
	Details map[string]any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by reason so callers can compare against the
// constructors' results with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Reason == e.Reason && (t.Kind == "" || t.Kind == e.Kind)
}

func (e *AppError) Status() int {
	return StatusCode(e.Kind)
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, reason Reason, message string) *AppError {
	return &AppError{Kind: kind, Reason: reason, Message: message}
}

func Wrap(err error, kind Kind, reason Reason, message string) *AppError {
	return &AppError{Kind: kind, Reason: reason, Message: message, Err: err}
}

func Validation(reason Reason, message string) *AppError {
	return New(KindValidation, reason, message)
}

func Auth(reason Reason, message string) *AppError {
	return New(KindAuth, reason, message)
}

func Conflict(reason Reason, message string) *AppError {
	return New(KindConflict, reason, message)
}

func NotFound(reason Reason, message string) *AppError {
	return New(KindNotFound, reason, message)
}

func ForbiddenState(reason Reason, message string) *AppError {
	return New(KindForbiddenState, reason, message)
}

func Dependency(err error, reason Reason, message string) *AppError {
	return Wrap(err, KindDependency, reason, message)
}

func StatusCode(kind Kind) int {
	switch kind {
	case KindValidation, KindForbiddenState:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// From returns the AppError in err's chain, or an internal_error wrapping err.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, KindDependency, ReasonInternalError, "Internal server error")
}

// ReasonOf returns the reason of the AppError in err's chain, or "" if there is none.
func ReasonOf(err error) Reason {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
