package auth

import (
	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

const invalidCredentialsMsg = "Invalid credentials!"

var (
	MissingCredentialsErr = apperrors.Validation(apperrors.ReasonInvalidCredentials, invalidCredentialsMsg)
	InvalidCredentialsErr = apperrors.Auth(apperrors.ReasonInvalidCredentials, invalidCredentialsMsg)
	InvalidEmailErr       = apperrors.Validation(apperrors.ReasonInvalidEmail, "Please enter a valid email!")
	WeakPasswordErr       = apperrors.Validation(apperrors.ReasonWeakPassword, "Password must be at least 6 characters long!")
	EmailExistsErr        = apperrors.Conflict(apperrors.ReasonEmailExists, "Email already exists!")
	NoSessionErr          = apperrors.Validation(apperrors.ReasonNoSession, "No active session")
	NotAuthenticatedErr   = apperrors.Auth(apperrors.ReasonUnauthorized, "Not authenticated")

	InvalidStateErr     = apperrors.Auth(apperrors.ReasonInvalidState, "Invalid state token")
	InvalidPurposeErr   = apperrors.ForbiddenState(apperrors.ReasonInvalidPurpose, "Invalid authentication purpose")
	NoAccountErr        = apperrors.Auth(apperrors.ReasonNoAccount, "No account found. Please sign up first.")
	AccountExistsErr    = apperrors.Conflict(apperrors.ReasonAccountExists, "Account already exists. Please login instead.")
	EmailInUseErr       = apperrors.Conflict(apperrors.ReasonEmailInUse, "Email already in use. Please login instead.")
	ProviderMismatchErr = apperrors.Auth(apperrors.ReasonProviderMismatch, "Email is linked to a different Google account")
	AuthFailedErr       = apperrors.Auth(apperrors.ReasonAuthFailed, "Authentication failed")

	EmailRequiredErr      = apperrors.Validation(apperrors.ReasonMissingField, "Email is required!")
	ForgotUserNotFoundErr = apperrors.NotFound(apperrors.ReasonNotFound, "No user found with that email!")
	ResetUserNotFoundErr  = apperrors.NotFound(apperrors.ReasonNotFound, "No user found with this email!")
	NoPendingResetErr     = apperrors.Validation(apperrors.ReasonNoPendingReset, "No password reset request was made for this account!")
	InvalidResetTokenErr  = apperrors.Validation(apperrors.ReasonInvalidToken, "Invalid reset link!")
	ExpiredResetTokenErr  = apperrors.Validation(apperrors.ReasonExpiredToken, "Reset link has expired! Please request a new one.")
	PasswordReuseErr      = apperrors.Conflict(apperrors.ReasonPasswordReuse, "New password cannot be same as the old password!")
)

func sessionError(err error) error {
	return apperrors.Dependency(err, apperrors.ReasonSessionError, "Session error occured!")
}

func mailUndeliverable(err error) error {
	return apperrors.Dependency(err, apperrors.ReasonMailUndeliverable, "Mail cannot be sent at the moment! Please try again later!")
}

func authFailed(err error) error {
	return apperrors.Wrap(err, apperrors.KindDependency, apperrors.ReasonAuthFailed, "Authentication failed")
}

func sessionErrorMsg(err error, message string) error {
	return apperrors.Dependency(err, apperrors.ReasonSessionError, message)
}
