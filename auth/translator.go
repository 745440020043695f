package auth

import (
	"net/url"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
)

// External codes a browser may see after a failed federated round trip.
const (
	CodeInvalidState  = "invalid_state"
	CodeNoAccount     = "no_account"
	CodeAccountExists = "account_exists"
	CodeEmailInUse    = "email_in_use"
	CodeAuthFailed    = "auth_failed"
)

var externalCodes = map[apperrors.Reason]string{
	apperrors.ReasonInvalidState:  CodeInvalidState,
	apperrors.ReasonNoAccount:     CodeNoAccount,
	apperrors.ReasonAccountExists: CodeAccountExists,
	apperrors.ReasonEmailInUse:    CodeEmailInUse,
}

// TranslateFederatedError maps any failure to the stable external vocabulary.
// Reasons outside it collapse to auth_failed.
func TranslateFederatedError(err error) string {
	if code, ok := externalCodes[apperrors.ReasonOf(err)]; ok {
		return code
	}
	return CodeAuthFailed
}

// FederatedErrorRedirect returns the frontend URL carrying the error code.
func FederatedErrorRedirect(frontendURL string, err error) string {
	return frontendURL + "?" + url.Values{"type": {TranslateFederatedError(err)}}.Encode()
}
