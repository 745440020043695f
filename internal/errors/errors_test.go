package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	cases := map[apperrors.Kind]int{
		apperrors.KindValidation:     http.StatusBadRequest,
		apperrors.KindForbiddenState: http.StatusBadRequest,
		apperrors.KindAuth:           http.StatusUnauthorized,
		apperrors.KindConflict:       http.StatusConflict,
		apperrors.KindNotFound:       http.StatusNotFound,
		apperrors.KindRateLimited:    http.StatusTooManyRequests,
		apperrors.KindTooLarge:       http.StatusRequestEntityTooLarge,
		apperrors.KindDependency:     http.StatusInternalServerError,
		apperrors.Kind("unknown"):    http.StatusInternalServerError,
	}
	for kind, status := range cases {
		require.Equal(t, status, apperrors.StatusCode(kind), kind)
	}
}

func TestFromFindsWrappedAppError(t *testing.T) {
	base := apperrors.Conflict(apperrors.ReasonEmailExists, "Email already exists!")
	wrapped := pkgerrors.Wrap(base, "[Service.Signup]")

	got := apperrors.From(wrapped)
	require.Same(t, base, got)
	require.Equal(t, apperrors.ReasonEmailExists, apperrors.ReasonOf(wrapped))
}

func TestFromClassifiesUnknownErrorsAsInternal(t *testing.T) {
	got := apperrors.From(fmt.Errorf("boom"))
	require.Equal(t, apperrors.KindDependency, got.Kind)
	require.Equal(t, apperrors.ReasonInternalError, got.Reason)
	require.Equal(t, "Internal server error", got.Message)
	require.Nil(t, apperrors.From(nil))
}

func TestIsComparesByReason(t *testing.T) {
	err := pkgerrors.Wrap(apperrors.Validation(apperrors.ReasonNoPendingReset, "x"), "ctx")
	require.True(t, apperrors.Is(err, apperrors.Validation(apperrors.ReasonNoPendingReset, "")))
	require.False(t, apperrors.Is(err, apperrors.Validation(apperrors.ReasonInvalidToken, "")))
}
