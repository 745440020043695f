package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/ipo-auth-server/internal/errors"
	"github.com/jrsteele09/ipo-auth-server/users"
	"github.com/stretchr/testify/require"
)

func TestForgotPasswordValidation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	err := f.service.ForgotPassword(ctx, "")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonMissingField)

	err = f.service.ForgotPassword(ctx, "nobody@x.com")
	requireAppError(t, err, http.StatusNotFound, apperrors.ReasonNotFound)
	require.Empty(t, f.mailer.Sent())
}

func TestForgotPasswordStoresOnlyHash(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	u := f.createLocalUser(t, testUserEmail, testUserPassword)

	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	sent := f.mailer.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, testUserEmail, sent[0].To)
	require.Equal(t, "Reset Your Password", sent[0].Subject)
	require.Contains(t, sent[0].Text, testFrontendURL+"/reset-password?")

	token := f.lastResetToken(t)
	require.Len(t, token, 64)

	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.HasPendingReset())
	require.NotEqual(t, token, stored.ResetTokenHash)
	require.Equal(t, f.now.Add(15*time.Minute), *stored.ResetTokenExpires)
}

func TestForgotPasswordMailFailureKeepsToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	u := f.createLocalUser(t, testUserEmail, testUserPassword)
	f.mailer.Err = errors.New("relay refused")

	err := f.service.ForgotPassword(ctx, testUserEmail)
	requireAppError(t, err, http.StatusInternalServerError, apperrors.ReasonMailUndeliverable)

	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.HasPendingReset())

	// retrying once the relay is back issues a fresh usable token
	f.mailer.Err = nil
	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	require.NoError(t, f.service.ResetPassword(ctx, testUserEmail, f.lastResetToken(t), "newpass123"))
}

func TestResetPasswordEndToEnd(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createLocalUser(t, testUserEmail, testUserPassword)

	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	require.Len(t, f.mailer.Sent(), 1)
	token := f.lastResetToken(t)

	require.NoError(t, f.service.ResetPassword(ctx, testUserEmail, token, "newpass123"))

	err := f.service.ResetPassword(ctx, testUserEmail, token, "newpass123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonNoPendingReset)

	_, _, err = f.service.Login(ctx, testUserEmail, "newpass123", false)
	require.NoError(t, err)
	_, _, err = f.service.Login(ctx, testUserEmail, testUserPassword, false)
	requireAppError(t, err, http.StatusUnauthorized, apperrors.ReasonInvalidCredentials)
}

func TestResetPasswordReuseKeepsToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createLocalUser(t, testUserEmail, testUserPassword)
	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	token := f.lastResetToken(t)

	err := f.service.ResetPassword(ctx, testUserEmail, token, testUserPassword)
	requireAppError(t, err, http.StatusConflict, apperrors.ReasonPasswordReuse)

	require.NoError(t, f.service.ResetPassword(ctx, testUserEmail, token, "different1"))
}

func TestResetPasswordWrongTokenClearsReset(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	u := f.createLocalUser(t, testUserEmail, testUserPassword)
	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	token := f.lastResetToken(t)

	err := f.service.ResetPassword(ctx, testUserEmail, "not-the-token", "newpass123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonInvalidToken)

	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, stored.HasPendingReset())

	err = f.service.ResetPassword(ctx, testUserEmail, token, "newpass123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonNoPendingReset)
}

func TestResetPasswordExpiredTokenClearsReset(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	u := f.createLocalUser(t, testUserEmail, testUserPassword)
	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	token := f.lastResetToken(t)

	f.now = f.now.Add(15*time.Minute + time.Second)
	err := f.service.ResetPassword(ctx, testUserEmail, token, "newpass123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonExpiredToken)

	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, stored.HasPendingReset())
}

func TestResetPasswordAcceptedAtExpiryInstant(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createLocalUser(t, testUserEmail, testUserPassword)
	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	token := f.lastResetToken(t)

	f.now = f.now.Add(15 * time.Minute)
	require.NoError(t, f.service.ResetPassword(ctx, testUserEmail, token, "newpass123"))
}

func TestResetPasswordValidation(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.createLocalUser(t, testUserEmail, testUserPassword)

	err := f.service.ResetPassword(ctx, testUserEmail, "", "newpass123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonInvalidCredentials)

	err = f.service.ResetPassword(ctx, "nobody@x.com", "tok", "newpass123")
	requireAppError(t, err, http.StatusNotFound, apperrors.ReasonNotFound)

	err = f.service.ResetPassword(ctx, testUserEmail, "tok", "newpass123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonNoPendingReset)
}

func TestResetPasswordLosesRaceToConcurrentReset(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	u := f.createLocalUser(t, testUserEmail, testUserPassword)
	require.NoError(t, f.service.ForgotPassword(ctx, testUserEmail))
	token := f.lastResetToken(t)

	// another request finishes the reset between our read and our write
	stored, err := f.userRepo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	hash, err := users.HashPassword("winner12")
	require.NoError(t, err)
	require.NoError(t, f.userRepo.CompleteReset(ctx, u.ID, stored.ResetTokenHash, hash))

	err = f.service.ResetPassword(ctx, testUserEmail, token, "loser123")
	requireAppError(t, err, http.StatusBadRequest, apperrors.ReasonNoPendingReset)
}
