package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/jrsteele09/ipo-auth-server/mailer"
	"github.com/jrsteele09/ipo-auth-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const resetTokenBytes = 32

// ForgotPassword stores a hashed reset token on the account and mails the
// plaintext token inside a reset link. The token stays stored when delivery
// fails, so a retry simply issues a new one.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = users.NormalizeEmail(email)
	if email == "" {
		return EmailRequiredErr
	}

	u, err := s.repos.Users.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return ForgotUserNotFoundErr
	}
	if err != nil {
		return errors.Wrap(err, "[Service.ForgotPassword] lookup user")
	}

	token, err := newResetToken()
	if err != nil {
		return errors.Wrap(err, "[Service.ForgotPassword] generate token")
	}
	expires := s.nowTime().Add(s.resetTokenTTL)
	if err := s.repos.Users.SetResetToken(ctx, u.ID, hashResetToken(token), expires); err != nil {
		return errors.Wrap(err, "[Service.ForgotPassword] store token")
	}

	link := mailer.ResetLink(s.resetLinkBase, token, email)
	messageID, err := s.mailer.Send(ctx, mailer.ResetPasswordMessage(email, link, s.resetTokenTTL))
	if err != nil {
		log.Warn().Err(err).Str("userId", u.ID).Msg("reset mail not delivered")
		return mailUndeliverable(errors.Wrap(err, "[Service.ForgotPassword] send"))
	}
	log.Info().Str("userId", u.ID).Str("messageId", messageID).Msg("reset mail sent")
	return nil
}

// ResetPassword consumes a reset token. Any wrong or expired token clears the
// pending reset; reusing the current password leaves it in place.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	email = users.NormalizeEmail(email)
	if email == "" || token == "" || newPassword == "" {
		return MissingCredentialsErr
	}

	u, err := s.repos.Users.GetByEmail(ctx, email, users.WithPassword())
	if errors.Is(err, users.ErrNotFound) {
		return ResetUserNotFoundErr
	}
	if err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] lookup user")
	}
	if !u.HasPendingReset() {
		return NoPendingResetErr
	}

	tokenHash := hashResetToken(token)
	if subtle.ConstantTimeCompare([]byte(tokenHash), []byte(u.ResetTokenHash)) != 1 {
		if err := s.repos.Users.ClearResetToken(ctx, u.ID); err != nil {
			return errors.Wrap(err, "[Service.ResetPassword] clear token")
		}
		return InvalidResetTokenErr
	}
	if u.ResetTokenExpires.Before(s.nowTime()) {
		if err := s.repos.Users.ClearResetToken(ctx, u.ID); err != nil {
			return errors.Wrap(err, "[Service.ResetPassword] clear token")
		}
		return ExpiredResetTokenErr
	}
	if u.CheckPassword(newPassword) {
		return PasswordReuseErr
	}
	if users.ValidatePassword(newPassword) != nil {
		return WeakPasswordErr
	}

	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] hash password")
	}
	if err := s.repos.Users.CompleteReset(ctx, u.ID, tokenHash, hash); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// another request consumed the token first
			return NoPendingResetErr
		}
		return errors.Wrap(err, "[Service.ResetPassword] store password")
	}
	log.Info().Str("userId", u.ID).Msg("password reset")
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
