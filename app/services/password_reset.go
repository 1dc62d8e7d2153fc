package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/citypress/account-service/app/errors"
	"github.com/citypress/account-service/app/metrics"
	"github.com/citypress/account-service/app/store"
	"golang.org/x/crypto/bcrypt"
)

// resetTokenTTL is the fixed window between ForgotPassword and the last
// moment ResetPassword will accept the token.
const resetTokenTTL = 1 * time.Hour

// PasswordResetService drives the reset-token state machine on the user row:
// idle (both token columns null) -> pending (token + expiry set) -> idle again
// on a successful reset. Failed redemptions leave the row untouched.
type PasswordResetService struct {
	store    store.Storage
	notifier Notifier
	baseURL  string
	now      func() time.Time
}

func NewPasswordResetService(store store.Storage, notifier Notifier, baseURL string) *PasswordResetService {
	return &PasswordResetService{
		store:    store,
		notifier: notifier,
		baseURL:  baseURL,
		now:      time.Now,
	}
}

// ForgotPassword opens a reset request: issues a fresh token, stores it with
// its expiry on the user row, and mails the reset link.
func (s *PasswordResetService) ForgotPassword(ctx context.Context, email string) *appErrors.AppError {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewEmailNotFound()
		}
		return appErrors.NewInternal("error getting user by email")
	}

	token := newToken()
	expiry := s.now().Add(resetTokenTTL)
	if err := s.store.Users.SaveResetToken(ctx, user.ID, token, expiry); err != nil {
		return appErrors.NewInternal("failed to store reset token")
	}

	if s.notifier != nil {
		link := passwordResetURL(s.baseURL, user.Email, token)
		if err := s.notifier.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
			metrics.RecordMailFailure("password_reset")
			log := getLoggerFromContext(ctx)
			log.Error().
				Err(err).
				Int64("user_id", user.ID).
				Str("email", user.Email).
				Msg("failed to send password reset email")
		}
	}

	return nil
}

// ResetPassword redeems a reset token: the stored token must exist, match
// exactly, and be unexpired. On success the password hash is replaced and both
// token columns are cleared in one statement.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, token, newPassword string) *appErrors.AppError {
	if token == "" {
		return appErrors.NewInvalidInput("missing reset token")
	}
	if newPassword == "" {
		return appErrors.NewInvalidInput("missing new password")
	}

	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Do not reveal whether the address is registered on this path.
			return appErrors.NewUnauthorized("invalid or expired reset token")
		}
		return appErrors.NewInternal("error getting user by email")
	}

	if !s.resetTokenValid(user.ResetToken, user.ResetTokenExpiry, token) {
		return appErrors.NewUnauthorized("invalid or expired reset token")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.NewInternal("failed to hash new password")
	}

	if err := s.store.Users.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		return appErrors.NewInternal("failed to update password")
	}
	metrics.RecordPasswordReset()

	return nil
}

func (s *PasswordResetService) resetTokenValid(stored *string, expiry *time.Time, token string) bool {
	return stored != nil &&
		expiry != nil &&
		*stored == token &&
		s.now().Before(*expiry)
}
