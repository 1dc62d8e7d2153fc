package services

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/citypress/account-service/app/errors"
	"github.com/citypress/account-service/app/metrics"
	"github.com/citypress/account-service/app/store"
)

// VerificationService redeems email verification tokens.
type VerificationService struct {
	store store.Storage
}

func NewVerificationService(store store.Storage) *VerificationService {
	return &VerificationService{store: store}
}

// VerifyEmail marks the account owning the token as verified and reports
// whether a matching account was found. An empty token fails closed without
// touching the store. Verification tokens carry no expiry and stay on the row
// after redemption, so redeeming the same token twice succeeds both times.
func (s *VerificationService) VerifyEmail(ctx context.Context, token string) (bool, *appErrors.AppError) {
	if token == "" {
		return false, nil
	}

	user, err := s.store.Users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.NewInternal("failed to look up verification token")
	}

	if user.IsVerified {
		return true, nil
	}

	if err := s.store.Users.SetVerified(ctx, user.ID); err != nil {
		return false, appErrors.NewInternal("failed to update user verification status")
	}
	metrics.RecordEmailVerification()

	return true, nil
}
