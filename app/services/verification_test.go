package services

import (
	"context"
	"testing"

	"github.com/citypress/account-service/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
VerificationService Test Cases:

1. TestVerificationService_VerifyEmail_EmptyToken
   - Empty token fails closed without a store lookup

2. TestVerificationService_VerifyEmail_UnknownToken
   - No matching row reports false without an error

3. TestVerificationService_VerifyEmail_Success
   - Matching row is flipped to verified

4. TestVerificationService_VerifyEmail_SecondRedeem
   - The token survives redemption, so a second call reports true again
     without touching the row
*/

func TestVerificationService_VerifyEmail_EmptyToken(t *testing.T) {
	lookupCalled := false
	mockUsers := &mockUsersStore{
		getByVerificationTokenFunc: func(ctx context.Context, token string) (*models.User, error) {
			lookupCalled = true
			return nil, nil
		},
	}

	svc := NewVerificationService(setupMockStorage(mockUsers))

	ok, appErr := svc.VerifyEmail(context.Background(), "")
	require.Nil(t, appErr)
	assert.False(t, ok)
	assert.False(t, lookupCalled, "Empty token must not hit the store")
}

func TestVerificationService_VerifyEmail_UnknownToken(t *testing.T) {
	svc := NewVerificationService(setupMockStorage(&mockUsersStore{}))

	ok, appErr := svc.VerifyEmail(context.Background(), "no-such-token")
	require.Nil(t, appErr)
	assert.False(t, ok)
}

func TestVerificationService_VerifyEmail_Success(t *testing.T) {
	var verifiedID int64
	mockUsers := &mockUsersStore{
		getByVerificationTokenFunc: func(ctx context.Context, token string) (*models.User, error) {
			return &models.User{ID: 11, VerificationToken: token, IsVerified: false}, nil
		},
		setVerifiedFunc: func(ctx context.Context, id int64) error {
			verifiedID = id
			return nil
		},
	}

	svc := NewVerificationService(setupMockStorage(mockUsers))

	ok, appErr := svc.VerifyEmail(context.Background(), "good-token")
	require.Nil(t, appErr)
	assert.True(t, ok)
	assert.Equal(t, int64(11), verifiedID)
}

func TestVerificationService_VerifyEmail_SecondRedeem(t *testing.T) {
	setVerifiedCalled := false
	mockUsers := &mockUsersStore{
		getByVerificationTokenFunc: func(ctx context.Context, token string) (*models.User, error) {
			// Row already verified, token still in place
			return &models.User{ID: 11, VerificationToken: token, IsVerified: true}, nil
		},
		setVerifiedFunc: func(ctx context.Context, id int64) error {
			setVerifiedCalled = true
			return nil
		},
	}

	svc := NewVerificationService(setupMockStorage(mockUsers))

	ok, appErr := svc.VerifyEmail(context.Background(), "good-token")
	require.Nil(t, appErr)
	assert.True(t, ok, "Redeeming an already-used token reports success again")
	assert.False(t, setVerifiedCalled, "An already-verified row is left alone")
}
