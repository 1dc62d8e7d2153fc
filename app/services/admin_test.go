package services

import (
	"context"
	"testing"
	"time"

	"github.com/citypress/account-service/app/dto"
	appErrors "github.com/citypress/account-service/app/errors"
	"github.com/citypress/account-service/app/models"
	"github.com/citypress/account-service/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
AdminService Test Cases:

1. TestAdminService_ListUsers
   - Every row comes back as an API summary without secrets

2. TestAdminService_CreateUser
   - Operator-picked role and verified state land on the row

3. TestAdminService_CreateUser_DuplicateEmail
   - Same conflict guard as self-registration

3a. TestAdminService_CreateUser_DuplicateEmailRace
    - Unique-index violation from Create maps to 409 Conflict

4. TestAdminService_UpdateUser
   - Profile fields are overwritten; nil image keeps the stored one;
     the password hash is never touched

5. TestAdminService_UpdateUser_NotFound
   - Unknown id maps to 404

6. TestAdminService_DeleteUser_AdminRefused
   - Admin-role targets are refused with 403, row intact

7. TestAdminService_DeleteUser_Success
   - Regular users are deleted
*/

func TestAdminService_ListUsers(t *testing.T) {
	mockUsers := &mockUsersStore{
		getAllFunc: func(ctx context.Context) ([]models.User, error) {
			return []models.User{
				{ID: 1, Email: "a@example.com", PasswordHash: "$2a$10$a", Role: models.RoleAdmin, CreatedAt: time.Now()},
				{ID: 2, Email: "b@example.com", PasswordHash: "$2a$10$b", Role: models.RoleUser, CreatedAt: time.Now()},
			}, nil
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	users, appErr := svc.ListUsers(context.Background())
	require.Nil(t, appErr)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, "admin", users[0].Role)
	assert.Equal(t, "user", users[1].Role)
}

func TestAdminService_CreateUser(t *testing.T) {
	var createdUser *models.User
	mockUsers := &mockUsersStore{
		createFunc: func(ctx context.Context, user *models.User) error {
			createdUser = user
			user.ID = 4
			user.CreatedAt = time.Now()
			return nil
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	user, appErr := svc.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		Email:      "editor@example.com",
		Password:   "Password123",
		Name:       "Editor",
		Role:       "admin",
		IsVerified: true,
	}, []byte{0xFF, 0xD8})

	require.Nil(t, appErr)
	require.NotNil(t, user)
	require.NotNil(t, createdUser)
	assert.Equal(t, models.RoleAdmin, createdUser.Role)
	assert.True(t, createdUser.IsVerified)
	assert.Equal(t, []byte{0xFF, 0xD8}, createdUser.ProfileImage)
	assert.NotEmpty(t, createdUser.VerificationToken)
	assert.NotEqual(t, "Password123", createdUser.PasswordHash)
}

func TestAdminService_CreateUser_DuplicateEmail(t *testing.T) {
	mockUsers := &mockUsersStore{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email}, nil
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	user, appErr := svc.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		Email:    "taken@example.com",
		Password: "Password123",
		Role:     "user",
	}, nil)

	require.Nil(t, user)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrCodeConflict, appErr.Code)
}

func TestAdminService_CreateUser_DuplicateEmailRace(t *testing.T) {
	mockUsers := &mockUsersStore{
		createFunc: func(ctx context.Context, user *models.User) error {
			return store.ErrDuplicateEmail
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	user, appErr := svc.CreateUser(context.Background(), dto.AdminCreateUserRequest{
		Email:    "taken@example.com",
		Password: "Password123",
		Role:     "user",
	}, nil)

	require.Nil(t, user)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrCodeConflict, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestAdminService_UpdateUser(t *testing.T) {
	storedImage := []byte{0x01, 0x02}
	var updatedUser *models.User
	mockUsers := &mockUsersStore{
		getByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{
				ID:           id,
				Email:        "reader@example.com",
				PasswordHash: "$2a$10$stored",
				Name:         "Old Name",
				Role:         models.RoleUser,
				ProfileImage: storedImage,
			}, nil
		},
		updateProfileFunc: func(ctx context.Context, user *models.User) error {
			updatedUser = user
			return nil
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	appErr := svc.UpdateUser(context.Background(), 5, dto.AdminUpdateUserRequest{
		Name:       "New Name",
		Phone:      "5559999",
		Role:       "admin",
		IsVerified: true,
	}, nil)

	require.Nil(t, appErr)
	require.NotNil(t, updatedUser)
	assert.Equal(t, "New Name", updatedUser.Name)
	assert.Equal(t, "5559999", updatedUser.Phone)
	assert.Equal(t, models.RoleAdmin, updatedUser.Role)
	assert.True(t, updatedUser.IsVerified)
	assert.Equal(t, storedImage, updatedUser.ProfileImage, "Nil image keeps the stored one")
	assert.Equal(t, "$2a$10$stored", updatedUser.PasswordHash, "Password is never updated here")
}

func TestAdminService_UpdateUser_NotFound(t *testing.T) {
	svc := NewAdminService(setupMockStorage(&mockUsersStore{}))

	appErr := svc.UpdateUser(context.Background(), 99, dto.AdminUpdateUserRequest{Role: "user"}, nil)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
}

func TestAdminService_DeleteUser_AdminRefused(t *testing.T) {
	deleteCalled := false
	mockUsers := &mockUsersStore{
		getByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleAdmin}, nil
		},
		deleteFunc: func(ctx context.Context, id int64) error {
			deleteCalled = true
			return nil
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	appErr := svc.DeleteUser(context.Background(), 1)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrCodeForbidden, appErr.Code)
	assert.False(t, deleteCalled, "Admin rows are never deleted")
}

func TestAdminService_DeleteUser_Success(t *testing.T) {
	var deletedID int64
	mockUsers := &mockUsersStore{
		getByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleUser}, nil
		},
		deleteFunc: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}

	svc := NewAdminService(setupMockStorage(mockUsers))

	appErr := svc.DeleteUser(context.Background(), 8)
	require.Nil(t, appErr)
	assert.Equal(t, int64(8), deletedID)
}
