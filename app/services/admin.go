package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/citypress/account-service/app/dto"
	appErrors "github.com/citypress/account-service/app/errors"
	"github.com/citypress/account-service/app/models"
	"github.com/citypress/account-service/app/store"
	"golang.org/x/crypto/bcrypt"
)

// AdminService is the user-management backend for the admin console.
type AdminService struct {
	store store.Storage
}

func NewAdminService(store store.Storage) *AdminService {
	return &AdminService{store: store}
}

// ListUsers returns every account as an API summary.
func (s *AdminService) ListUsers(ctx context.Context) ([]dto.UserResponse, *appErrors.AppError) {
	users, err := s.store.Users.GetAll(ctx)
	if err != nil {
		return nil, appErrors.NewInternal("error listing users")
	}

	summaries := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		summaries = append(summaries, dto.NewUserResponse(&users[i]))
	}
	return summaries, nil
}

// GetUser returns one account summary by id.
func (s *AdminService) GetUser(ctx context.Context, id int64) (*dto.UserResponse, *appErrors.AppError) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("user")
		}
		return nil, appErrors.NewInternal("error getting user")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// CreateUser creates an account from the admin console. Same duplicate-email
// guard as self-registration; the operator picks role and verified state.
func (s *AdminService) CreateUser(ctx context.Context, req dto.AdminCreateUserRequest, profileImage []byte) (*models.User, *appErrors.AppError) {
	existing, err := s.store.Users.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, appErrors.NewConflict("email is already registered")
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewInternal("database error while checking email")
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		return nil, appErrors.NewInvalidInput("unknown role")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.NewInternal("error hashing password")
	}

	user := &models.User{
		Email:             req.Email,
		PasswordHash:      string(passwordHash),
		Name:              req.Name,
		Phone:             req.Phone,
		ProfileImage:      profileImage,
		Role:              role,
		VerificationToken: newToken(),
		IsVerified:        req.IsVerified,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, appErrors.NewConflict("email is already registered")
		}
		return nil, appErrors.NewInternal("error creating user")
	}

	return user, nil
}

// UpdateUser overwrites the mutable profile fields of an existing account.
// A nil profileImage keeps the stored image; the password is never touched.
func (s *AdminService) UpdateUser(ctx context.Context, id int64, req dto.AdminUpdateUserRequest, profileImage []byte) *appErrors.AppError {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewNotFound("user")
		}
		return appErrors.NewInternal("error getting user")
	}

	role := models.Role(req.Role)
	if !role.Valid() {
		return appErrors.NewInvalidInput("unknown role")
	}

	user.Name = req.Name
	user.Phone = req.Phone
	user.Role = role
	user.IsVerified = req.IsVerified
	if profileImage != nil {
		user.ProfileImage = profileImage
	}

	if err := s.store.Users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewNotFound("user")
		}
		return appErrors.NewInternal("error updating user")
	}
	return nil
}

// DeleteUser removes an account. Admin-role accounts are never deleted; the
// call refuses and the row stays intact.
func (s *AdminService) DeleteUser(ctx context.Context, id int64) *appErrors.AppError {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewNotFound("user")
		}
		return appErrors.NewInternal("error getting user")
	}

	if user.Role.IsAdmin() {
		return appErrors.NewForbidden("admin accounts cannot be deleted")
	}

	if err := s.store.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.NewNotFound("user")
		}
		return appErrors.NewInternal("error deleting user")
	}
	return nil
}
