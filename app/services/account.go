package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/citypress/account-service/app/dto"
	appErrors "github.com/citypress/account-service/app/errors"
	"github.com/citypress/account-service/app/metrics"
	"github.com/citypress/account-service/app/models"
	"github.com/citypress/account-service/app/store"
	"golang.org/x/crypto/bcrypt"
)

// AccountService handles self-service registration and authentication.
type AccountService struct {
	store    store.Storage
	notifier Notifier
	baseURL  string
}

// NewAccountService creates a new AccountService
func NewAccountService(store store.Storage, notifier Notifier, baseURL string) *AccountService {
	return &AccountService{
		store:    store,
		notifier: notifier,
		baseURL:  baseURL,
	}
}

// Register creates an unverified account and mails the verification link.
// Input validation (format, length) is done in the handler layer; this
// function owns the duplicate-email guard and the token issue.
func (s *AccountService) Register(ctx context.Context, req dto.RegisterRequest, profileImage []byte) (*models.User, *appErrors.AppError) {
	existing, err := s.store.Users.GetByEmail(ctx, req.Email)
	if err == nil && existing != nil {
		return nil, appErrors.NewConflict("email is already registered")
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.NewInternal("database error while checking email")
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
		Role:              models.RoleUser,
		VerificationToken: newToken(),
		IsVerified:        false,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		// A concurrent registration can slip past the pre-check; the unique
		// index catches it.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, appErrors.NewConflict("email is already registered")
		}
		return nil, appErrors.NewInternal("error creating user")
	}
	metrics.RecordRegistration()

	// Mail delivery is best-effort: a notifier failure never rolls back the
	// registration.
	if s.notifier != nil {
		link := verificationURL(s.baseURL, user.VerificationToken)
		if err := s.notifier.SendVerificationEmail(ctx, user.Email, link); err != nil {
			metrics.RecordMailFailure("verification")
			log := getLoggerFromContext(ctx)
			log.Error().
				Err(err).
				Int64("user_id", user.ID).
				Str("email", user.Email).
				Msg("failed to send verification email")
		}
	}

	return user, nil
}

// Authenticate returns the user for a matching email/password pair. Absent
// email and wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, *appErrors.AppError) {
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.RecordLoginFailed()
			return nil, appErrors.NewUnauthorized("invalid email or password")
		}
		return nil, appErrors.NewInternal("error getting user by email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			metrics.RecordLoginFailed()
			return nil, appErrors.NewUnauthorized("invalid email or password")
		}
		return nil, appErrors.NewInternal("error verifying password")
	}

	metrics.RecordLogin()
	return user, nil
}

// GetUser loads one user row for the session "me" endpoint.
func (s *AccountService) GetUser(ctx context.Context, id int64) (*models.User, *appErrors.AppError) {
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("user")
		}
		return nil, appErrors.NewInternal("error getting user")
	}
	return user, nil
}
