package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/citypress/account-service/app/models"
)

type Storage struct {
	Users interface {
		GetAll(ctx context.Context) ([]models.User, error)
		GetByID(ctx context.Context, id int64) (*models.User, error)
		GetByEmail(ctx context.Context, email string) (*models.User, error)
		GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
		Create(ctx context.Context, user *models.User) error
		UpdateProfile(ctx context.Context, user *models.User) error
		SetVerified(ctx context.Context, id int64) error
		SaveResetToken(ctx context.Context, id int64, token string, expiry time.Time) error
		UpdatePassword(ctx context.Context, id int64, passwordHash string) error
		Delete(ctx context.Context, id int64) error
	}
}

func NewStorage(db *sql.DB) Storage {
	return Storage{
		Users: &UsersStore{db: db},
	}
}
