package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/citypress/account-service/app/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned by Create when the email unique index rejects
// the insert. Callers race their pre-check against concurrent registrations,
// so the constraint violation has to come back as its own error.
var ErrDuplicateEmail = errors.New("email already registered")

// uniqueViolation is the postgres error code for a unique constraint failure.
const uniqueViolation = "23505"

type UsersStore struct {
	db *sql.DB
}

const userColumns = `id, email, password_hash, name, phone, profile_image, role,
	verification_token, is_verified, reset_token, reset_token_expiry, created_at`

func scanUser(row interface{ Scan(...any) error }, user *models.User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Phone,
		&user.ProfileImage,
		&user.Role,
		&user.VerificationToken,
		&user.IsVerified,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
	)
}

func (s *UsersStore) GetAll(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	var users []models.User
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var user models.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *UsersStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user models.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	var user models.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, email), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	var user models.User
	if err := scanUser(s.db.QueryRowContext(ctx, query, token), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersStore) Create(ctx context.Context, user *models.User) error {
	query := `
	INSERT INTO users (email, password_hash, name, phone, profile_image, role, verification_token, is_verified)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.ProfileImage,
		user.Role,
		user.VerificationToken,
		user.IsVerified,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil
}

// UpdateProfile overwrites the mutable profile fields. The password hash and
// the token columns are managed by their own statements.
func (s *UsersStore) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = $1, phone = $2, profile_image = $3, role = $4, is_verified = $5 WHERE id = $6`
	res, err := s.db.ExecContext(ctx, query,
		user.Name,
		user.Phone,
		user.ProfileImage,
		user.Role,
		user.IsVerified,
		user.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *UsersStore) SetVerified(ctx context.Context, id int64) error {
	query := `UPDATE users SET is_verified = TRUE WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *UsersStore) SaveResetToken(ctx context.Context, id int64, token string, expiry time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE id = $3`
	res, err := s.db.ExecContext(ctx, query, token, expiry, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdatePassword replaces the stored hash and closes any open reset request in
// the same statement.
func (s *UsersStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL WHERE id = $2`
	res, err := s.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *UsersStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps a zero-row mutation to sql.ErrNoRows so callers can treat
// missing ids uniformly with missing lookups.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
