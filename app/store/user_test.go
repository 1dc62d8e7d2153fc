package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/citypress/account-service/app/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
UsersStore Test Cases:

1. TestUsersStore_Create_Success
   - Insert returns id and created_at, both land on the struct

2. TestUsersStore_Create_DatabaseError
   - Insert failure is surfaced

2a. TestUsersStore_Create_DuplicateEmail
    - Postgres unique violation comes back as ErrDuplicateEmail

3. TestUsersStore_GetByEmail_Success
   - Full row scans into the struct, including nullable token columns

4. TestUsersStore_GetByEmail_NotFound
   - sql.ErrNoRows is passed through untouched

5. TestUsersStore_GetByVerificationToken_Success
   - Lookup by token column

6. TestUsersStore_GetAll_Success
   - Every row comes back in id order

7. TestUsersStore_SetVerified_Success
   - Update touches exactly one row

8. TestUsersStore_SaveResetToken_Success
   - Token and expiry are written to the target row

9. TestUsersStore_UpdatePassword_ClearsResetColumns
   - One statement replaces the hash and nulls both token columns

10. TestUsersStore_UpdatePassword_NoRow
    - Zero rows affected maps to sql.ErrNoRows

11. TestUsersStore_Delete_NoRow
    - Deleting a missing id maps to sql.ErrNoRows
*/

var userCols = []string{
	"id", "email", "password_hash", "name", "phone", "profile_image", "role",
	"verification_token", "is_verified", "reset_token", "reset_token_expiry", "created_at",
}

// setupMockDB creates a mock database and UsersStore for testing
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *UsersStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock database")

	store := &UsersStore{db: db}

	return db, mock, store
}

func TestUsersStore_Create_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	user := &models.User{
		Email:             "reader@example.com",
		PasswordHash:      "$2a$10$hashedpassword",
		Name:              "Reader",
		Phone:             "5551234",
		Role:              models.RoleUser,
		VerificationToken: "verify-token",
		IsVerified:        false,
	}

	expectedID := int64(1)
	expectedCreatedAt := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.Email, user.PasswordHash, user.Name, user.Phone, nil, user.Role, user.VerificationToken, user.IsVerified).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
			AddRow(expectedID, expectedCreatedAt))

	err := store.Create(context.Background(), user)

	require.NoError(t, err, "Create should not return error")
	assert.Equal(t, expectedID, user.ID, "User ID should be set")
	assert.Equal(t, expectedCreatedAt, user.CreatedAt, "CreatedAt should be set")
	assert.NoError(t, mock.ExpectationsWereMet(), "All expectations should be met")
}

func TestUsersStore_Create_DatabaseError(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(errors.New("connection refused"))

	err := store.Create(context.Background(), &models.User{Email: "reader@example.com"})

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_Create_DuplicateEmail(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := store.Create(context.Background(), &models.User{Email: "reader@example.com"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_GetByEmail_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	resetToken := "reset-token"
	resetExpiry := time.Date(2025, 1, 15, 11, 30, 0, 0, time.UTC)
	createdAt := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("reader@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(5), "reader@example.com", "$2a$10$hash", "Reader", "5551234",
				[]byte{0xFF}, "user", "verify-token", true, resetToken, resetExpiry, createdAt))

	user, err := store.GetByEmail(context.Background(), "reader@example.com")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(5), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsVerified)
	require.NotNil(t, user.ResetToken)
	assert.Equal(t, resetToken, *user.ResetToken)
	require.NotNil(t, user.ResetTokenExpiry)
	assert.Equal(t, resetExpiry, *user.ResetTokenExpiry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_GetByEmail_NotFound(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := store.GetByEmail(context.Background(), "nobody@example.com")

	require.Nil(t, user)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_GetByVerificationToken_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	createdAt := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE verification_token = \$1`).
		WithArgs("verify-token").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(5), "reader@example.com", "$2a$10$hash", "", "",
				nil, "user", "verify-token", false, nil, nil, createdAt))

	user, err := store.GetByVerificationToken(context.Background(), "verify-token")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "verify-token", user.VerificationToken)
	assert.False(t, user.IsVerified)
	assert.Nil(t, user.ResetToken)
	assert.Nil(t, user.ResetTokenExpiry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_GetAll_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	createdAt := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id`).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "a@example.com", "$2a$10$a", "", "", nil, "admin", "t1", true, nil, nil, createdAt).
			AddRow(int64(2), "b@example.com", "$2a$10$b", "", "", nil, "user", "t2", false, nil, nil, createdAt))

	users, err := store.GetAll(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, "b@example.com", users[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_SetVerified_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET is_verified = TRUE WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SetVerified(context.Background(), 5)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_SaveResetToken_Success(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	expiry := time.Date(2025, 1, 15, 11, 30, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users SET reset_token = \$1, reset_token_expiry = \$2 WHERE id = \$3`).
		WithArgs("reset-token", expiry, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SaveResetToken(context.Background(), 5, "reset-token", expiry)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_UpdatePassword_ClearsResetColumns(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET password_hash = \$1, reset_token = NULL, reset_token_expiry = NULL WHERE id = \$2`).
		WithArgs("$2a$10$newhash", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdatePassword(context.Background(), 5, "$2a$10$newhash")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_UpdatePassword_NoRow(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET password_hash = \$1, reset_token = NULL, reset_token_expiry = NULL WHERE id = \$2`).
		WithArgs("$2a$10$newhash", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdatePassword(context.Background(), 99, "$2a$10$newhash")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_Delete_NoRow(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), 99)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
