package models

import "time"

// Role is the coarse authorization tag carried on a user row.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsAdmin reports whether the role grants access to the admin console.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is one account row. Password is only ever stored as a bcrypt hash.
// VerificationToken stays populated after redemption; ResetToken and
// ResetTokenExpiry are set together while a reset request is open and cleared
// together on success.
type User struct {
	ID                int64
	Email             string
	PasswordHash      string
	Name              string
	Phone             string
	ProfileImage      []byte
	Role              Role
	VerificationToken string
	IsVerified        bool
	ResetToken        *string
	ResetTokenExpiry  *time.Time
	CreatedAt         time.Time
}
