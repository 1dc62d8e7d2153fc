package dto

import (
	"encoding/base64"
	"time"

	"github.com/citypress/account-service/app/models"
)

// UserResponse represents user data in API responses. It never carries the
// password hash or either token; the profile image rides along base64-encoded.
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Role         string `json:"role"`
	IsVerified   bool   `json:"is_verified"`
	ProfileImage string `json:"profile_image,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// NewUserResponse strips a user row down to its API shape.
func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
	if len(u.ProfileImage) > 0 {
		resp.ProfileImage = base64.StdEncoding.EncodeToString(u.ProfileImage)
	}
	return resp
}

// RegisterResponse represents the response after successful registration
type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
