package dto

// RegisterRequest represents the data needed to register a new account
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128,password_strength"`
	Name     string `json:"name" validate:"omitempty,max=50"`
	Phone    string `json:"phone" validate:"omitempty,max=15"`
}

// LoginRequest represents the data needed to login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// ForgotPasswordRequest opens a password reset for the given address
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ResetPasswordRequest redeems a reset token for a new password
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128,password_strength"`
}
