package dto

// AdminCreateUserRequest is the admin-console variant of registration: the
// operator may set role and verified state up front.
type AdminCreateUserRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required,min=8,max=128,password_strength"`
	Name       string `json:"name" validate:"omitempty,max=50"`
	Phone      string `json:"phone" validate:"omitempty,max=15"`
	Role       string `json:"role" validate:"required,oneof=user admin"`
	IsVerified bool   `json:"is_verified"`
}

// AdminUpdateUserRequest overwrites a user's mutable profile fields. The
// password is never updated through this path.
type AdminUpdateUserRequest struct {
	Name       string `json:"name" validate:"omitempty,max=50"`
	Phone      string `json:"phone" validate:"omitempty,max=15"`
	Role       string `json:"role" validate:"required,oneof=user admin"`
	IsVerified bool   `json:"is_verified"`
}
