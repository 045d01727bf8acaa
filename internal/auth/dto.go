package auth

import (
	"github.com/magusbylili/storefront-backend/internal/users"
)

// RegisterRequest contains the payload required to create an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest carries the credentials for an email/password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login. The token is also set as an
// HTTP-only cookie by the controller.
type AuthResponse struct {
	Token string         `json:"token"`
	User  *users.UserDTO `json:"user"`
}

// PasswordResetRequest starts the forgot-password flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest completes the forgot-password flow.
type PasswordResetConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// PromoteRequest names the account to elevate to admin.
type PromoteRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ChangePasswordRequest rotates the caller's own credential.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// EmailChangeRequest starts the two-step email change flow.
type EmailChangeRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
}

// EmailChangeConfirmRequest completes the email change flow.
type EmailChangeConfirmRequest struct {
	Token string `json:"token" validate:"required"`
}
