package dto

import (
	"time"

	"github.com/civic-care/issue-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// UserResponse exposes an account record.
type UserResponse struct {
	Email      string      `json:"email"`
	Name       string      `json:"name"`
	PhotoURL   string      `json:"photo_url,omitempty"`
	Phone      string      `json:"phone,omitempty"`
	Role       domain.Role `json:"role"`
	IsPremium  bool        `json:"is_premium"`
	IsBlocked  bool        `json:"is_blocked"`
	IssueCount int         `json:"issue_count"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// RegisterUserRequest payload for the open registration endpoint.
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url"`
}

// UpdateProfileRequest payload. Omitted fields stay unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	PhotoURL *string `json:"photo_url"`
	Phone    *string `json:"phone"`
}

// ChangeRoleRequest payload.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// SetupAdminRequest payload for one-time admin bootstrap.
type SetupAdminRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}
