package domain

import (
	"strings"
	"time"
)

// Role enumerates the single role a user holds at any time.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCitizen:
		return RoleCitizen, true
	case RoleStaff:
		return RoleStaff, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// User is the account record keyed by email.
// PasswordHash is set only for accounts provisioned through the local identity
// provider (staff); externally authenticated citizens never carry one.
type User struct {
	ID           string
	Email        string
	Name         string
	PhotoURL     string
	Phone        string
	Role         Role
	IsPremium    bool
	IsBlocked    bool
	IssueCount   int
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lower-cases and trims an identity so ownership comparisons
// never diverge from what was written.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayNameFor derives a default display name from the email local part.
func DisplayNameFor(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
