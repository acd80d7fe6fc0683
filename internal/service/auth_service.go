package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/identity"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// AuthService issues access tokens for locally provisioned accounts.
type AuthService struct {
	users  repository.UserRepository
	tokens *identity.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(users repository.UserRepository, tokens *identity.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login verifies email/password credentials and returns a signed token. All
// credential failures collapse into the same response.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", time.Time{}, nil, apperrors.NewUnauthenticated("invalid credentials")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, nil, apperrors.NewUnauthenticated("invalid credentials")
		}
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	if user.IsBlocked {
		return "", time.Time{}, nil, apperrors.NewForbidden("account is blocked")
	}
	if user.PasswordHash == nil {
		return "", time.Time{}, nil, apperrors.NewUnauthenticated("invalid credentials")
	}
	if err := identity.ComparePassword(*user.PasswordHash, password); err != nil {
		return "", time.Time{}, nil, apperrors.NewUnauthenticated("invalid credentials")
	}

	token, expiresAt, err := s.tokens.Issue(identity.Identity{
		Email:    user.Email,
		Name:     user.Name,
		PhotoURL: user.PhotoURL,
	})
	if err != nil {
		return "", time.Time{}, nil, apperrors.MapError(err)
	}
	return token, expiresAt, user, nil
}
