package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/identity"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// UserService manages account records and role administration.
type UserService struct {
	users            repository.UserRepository
	adminSetupSecret string
	logger           *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, adminSetupSecret string, logger *zap.Logger) *UserService {
	return &UserService{users: users, adminSetupSecret: adminSetupSecret, logger: logger}
}

// RegisterOrTouch provisions an account for a verified identity, or merges
// fresh name/photo into the existing record. The second return value reports
// whether the account was created by this call.
func (s *UserService) RegisterOrTouch(ctx context.Context, ident identity.Identity) (*domain.User, bool, error) {
	email := domain.NormalizeEmail(ident.Email)
	if email == "" {
		return nil, false, apperrors.NewInvalidInput("email is required", nil)
	}

	created := false
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.MapError(err)
		}
		created = true
	}

	// A brand new record without a name falls back to the email local part.
	// Existing records keep their name when the caller sends none.
	name := strings.TrimSpace(ident.Name)
	if created && name == "" {
		name = domain.DisplayNameFor(email)
	}

	user, err := s.users.Upsert(ctx, email, name, ident.PhotoURL)
	if err != nil {
		return nil, false, apperrors.MapError(err)
	}
	if created {
		s.logger.Info("account provisioned", zap.String("email", user.Email))
	}
	return user, created, nil
}

// ResolveRequester loads the account behind a verified identity, provisioning
// it on first contact. Implements auth.RequesterResolver.
func (s *UserService) ResolveRequester(ctx context.Context, ident identity.Identity) (*domain.User, error) {
	user, _, err := s.RegisterOrTouch(ctx, ident)
	return user, err
}

// GetProfile returns an account visible to the requester: their own, or any
// account when the requester is an admin.
func (s *UserService) GetProfile(ctx context.Context, requester *domain.User, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if requester.Email != email && requester.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("cannot view another user's profile")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile applies self-service profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, requester *domain.User, email string, update repository.ProfileUpdate) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if requester.Email != email && requester.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("cannot update another user's profile")
	}
	user, err := s.users.UpdateProfile(ctx, email, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns all accounts for the admin directory.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ToggleBlock flips the blocked flag on a citizen or staff account. Admin
// accounts cannot be blocked.
func (s *UserService) ToggleBlock(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if user.Role == domain.RoleAdmin {
		return nil, apperrors.NewInvalidOperation("admin accounts cannot be blocked", nil)
	}
	if err := s.users.SetBlocked(ctx, email, !user.IsBlocked); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.IsBlocked = !user.IsBlocked
	return user, nil
}

// ChangeRole sets a user's role. An admin cannot demote themselves, which
// keeps at least one reachable admin in the system.
func (s *UserService) ChangeRole(ctx context.Context, requester *domain.User, email, rawRole string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, apperrors.NewInvalidInput("invalid role", map[string]any{"role": rawRole})
	}
	if requester.Email == email && requester.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		return nil, apperrors.NewInvalidOperation("admins cannot demote themselves", nil)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.users.SetRole(ctx, email, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Role = role
	s.logger.Info("role changed",
		zap.String("email", email),
		zap.String("role", string(role)),
		zap.String("changed_by", requester.Email))
	return user, nil
}

// BootstrapAdmin promotes an existing account to admin when the caller
// presents the setup secret. The promoted account is also marked premium.
func (s *UserService) BootstrapAdmin(ctx context.Context, email, secret string) (*domain.User, error) {
	if s.adminSetupSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.adminSetupSecret)) != 1 {
		return nil, apperrors.NewForbidden("invalid setup secret")
	}
	email = domain.NormalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.users.GrantAdmin(ctx, email); err != nil {
		return nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("admin bootstrapped", zap.String("email", email))
	return user, nil
}
