package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/identity"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// StaffService manages staff accounts on behalf of admins.
type StaffService struct {
	users    repository.UserRepository
	provider identity.Provider
	logger   *zap.Logger
}

// StaffCreateInput describes a new staff account.
type StaffCreateInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	PhotoURL string
}

// StaffEditInput carries optional staff record changes.
type StaffEditInput struct {
	Name      *string
	Phone     *string
	PhotoURL  *string
	Password  *string
	IsBlocked *bool
}

// NewStaffService constructs the service.
func NewStaffService(users repository.UserRepository, provider identity.Provider, logger *zap.Logger) *StaffService {
	return &StaffService{users: users, provider: provider, logger: logger}
}

// List returns all staff accounts.
func (s *StaffService) List(ctx context.Context) ([]domain.User, error) {
	staff, err := s.users.ListByRole(ctx, domain.RoleStaff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// Create provisions a staff account. If the email already belongs to a
// citizen, the record is promoted to staff in place.
func (s *StaffService) Create(ctx context.Context, input StaffCreateInput) (*domain.User, error) {
	details := map[string]any{}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "required"
	}
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		details["email"] = "required"
	}
	if input.Password == "" {
		details["password"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewInvalidInput("missing required fields", details)
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		if existing.Role == domain.RoleAdmin {
			return nil, apperrors.NewInvalidOperation("cannot convert an admin account to staff", nil)
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	user, err := s.users.ReplaceAsStaff(ctx, &domain.User{
		Email:    email,
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		PhotoURL: strings.TrimSpace(input.PhotoURL),
		Role:     domain.RoleStaff,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.provider.CreateAccount(ctx, email, input.Password, user.Name, user.PhotoURL); err != nil {
		s.logger.Warn("identity provider account creation failed",
			zap.String("email", email), zap.Error(err))
	}
	return user, nil
}

// Update edits an existing staff record and syncs credential changes.
func (s *StaffService) Update(ctx context.Context, email string, input StaffEditInput) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if err := s.requireStaff(ctx, email); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateStaffFields(ctx, email, repository.StaffUpdate{
		Name:      input.Name,
		Phone:     input.Phone,
		PhotoURL:  input.PhotoURL,
		IsBlocked: input.IsBlocked,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Staff member", nil)
		}
		return nil, apperrors.MapError(err)
	}

	if input.Password != nil || input.Name != nil || input.PhotoURL != nil {
		update := identity.AccountUpdate{
			DisplayName: input.Name,
			PhotoURL:    input.PhotoURL,
			Password:    input.Password,
		}
		if err := s.provider.UpdateAccount(ctx, email, update); err != nil {
			s.logger.Warn("identity provider account update failed",
				zap.String("email", email), zap.Error(err))
		}
	}
	return user, nil
}

// Delete removes a staff account and its provider credentials.
func (s *StaffService) Delete(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if err := s.requireStaff(ctx, email); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Staff member", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.provider.DeleteAccount(ctx, email); err != nil {
		s.logger.Warn("identity provider account deletion failed",
			zap.String("email", email), zap.Error(err))
	}
	return nil
}

func (s *StaffService) requireStaff(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Staff member", nil)
		}
		return apperrors.MapError(err)
	}
	if user.Role != domain.RoleStaff {
		return apperrors.NewInvalidOperation("target user is not a staff member", nil)
	}
	return nil
}
