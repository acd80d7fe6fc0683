package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/identity"
	"github.com/civic-care/issue-service/internal/repository"
	"github.com/civic-care/issue-service/internal/service"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// UsersHandler manages account endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// Register POST /users. Open endpoint: the email comes from the body, so an
// account can be created before any token exists. Re-posting an existing
// email merges the supplied profile fields and reports the record back.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}

	user, created, err := h.service.RegisterOrTouch(c.UserContext(), identity.Identity{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return respond(c, status, userResponse(user))
}

// Me GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return respond(c, fiber.StatusOK, userResponse(requester))
}

// GetProfile GET /users/profile/:email.
func (h *UsersHandler) GetProfile(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	user, err := h.service.GetProfile(c.UserContext(), requester, c.Params("email"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponse(user))
}

// UpdateProfile PATCH /users/profile. Always targets the requester's own
// record.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	user, err := h.service.UpdateProfile(c.UserContext(), requester, requester.Email, repository.ProfileUpdate{
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponse(user))
}

// List GET /users. Admin only.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponses(users))
}

// ToggleBlock PATCH /users/:email/toggle-block. Admin only.
func (h *UsersHandler) ToggleBlock(c *fiber.Ctx) error {
	user, err := h.service.ToggleBlock(c.UserContext(), c.Params("email"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponse(user))
}

// ChangeRole PATCH /admin/users/:email/role.
func (h *UsersHandler) ChangeRole(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	user, err := h.service.ChangeRole(c.UserContext(), requester, c.Params("email"), req.Role)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponse(user))
}

// SetupAdmin POST /setup-admin. Guarded by the setup secret rather than
// a session, so the very first admin can be bootstrapped.
func (h *UsersHandler) SetupAdmin(c *fiber.Ctx) error {
	var req dto.SetupAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	user, err := h.service.BootstrapAdmin(c.UserContext(), req.Email, req.Secret)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponse(user))
}
