package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/service"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// StaffAccountsHandler manages admin-driven staff account CRUD.
type StaffAccountsHandler struct {
	service *service.StaffService
}

// NewStaffAccountsHandler constructs handler.
func NewStaffAccountsHandler(staffService *service.StaffService) *StaffAccountsHandler {
	return &StaffAccountsHandler{service: staffService}
}

// List GET /admin/staff.
func (h *StaffAccountsHandler) List(c *fiber.Ctx) error {
	staff, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponses(staff))
}

// Create POST /admin/staff.
func (h *StaffAccountsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	user, err := h.service.Create(c.UserContext(), service.StaffCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, userResponse(user))
}

// Update PATCH /admin/staff/:email.
func (h *StaffAccountsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	user, err := h.service.Update(c.UserContext(), c.Params("email"), service.StaffEditInput{
		Name:      req.Name,
		Phone:     req.Phone,
		PhotoURL:  req.PhotoURL,
		Password:  req.Password,
		IsBlocked: req.IsBlocked,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, userResponse(user))
}

// Delete DELETE /admin/staff/:email.
func (h *StaffAccountsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("email")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
