package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/service"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// StaffIssuesHandler manages the staff work queue.
type StaffIssuesHandler struct {
	service *service.IssueService
}

// NewStaffIssuesHandler constructs handler.
func NewStaffIssuesHandler(issueService *service.IssueService) *StaffIssuesHandler {
	return &StaffIssuesHandler{service: issueService}
}

// List GET /staff/issues.
func (h *StaffIssuesHandler) List(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	filter, page := parseIssueQuery(c)
	issues, total, err := h.service.ListAssigned(c.UserContext(), requester, filter)
	if err != nil {
		return err
	}
	return respondList(c, issueResponses(issues), listMeta(total, page, filter.Limit))
}

// UpdateStatus PATCH /staff/issues/:id/status.
func (h *StaffIssuesHandler) UpdateStatus(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	issue, err := h.service.AdvanceStatus(c.UserContext(), requester, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, issueResponse(issue))
}
