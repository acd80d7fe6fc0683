package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/service"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// IssuesHandler manages citizen-facing issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// List GET /issues. Public browse, newest first.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	filter, page := parseIssueQuery(c)
	issues, total, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respondList(c, issueResponses(issues), listMeta(total, page, filter.Limit))
}

// ResolvedFeed GET /issues/resolved.
func (h *IssuesHandler) ResolvedFeed(c *fiber.Ctx) error {
	issues, err := h.service.ResolvedFeed(c.UserContext(), parseIntQuery(c, "limit", 6))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, issueResponses(issues))
}

// Get GET /issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	issue, err := h.service.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, issueResponse(issue))
}

// Create POST /issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	issue, err := h.service.Create(c.UserContext(), requester, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Image:       req.Image,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, issueResponse(issue))
}

// Update PATCH /issues/:id.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	issue, err := h.service.Update(c.UserContext(), requester, c.Params("id"), service.IssueEditInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Image:       req.Image,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, issueResponse(issue))
}

// Delete DELETE /issues/:id.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), requester, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// Upvote PATCH /issues/:id/upvote.
func (h *IssuesHandler) Upvote(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	count, err := h.service.Upvote(c.UserContext(), requester, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"upvote_count": count})
}

// ListMine GET /my-issues.
func (h *IssuesHandler) ListMine(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	filter, page := parseIssueQuery(c)
	issues, total, err := h.service.ListMine(c.UserContext(), requester, filter)
	if err != nil {
		return err
	}
	return respondList(c, issueResponses(issues), listMeta(total, page, filter.Limit))
}
