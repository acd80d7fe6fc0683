package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/service"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// AdminIssuesHandler manages issue moderation endpoints.
type AdminIssuesHandler struct {
	issues *service.IssueService
	stats  *service.StatsService
}

// NewAdminIssuesHandler constructs handler.
func NewAdminIssuesHandler(issueService *service.IssueService, statsService *service.StatsService) *AdminIssuesHandler {
	return &AdminIssuesHandler{issues: issueService, stats: statsService}
}

// List GET /admin/issues. The moderation queue surfaces high priority
// issues first.
func (h *AdminIssuesHandler) List(c *fiber.Ctx) error {
	filter, page := parseIssueQuery(c)
	filter.PriorityFirst = true
	issues, total, err := h.issues.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return respondList(c, issueResponses(issues), listMeta(total, page, filter.Limit))
}

// Assign PATCH /admin/issues/:id/assign-staff.
func (h *AdminIssuesHandler) Assign(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.AssignIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if req.StaffEmail == "" {
		return apperrors.NewInvalidInput("staff_email required", nil)
	}
	issue, err := h.issues.Assign(c.UserContext(), requester, c.Params("id"), req.StaffEmail)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, issueResponse(issue))
}

// Reject PATCH /admin/issues/:id/reject.
func (h *AdminIssuesHandler) Reject(c *fiber.Ctx) error {
	requester, ok := auth.RequesterFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	issue, err := h.issues.Reject(c.UserContext(), requester, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, issueResponse(issue))
}

// Stats GET /admin/stats.
func (h *AdminIssuesHandler) Stats(c *fiber.Ctx) error {
	dashboard, err := h.stats.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, statsResponse(dashboard))
}

func statsResponse(dashboard *service.DashboardStats) dto.StatsResponse {
	return dto.StatsResponse{
		Users:        dashboard.Users,
		TotalRevenue: dashboard.TotalRevenue,
		Issues:       issueStatsBlock(dashboard.Issues),
		RecentIssues: issueResponses(dashboard.RecentIssues),
		RecentUsers:  userResponses(dashboard.RecentUsers),
	}
}

func issueStatsBlock(stats domain.IssueStats) dto.IssueStatsBlock {
	return dto.IssueStatsBlock{
		Total:        stats.Total,
		Pending:      stats.Pending,
		InProgress:   stats.InProgress,
		Resolved:     stats.Resolved,
		Rejected:     stats.Rejected,
		HighPriority: stats.HighPriority,
	}
}
