package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/dto"
	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/repository"
)

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func respondList(c *fiber.Ctx, data any, meta dto.ListMeta) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		Email:      user.Email,
		Name:       user.Name,
		PhotoURL:   user.PhotoURL,
		Phone:      user.Phone,
		Role:       user.Role,
		IsPremium:  user.IsPremium,
		IsBlocked:  user.IsBlocked,
		IssueCount: user.IssueCount,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return items
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	resp := dto.IssueResponse{
		ID:               issue.ID,
		Title:            issue.Title,
		Description:      issue.Description,
		Category:         issue.Category,
		Location:         issue.Location,
		Image:            issue.Image,
		Priority:         issue.Priority,
		Status:           issue.Status,
		ReportedBy:       issue.ReportedBy,
		ReporterName:     issue.ReporterName,
		ReporterPhotoURL: issue.ReporterPhotoURL,
		UpvoteCount:      issue.UpvoteCount,
		UpvotedBy:        issue.UpvotedBy,
		CreatedAt:        issue.CreatedAt,
		UpdatedAt:        issue.UpdatedAt,
	}
	if issue.AssignedTo != nil {
		resp.AssignedTo = &dto.AssigneeResponse{
			Email:      issue.AssignedTo.Email,
			Name:       issue.AssignedTo.Name,
			PhotoURL:   issue.AssignedTo.PhotoURL,
			AssignedAt: issue.AssignedTo.AssignedAt,
		}
	}
	for _, entry := range issue.Timeline {
		resp.Timeline = append(resp.Timeline, dto.TimelineEntryResponse{
			Status:    entry.Status,
			Message:   entry.Message,
			UpdatedBy: entry.UpdatedBy,
			CreatedAt: entry.CreatedAt,
		})
	}
	return resp
}

func issueResponses(issues []domain.Issue) []dto.IssueResponse {
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return items
}

func paymentResponse(payment *domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:            payment.ID,
		Email:         payment.Email,
		Amount:        payment.Amount,
		Method:        payment.Method,
		TransactionID: payment.TransactionID,
		MonthKey:      payment.MonthKey,
		CreatedAt:     payment.CreatedAt,
	}
}

func paymentResponses(payments []domain.Payment) []dto.PaymentResponse {
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, paymentResponse(&payments[i]))
	}
	return items
}

// parseIssueQuery reads the list query string. Pagination is page based; the
// returned page feeds listMeta while the filter carries the derived offset.
func parseIssueQuery(c *fiber.Ctx) (repository.IssueFilter, int) {
	page := parseIntQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := parseIntQuery(c, "limit", 20)
	if limit < 1 {
		limit = 20
	}
	filter := repository.IssueFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		Category:   strings.TrimSpace(c.Query("category")),
		ReportedBy: domain.NormalizeEmail(c.Query("reportedBy")),
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	if status, ok := domain.ParseStatus(c.Query("status")); ok && c.Query("status") != "" {
		filter.Status = status
	}
	if priority, ok := domain.ParsePriority(c.Query("priority")); ok && c.Query("priority") != "" {
		filter.Priority = priority
	}
	return filter, page
}

func listMeta(total, page, limit int) dto.ListMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return dto.ListMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

func parseIntQuery(c *fiber.Ctx, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
