package dto

import (
	"time"

	"github.com/civic-care/issue-service/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Image       string `json:"image"`
	Priority    string `json:"priority"`
}

// UpdateIssueRequest payload. Omitted fields stay unchanged.
type UpdateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Image       *string `json:"image"`
	Priority    *string `json:"priority"`
}

// AssignIssueRequest payload.
type AssignIssueRequest struct {
	StaffEmail string `json:"staff_email"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// AssigneeResponse embeds assignment details.
type AssigneeResponse struct {
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	PhotoURL   string    `json:"photo_url,omitempty"`
	AssignedAt time.Time `json:"assigned_at"`
}

// TimelineEntryResponse is one audit record.
type TimelineEntryResponse struct {
	Status    domain.IssueStatus `json:"status"`
	Message   string             `json:"message"`
	UpdatedBy string             `json:"updated_by"`
	CreatedAt time.Time          `json:"created_at"`
}

// IssueResponse exposes an issue. Timeline is populated on detail endpoints.
type IssueResponse struct {
	ID               string                  `json:"id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Category         string                  `json:"category"`
	Location         string                  `json:"location"`
	Image            string                  `json:"image,omitempty"`
	Priority         domain.IssuePriority    `json:"priority"`
	Status           domain.IssueStatus      `json:"status"`
	ReportedBy       string                  `json:"reported_by"`
	ReporterName     string                  `json:"reporter_name"`
	ReporterPhotoURL string                  `json:"reporter_photo_url,omitempty"`
	AssignedTo       *AssigneeResponse       `json:"assigned_to,omitempty"`
	UpvoteCount      int                     `json:"upvote_count"`
	UpvotedBy        []string                `json:"upvoted_by,omitempty"`
	Timeline         []TimelineEntryResponse `json:"timeline,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ListMeta carries pagination info.
type ListMeta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// StatsResponse aggregates dashboard counters.
type StatsResponse struct {
	Users        int             `json:"users"`
	TotalRevenue int64           `json:"total_revenue"`
	Issues       IssueStatsBlock `json:"issues"`
	RecentIssues []IssueResponse `json:"recent_issues"`
	RecentUsers  []UserResponse  `json:"recent_users"`
}

// IssueStatsBlock carries issue lifecycle counters.
type IssueStatsBlock struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	InProgress   int `json:"in_progress"`
	Resolved     int `json:"resolved"`
	Rejected     int `json:"rejected"`
	HighPriority int `json:"high_priority"`
}
