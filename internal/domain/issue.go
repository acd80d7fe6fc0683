package domain

import (
	"strings"
	"time"
)

// IssueStatus enumerates canonical lifecycle states. Only these values are
// ever stored; synonyms are collapsed at the input boundary.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "pending"
	IssueStatusInProgress IssueStatus = "in-progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusRejected   IssueStatus = "rejected"
)

// IssuePriority enumerates urgency.
type IssuePriority string

const (
	IssuePriorityNormal IssuePriority = "normal"
	IssuePriorityHigh   IssuePriority = "high"
)

// ParseStatus normalizes a raw status, accepting the historical synonyms
// "working" and "closed".
func ParseStatus(raw string) (IssueStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return IssueStatusPending, true
	case "in-progress", "working":
		return IssueStatusInProgress, true
	case "resolved", "closed":
		return IssueStatusResolved, true
	case "rejected":
		return IssueStatusRejected, true
	default:
		return "", false
	}
}

// ParsePriority normalizes a raw priority value.
func ParsePriority(raw string) (IssuePriority, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "normal":
		return IssuePriorityNormal, true
	case "high":
		return IssuePriorityHigh, true
	default:
		return "", false
	}
}

// Assignee is the staff member an admin attached to an issue. Assignment is
// not a status of its own; it is implied by this field being present.
type Assignee struct {
	Email      string
	Name       string
	PhotoURL   string
	AssignedAt time.Time
}

// Issue is the aggregate for citizen reports.
type Issue struct {
	ID               string
	Title            string
	Description      string
	Category         string
	Location         string
	Image            string
	Priority         IssuePriority
	Status           IssueStatus
	ReportedBy       string
	ReporterName     string
	ReporterPhotoURL string
	AssignedTo       *Assignee
	UpvoteCount      int
	UpvotedBy        []string
	Timeline         []TimelineEntry
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasUpvoted reports whether the identity already appears in the upvoter set.
func (i *Issue) HasUpvoted(email string) bool {
	for _, voter := range i.UpvotedBy {
		if voter == email {
			return true
		}
	}
	return false
}

// TimelineEntry is an immutable audit record appended on every state-affecting
// action.
type TimelineEntry struct {
	ID        string
	IssueID   string
	Status    IssueStatus
	Message   string
	UpdatedBy string
	CreatedAt time.Time
}

// IssueStats aggregates counts for the admin dashboard.
type IssueStats struct {
	Total        int
	Pending      int
	InProgress   int
	Resolved     int
	Rejected     int
	HighPriority int
}
