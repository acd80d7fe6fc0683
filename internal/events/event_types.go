package events

import (
	"time"

	"github.com/civic-care/issue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueReported      EventType = "issue_reported"
	EventIssueUpdated       EventType = "issue_updated"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueRejected      EventType = "issue_rejected"
	EventIssueUpvoted       EventType = "issue_upvoted"
	EventPaymentReceived    EventType = "payment_received"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// Event represents a domain event emitted by services. EntityID is the issue
// id for issue events and the transaction reference for payment events.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  string      `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueReportedPayload payload.
type IssueReportedPayload struct {
	Title    string               `json:"title"`
	Category string               `json:"category"`
	Priority domain.IssuePriority `json:"priority"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	StaffEmail string `json:"staff_email"`
	StaffName  string `json:"staff_name"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// IssueUpvotedPayload payload.
type IssueUpvotedPayload struct {
	Voter       string `json:"voter"`
	UpvoteCount int    `json:"upvote_count"`
}

// PaymentReceivedPayload payload.
type PaymentReceivedPayload struct {
	Email    string `json:"email"`
	Amount   int    `json:"amount"`
	MonthKey string `json:"month_key"`
}
