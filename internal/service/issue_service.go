package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/events"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// Non-premium citizens may keep at most this many reported issues.
const freeIssueQuota = 3

// IssueService coordinates the issue lifecycle.
type IssueService struct {
	issues     repository.IssueRepository
	timeline   repository.TimelineRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo    repository.IssueRepository
	TimelineRepo repository.TimelineRepository
	UserRepo     repository.UserRepository
	Dispatcher   events.Dispatcher
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	Title       string
	Description string
	Category    string
	Location    string
	Image       string
	Priority    string
}

// IssueEditInput describes owner edits. Nil fields are left untouched.
type IssueEditInput struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Image       *string
	Priority    *string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		timeline:   deps.TimelineRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a new issue for a citizen.
func (s *IssueService) Create(ctx context.Context, requester *domain.User, input IssueCreateInput) (*domain.Issue, error) {
	if requester.Role != domain.RoleCitizen {
		return nil, apperrors.NewForbidden("only citizens can report issues")
	}
	if requester.IsBlocked {
		return nil, apperrors.NewForbidden("account is blocked")
	}
	if !requester.IsPremium && requester.IssueCount >= freeIssueQuota {
		return nil, apperrors.NewInvalidOperation(
			"issue limit reached, upgrade to premium to report more issues", nil)
	}

	details := map[string]any{}
	if strings.TrimSpace(input.Title) == "" {
		details["title"] = "required"
	}
	if strings.TrimSpace(input.Description) == "" {
		details["description"] = "required"
	}
	if strings.TrimSpace(input.Category) == "" {
		details["category"] = "required"
	}
	if strings.TrimSpace(input.Location) == "" {
		details["location"] = "required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewInvalidInput("missing required fields", details)
	}
	priority, ok := domain.ParsePriority(input.Priority)
	if !ok {
		return nil, apperrors.NewInvalidInput("invalid priority", map[string]any{"priority": input.Priority})
	}

	issue := &domain.Issue{
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Category:         strings.TrimSpace(input.Category),
		Location:         strings.TrimSpace(input.Location),
		Image:            strings.TrimSpace(input.Image),
		Priority:         priority,
		Status:           domain.IssueStatusPending,
		ReportedBy:       requester.Email,
		ReporterName:     requester.Name,
		ReporterPhotoURL: requester.PhotoURL,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.appendTimeline(ctx, issue.ID, domain.IssueStatusPending, "Issue reported", requester.Email); err != nil {
		return nil, err
	}
	if err := s.users.IncrementIssueCount(ctx, requester.Email, 1); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventIssueReported, issue.ID, requester, events.IssueReportedPayload{
		Title:    issue.Title,
		Category: issue.Category,
		Priority: issue.Priority,
	})
	return s.withTimeline(ctx, issue)
}

// GetByID returns one issue with its full timeline.
func (s *IssueService) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	issue, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withTimeline(ctx, issue)
}

// List returns a filtered page of issues plus the total match count.
func (s *IssueService) List(ctx context.Context, filter repository.IssueFilter) ([]domain.Issue, int, error) {
	issues, total, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return issues, total, nil
}

// ListMine returns the requester's own issues.
func (s *IssueService) ListMine(ctx context.Context, requester *domain.User, filter repository.IssueFilter) ([]domain.Issue, int, error) {
	filter.ReportedBy = requester.Email
	filter.PriorityFirst = false
	return s.List(ctx, filter)
}

// ResolvedFeed returns the public feed of recently resolved issues.
func (s *IssueService) ResolvedFeed(ctx context.Context, limit int) ([]domain.Issue, error) {
	if limit <= 0 {
		limit = 6
	}
	issues, err := s.issues.ResolvedFeed(ctx, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// Update applies owner edits while the issue is still pending.
func (s *IssueService) Update(ctx context.Context, requester *domain.User, id string, input IssueEditInput) (*domain.Issue, error) {
	issue, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.ReportedBy != requester.Email {
		return nil, apperrors.NewForbidden("only the reporter can edit this issue")
	}
	if issue.Status != domain.IssueStatusPending {
		return nil, apperrors.NewInvalidOperation("only pending issues can be edited", nil)
	}

	update := repository.IssueUpdate{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		Image:       input.Image,
	}
	if input.Priority != nil {
		priority, ok := domain.ParsePriority(*input.Priority)
		if !ok {
			return nil, apperrors.NewInvalidInput("invalid priority", map[string]any{"priority": *input.Priority})
		}
		update.Priority = &priority
	}

	updated, err := s.issues.UpdatePending(ctx, id, update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidOperation("only pending issues can be edited", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.appendTimeline(ctx, id, domain.IssueStatusPending, "Issue updated by citizen", requester.Email); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventIssueUpdated, id, requester, nil)
	return s.withTimeline(ctx, updated)
}

// Delete removes an issue. Reporters may delete their own pending issues;
// admins may delete any issue regardless of state.
func (s *IssueService) Delete(ctx context.Context, requester *domain.User, id string) error {
	issue, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if requester.Role != domain.RoleAdmin {
		if issue.ReportedBy != requester.Email {
			return apperrors.NewForbidden("only the reporter can delete this issue")
		}
		if issue.Status != domain.IssueStatusPending {
			return apperrors.NewInvalidOperation("only pending issues can be deleted", nil)
		}
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("Issue", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Upvote records a vote on behalf of the requester. Reporters cannot vote on
// their own issues and each identity votes at most once.
func (s *IssueService) Upvote(ctx context.Context, requester *domain.User, id string) (int, error) {
	issue, err := s.fetch(ctx, id)
	if err != nil {
		return 0, err
	}
	if issue.ReportedBy == requester.Email {
		return 0, apperrors.NewForbidden("cannot upvote your own issue")
	}
	if issue.HasUpvoted(requester.Email) {
		return 0, apperrors.NewConflict("already upvoted this issue", nil)
	}

	count, applied, err := s.issues.AddUpvote(ctx, id, requester.Email)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if !applied {
		return 0, apperrors.NewConflict("already upvoted this issue", nil)
	}

	s.publish(ctx, events.EventIssueUpvoted, id, requester, events.IssueUpvotedPayload{
		Voter:       requester.Email,
		UpvoteCount: count,
	})
	return count, nil
}

// Assign attaches a staff member to a pending, unassigned issue.
func (s *IssueService) Assign(ctx context.Context, requester *domain.User, id, staffEmail string) (*domain.Issue, error) {
	issue, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	staffEmail = domain.NormalizeEmail(staffEmail)
	staff, err := s.users.GetByEmail(ctx, staffEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Staff member", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if staff.Role != domain.RoleStaff {
		return nil, apperrors.NewInvalidOperation("target user is not a staff member", nil)
	}

	if issue.AssignedTo != nil {
		return nil, apperrors.NewInvalidOperation("issue is already assigned", nil)
	}
	if issue.Status != domain.IssueStatusPending {
		return nil, apperrors.NewInvalidOperation("only pending issues can be assigned", nil)
	}

	assignee := domain.Assignee{
		Email:      staff.Email,
		Name:       staff.Name,
		PhotoURL:   staff.PhotoURL,
		AssignedAt: time.Now().UTC(),
	}
	applied, err := s.issues.Assign(ctx, id, assignee)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewInvalidOperation("issue is already assigned", nil)
	}

	if err := s.appendTimeline(ctx, id, domain.IssueStatusPending, "Issue assigned to staff: "+staff.Name, requester.Email); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventIssueAssigned, id, requester, events.IssueAssignedPayload{
		StaffEmail: staff.Email,
		StaffName:  staff.Name,
	})

	issue.AssignedTo = &assignee
	return s.withTimeline(ctx, issue)
}

// Reject moves a pending issue into the rejected terminal state.
func (s *IssueService) Reject(ctx context.Context, requester *domain.User, id string) (*domain.Issue, error) {
	issue, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.Status != domain.IssueStatusPending {
		return nil, apperrors.NewInvalidOperation("only pending issues can be rejected", nil)
	}

	applied, err := s.issues.Reject(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewInvalidOperation("only pending issues can be rejected", nil)
	}

	if err := s.appendTimeline(ctx, id, domain.IssueStatusRejected, "Issue rejected by admin", requester.Email); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventIssueRejected, id, requester, events.IssueStatusChangedPayload{
		OldStatus: domain.IssueStatusPending,
		NewStatus: domain.IssueStatusRejected,
	})

	issue.Status = domain.IssueStatusRejected
	return s.withTimeline(ctx, issue)
}

// ListAssigned returns issues assigned to the requesting staff member.
func (s *IssueService) ListAssigned(ctx context.Context, requester *domain.User, filter repository.IssueFilter) ([]domain.Issue, int, error) {
	filter.AssigneeEmail = requester.Email
	filter.PriorityFirst = true
	return s.List(ctx, filter)
}

// AdvanceStatus moves an assigned issue forward for the assigned staff
// member: pending to in-progress, then in-progress to resolved.
func (s *IssueService) AdvanceStatus(ctx context.Context, requester *domain.User, id, rawStatus string) (*domain.Issue, error) {
	target, ok := domain.ParseStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewInvalidInput("invalid status", map[string]any{"status": rawStatus})
	}

	issue, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue.AssignedTo == nil || issue.AssignedTo.Email != requester.Email {
		return nil, apperrors.NewForbidden("only the assigned staff member can update this issue")
	}

	var (
		from    domain.IssueStatus
		message string
	)
	switch target {
	case domain.IssueStatusInProgress:
		from, message = domain.IssueStatusPending, "Work started on the issue"
	case domain.IssueStatusResolved:
		from, message = domain.IssueStatusInProgress, "Issue resolved by staff"
	default:
		return nil, apperrors.NewInvalidOperation("staff can only move issues to in-progress or resolved", nil)
	}
	if issue.Status != from {
		return nil, apperrors.NewInvalidOperation(
			"cannot move issue from "+string(issue.Status)+" to "+string(target), nil)
	}

	applied, err := s.issues.SetStatusByAssignee(ctx, id, requester.Email, []domain.IssueStatus{from}, target)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !applied {
		return nil, apperrors.NewInvalidOperation(
			"cannot move issue from "+string(issue.Status)+" to "+string(target), nil)
	}

	if err := s.appendTimeline(ctx, id, target, message, requester.Email); err != nil {
		return nil, err
	}
	s.publish(ctx, events.EventIssueStatusChanged, id, requester, events.IssueStatusChangedPayload{
		OldStatus: from,
		NewStatus: target,
	})

	issue.Status = target
	return s.withTimeline(ctx, issue)
}

// Stats aggregates lifecycle counters.
func (s *IssueService) Stats(ctx context.Context) (*domain.IssueStats, error) {
	stats, err := s.issues.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *IssueService) fetch(ctx context.Context, id string) (*domain.Issue, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("Issue", nil)
	}
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("Issue", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return issue, nil
}

func (s *IssueService) withTimeline(ctx context.Context, issue *domain.Issue) (*domain.Issue, error) {
	entries, err := s.timeline.ListByIssue(ctx, issue.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	issue.Timeline = entries
	return issue, nil
}

func (s *IssueService) appendTimeline(ctx context.Context, issueID string, status domain.IssueStatus, message, updatedBy string) error {
	entry := &domain.TimelineEntry{
		IssueID:   issueID,
		Status:    status,
		Message:   message,
		UpdatedBy: updatedBy,
	}
	if err := s.timeline.Append(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *IssueService) publish(ctx context.Context, eventType events.EventType, entityID string, actor *domain.User, payload interface{}) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:       uuid.NewString(),
		Type:     eventType,
		EntityID: entityID,
		Actor: events.Actor{
			Email: actor.Email,
			Role:  actor.Role,
		},
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
