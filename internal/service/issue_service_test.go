package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/events"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

func repositoryFilter(limit int) repository.IssueFilter {
	return repository.IssueFilter{Limit: limit}
}

type issueFixture struct {
	service    *IssueService
	issues     *stubIssueRepo
	timeline   *stubTimelineRepo
	users      *stubUserRepo
	dispatcher *recordingDispatcher

	citizen *domain.User
	voter   *domain.User
	staff   *domain.User
	admin   *domain.User
}

func newIssueFixture(t *testing.T) *issueFixture {
	t.Helper()
	citizen := &domain.User{Email: "citizen@example.com", Name: "Citizen", Role: domain.RoleCitizen}
	voter := &domain.User{Email: "voter@example.com", Name: "Voter", Role: domain.RoleCitizen}
	staff := &domain.User{Email: "staff@example.com", Name: "Staff Member", Role: domain.RoleStaff}
	admin := &domain.User{Email: "admin@example.com", Name: "Admin", Role: domain.RoleAdmin, IsPremium: true}

	users := newStubUserRepo(citizen, voter, staff, admin)
	issues := newStubIssueRepo()
	timeline := &stubTimelineRepo{}
	dispatcher := &recordingDispatcher{}

	svc := NewIssueService(IssueDependencies{
		IssueRepo:    issues,
		TimelineRepo: timeline,
		UserRepo:     users,
		Dispatcher:   dispatcher,
	})
	return &issueFixture{
		service:    svc,
		issues:     issues,
		timeline:   timeline,
		users:      users,
		dispatcher: dispatcher,
		citizen:    citizen,
		voter:      voter,
		staff:      staff,
		admin:      admin,
	}
}

func (f *issueFixture) report(t *testing.T, priority string) *domain.Issue {
	t.Helper()
	issue, err := f.service.Create(context.Background(), f.citizen, IssueCreateInput{
		Title:       "Broken streetlight",
		Description: "The light on Elm St has been out for a week",
		Category:    "lighting",
		Location:    "Elm St",
		Priority:    priority,
	})
	require.NoError(t, err)
	return issue
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestCreateIssue(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "high")

	assert.Equal(t, domain.IssueStatusPending, issue.Status)
	assert.Equal(t, domain.IssuePriorityHigh, issue.Priority)
	assert.Equal(t, f.citizen.Email, issue.ReportedBy)
	require.Len(t, issue.Timeline, 1)
	assert.Equal(t, "Issue reported", issue.Timeline[0].Message)
	assert.Equal(t, []events.EventType{events.EventIssueReported}, f.dispatcher.typesSeen())

	stored, err := f.users.GetByEmail(context.Background(), f.citizen.Email)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.IssueCount)
}

func TestCreateIssueValidation(t *testing.T) {
	f := newIssueFixture(t)
	_, err := f.service.Create(context.Background(), f.citizen, IssueCreateInput{Title: "no details"})
	requireCode(t, err, "INVALID_INPUT")

	_, err = f.service.Create(context.Background(), f.citizen, IssueCreateInput{
		Title: "t", Description: "d", Category: "c", Location: "l", Priority: "urgent",
	})
	requireCode(t, err, "INVALID_INPUT")
}

func TestCreateIssueRoleAndBlockGuards(t *testing.T) {
	f := newIssueFixture(t)

	_, err := f.service.Create(context.Background(), f.staff, IssueCreateInput{})
	requireCode(t, err, "FORBIDDEN")

	blocked := &domain.User{Email: "blocked@example.com", Role: domain.RoleCitizen, IsBlocked: true}
	_, err = f.service.Create(context.Background(), blocked, IssueCreateInput{})
	requireCode(t, err, "FORBIDDEN")
}

func TestCreateIssueQuota(t *testing.T) {
	f := newIssueFixture(t)
	f.citizen.IssueCount = 3

	_, err := f.service.Create(context.Background(), f.citizen, IssueCreateInput{
		Title: "t", Description: "d", Category: "c", Location: "l",
	})
	requireCode(t, err, "INVALID_OPERATION")

	f.citizen.IsPremium = true
	_, err = f.service.Create(context.Background(), f.citizen, IssueCreateInput{
		Title: "t", Description: "d", Category: "c", Location: "l",
	})
	require.NoError(t, err)
}

func TestGetByIDUnknown(t *testing.T) {
	f := newIssueFixture(t)

	_, err := f.service.GetByID(context.Background(), "not-a-uuid")
	requireCode(t, err, "NOT_FOUND")

	_, err = f.service.GetByID(context.Background(), "0b06f4b1-4f0a-4a86-8c8f-3c4a2e9cf001")
	requireCode(t, err, "NOT_FOUND")
}

func TestUpdateRules(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "")

	title := "Broken streetlight on Elm"
	_, err := f.service.Update(context.Background(), f.voter, issue.ID, IssueEditInput{Title: &title})
	requireCode(t, err, "FORBIDDEN")

	updated, err := f.service.Update(context.Background(), f.citizen, issue.ID, IssueEditInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "Issue updated by citizen", updated.Timeline[1].Message)

	_, err = f.service.Assign(context.Background(), f.admin, issue.ID, f.staff.Email)
	require.NoError(t, err)
	_, err = f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "in-progress")
	require.NoError(t, err)

	_, err = f.service.Update(context.Background(), f.citizen, issue.ID, IssueEditInput{Title: &title})
	requireCode(t, err, "INVALID_OPERATION")
}

func TestDeleteRules(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "")

	err := f.service.Delete(context.Background(), f.voter, issue.ID)
	requireCode(t, err, "FORBIDDEN")

	_, err = f.service.Assign(context.Background(), f.admin, issue.ID, f.staff.Email)
	require.NoError(t, err)
	_, err = f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "in-progress")
	require.NoError(t, err)

	err = f.service.Delete(context.Background(), f.citizen, issue.ID)
	requireCode(t, err, "INVALID_OPERATION")

	// Admins can remove an issue in any state.
	err = f.service.Delete(context.Background(), f.admin, issue.ID)
	require.NoError(t, err)

	err = f.service.Delete(context.Background(), f.admin, issue.ID)
	requireCode(t, err, "NOT_FOUND")
}

func TestUpvoteRules(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "")

	_, err := f.service.Upvote(context.Background(), f.citizen, issue.ID)
	requireCode(t, err, "FORBIDDEN")

	count, err := f.service.Upvote(context.Background(), f.voter, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = f.service.Upvote(context.Background(), f.voter, issue.ID)
	requireCode(t, err, "CONFLICT")

	// Upvotes leave no timeline trail.
	fetched, err := f.service.GetByID(context.Background(), issue.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Timeline, 1)
	assert.Contains(t, f.dispatcher.typesSeen(), events.EventIssueUpvoted)
}

func TestAssignRules(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "")

	_, err := f.service.Assign(context.Background(), f.admin, issue.ID, "ghost@example.com")
	requireCode(t, err, "NOT_FOUND")

	_, err = f.service.Assign(context.Background(), f.admin, issue.ID, f.voter.Email)
	requireCode(t, err, "INVALID_OPERATION")

	assigned, err := f.service.Assign(context.Background(), f.admin, issue.ID, f.staff.Email)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, f.staff.Email, assigned.AssignedTo.Email)
	assert.Equal(t, domain.IssueStatusPending, assigned.Status)
	assert.Equal(t, "Issue assigned to staff: Staff Member", assigned.Timeline[len(assigned.Timeline)-1].Message)

	_, err = f.service.Assign(context.Background(), f.admin, issue.ID, f.staff.Email)
	requireCode(t, err, "INVALID_OPERATION")
}

func TestRejectRules(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "")

	rejected, err := f.service.Reject(context.Background(), f.admin, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusRejected, rejected.Status)
	assert.Equal(t, "Issue rejected by admin", rejected.Timeline[len(rejected.Timeline)-1].Message)

	_, err = f.service.Reject(context.Background(), f.admin, issue.ID)
	requireCode(t, err, "INVALID_OPERATION")
}

func TestAdvanceStatus(t *testing.T) {
	f := newIssueFixture(t)
	issue := f.report(t, "")
	_, err := f.service.Assign(context.Background(), f.admin, issue.ID, f.staff.Email)
	require.NoError(t, err)

	otherStaff := &domain.User{Email: "other@example.com", Role: domain.RoleStaff}
	_, err = f.service.AdvanceStatus(context.Background(), otherStaff, issue.ID, "in-progress")
	requireCode(t, err, "FORBIDDEN")

	_, err = f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "resolved")
	requireCode(t, err, "INVALID_OPERATION")

	_, err = f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "rejected")
	requireCode(t, err, "INVALID_OPERATION")

	// "working" is accepted as a synonym for in-progress.
	inProgress, err := f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "working")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, inProgress.Status)

	// "closed" is accepted as a synonym for resolved.
	resolved, err := f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "closed")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, resolved.Status)

	messages := make([]string, 0, len(resolved.Timeline))
	for _, entry := range resolved.Timeline {
		messages = append(messages, entry.Message)
	}
	assert.Equal(t, []string{
		"Issue reported",
		"Issue assigned to staff: Staff Member",
		"Work started on the issue",
		"Issue resolved by staff",
	}, messages)

	_, err = f.service.AdvanceStatus(context.Background(), f.staff, issue.ID, "in-progress")
	requireCode(t, err, "INVALID_OPERATION")
}

func TestListMineAndAssigned(t *testing.T) {
	f := newIssueFixture(t)
	first := f.report(t, "")
	f.report(t, "high")

	mine, total, err := f.service.ListMine(context.Background(), f.citizen, repositoryFilter(10))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, mine, 2)

	_, err = f.service.Assign(context.Background(), f.admin, first.ID, f.staff.Email)
	require.NoError(t, err)

	queue, total, err := f.service.ListAssigned(context.Background(), f.staff, repositoryFilter(10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, queue, 1)
	assert.Equal(t, first.ID, queue[0].ID)
}
