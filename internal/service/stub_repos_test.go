package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/events"
	"github.com/civic-care/issue-service/internal/identity"
	"github.com/civic-care/issue-service/internal/repository"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, user := range seed {
		if user.ID == "" {
			user.ID = uuid.NewString()
		}
		if user.Role == "" {
			user.Role = domain.RoleCitizen
		}
		repo.users[user.Email] = user
	}
	return repo
}

func (r *stubUserRepo) Upsert(_ context.Context, email, name, photoURL string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		user = &domain.User{
			ID:        uuid.NewString(),
			Email:     email,
			Role:      domain.RoleCitizen,
			CreatedAt: time.Now(),
		}
		r.users[email] = user
	}
	if name != "" {
		user.Name = name
	}
	if photoURL != "" {
		user.PhotoURL = photoURL
	}
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if user.Role == role {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *stubUserRepo) Recent(_ context.Context, limit int) ([]domain.User, error) {
	out, _ := r.List(context.Background())
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, email string, update repository.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.PhotoURL != nil {
		user.PhotoURL = *update.PhotoURL
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) SetRole(_ context.Context, email string, role domain.Role) error {
	return r.mutate(email, func(user *domain.User) { user.Role = role })
}

func (r *stubUserRepo) SetBlocked(_ context.Context, email string, blocked bool) error {
	return r.mutate(email, func(user *domain.User) { user.IsBlocked = blocked })
}

func (r *stubUserRepo) SetPremium(_ context.Context, email string, premium bool) error {
	return r.mutate(email, func(user *domain.User) { user.IsPremium = premium })
}

func (r *stubUserRepo) GrantAdmin(_ context.Context, email string) error {
	return r.mutate(email, func(user *domain.User) {
		user.Role = domain.RoleAdmin
		user.IsPremium = true
	})
}

func (r *stubUserRepo) IncrementIssueCount(_ context.Context, email string, delta int) error {
	return r.mutate(email, func(user *domain.User) { user.IssueCount += delta })
}

func (r *stubUserRepo) ReplaceAsStaff(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := &domain.User{
		ID:        uuid.NewString(),
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		PhotoURL:  user.PhotoURL,
		Role:      domain.RoleStaff,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if existing, ok := r.users[user.Email]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	r.users[user.Email] = stored
	copied := *stored
	return &copied, nil
}

func (r *stubUserRepo) UpdateStaffFields(_ context.Context, email string, update repository.StaffUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.PhotoURL != nil {
		user.PhotoURL = *update.PhotoURL
	}
	if update.IsBlocked != nil {
		user.IsBlocked = *update.IsBlocked
	}
	user.UpdatedAt = time.Now()
	copied := *user
	return &copied, nil
}

func (r *stubUserRepo) Delete(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, email)
	return nil
}

func (r *stubUserRepo) SetPasswordHash(_ context.Context, email, hash string) error {
	return r.mutate(email, func(user *domain.User) { user.PasswordHash = &hash })
}

func (r *stubUserRepo) ClearPasswordHash(_ context.Context, email string) error {
	return r.mutate(email, func(user *domain.User) { user.PasswordHash = nil })
}

func (r *stubUserRepo) mutate(email string, fn func(*domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(user)
	user.UpdatedAt = time.Now()
	return nil
}

type stubIssueRepo struct {
	mu     sync.Mutex
	issues map[string]*domain.Issue
	order  []string
}

func newStubIssueRepo() *stubIssueRepo {
	return &stubIssueRepo{issues: make(map[string]*domain.Issue)}
}

func (r *stubIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue.ID = uuid.NewString()
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = issue.CreatedAt
	copied := *issue
	r.issues[issue.ID] = &copied
	r.order = append(r.order, issue.ID)
	return nil
}

func (r *stubIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *issue
	return &copied, nil
}

func (r *stubIssueRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.issues, id)
	return nil
}

func (r *stubIssueRepo) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Issue
	for _, id := range r.order {
		issue, ok := r.issues[id]
		if !ok {
			continue
		}
		if filter.ReportedBy != "" && issue.ReportedBy != filter.ReportedBy {
			continue
		}
		if filter.AssigneeEmail != "" && (issue.AssignedTo == nil || issue.AssignedTo.Email != filter.AssigneeEmail) {
			continue
		}
		if filter.Status != "" && issue.Status != filter.Status {
			continue
		}
		if filter.Category != "" && issue.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(issue.Title), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, *issue)
	}
	total := len(matched)
	offset := filter.Offset
	if offset > total {
		offset = total
	}
	matched = matched[offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *stubIssueRepo) Recent(_ context.Context, limit int) ([]domain.Issue, error) {
	issues, _, err := r.List(context.Background(), repository.IssueFilter{Limit: limit})
	return issues, err
}

func (r *stubIssueRepo) ResolvedFeed(_ context.Context, limit int) ([]domain.Issue, error) {
	issues, _, err := r.List(context.Background(), repository.IssueFilter{Status: domain.IssueStatusResolved, Limit: limit})
	return issues, err
}

func (r *stubIssueRepo) UpdatePending(_ context.Context, id string, update repository.IssueUpdate) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok || issue.Status != domain.IssueStatusPending {
		return nil, pgx.ErrNoRows
	}
	if update.Title != nil {
		issue.Title = *update.Title
	}
	if update.Description != nil {
		issue.Description = *update.Description
	}
	if update.Category != nil {
		issue.Category = *update.Category
	}
	if update.Location != nil {
		issue.Location = *update.Location
	}
	if update.Image != nil {
		issue.Image = *update.Image
	}
	if update.Priority != nil {
		issue.Priority = *update.Priority
	}
	issue.UpdatedAt = time.Now()
	copied := *issue
	return &copied, nil
}

func (r *stubIssueRepo) Assign(_ context.Context, id string, assignee domain.Assignee) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if issue.Status != domain.IssueStatusPending || issue.AssignedTo != nil {
		return false, nil
	}
	issue.AssignedTo = &assignee
	issue.UpdatedAt = time.Now()
	return true, nil
}

func (r *stubIssueRepo) SetStatusByAssignee(_ context.Context, id, assigneeEmail string, from []domain.IssueStatus, to domain.IssueStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if issue.AssignedTo == nil || issue.AssignedTo.Email != assigneeEmail {
		return false, nil
	}
	allowed := false
	for _, status := range from {
		if issue.Status == status {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	issue.Status = to
	issue.UpdatedAt = time.Now()
	return true, nil
}

func (r *stubIssueRepo) Reject(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return false, pgx.ErrNoRows
	}
	if issue.Status != domain.IssueStatusPending {
		return false, nil
	}
	issue.Status = domain.IssueStatusRejected
	issue.UpdatedAt = time.Now()
	return true, nil
}

func (r *stubIssueRepo) AddUpvote(_ context.Context, id, voter string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return 0, false, nil
	}
	if issue.ReportedBy == voter || issue.HasUpvoted(voter) {
		return 0, false, nil
	}
	issue.UpvotedBy = append(issue.UpvotedBy, voter)
	issue.UpvoteCount++
	issue.UpdatedAt = time.Now()
	return issue.UpvoteCount, true, nil
}

func (r *stubIssueRepo) Stats(_ context.Context) (*domain.IssueStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.IssueStats{}
	for _, issue := range r.issues {
		stats.Total++
		switch issue.Status {
		case domain.IssueStatusPending:
			stats.Pending++
		case domain.IssueStatusInProgress:
			stats.InProgress++
		case domain.IssueStatusResolved:
			stats.Resolved++
		case domain.IssueStatusRejected:
			stats.Rejected++
		}
		if issue.Priority == domain.IssuePriorityHigh {
			stats.HighPriority++
		}
	}
	return stats, nil
}

type stubTimelineRepo struct {
	mu      sync.Mutex
	entries []domain.TimelineEntry
}

func (r *stubTimelineRepo) Append(_ context.Context, entry *domain.TimelineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *stubTimelineRepo) ListByIssue(_ context.Context, issueID string) ([]domain.TimelineEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TimelineEntry
	for _, entry := range r.entries {
		if entry.IssueID == issueID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type stubPaymentRepo struct {
	mu       sync.Mutex
	payments []domain.Payment
}

func (r *stubPaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now()
	r.payments = append(r.payments, *payment)
	return nil
}

func (r *stubPaymentRepo) ListByEmail(_ context.Context, email string) ([]domain.Payment, error) {
	return r.List(context.Background(), repository.PaymentFilter{Email: email})
}

func (r *stubPaymentRepo) List(_ context.Context, filter repository.PaymentFilter) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Payment
	for _, payment := range r.payments {
		if filter.Email != "" && payment.Email != filter.Email {
			continue
		}
		if filter.MonthKey != "" && payment.MonthKey != filter.MonthKey {
			continue
		}
		out = append(out, payment)
	}
	return out, nil
}

func (r *stubPaymentRepo) TotalAmount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, payment := range r.payments {
		total += int64(payment.Amount)
	}
	return total, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, event := range d.events {
		out = append(out, event.Type)
	}
	return out
}

type stubProvider struct {
	created []string
	deleted []string
	fail    bool
}

func (p *stubProvider) CreateAccount(_ context.Context, email, _, _, _ string) error {
	if p.fail {
		return errors.New("provider unavailable")
	}
	p.created = append(p.created, email)
	return nil
}

func (p *stubProvider) UpdateAccount(_ context.Context, _ string, _ identity.AccountUpdate) error {
	if p.fail {
		return errors.New("provider unavailable")
	}
	return nil
}

func (p *stubProvider) DeleteAccount(_ context.Context, email string) error {
	if p.fail {
		return errors.New("provider unavailable")
	}
	p.deleted = append(p.deleted, email)
	return nil
}
