package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-care/issue-service/internal/domain"
)

// IssueFilter captures list/search parameters. Zero values mean "no filter".
type IssueFilter struct {
	Search        string
	Category      string
	Status        domain.IssueStatus
	Priority      domain.IssuePriority
	ReportedBy    string
	AssigneeEmail string
	// PriorityFirst surfaces high-priority issues before the recency order.
	PriorityFirst bool
	Limit         int
	Offset        int
}

// IssueUpdate carries owner-editable fields. Nil fields are left untouched.
type IssueUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Image       *string
	Priority    *domain.IssuePriority
}

// IssueRepository encapsulates issue persistence. All state-changing methods
// are single-row conditional updates so concurrent requests cannot bypass the
// lifecycle guards re-checked in the WHERE clause.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error)
	Recent(ctx context.Context, limit int) ([]domain.Issue, error)
	ResolvedFeed(ctx context.Context, limit int) ([]domain.Issue, error)
	// UpdatePending applies owner edits while the issue is still pending.
	UpdatePending(ctx context.Context, id string, update IssueUpdate) (*domain.Issue, error)
	// Assign attaches staff while the issue is pending and unassigned.
	Assign(ctx context.Context, id string, assignee domain.Assignee) (bool, error)
	// SetStatusByAssignee advances status only for the assigned staff member
	// and only from one of the allowed source states.
	SetStatusByAssignee(ctx context.Context, id, assigneeEmail string, from []domain.IssueStatus, to domain.IssueStatus) (bool, error)
	// Reject moves a pending issue to rejected.
	Reject(ctx context.Context, id string) (bool, error)
	// AddUpvote records a voter unless they are the owner or already voted.
	AddUpvote(ctx context.Context, id, voter string) (int, bool, error)
	Stats(ctx context.Context) (*domain.IssueStats, error)
}

const issueColumns = `id, title, description, category, location, image, priority, status,
        reported_by, reporter_name, reporter_photo_url,
        assignee_email, assignee_name, assignee_photo_url, assigned_at,
        upvote_count, upvoted_by, created_at, updated_at`

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, category, location, image, priority, status,
                            reported_by, reporter_name, reporter_photo_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, upvote_count, upvoted_by, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Category,
		issue.Location,
		issue.Image,
		issue.Priority,
		issue.Status,
		issue.ReportedBy,
		issue.ReporterName,
		issue.ReporterPhotoURL,
	).Scan(&issue.ID, &issue.UpvoteCount, &issue.UpvotedBy, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *issueRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.ReportedBy != "" {
		args = append(args, filter.ReportedBy)
		clauses = append(clauses, fmt.Sprintf("reported_by=$%d", len(args)))
	}
	if filter.AssigneeEmail != "" {
		args = append(args, filter.AssigneeEmail)
		clauses = append(clauses, fmt.Sprintf("assignee_email=$%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE %s OR category ILIKE %s OR location ILIKE %s OR description ILIKE %s)",
			placeholder, placeholder, placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.PriorityFirst {
		order = "(priority='high')::int DESC, created_at DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		issueColumns, where, order, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	issues, err := scanIssues(rows)
	if err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (r *issueRepository) Recent(ctx context.Context, limit int) ([]domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues ORDER BY created_at DESC LIMIT $1`, issueColumns)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) ResolvedFeed(ctx context.Context, limit int) ([]domain.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE status='resolved' ORDER BY updated_at DESC LIMIT $1`, issueColumns)
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIssues(rows)
}

func (r *issueRepository) UpdatePending(ctx context.Context, id string, update IssueUpdate) (*domain.Issue, error) {
	const query = `
        UPDATE issues SET
            title = COALESCE($2, title),
            description = COALESCE($3, description),
            category = COALESCE($4, category),
            location = COALESCE($5, location),
            image = COALESCE($6, image),
            priority = COALESCE($7, priority),
            updated_at = NOW()
        WHERE id=$1 AND status='pending'
        RETURNING ` + issueColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, id,
		update.Title, update.Description, update.Category, update.Location, update.Image, update.Priority))
}

func (r *issueRepository) Assign(ctx context.Context, id string, assignee domain.Assignee) (bool, error) {
	const query = `
        UPDATE issues SET
            assignee_email=$2, assignee_name=$3, assignee_photo_url=$4, assigned_at=$5,
            updated_at=NOW()
        WHERE id=$1 AND status='pending' AND assignee_email IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id, assignee.Email, assignee.Name, assignee.PhotoURL, assignee.AssignedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *issueRepository) SetStatusByAssignee(ctx context.Context, id, assigneeEmail string, from []domain.IssueStatus, to domain.IssueStatus) (bool, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}
	const query = `
        UPDATE issues SET status=$3, updated_at=NOW()
        WHERE id=$1 AND assignee_email=$2 AND status = ANY($4)`
	cmd, err := r.pool.Exec(ctx, query, id, assigneeEmail, to, states)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *issueRepository) Reject(ctx context.Context, id string) (bool, error) {
	const query = `
        UPDATE issues SET status='rejected', updated_at=NOW()
        WHERE id=$1 AND status='pending'`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *issueRepository) AddUpvote(ctx context.Context, id, voter string) (int, bool, error) {
	// The membership and ownership checks live inside the WHERE clause so a
	// concurrent duplicate vote loses instead of double counting.
	const query = `
        UPDATE issues SET
            upvote_count = upvote_count + 1,
            upvoted_by = array_append(upvoted_by, $2),
            updated_at = NOW()
        WHERE id=$1 AND reported_by <> $2 AND NOT ($2 = ANY(upvoted_by))
        RETURNING upvote_count`
	var count int
	err := r.pool.QueryRow(ctx, query, id, voter).Scan(&count)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *issueRepository) Stats(ctx context.Context) (*domain.IssueStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='pending'),
               COUNT(*) FILTER (WHERE status='in-progress'),
               COUNT(*) FILTER (WHERE status='resolved'),
               COUNT(*) FILTER (WHERE status='rejected'),
               COUNT(*) FILTER (WHERE priority='high')
        FROM issues`
	var stats domain.IssueStats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.InProgress,
		&stats.Resolved,
		&stats.Rejected,
		&stats.HighPriority,
	); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *issueRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Issue, error) {
	return r.scanRow(r.pool.QueryRow(ctx, query, arg))
}

func (r *issueRepository) scanRow(row pgx.Row) (*domain.Issue, error) {
	issue, err := scanIssue(row)
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		issue            domain.Issue
		assigneeEmail    *string
		assigneeName     *string
		assigneePhotoURL *string
		assignedAt       *time.Time
	)
	if err := row.Scan(
		&issue.ID,
		&issue.Title,
		&issue.Description,
		&issue.Category,
		&issue.Location,
		&issue.Image,
		&issue.Priority,
		&issue.Status,
		&issue.ReportedBy,
		&issue.ReporterName,
		&issue.ReporterPhotoURL,
		&assigneeEmail,
		&assigneeName,
		&assigneePhotoURL,
		&assignedAt,
		&issue.UpvoteCount,
		&issue.UpvotedBy,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if assigneeEmail != nil {
		assignee := domain.Assignee{Email: *assigneeEmail}
		if assigneeName != nil {
			assignee.Name = *assigneeName
		}
		if assigneePhotoURL != nil {
			assignee.PhotoURL = *assigneePhotoURL
		}
		if assignedAt != nil {
			assignee.AssignedAt = *assignedAt
		}
		issue.AssignedTo = &assignee
	}
	return &issue, nil
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}
