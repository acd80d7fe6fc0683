package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-care/issue-service/internal/domain"
)

// ProfileUpdate carries optional self-service profile changes. Nil fields are
// left untouched; non-nil empty strings do overwrite.
type ProfileUpdate struct {
	Name     *string
	PhotoURL *string
	Phone    *string
}

// StaffUpdate carries optional admin-driven staff record changes.
type StaffUpdate struct {
	Name      *string
	Phone     *string
	PhotoURL  *string
	IsBlocked *bool
}

// UserRepository defines persistence access for user records.
type UserRepository interface {
	// Upsert registers an email if absent and merges only non-empty name/photo
	// into an existing record. Atomic; never blanks an existing field.
	Upsert(ctx context.Context, email, name, photoURL string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	Recent(ctx context.Context, limit int) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
	UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role) error
	SetBlocked(ctx context.Context, email string, blocked bool) error
	SetPremium(ctx context.Context, email string, premium bool) error
	// GrantAdmin promotes an existing user to admin and marks them premium.
	GrantAdmin(ctx context.Context, email string) error
	IncrementIssueCount(ctx context.Context, email string, delta int) error
	// ReplaceAsStaff inserts or overwrites a record as a staff account,
	// preserving the original creation timestamp on overwrite.
	ReplaceAsStaff(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateStaffFields(ctx context.Context, email string, update StaffUpdate) (*domain.User, error)
	Delete(ctx context.Context, email string) error

	SetPasswordHash(ctx context.Context, email, hash string) error
	ClearPasswordHash(ctx context.Context, email string) error
}

const userColumns = `id, email, name, photo_url, phone, role, is_premium, is_blocked, issue_count, password_hash, created_at, updated_at`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Upsert(ctx context.Context, email, name, photoURL string) (*domain.User, error) {
	const query = `
        INSERT INTO users (email, name, photo_url)
        VALUES ($1, COALESCE(NULLIF($2,''), split_part($1,'@',1)), $3)
        ON CONFLICT (email) DO UPDATE SET
            name = COALESCE(NULLIF($2,''), users.name),
            photo_url = COALESCE(NULLIF($3,''), users.photo_url),
            updated_at = NOW()
        RETURNING ` + userColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, email, name, photoURL))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return r.scanRow(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE role=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) Recent(ctx context.Context, limit int) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, email string, update ProfileUpdate) (*domain.User, error) {
	const query = `
        INSERT INTO users (email, name, photo_url, phone)
        VALUES ($1, COALESCE($2, split_part($1,'@',1)), COALESCE($3,''), COALESCE($4,''))
        ON CONFLICT (email) DO UPDATE SET
            name = COALESCE($2, users.name),
            photo_url = COALESCE($3, users.photo_url),
            phone = COALESCE($4, users.phone),
            updated_at = NOW()
        RETURNING ` + userColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, email, update.Name, update.PhotoURL, update.Phone))
}

func (r *userRepository) SetRole(ctx context.Context, email string, role domain.Role) error {
	return r.exec(ctx, `UPDATE users SET role=$1, updated_at=NOW() WHERE email=$2`, role, email)
}

func (r *userRepository) SetBlocked(ctx context.Context, email string, blocked bool) error {
	return r.exec(ctx, `UPDATE users SET is_blocked=$1, updated_at=NOW() WHERE email=$2`, blocked, email)
}

func (r *userRepository) SetPremium(ctx context.Context, email string, premium bool) error {
	return r.exec(ctx, `UPDATE users SET is_premium=$1, updated_at=NOW() WHERE email=$2`, premium, email)
}

func (r *userRepository) GrantAdmin(ctx context.Context, email string) error {
	return r.exec(ctx, `UPDATE users SET role='admin', is_premium=TRUE, updated_at=NOW() WHERE email=$1`, email)
}

func (r *userRepository) IncrementIssueCount(ctx context.Context, email string, delta int) error {
	return r.exec(ctx, `UPDATE users SET issue_count=issue_count+$1, updated_at=NOW() WHERE email=$2`, delta, email)
}

func (r *userRepository) ReplaceAsStaff(ctx context.Context, user *domain.User) (*domain.User, error) {
	const query = `
        INSERT INTO users (email, name, photo_url, phone, role, is_premium, is_blocked, issue_count)
        VALUES ($1, $2, $3, $4, 'staff', FALSE, FALSE, 0)
        ON CONFLICT (email) DO UPDATE SET
            name = $2,
            photo_url = $3,
            phone = $4,
            role = 'staff',
            is_blocked = FALSE,
            updated_at = NOW()
        RETURNING ` + userColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, user.Email, user.Name, user.PhotoURL, user.Phone))
}

func (r *userRepository) UpdateStaffFields(ctx context.Context, email string, update StaffUpdate) (*domain.User, error) {
	const query = `
        UPDATE users SET
            name = COALESCE($2, name),
            phone = COALESCE($3, phone),
            photo_url = COALESCE($4, photo_url),
            is_blocked = COALESCE($5, is_blocked),
            updated_at = NOW()
        WHERE email=$1
        RETURNING ` + userColumns
	return r.scanRow(r.pool.QueryRow(ctx, query, email, update.Name, update.Phone, update.PhotoURL, update.IsBlocked))
}

func (r *userRepository) Delete(ctx context.Context, email string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email=$1`, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE email=$2`, hash, email)
}

func (r *userRepository) ClearPasswordHash(ctx context.Context, email string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=NULL, updated_at=NOW() WHERE email=$1`, email)
}

func (r *userRepository) exec(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) scanRow(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PhotoURL,
		&user.Phone,
		&user.Role,
		&user.IsPremium,
		&user.IsBlocked,
		&user.IssueCount,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func scanUsers(rows pgx.Rows) ([]domain.User, error) {
	var result []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.PhotoURL,
			&user.Phone,
			&user.Role,
			&user.IsPremium,
			&user.IsBlocked,
			&user.IssueCount,
			&user.PasswordHash,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}
