package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civic-care/issue-service/internal/domain"
)

// PaymentFilter narrows the admin payment listing.
type PaymentFilter struct {
	Email    string
	MonthKey string
}

// PaymentRepository stores subscription payment records.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByEmail(ctx context.Context, email string) ([]domain.Payment, error)
	List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error)
	TotalAmount(ctx context.Context) (int64, error)
}

const paymentColumns = `id, email, amount, method, transaction_id, month_key, created_at`

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository instantiates repository.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (email, amount, method, transaction_id, month_key)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		payment.Email,
		payment.Amount,
		payment.Method,
		payment.TransactionID,
		payment.MonthKey,
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (r *paymentRepository) ListByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE email=$1 ORDER BY created_at DESC`, email)
}

func (r *paymentRepository) List(ctx context.Context, filter PaymentFilter) ([]domain.Payment, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Email != "" {
		args = append(args, filter.Email)
		clauses = append(clauses, fmt.Sprintf("email=$%d", len(args)))
	}
	if filter.MonthKey != "" {
		args = append(args, filter.MonthKey)
		clauses = append(clauses, fmt.Sprintf("month_key=$%d", len(args)))
	}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC`
	return r.query(ctx, query, args...)
}

func (r *paymentRepository) TotalAmount(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&total)
	return total, err
}

func (r *paymentRepository) query(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		if err := rows.Scan(
			&payment.ID,
			&payment.Email,
			&payment.Amount,
			&payment.Method,
			&payment.TransactionID,
			&payment.MonthKey,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}
