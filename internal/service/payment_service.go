package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/civic-care/issue-service/internal/domain"
	"github.com/civic-care/issue-service/internal/events"
	"github.com/civic-care/issue-service/internal/repository"
	apperrors "github.com/civic-care/issue-service/pkg/util"
)

// PaymentService records subscription payments and flips the premium flag.
type PaymentService struct {
	payments   repository.PaymentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	amount     int
}

// NewPaymentService constructs the service. amount is the fixed subscription
// price charged for every payment.
func NewPaymentService(payments repository.PaymentRepository, users repository.UserRepository, dispatcher events.Dispatcher, amount int) *PaymentService {
	return &PaymentService{payments: payments, users: users, dispatcher: dispatcher, amount: amount}
}

// Subscribe charges the requester the subscription amount and marks them
// premium. The payment is recorded in an append-only ledger.
func (s *PaymentService) Subscribe(ctx context.Context, requester *domain.User, method string) (*domain.Payment, error) {
	if requester.IsBlocked {
		return nil, apperrors.NewForbidden("account is blocked")
	}
	if requester.IsPremium {
		return nil, apperrors.NewInvalidOperation("account is already premium", nil)
	}
	if method == "" {
		method = "card"
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		Email:         requester.Email,
		Amount:        s.amount,
		Method:        method,
		TransactionID: "TRX-" + uuid.NewString(),
		MonthKey:      domain.MonthKeyFor(now),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.users.SetPremium(ctx, requester.Email, true); err != nil {
		return nil, apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:       uuid.NewString(),
		Type:     events.EventPaymentReceived,
		EntityID: payment.TransactionID,
		Actor: events.Actor{
			Email: requester.Email,
			Role:  requester.Role,
		},
		Timestamp: now,
		Payload: events.PaymentReceivedPayload{
			Email:    requester.Email,
			Amount:   payment.Amount,
			MonthKey: payment.MonthKey,
		},
	})
	return payment, nil
}

// ListMine returns the requester's payment history.
func (s *PaymentService) ListMine(ctx context.Context, requester *domain.User) ([]domain.Payment, error) {
	payments, err := s.payments.ListByEmail(ctx, requester.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return payments, nil
}

// ListAll returns the filtered ledger for admins. The email filter is
// normalized so it matches records the same way writes do.
func (s *PaymentService) ListAll(ctx context.Context, filter repository.PaymentFilter) ([]domain.Payment, error) {
	filter.Email = domain.NormalizeEmail(filter.Email)
	payments, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return payments, nil
}
