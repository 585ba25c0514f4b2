// Package payments records settlements against bookings. Settlement is
// synchronous in this design: a recorded payment is immediately
// completed, there is no pending gateway callback.
package payments

import (
	"context"
	"fmt"

	"github.com/nkotelnikov/flightbooking/internal/domain"
	"github.com/nkotelnikov/flightbooking/internal/repository"
)

const defaultCurrency = "USD"

type PaymentUseCase interface {
	Record(ctx context.Context, customerID, amountCents int64, method domain.PaymentMethod, currency string) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ByID(ctx context.Context, paymentID int64) (*domain.Payment, error)
	ByIDs(ctx context.Context, paymentIDs []int64) (map[int64]domain.Payment, error)
}

type PaymentService struct {
	repo repository.PaymentRepository
}

func NewPaymentService(repo repository.PaymentRepository) *PaymentService {
	return &PaymentService{repo: repo}
}

func (s *PaymentService) Record(ctx context.Context, customerID, amountCents int64, method domain.PaymentMethod, currency string) (*domain.Payment, error) {
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d: %w", amountCents, domain.ErrInvalidAmount)
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("unsupported payment method %q", method)
	}
	if currency == "" {
		currency = defaultCurrency
	}

	payment := &domain.Payment{
		CustomerID:  customerID,
		AmountCents: amountCents,
		Currency:    currency,
		Method:      method,
		Status:      domain.PaymentStatusCompleted,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	return payment, nil
}

// Refund moves a payment to refunded. Refunding an already-refunded
// payment is a no-op, so cancellation retries stay safe.
func (s *PaymentService) Refund(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status == domain.PaymentStatusRefunded {
		return payment, nil
	}
	return s.repo.UpdateStatus(ctx, paymentID, domain.PaymentStatusRefunded)
}

func (s *PaymentService) ByID(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	return s.repo.GetByID(ctx, paymentID)
}

func (s *PaymentService) ByIDs(ctx context.Context, paymentIDs []int64) (map[int64]domain.Payment, error) {
	return s.repo.ByIDs(ctx, paymentIDs)
}

var _ PaymentUseCase = (*PaymentService)(nil)
