package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkotelnikov/flightbooking/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Payment, error)
	ByIDs(ctx context.Context, ids []int64) (map[int64]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, customer_id, amount_cents, currency, method, status, created_at, updated_at`

func scanPayment(row pgx.Row, p *domain.Payment) error {
	return row.Scan(&p.ID, &p.CustomerID, &p.AmountCents, &p.Currency, &p.Method, &p.Status, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payments (customer_id, amount_cents, currency, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		payment.CustomerID, payment.AmountCents, payment.Currency, payment.Method, payment.Status).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	var p domain.Payment
	if err := scanPayment(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `UPDATE payments SET status=$2, updated_at=now() WHERE id=$1 RETURNING `+paymentColumns, id, status)
	var p domain.Payment
	if err := scanPayment(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) ByIDs(ctx context.Context, ids []int64) (map[int64]domain.Payment, error) {
	payments := make(map[int64]domain.Payment, len(ids))
	if len(ids) == 0 {
		return payments, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		payments[p.ID] = p
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
