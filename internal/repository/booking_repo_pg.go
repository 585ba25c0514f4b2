package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkotelnikov/flightbooking/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)

	// ConfirmPending attaches a payment and moves the booking to
	// confirmed, but only if it is still pending. A concurrent
	// transition loses the race and gets ErrInvalidState.
	ConfirmPending(ctx context.Context, bookingID, paymentID int64) (*domain.Booking, error)

	// CancelActive moves a pending or confirmed booking to cancelled.
	// Cancelling an already-cancelled booking returns ErrInvalidState,
	// never a second cancellation.
	CancelActive(ctx context.Context, bookingID int64) (*domain.Booking, error)

	// Delete removes a booking row. Used only to compensate a failed
	// multi-step create.
	Delete(ctx context.Context, id int64) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, customer_id, total_amount_cents, payment_id, status, contact_email, contact_phone, special_requests, created_at, updated_at`

func scanBooking(row pgx.Row, b *domain.Booking) error {
	return row.Scan(&b.ID, &b.Reference, &b.CustomerID, &b.TotalAmountCents, &b.PaymentID, &b.Status, &b.Contact.Email, &b.Contact.Phone, &b.SpecialRequests, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO bookings (reference, customer_id, total_amount_cents, status, contact_email, contact_phone, special_requests)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		booking.Reference, booking.CustomerID, booking.TotalAmountCents, booking.Status, booking.Contact.Email, booking.Contact.Phone, booking.SpecialRequests).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ConfirmPending(ctx context.Context, bookingID, paymentID int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, payment_id=$3, updated_at=now()
		WHERE id=$1 AND status=$4
		RETURNING `+bookingColumns, bookingID, domain.BookingStatusConfirmed, paymentID, domain.BookingStatusPending)
	return r.scanConditional(ctx, row, bookingID)
}

func (r *PGBookingRepository) CancelActive(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now()
		WHERE id=$1 AND status IN ($3, $4)
		RETURNING `+bookingColumns, bookingID, domain.BookingStatusCancelled, domain.BookingStatusPending, domain.BookingStatusConfirmed)
	return r.scanConditional(ctx, row, bookingID)
}

// scanConditional distinguishes "booking missing" from "condition not
// met" when a guarded UPDATE touched no rows.
func (r *PGBookingRepository) scanConditional(ctx context.Context, row pgx.Row, bookingID int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := scanBooking(row, &b); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id=$1)`, bookingID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrInvalidState
	}
	return &b, nil
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	return err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
