package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkotelnikov/flightbooking/internal/domain"
)

type TicketRepository interface {
	// CreateBatch inserts all tickets in one statement and populates
	// their generated IDs and timestamps, preserving input order.
	CreateBatch(ctx context.Context, tickets []*domain.Ticket) error

	// UpdateStatus transitions every listed ticket. If any id is
	// missing the whole update fails with ErrNotFound.
	UpdateStatus(ctx context.Context, ids []int64, status domain.TicketStatus) error

	ByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error)

	// ByBookings fetches tickets for a set of bookings in a single
	// query, keyed by booking id.
	ByBookings(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Ticket, error)

	DeleteByIDs(ctx context.Context, ids []int64) error
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `id, ticket_number, booking_id, customer_id, flight_id, seat_number, fare_class, status, created_at, updated_at`

func (r *PGTicketRepository) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	query := `INSERT INTO tickets (ticket_number, booking_id, customer_id, flight_id, seat_number, fare_class, status) VALUES `
	args := make([]interface{}, 0, len(tickets)*7)
	for i, t := range tickets {
		if i > 0 {
			query += ","
		}
		query += "("
		for j := 0; j < 7; j++ {
			if j > 0 {
				query += ", "
			}
			query += "$" + strconv.Itoa(i*7+j+1)
		}
		query += ")"
		args = append(args, t.TicketNumber, t.BookingID, t.CustomerID, t.FlightID, t.SeatNumber, t.Class, t.Status)
	}
	query += ` RETURNING id, created_at, updated_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		if err := rows.Scan(&tickets[i].ID, &tickets[i].CreatedAt, &tickets[i].UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *PGTicketRepository) UpdateStatus(ctx context.Context, ids []int64, status domain.TicketStatus) error {
	if len(ids) == 0 {
		return nil
	}
	cmd, err := r.db.Exec(ctx, `UPDATE tickets SET status=$1, updated_at=now() WHERE id = ANY($2)`, status, ids)
	if err != nil {
		return err
	}
	if int(cmd.RowsAffected()) != len(ids) {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGTicketRepository) ByBooking(ctx context.Context, bookingID int64) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.BookingID, &t.CustomerID, &t.FlightID, &t.SeatNumber, &t.Class, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *PGTicketRepository) ByBookings(ctx context.Context, bookingIDs []int64) (map[int64][]domain.Ticket, error) {
	byBooking := make(map[int64][]domain.Ticket, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return byBooking, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE booking_id = ANY($1) ORDER BY booking_id, id`, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(&t.ID, &t.TicketNumber, &t.BookingID, &t.CustomerID, &t.FlightID, &t.SeatNumber, &t.Class, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		byBooking[t.BookingID] = append(byBooking[t.BookingID], t)
	}
	return byBooking, rows.Err()
}

func (r *PGTicketRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE id = ANY($1)`, ids)
	return err
}

var _ TicketRepository = (*PGTicketRepository)(nil)
